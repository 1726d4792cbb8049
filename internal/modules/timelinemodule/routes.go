package timelinemodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/apiroutes"
)

// RegisterRoutes mounts the timeline API
func (m *Module) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/timeline")
	{
		api.POST("/sessions", m.handleCreateSession)
		api.GET("/sessions", m.handleListSessions)
		api.GET("/sessions/:sessionId", m.handleGetSession)
		api.DELETE("/sessions/:sessionId", m.handleRemoveSession)

		api.POST("/sessions/:sessionId/tracks", m.handleAddTrack)
		api.DELETE("/sessions/:sessionId/tracks/:trackId", m.handleRemoveTrack)
		api.PUT("/sessions/:sessionId/tracks/:trackId", m.handleUpdateTrack)

		api.POST("/sessions/:sessionId/tracks/:trackId/items", m.handleAddItem)
		api.PUT("/sessions/:sessionId/tracks/:trackId/items/:itemId", m.handleUpdateItem)
		api.DELETE("/sessions/:sessionId/tracks/:trackId/items/:itemId", m.handleRemoveItem)
		api.POST("/sessions/:sessionId/items/:itemId/move", m.handleMoveItem)

		api.PUT("/sessions/:sessionId/view", m.handleUpdateView)
	}

	apiroutes.Register("/api/timeline/sessions", "GET, POST", "Manages editing sessions and their timelines.")
}

func sessionStore(c *gin.Context) (*Store, bool) {
	store, err := GetManager().GetStore(c.Param("sessionId"))
	if err != nil {
		apperrors.HandleNotFound(c, "session", c.Param("sessionId"))
		return nil, false
	}
	return store, true
}

func handleStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTrackNotFound):
		apperrors.HandleNotFound(c, "track", "")
	case errors.Is(err, ErrItemNotFound):
		apperrors.HandleNotFound(c, "item", "")
	case errors.Is(err, ErrTrackLocked):
		apperrors.NewConflictError("Track is locked, unlock it to edit its items").ToGinResponse(c)
	case errors.Is(err, ErrInvalidItem):
		apperrors.HandleValidationError(c, err.Error(), "item")
	default:
		apperrors.HandleInternalError(c, "Timeline operation failed", err)
	}
}

func (m *Module) handleCreateSession(c *gin.Context) {
	var req struct {
		Name       string `json:"name"`
		SourcePath string `json:"source_path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid session payload", "body")
		return
	}
	if req.Name == "" {
		req.Name = "Untitled project"
	}

	sessionID, err := GetManager().CreateSession(req.Name, req.SourcePath)
	if err != nil {
		apperrors.HandleInternalError(c, "Failed to create session", err)
		return
	}

	store, _ := GetManager().GetStore(sessionID)
	c.JSON(http.StatusCreated, gin.H{
		"session_id": sessionID,
		"tracks":     store.Tracks(),
	})
}

func (m *Module) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": GetManager().SessionIDs()})
}

func (m *Module) handleGetSession(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}

	currentTime, duration, zoom, trimStart, trimEnd, videoVolume := store.View()
	c.JSON(http.StatusOK, gin.H{
		"session_id":  store.SessionID(),
		"tracks":      store.Tracks(),
		"currentTime": currentTime,
		"duration":    duration,
		"zoom":        zoom,
		"trimStart":   trimStart,
		"trimEnd":     trimEnd,
		"videoVolume": videoVolume,
	})
}

func (m *Module) handleRemoveSession(c *gin.Context) {
	if err := GetManager().RemoveSession(c.Param("sessionId")); err != nil {
		apperrors.HandleNotFound(c, "session", c.Param("sessionId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleAddTrack(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}

	var track Track
	if err := c.ShouldBindJSON(&track); err != nil {
		apperrors.HandleValidationError(c, "Invalid track payload", "body")
		return
	}
	trackID := store.AddTrack(track)
	c.JSON(http.StatusCreated, gin.H{"track_id": trackID})
}

func (m *Module) handleRemoveTrack(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}
	if err := store.RemoveTrack(c.Param("trackId")); err != nil {
		handleStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleUpdateTrack(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}

	var update TrackUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		apperrors.HandleValidationError(c, "Invalid track update", "body")
		return
	}
	if err := store.UpdateTrack(c.Param("trackId"), update); err != nil {
		handleStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleAddItem(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}

	var item Item
	if err := c.ShouldBindJSON(&item); err != nil {
		apperrors.HandleValidationError(c, "Invalid item payload", "body")
		return
	}
	itemID, err := store.AddItemToTrack(c.Param("trackId"), item)
	if err != nil {
		handleStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"item_id": itemID})
}

func (m *Module) handleUpdateItem(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}

	var update ItemUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		apperrors.HandleValidationError(c, "Invalid item update", "body")
		return
	}
	if err := store.UpdateItem(c.Param("trackId"), c.Param("itemId"), update); err != nil {
		handleStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleRemoveItem(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}
	if err := store.RemoveItemFromTrack(c.Param("trackId"), c.Param("itemId")); err != nil {
		handleStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleMoveItem(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}

	var req struct {
		FromTrackID  string  `json:"fromTrackId" binding:"required"`
		ToTrackID    string  `json:"toTrackId" binding:"required"`
		NewStartTime float64 `json:"newStartTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid move payload", "body")
		return
	}
	if err := store.MoveItem(c.Param("itemId"), req.FromTrackID, req.ToTrackID, req.NewStartTime); err != nil {
		handleStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleUpdateView(c *gin.Context) {
	store, ok := sessionStore(c)
	if !ok {
		return
	}

	var req struct {
		CurrentTime *float64 `json:"currentTime"`
		Duration    *float64 `json:"duration"`
		Zoom        *float64 `json:"zoom"`
		TrimStart   *float64 `json:"trimStart"`
		TrimEnd     *float64 `json:"trimEnd"`
		VideoVolume *float64 `json:"videoVolume"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid view update", "body")
		return
	}

	if req.CurrentTime != nil {
		store.SetCurrentTime(*req.CurrentTime)
	}
	if req.Duration != nil {
		store.SetDuration(*req.Duration)
	}
	if req.Zoom != nil {
		store.SetZoom(*req.Zoom)
	}
	if req.TrimStart != nil && req.TrimEnd != nil {
		store.SetTrim(*req.TrimStart, *req.TrimEnd)
	}
	if req.VideoVolume != nil {
		store.SetVideoVolume(*req.VideoVolume)
	}
	c.Status(http.StatusNoContent)
}
