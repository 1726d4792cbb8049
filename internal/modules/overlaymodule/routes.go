package overlaymodule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/apiroutes"
	"github.com/openreel/openreel/internal/geometry"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// RegisterRoutes mounts the overlay and sticker-catalog API
func (m *Module) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/overlays/sessions/:sessionId/:kind")
	{
		api.GET("", m.handleList)
		api.POST("", m.handleAdd)
		api.DELETE("/:overlayId", m.handleRemove)
		api.POST("/:overlayId/select", m.handleSelect)
		api.PUT("/:overlayId", m.handleUpdate)
		api.POST("/:overlayId/duplicate", m.handleDuplicate)
		api.PUT("/:overlayId/position", m.handleMove)
		api.PUT("/:overlayId/size", m.handleResize)
		api.PUT("/:overlayId/rotation", m.handleRotate)
		api.PUT("/:overlayId/opacity", m.handleOpacity)
		api.PUT("/:overlayId/timing", m.handleTiming)
		api.PUT("/:overlayId/visibility", m.handleVisibility)
		api.PUT("/:overlayId/lock", m.handleLock)
		api.POST("/:overlayId/front", m.handleBringToFront)
		api.POST("/:overlayId/back", m.handleSendToBack)
		api.POST("/:overlayId/copy", m.handleCopy)
		api.POST("/paste", m.handlePaste)
		api.DELETE("/clipboard", m.handleClearClipboard)
		api.POST("/reconcile", m.handleReconcile)
	}

	r.GET("/api/stickers/catalog", m.handleCatalog)

	apiroutes.Register("/api/overlays/sessions/:sessionId/:kind", "GET, POST, PUT, DELETE",
		"Text and sticker overlay operations for a session.")
	apiroutes.Register("/api/stickers/catalog", "GET", "Sticker catalog listing.")
}

func bridgeFrom(c *gin.Context) (*Bridge, bool) {
	kind := OverlayKind(c.Param("kind"))
	bridge, err := GetManager().BridgeFor(c.Param("sessionId"), kind)
	if err != nil {
		if errors.Is(err, timelinemodule.ErrSessionNotFound) {
			apperrors.HandleNotFound(c, "session", c.Param("sessionId"))
		} else {
			apperrors.HandleValidationError(c, err.Error(), "kind")
		}
		return nil, false
	}
	return bridge, true
}

func handleBridgeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrOverlayNotFound):
		apperrors.HandleNotFound(c, "overlay", "")
	case errors.Is(err, timelinemodule.ErrTrackLocked):
		apperrors.NewConflictError("Linked track is locked").ToGinResponse(c)
	default:
		apperrors.HandleInternalError(c, "Overlay operation failed", err)
	}
}

func (m *Module) handleList(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"overlays": bridge.Store().List()})
}

func (m *Module) handleAdd(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}

	var overlay Overlay
	if err := c.ShouldBindJSON(&overlay); err != nil {
		apperrors.HandleValidationError(c, "Invalid overlay payload", "body")
		return
	}
	if bridge.Store().Kind() == KindText && overlay.Text == "" {
		apperrors.HandleValidationError(c, "Text overlay requires text", "text")
		return
	}
	if bridge.Store().Kind() == KindSticker {
		if asset, found := m.catalog.Lookup(overlay.StickerID); found {
			overlay.URL = asset.URL
			if overlay.Text == "" {
				overlay.Text = asset.Name
			}
		}
	}

	id, err := bridge.AddOverlay(overlay)
	if err != nil {
		handleBridgeError(c, err)
		return
	}
	created, _ := bridge.Store().Get(id)
	c.JSON(http.StatusCreated, gin.H{"overlay": created})
}

func (m *Module) handleRemove(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	if err := bridge.RemoveOverlay(c.Param("overlayId")); err != nil {
		handleBridgeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleSelect(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionSelect, ID: c.Param("overlayId")}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleUpdate(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var update OverlayUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		apperrors.HandleValidationError(c, "Invalid overlay update", "body")
		return
	}
	if err := bridge.UpdateContent(c.Param("overlayId"), update); err != nil {
		handleBridgeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleDuplicate(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	newID, err := bridge.Duplicate(c.Param("overlayId"))
	if err != nil {
		handleBridgeError(c, err)
		return
	}
	created, _ := bridge.Store().Get(newID)
	c.JSON(http.StatusCreated, gin.H{"overlay": created})
}

func (m *Module) handleMove(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var pos geometry.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		apperrors.HandleValidationError(c, "Invalid position", "body")
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionMove, ID: c.Param("overlayId"), Position: pos}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleResize(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var size geometry.Size
	if err := c.ShouldBindJSON(&size); err != nil {
		apperrors.HandleValidationError(c, "Invalid size", "body")
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionResize, ID: c.Param("overlayId"), Size: size}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleRotate(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var req struct {
		Rotation float64 `json:"rotation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid rotation", "body")
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionRotate, ID: c.Param("overlayId"), Rotation: req.Rotation}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleOpacity(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var req struct {
		Opacity float64 `json:"opacity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid opacity", "body")
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionSetOpacity, ID: c.Param("overlayId"), Opacity: req.Opacity}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleTiming(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var req struct {
		StartTime float64 `json:"startTime"`
		Duration  float64 `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid timing", "body")
		return
	}
	if err := bridge.SetTiming(c.Param("overlayId"), req.StartTime, req.Duration, OriginOverlay); err != nil {
		handleBridgeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleVisibility(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var req struct {
		IsVisible bool `json:"isVisible"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid visibility", "body")
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionSetVisibility, ID: c.Param("overlayId"), Visible: req.IsVisible}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleLock(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	var req struct {
		IsLocked bool `json:"isLocked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid lock payload", "body")
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionSetLock, ID: c.Param("overlayId"), Locked: req.IsLocked}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleBringToFront(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionBringToFront, ID: c.Param("overlayId")}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleSendToBack(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionSendToBack, ID: c.Param("overlayId")}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleCopy(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	if !bridge.Store().Dispatch(Action{Type: ActionCopy, ID: c.Param("overlayId")}) {
		apperrors.HandleNotFound(c, "overlay", c.Param("overlayId"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handlePaste(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	newID, err := bridge.Paste()
	if err != nil {
		apperrors.HandleValidationError(c, err.Error(), "clipboard")
		return
	}
	created, _ := bridge.Store().Get(newID)
	c.JSON(http.StatusCreated, gin.H{"overlay": created})
}

func (m *Module) handleClearClipboard(c *gin.Context) {
	bridge, ok := bridgeFrom(c)
	if !ok {
		return
	}
	bridge.Store().Dispatch(Action{Type: ActionClearClipboard})
	c.Status(http.StatusNoContent)
}

func (m *Module) handleReconcile(c *gin.Context) {
	overlays, err := GetManager().ForSession(c.Param("sessionId"))
	if err != nil {
		apperrors.HandleNotFound(c, "session", c.Param("sessionId"))
		return
	}
	c.JSON(http.StatusOK, overlays.Reconcile())
}

func (m *Module) handleCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stickers": m.catalog.Assets(c.Query("category"))})
}
