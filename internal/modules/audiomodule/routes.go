package audiomodule

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/apiroutes"
	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/utils"
)

// RegisterRoutes mounts the audio clip API
func (m *Module) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/audio/sessions/:sessionId/clips")
	{
		api.GET("", m.handleList)
		api.POST("", m.handleUpload)
		api.DELETE("/:clipId", m.handleRemove)
		api.PUT("/:clipId/preview", m.handlePreviewUpdate)
		api.POST("/:clipId/save", m.handleSave)
		api.POST("/:clipId/reset", m.handleReset)
		api.PUT("/:clipId/volume", m.handleVolume)
		api.POST("/:clipId/play", m.handleStartPreview)
		api.POST("/:clipId/stop", m.handleStopPreview)
	}

	apiroutes.Register("/api/audio/sessions/:sessionId/clips", "GET, POST, PUT, DELETE",
		"Audio clip upload, trim preview and commit.")
}

func clipStore(c *gin.Context) (*Store, bool) {
	store, err := GetManager().ForSession(c.Param("sessionId"))
	if err != nil {
		apperrors.HandleNotFound(c, "session", c.Param("sessionId"))
		return nil, false
	}
	return store, true
}

func handleClipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrClipNotFound):
		apperrors.HandleNotFound(c, "audio clip", "")
	case errors.Is(err, ErrInvalidTrim), errors.Is(err, ErrNoPendingEdits):
		apperrors.HandleValidationError(c, err.Error(), "preview")
	default:
		apperrors.HandleInternalError(c, "Audio operation failed", err)
	}
}

func (m *Module) handleList(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"clips":         store.List(),
		"activePreview": store.ActivePreview(),
	})
}

// handleUpload receives the audio file, probes its duration and
// registers the clip with default trim and volume.
func (m *Module) handleUpload(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleValidationError(c, "Audio file is required", "file")
		return
	}
	if file.Size > config.Get().Media.MaxUploadSize {
		apperrors.HandleValidationError(c, "Audio file too large - trim it or pick a smaller file", "file")
		return
	}
	if !utils.IsAudioFile(file.Filename) {
		apperrors.HandleValidationError(c, "Unsupported audio format", "file")
		return
	}

	uploadDir := filepath.Join(config.Get().Database.DataDir, "uploads", "audio")
	dest, err := utils.UniqueUploadPath(uploadDir, file.Filename)
	if err != nil {
		apperrors.HandleInternalError(c, "Failed to prepare upload directory", err)
		return
	}
	if err := c.SaveUploadedFile(file, dest); err != nil {
		apperrors.HandleInternalError(c, "Failed to store audio file", err)
		return
	}

	info, err := ProbeFile(c.Request.Context(), dest)
	if err != nil {
		os.Remove(dest)
		apperrors.HandleMediaError(c, "probe audio", err)
		return
	}

	clip, err := store.Add(file.Filename, dest, info.Duration, info.Title, info.Artist)
	if err != nil {
		os.Remove(dest)
		apperrors.HandleValidationError(c, err.Error(), "file")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"clip": clip})
}

func (m *Module) handleRemove(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}

	clip, found := store.Get(c.Param("clipId"))
	if err := store.Remove(c.Param("clipId")); err != nil {
		handleClipError(c, err)
		return
	}
	if found && clip.SourcePath != "" {
		os.Remove(clip.SourcePath)
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handlePreviewUpdate(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}

	var update PreviewUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		apperrors.HandleValidationError(c, "Invalid preview update", "body")
		return
	}
	clip, err := store.UpdatePreview(c.Param("clipId"), update)
	if err != nil {
		handleClipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clip": clip})
}

func (m *Module) handleSave(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}
	clip, err := store.Save(c.Param("clipId"))
	if err != nil {
		handleClipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clip": clip})
}

func (m *Module) handleReset(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}
	clip, err := store.Reset(c.Param("clipId"))
	if err != nil {
		handleClipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clip": clip})
}

func (m *Module) handleVolume(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}
	var req struct {
		Volume float64 `json:"volume"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid volume payload", "body")
		return
	}
	if err := store.SetVolume(c.Param("clipId"), req.Volume); err != nil {
		handleClipError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleStartPreview(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}
	stopped, err := store.StartPreview(c.Param("clipId"))
	if err != nil {
		handleClipError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"playing": c.Param("clipId"), "stopped": stopped})
}

func (m *Module) handleStopPreview(c *gin.Context) {
	store, ok := clipStore(c)
	if !ok {
		return
	}
	store.StopPreview(c.Param("clipId"))
	c.Status(http.StatusNoContent)
}
