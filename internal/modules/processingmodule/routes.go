package processingmodule

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/apiroutes"
	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// RegisterRoutes mounts the processing pipeline API
func (m *Module) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/processing/sessions/:sessionId")
	{
		api.POST("/initialize", m.handleInitialize)
		api.GET("/steps", m.handleSteps)
		api.POST("/steps", m.handleAddStep)
		api.POST("/undo", m.handleUndo)
		api.GET("/current", m.handleCurrent)
		api.DELETE("", m.handleCleanup)
	}

	apiroutes.Register("/api/processing/sessions/:sessionId/steps", "GET, POST",
		"Replayable processing step log: trim, audio mix, undo by replay.")
}

func processorFor(c *gin.Context) (*Processor, bool) {
	p, err := GetManager().ForSession(c.Param("sessionId"))
	if err != nil {
		if errors.Is(err, timelinemodule.ErrSessionNotFound) {
			apperrors.HandleNotFound(c, "session", c.Param("sessionId"))
		} else {
			apperrors.HandleInternalError(c, "Processing pipeline unavailable", err)
		}
		return nil, false
	}
	return p, true
}

func handleProcessorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBusy):
		apperrors.NewConflictError("Another processing operation is running - wait for it to finish").ToGinResponse(c)
	case errors.Is(err, ErrNotInitialized):
		apperrors.HandleValidationError(c, "Pipeline not initialized - upload a source video first", "session")
	case errors.Is(err, ErrStepNotSupported):
		apperrors.HandleValidationError(c, err.Error(), "type")
	case errors.Is(err, ErrInvalidTrim), errors.Is(err, ErrNothingToUndo):
		apperrors.HandleValidationError(c, err.Error(), "step")
	default:
		apperrors.HandleError(c, err)
	}
}

// handleInitialize receives the source video and pins it as the replay
// origin.
func (m *Module) handleInitialize(c *gin.Context) {
	p, ok := processorFor(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleValidationError(c, "Source video file is required", "file")
		return
	}
	if file.Size > config.Get().Media.MaxUploadSize {
		apperrors.HandleValidationError(c, "Video too large - reduce duration or resolution", "file")
		return
	}

	f, err := file.Open()
	if err != nil {
		apperrors.HandleInternalError(c, "Failed to read upload", err)
		return
	}
	defer f.Close()
	blob, err := io.ReadAll(f)
	if err != nil {
		apperrors.HandleInternalError(c, "Failed to read upload", err)
		return
	}

	if err := p.Initialize(c.Request.Context(), blob); err != nil {
		apperrors.HandleMediaError(c, "initialize pipeline", err)
		return
	}
	_, duration := p.Current()
	c.JSON(http.StatusOK, gin.H{"duration": duration})
}

func (m *Module) handleSteps(c *gin.Context) {
	p, ok := processorFor(c)
	if !ok {
		return
	}
	_, duration := p.Current()
	c.JSON(http.StatusOK, gin.H{
		"steps":       p.Steps(),
		"duration":    duration,
		"initialized": p.Initialized(),
	})
}

func (m *Module) handleAddStep(c *gin.Context) {
	p, ok := processorFor(c)
	if !ok {
		return
	}

	var req struct {
		Type  StepType     `json:"type" binding:"required"`
		Trim  *TrimParams  `json:"trim,omitempty"`
		Audio *AudioParams `json:"audio,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid step payload", "body")
		return
	}

	step, err := p.AddStep(c.Request.Context(), req.Type, req.Trim, req.Audio)
	if err != nil {
		handleProcessorError(c, err)
		return
	}
	_, duration := p.Current()
	c.JSON(http.StatusCreated, gin.H{"step": step, "duration": duration})
}

func (m *Module) handleUndo(c *gin.Context) {
	p, ok := processorFor(c)
	if !ok {
		return
	}
	if err := p.UndoLastStep(c.Request.Context()); err != nil {
		handleProcessorError(c, err)
		return
	}
	_, duration := p.Current()
	c.JSON(http.StatusOK, gin.H{"steps": p.Steps(), "duration": duration})
}

// handleCurrent streams the working video file
func (m *Module) handleCurrent(c *gin.Context) {
	p, ok := processorFor(c)
	if !ok {
		return
	}
	path := p.CurrentPath()
	if path == "" {
		apperrors.HandleNotFound(c, "working video", c.Param("sessionId"))
		return
	}
	c.File(path)
}

func (m *Module) handleCleanup(c *gin.Context) {
	GetManager().RemoveSession(c.Param("sessionId"))
	c.Status(http.StatusNoContent)
}
