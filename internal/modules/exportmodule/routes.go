package exportmodule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/apiroutes"
	"github.com/openreel/openreel/internal/database"
)

// RegisterRoutes mounts the export API
func (m *Module) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/export")
	{
		api.POST("/sessions/:sessionId", m.handleExport)
		api.GET("/records", m.handleRecords)
	}

	apiroutes.Register("/api/export/sessions/:sessionId", "POST",
		"Export a session: compress, snapshot and upload.")
}

func (m *Module) handleExport(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleValidationError(c, "Invalid export payload", "body")
		return
	}
	req.SessionID = c.Param("sessionId")

	result, err := m.orchestrator.Export(c.Request.Context(), req)
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (m *Module) handleRecords(c *gin.Context) {
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusOK, gin.H{"records": []database.ExportRecord{}})
		return
	}
	records, err := ListRecords(db, c.Query("session_id"))
	if err != nil {
		apperrors.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
