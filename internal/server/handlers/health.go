package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/modules/modulemanager"
)

// HandleHealthCheck returns the service health including per-module
// status. A degraded module (say, the media engine missing) keeps the
// overall service up but is visible here.
func HandleHealthCheck(c *gin.Context) {
	moduleHealth := modulemanager.HealthCheckAll(c.Request.Context())

	status := "ok"
	for _, health := range moduleHealth {
		if health.Status == modulemanager.HealthStateUnhealthy {
			status = "unhealthy"
			break
		}
		if health.Status == modulemanager.HealthStateDegraded {
			status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":  status,
		"service": "openreel",
		"modules": moduleHealth,
	})
}

// HandleDBStatus checks and returns the database connection status
func HandleDBStatus(c *gin.Context) {
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"error":  "Database not initialized",
		})
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Failed to get database instance: " + err.Error(),
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "error",
			"error":  "Database ping failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "connected",
		"database": "ready",
	})
}
