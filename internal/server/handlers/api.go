// Package handlers contains the top-level HTTP handlers: API
// discovery, health, and the live event feed. Editing endpoints live
// with their modules.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/apiroutes"
)

// ApiRootHandler serves the main /api endpoint, listing available routes.
func ApiRootHandler(c *gin.Context) {
	registeredRoutes := apiroutes.Get()

	// Group the registered paths by their first segment so clients get
	// a category overview alongside the detailed list.
	endpointsMap := make(map[string]string)
	for _, route := range registeredRoutes {
		trimmed := strings.TrimPrefix(route.Path, "/api/")
		if trimmed == route.Path || trimmed == "" {
			continue
		}
		key := strings.Split(trimmed, "/")[0]
		if _, exists := endpointsMap[key]; !exists {
			endpointsMap[key] = "/api/" + key
		}
	}
	endpointsMap["self"] = "/api"

	c.JSON(http.StatusOK, gin.H{
		"endpoints":         endpointsMap,
		"version":           "v1",
		"status":            "OK",
		"registered_routes": registeredRoutes,
	})
}
