// Package server provides HTTP server functionality for the OpenReel
// editor backend. This file wires the top-level routes; each module
// mounts its own group through the registry.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/modules/modulemanager"
	"github.com/openreel/openreel/internal/server/handlers"
)

// setupRoutes mounts the top-level routes and every module's routes
func setupRoutes(r *gin.Engine) {
	r.GET("/api", handlers.ApiRootHandler)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HandleHealthCheck)
		api.GET("/db-status", handlers.HandleDBStatus)

		if systemEventBus != nil {
			eventsHandler := handlers.NewEventsHandler(systemEventBus)
			eventsGroup := api.Group("/events")
			{
				eventsGroup.GET("/", eventsHandler.GetRecentEvents)
				eventsGroup.GET("/stats", eventsHandler.GetEventStats)
				eventsGroup.GET("/ws", eventsHandler.EventFeed)
			}
		}
	}

	modulemanager.RegisterAllRoutes(r)
}
