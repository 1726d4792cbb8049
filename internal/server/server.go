package server

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openreel/openreel/internal/apiroutes"
	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/events"
	"github.com/openreel/openreel/internal/logger"
	"github.com/openreel/openreel/internal/middleware"
	"github.com/openreel/openreel/internal/modules/modulemanager"

	// Import all modules to trigger their registration
	_ "github.com/openreel/openreel/internal/modules/audiomodule"
	_ "github.com/openreel/openreel/internal/modules/exportmodule"
	_ "github.com/openreel/openreel/internal/modules/overlaymodule"
	_ "github.com/openreel/openreel/internal/modules/processingmodule"
	_ "github.com/openreel/openreel/internal/modules/timelinemodule"
)

const eventBusBufferSize = 1000

var (
	systemEventBus    events.EventBus
	moduleInitialized bool
)

// SetupRouter configures and returns the main router
func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())
	if config.Get().Server.EnableCORS {
		r.Use(corsMiddleware())
	}

	if err := initializeEventBus(); err != nil {
		log.Printf("Failed to initialize event bus: %v", err)
	}

	if err := initializeModules(); err != nil {
		log.Printf("Failed to initialize modules: %v", err)
	}

	apiroutes.Register("/api", "GET", "Lists all available API endpoints.")
	apiroutes.Register("/api/health", "GET", "System and per-module health check.")
	apiroutes.Register("/api/events/ws", "GET", "Live event feed over websocket.")

	setupRoutes(r)

	return r
}

// corsMiddleware allows the browser frontend to call the API during
// development
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// initializeModules loads every registered module against the shared
// database connection
func initializeModules() error {
	if moduleInitialized {
		return nil
	}

	db := database.GetDB()

	events.SetGlobalEventBus(systemEventBus)

	if err := modulemanager.LoadAll(db); err != nil {
		return err
	}

	moduleInitialized = true
	logModuleStatus()
	return nil
}

// logModuleStatus logs the loaded modules
func logModuleStatus() {
	modules := modulemanager.ListModules()

	log.Printf("Module system initialized with %d modules", len(modules))
	for _, module := range modules {
		coreStatus := "no"
		if module.Core() {
			coreStatus = "yes"
		}
		log.Printf("  module %-12s id=%-12s core=%s", module.Name(), module.ID(), coreStatus)
	}
}

// initializeEventBus sets up the system-wide event bus
func initializeEventBus() error {
	systemEventBus = events.NewEventBus(eventBusBufferSize)

	if err := systemEventBus.Start(context.Background()); err != nil {
		log.Printf("Failed to start event bus: %v", err)
		return err
	}

	logger.Info("System event bus initialized and started")
	return nil
}

// GetEventBus returns the system event bus instance
func GetEventBus() events.EventBus {
	return systemEventBus
}

// ShutdownEventBus gracefully shuts down the event bus
func ShutdownEventBus() error {
	if systemEventBus == nil {
		return nil
	}
	log.Println("INFO: Shutting down event bus...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return systemEventBus.Stop(ctx)
}
