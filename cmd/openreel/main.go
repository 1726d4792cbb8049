package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/server"
)

func main() {
	fmt.Println("=======================================")
	fmt.Println("  OpenReel Editor Backend              ")
	fmt.Println("=======================================")

	configPath := os.Getenv("OPENREEL_CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./openreel.yaml"); err == nil {
			configPath = "./openreel.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		log.Printf("Warning: failed to load configuration from %s: %v", configPath, err)
		log.Printf("Using default configuration")
	} else if configPath != "" {
		log.Printf("Configuration loaded from: %s", configPath)
	} else {
		log.Printf("Using default configuration")
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	r := server.SetupRouter()

	cfg := config.Get()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\nShutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		if err := server.ShutdownEventBus(); err != nil {
			log.Printf("Event bus shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting OpenReel server on %s:%d", cfg.Server.Host, cfg.Server.Port)
	err := srv.ListenAndServe()

	if err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
