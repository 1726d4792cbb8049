// Package processingmodule maintains the replayable video-processing
// pipeline per session: an append-only step log over an FFmpeg-backed
// engine, with undo implemented as full replay from the original
// source.
package processingmodule

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/mediaengine"
	"github.com/openreel/openreel/internal/modules/modulemanager"
)

// Module constructs the shared media engine and wires the processor
// manager into the module system.
type Module struct {
	logger hclog.Logger
	engine *mediaengine.FFmpegEngine
}

func init() {
	modulemanager.Register(&Module{
		logger: hclog.New(&hclog.LoggerOptions{Name: "processing"}),
	})
}

func (m *Module) ID() string {
	return "processing"
}

func (m *Module) Name() string {
	return "Processing Module"
}

func (m *Module) Core() bool {
	return true
}

func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

func (m *Module) Init() error {
	cfg := config.Get()
	engine, err := mediaengine.NewFFmpegEngine(mediaengine.Options{
		FFmpegPath:  cfg.Media.FFmpegPath,
		FFprobePath: cfg.Media.FFprobePath,
		WorkDir:     cfg.Media.WorkDir,
		OpTimeout:   cfg.Media.OpTimeout,
		Logger:      m.logger.Named("engine"),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := engine.Initialize(ctx); err != nil {
		// The API surface stays up without ffmpeg; processing calls
		// report the missing engine per request.
		m.logger.Warn("media engine unavailable, processing disabled", "error", err)
		return nil
	}

	m.engine = engine
	mediaengine.SetDefault(engine)
	m.logger.Info("processing module initialized")
	return nil
}

// HealthCheck reports whether the engine is reachable
func (m *Module) HealthCheck(ctx context.Context) modulemanager.HealthStatus {
	status := modulemanager.HealthStatus{
		Status:      modulemanager.HealthStateHealthy,
		LastChecked: time.Now(),
	}
	if m.engine == nil {
		status.Status = modulemanager.HealthStateDegraded
		status.Message = "media engine unavailable"
	}
	return status
}
