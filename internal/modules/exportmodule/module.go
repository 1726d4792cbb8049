// Package exportmodule serializes finished sessions for persistence:
// size-driven compression, bounded timeline snapshots and the
// multipart upload to the storage backend.
package exportmodule

import (
	"net/http"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/mediaengine"
	"github.com/openreel/openreel/internal/modules/modulemanager"
)

// Module wires the export orchestrator into the module system
type Module struct {
	logger       hclog.Logger
	orchestrator *Orchestrator
}

func init() {
	modulemanager.Register(&Module{
		logger: hclog.New(&hclog.LoggerOptions{Name: "export"}),
	})
}

func (m *Module) ID() string {
	return "export"
}

func (m *Module) Name() string {
	return "Export Module"
}

func (m *Module) Core() bool {
	return false
}

func (m *Module) Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&database.ExportRecord{})
}

func (m *Module) Init() error {
	cfg := config.Get()
	uploader := NewUploader(cfg.Export.UploadURL, &http.Client{Timeout: cfg.Server.WriteTimeout * 4})
	m.orchestrator = NewOrchestrator(mediaengine.Default(), uploader, database.GetDB(), m.logger)
	m.logger.Info("export module initialized", "upload_url", cfg.Export.UploadURL)
	return nil
}
