// Package timelinemodule owns the canonical multi-track timeline for
// each editing session: tracks, placed items, playhead and view state.
// Overlay and audio stores mirror subsets of this state and reconcile
// against it through their bridges.
package timelinemodule

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/modules/modulemanager"
)

// Module wires the session manager into the module system
type Module struct {
	logger hclog.Logger
}

func init() {
	modulemanager.Register(&Module{
		logger: hclog.New(&hclog.LoggerOptions{Name: "timeline"}),
	})
}

func (m *Module) ID() string {
	return "timeline"
}

func (m *Module) Name() string {
	return "Timeline Module"
}

func (m *Module) Core() bool {
	return true
}

func (m *Module) Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&database.EditSession{})
}

func (m *Module) Init() error {
	GetManager().SetDB(database.GetDB())
	m.logger.Info("timeline module initialized")
	return nil
}
