// Package audiomodule owns uploaded audio clips per session: probing,
// trim and placement with preview-then-commit editing, and the
// single-flight preview playback token.
package audiomodule

import (
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/modules/modulemanager"
)

// Module wires the audio clip manager into the module system
type Module struct {
	logger hclog.Logger
}

func init() {
	modulemanager.Register(&Module{
		logger: hclog.New(&hclog.LoggerOptions{Name: "audio"}),
	})
}

func (m *Module) ID() string {
	return "audio"
}

func (m *Module) Name() string {
	return "Audio Module"
}

func (m *Module) Core() bool {
	return false
}

func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

func (m *Module) Init() error {
	m.logger.Info("audio module initialized")
	return nil
}
