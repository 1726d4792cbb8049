// Package overlaymodule owns the text and sticker overlay state for
// each session: reducer-style stores, the bridges that keep them
// consistent with the timeline, and the sticker catalog.
package overlaymodule

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/modules/modulemanager"
)

// Module wires the overlay manager and sticker catalog into the module
// system.
type Module struct {
	logger  hclog.Logger
	catalog *Catalog
}

func init() {
	modulemanager.Register(&Module{
		logger: hclog.New(&hclog.LoggerOptions{Name: "overlay"}),
	})
}

func (m *Module) ID() string {
	return "overlay"
}

func (m *Module) Name() string {
	return "Overlay Module"
}

func (m *Module) Core() bool {
	return true
}

func (m *Module) Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&database.StickerAsset{})
}

func (m *Module) Init() error {
	cfg := config.Get()
	m.catalog = NewCatalog(m.logger.Named("catalog"),
		cfg.Stickers.CatalogURL, cfg.Stickers.PackDir, cfg.Stickers.FetchTimeout)

	if err := m.catalog.Load(context.Background()); err != nil {
		return err
	}
	if cfg.Stickers.WatchPackDir && cfg.Stickers.PackDir != "" {
		if err := m.catalog.Watch(); err != nil {
			m.logger.Warn("sticker pack watcher unavailable", "error", err)
		}
	}

	m.logger.Info("overlay module initialized", "stickers", len(m.catalog.Assets("")))
	return nil
}
