package overlaymodule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm/clause"

	"github.com/openreel/openreel/internal/database"
	"github.com/openreel/openreel/internal/events"
)

// Catalog serves the sticker list. Entries come from a remote catalog
// fetched once at startup plus a local pack directory that is watched
// for changes during development. Both are cached in the database so a
// failed fetch still serves the last known set.
type Catalog struct {
	mu       sync.RWMutex
	logger   hclog.Logger
	client   *http.Client
	url      string
	packDir  string
	assets   []database.StickerAsset
	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	stop     chan struct{}
}

// NewCatalog builds a catalog over the given remote url and pack dir
func NewCatalog(logger hclog.Logger, url, packDir string, fetchTimeout time.Duration) *Catalog {
	return &Catalog{
		logger:  logger,
		client:  &http.Client{Timeout: fetchTimeout},
		url:     url,
		packDir: packDir,
		stop:    make(chan struct{}),
	}
}

// Load seeds the catalog: cached rows first, then remote fetch and
// pack-dir scan layered on top. Errors from the remote side degrade to
// the cache instead of failing startup.
func (c *Catalog) Load(ctx context.Context) error {
	if db := database.GetDB(); db != nil {
		var cached []database.StickerAsset
		if err := db.Order("pack, name").Find(&cached).Error; err == nil {
			c.mu.Lock()
			c.assets = cached
			c.mu.Unlock()
		}
	}

	if c.url != "" {
		if err := c.fetchRemote(ctx); err != nil {
			c.logger.Warn("sticker catalog fetch failed, serving cache", "url", c.url, "error", err)
		}
	}
	if c.packDir != "" {
		if err := c.scanPackDir(); err != nil {
			c.logger.Warn("sticker pack scan failed", "dir", c.packDir, "error", err)
		}
	}
	return nil
}

// Assets returns the current catalog, optionally filtered by category
func (c *Catalog) Assets(category string) []database.StickerAsset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if category == "" {
		out := make([]database.StickerAsset, len(c.assets))
		copy(out, c.assets)
		return out
	}
	var out []database.StickerAsset
	for _, a := range c.assets {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Lookup finds a single asset by id
func (c *Catalog) Lookup(id string) (database.StickerAsset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.assets {
		if a.ID == id {
			return a, true
		}
	}
	return database.StickerAsset{}, false
}

// Watch starts the pack directory watcher. Changes trigger a rescan
// and a catalog.refreshed event.
func (c *Catalog) Watch() error {
	if c.packDir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create pack watcher: %w", err)
	}
	if err := watcher.Add(c.packDir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", c.packDir, err)
	}
	c.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
					continue
				}
				if err := c.scanPackDir(); err != nil {
					c.logger.Warn("pack rescan failed", "error", err)
					continue
				}
				c.logger.Debug("sticker pack refreshed", "trigger", event.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("pack watcher error", "error", err)
			case <-c.stop:
				return
			}
		}
	}()
	return nil
}

// Close stops the watcher
func (c *Catalog) Close() {
	c.stopOnce.Do(func() {
		close(c.stop)
		if c.watcher != nil {
			c.watcher.Close()
		}
	})
}

type remoteAsset struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Pack     string `json:"pack"`
	URL      string `json:"url"`
}

func (c *Catalog) fetchRemote(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var remote []remoteAsset
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return fmt.Errorf("failed to decode catalog: %w", err)
	}

	assets := make([]database.StickerAsset, 0, len(remote))
	for _, r := range remote {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		assets = append(assets, database.StickerAsset{
			ID: r.ID, Name: r.Name, Category: r.Category, Pack: r.Pack, URL: r.URL,
		})
	}
	c.replacePack("", assets)
	return nil
}

// scanPackDir turns image files in the pack directory into local assets
func (c *Catalog) scanPackDir() error {
	entries, err := os.ReadDir(c.packDir)
	if err != nil {
		return err
	}

	var assets []database.StickerAsset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".png", ".webp", ".gif", ".svg":
		default:
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		assets = append(assets, database.StickerAsset{
			ID:       "local-" + name,
			Name:     name,
			Category: "local",
			Pack:     "local",
			URL:      filepath.Join(c.packDir, entry.Name()),
		})
	}
	c.replacePack("local", assets)
	return nil
}

// replacePack swaps all assets belonging to one pack ("" means every
// remote pack) and persists the new set.
func (c *Catalog) replacePack(pack string, assets []database.StickerAsset) {
	c.mu.Lock()
	var kept []database.StickerAsset
	for _, a := range c.assets {
		if pack == "" {
			if a.Pack == "local" {
				kept = append(kept, a)
			}
		} else if a.Pack != pack {
			kept = append(kept, a)
		}
	}
	c.assets = append(kept, assets...)
	c.mu.Unlock()

	if db := database.GetDB(); db != nil && len(assets) > 0 {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&assets).Error
		if err != nil {
			c.logger.Warn("failed to persist sticker catalog", "error", err)
		}
	}

	events.PublishGlobal(events.NewEvent(events.EventCatalogRefreshed, "overlaymodule", "",
		map[string]interface{}{"pack": pack, "count": len(assets)}))
}
