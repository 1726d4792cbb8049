// Package modulemanager provides the module registry and lifecycle.
// Modules self-register from init() when imported; the server loads
// them all at startup in registration order.
package modulemanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/logger"
)

// Module defines the interface that all modules must implement
type Module interface {
	ID() string                // Unique identifier for the module
	Name() string              // Display name for the module
	Core() bool                // Whether this is a core module (cannot be disabled)
	Migrate(db *gorm.DB) error // Run database migrations
	Init() error               // Initialize the module
}

// RouteRegistrar is an optional interface for modules that register routes
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// HealthChecker is an optional interface for modules that report health
type HealthChecker interface {
	HealthCheck(ctx context.Context) HealthStatus
}

// HealthState represents the state of a module's health
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// HealthStatus represents the health of a module
type HealthStatus struct {
	Status      HealthState            `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// ModuleRegistry manages module registration and initialization
type ModuleRegistry struct {
	mu              sync.RWMutex
	modules         []Module
	byID            map[string]Module
	disabledModules map[string]bool
	initialized     bool
}

// Registry is the global module registry
var Registry = &ModuleRegistry{
	byID:            make(map[string]Module),
	disabledModules: make(map[string]bool),
}

// Register adds a module to the global registry
func Register(m Module) {
	Registry.Register(m)
}

// Register adds a module to the registry
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module %s (%s) registered after initialization", m.Name(), m.ID())
	}
	if _, exists := r.byID[m.ID()]; exists {
		logger.Warn("Module %s already registered, ignoring duplicate", m.ID())
		return
	}

	r.modules = append(r.modules, m)
	r.byID[m.ID()] = m
	logger.Info("Module registered: %s (%s)", m.Name(), m.ID())
}

// DisableModule marks a non-core module as disabled before LoadAll
func DisableModule(moduleID string) {
	Registry.mu.Lock()
	defer Registry.mu.Unlock()
	Registry.disabledModules[moduleID] = true
}

// LoadAll migrates and initializes all registered modules
func LoadAll(db *gorm.DB) error {
	return Registry.LoadAll(db)
}

// LoadAll migrates and initializes all registered modules in
// registration order.
func (r *ModuleRegistry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module system already initialized")
		return nil
	}

	var enabled []Module
	for _, m := range r.modules {
		if r.disabledModules[m.ID()] {
			if m.Core() {
				return fmt.Errorf("attempted to disable core module: %s", m.ID())
			}
			logger.Warn("Skipping module %s (disabled)", m.Name())
			continue
		}
		enabled = append(enabled, m)
	}

	logger.Info("Loading %d modules...", len(enabled))

	for _, m := range enabled {
		if db != nil {
			if err := m.Migrate(db); err != nil {
				return fmt.Errorf("failed to migrate module %s: %w", m.ID(), err)
			}
		}
		if err := m.Init(); err != nil {
			return fmt.Errorf("failed to initialize module %s: %w", m.ID(), err)
		}
		logger.Info("Module initialized: %s", m.Name())
	}

	r.initialized = true
	return nil
}

// RegisterAllRoutes mounts routes for every module that has them
func RegisterAllRoutes(router *gin.Engine) {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()

	for _, m := range Registry.modules {
		if Registry.disabledModules[m.ID()] {
			continue
		}
		if registrar, ok := m.(RouteRegistrar); ok {
			registrar.RegisterRoutes(router)
		}
	}
}

// HealthCheckAll gathers the health of every health-reporting module
func HealthCheckAll(ctx context.Context) map[string]HealthStatus {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()

	result := make(map[string]HealthStatus)
	for _, m := range Registry.modules {
		checker, ok := m.(HealthChecker)
		if !ok {
			continue
		}
		result[m.ID()] = checker.HealthCheck(ctx)
	}
	return result
}

// ListModules returns the registered modules in registration order
func ListModules() []Module {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()
	return append([]Module(nil), Registry.modules...)
}

// GetModule returns a registered module by id
func GetModule(id string) (Module, bool) {
	Registry.mu.RLock()
	defer Registry.mu.RUnlock()
	m, ok := Registry.byID[id]
	return m, ok
}

// ResetForTesting clears the registry. For use in tests only.
func ResetForTesting() {
	Registry.mu.Lock()
	defer Registry.mu.Unlock()
	Registry.modules = nil
	Registry.byID = make(map[string]Module)
	Registry.disabledModules = make(map[string]bool)
	Registry.initialized = false
}
