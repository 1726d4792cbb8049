package processingmodule

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/openreel/openreel/internal/mediaengine"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// Manager owns one processor per session
type Manager struct {
	mu         sync.Mutex
	logger     hclog.Logger
	processors map[string]*Processor
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the processing session manager
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{
			logger:     hclog.New(&hclog.LoggerOptions{Name: "processing"}),
			processors: make(map[string]*Processor),
		}
	})
	return manager
}

// ForSession returns the pipeline for a session, creating it on first
// use against the shared engine.
func (m *Manager) ForSession(sessionID string) (*Processor, error) {
	if _, err := timelinemodule.GetManager().GetStore(sessionID); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.processors[sessionID]; ok {
		return p, nil
	}
	engine := mediaengine.Default()
	if engine == nil {
		return nil, fmt.Errorf("media engine not initialized")
	}
	p := NewProcessor(sessionID, engine, m.logger.Named("processor"))
	m.processors[sessionID] = p
	return p, nil
}

// RemoveSession tears down a session's pipeline
func (m *Manager) RemoveSession(sessionID string) {
	m.mu.Lock()
	p, ok := m.processors[sessionID]
	delete(m.processors, sessionID)
	m.mu.Unlock()
	if ok {
		p.Cleanup()
	}
}

// ResetForTesting tears down all pipelines
func (m *Manager) ResetForTesting() {
	m.mu.Lock()
	processors := m.processors
	m.processors = make(map[string]*Processor)
	m.mu.Unlock()
	for _, p := range processors {
		p.Cleanup()
	}
}
