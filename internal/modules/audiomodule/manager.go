package audiomodule

import (
	"sync"

	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// Manager creates audio stores lazily per session. The store's video
// duration is refreshed from the session timeline on every access so
// placement clamping tracks trim edits.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Store
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the audio session manager
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{sessions: make(map[string]*Store)}
	})
	return manager
}

// ForSession returns the audio store for a session, creating it on
// first use.
func (m *Manager) ForSession(sessionID string) (*Store, error) {
	timeline, err := timelinemodule.GetManager().GetStore(sessionID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	store, ok := m.sessions[sessionID]
	if !ok {
		store = NewStore(sessionID, config.Get().Editor.DefaultAudioVolume)
		m.sessions[sessionID] = store
	}
	m.mu.Unlock()

	_, duration, _, _, _, _ := timeline.View()
	store.SetVideoDuration(duration)
	return store, nil
}

// RemoveSession drops a session's audio state
func (m *Manager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// ResetForTesting clears all session audio state
func (m *Manager) ResetForTesting() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Store)
}
