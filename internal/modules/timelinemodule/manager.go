package timelinemodule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openreel/openreel/internal/database"
)

// ErrSessionNotFound is returned for unknown session ids
var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live editing sessions and their timeline stores.
// Each session gets the four default lanes on creation.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Store
	db       *gorm.DB
}

var (
	managerInstance *Manager
	managerOnce     sync.Once
)

// GetManager returns the global session manager
func GetManager() *Manager {
	managerOnce.Do(func() {
		managerInstance = &Manager{
			sessions: make(map[string]*Store),
		}
	})
	return managerInstance
}

// SetDB attaches the persistence handle
func (m *Manager) SetDB(db *gorm.DB) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.db = db
}

// CreateSession starts a new editing session with default tracks and
// returns its id.
func (m *Manager) CreateSession(name, sourcePath string) (string, error) {
	sessionID := uuid.New().String()

	store := NewStore(sessionID)
	store.SeedDefaultTracks()

	m.mu.Lock()
	m.sessions[sessionID] = store
	db := m.db
	m.mu.Unlock()

	if db != nil {
		record := database.EditSession{
			ID:         sessionID,
			Name:       name,
			SourcePath: sourcePath,
		}
		if err := db.Create(&record).Error; err != nil {
			m.mu.Lock()
			delete(m.sessions, sessionID)
			m.mu.Unlock()
			return "", fmt.Errorf("failed to persist session: %w", err)
		}
	}
	return sessionID, nil
}

// GetStore returns the timeline store for a session
func (m *Manager) GetStore(sessionID string) (*Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	store, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return store, nil
}

// RemoveSession drops a session's live state. The persisted record
// stays for history.
func (m *Manager) RemoveSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	delete(m.sessions, sessionID)
	return nil
}

// SessionIDs lists the live sessions
func (m *Manager) SessionIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// SaveSnapshot persists serialized timeline data for a session
func (m *Manager) SaveSnapshot(sessionID string, timelineData []byte, duration float64) error {
	m.mu.RLock()
	db := m.db
	_, live := m.sessions[sessionID]
	m.mu.RUnlock()

	if !live {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if db == nil {
		return nil
	}

	return db.Model(&database.EditSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]interface{}{
			"timeline_data": timelineData,
			"duration":      duration,
		}).Error
}

// ResetForTesting clears live sessions. For use in tests only.
func (m *Manager) ResetForTesting() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Store)
	m.db = nil
}
