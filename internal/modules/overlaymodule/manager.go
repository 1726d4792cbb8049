package overlaymodule

import (
	"fmt"
	"sync"

	"github.com/openreel/openreel/internal/config"
	"github.com/openreel/openreel/internal/geometry"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// SessionOverlays bundles the text and sticker bridges for one session
type SessionOverlays struct {
	Text    *Bridge
	Sticker *Bridge
}

// Reconcile runs both bridges and merges the results
func (s *SessionOverlays) Reconcile() ReconcileResult {
	text := s.Text.Reconcile()
	sticker := s.Sticker.Reconcile()
	return ReconcileResult{
		TimingAligned:  text.TimingAligned + sticker.TimingAligned,
		OrphanOverlays: text.OrphanOverlays + sticker.OrphanOverlays,
		OrphanItems:    text.OrphanItems + sticker.OrphanItems,
	}
}

// Manager creates overlay stores lazily per session, linked to the
// session's timeline store.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*SessionOverlays
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the overlay session manager
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{sessions: make(map[string]*SessionOverlays)}
	})
	return manager
}

// ForSession returns the overlay bridges for a session, creating them
// on first use. Fails when the session has no timeline store.
func (m *Manager) ForSession(sessionID string) (*SessionOverlays, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		return s, nil
	}

	timeline, err := timelinemodule.GetManager().GetStore(sessionID)
	if err != nil {
		return nil, err
	}

	cfg := config.Get()
	frame := geometry.Frame{
		Width:  float64(cfg.Editor.VirtualFrameWidth),
		Height: float64(cfg.Editor.VirtualFrameHeight),
	}

	s := &SessionOverlays{
		Text: NewTextBridge(sessionID, timeline, NewTextStore()),
		Sticker: NewStickerBridge(sessionID, timeline, NewStickerStore(
			frame, cfg.Editor.OverlayMargin, cfg.Editor.MinStickerSize, cfg.Editor.MaxStickerSize)),
	}
	m.sessions[sessionID] = s
	return s, nil
}

// RemoveSession drops the overlay state for a session
func (m *Manager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// BridgeFor resolves one bridge by overlay kind
func (m *Manager) BridgeFor(sessionID string, kind OverlayKind) (*Bridge, error) {
	s, err := m.ForSession(sessionID)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindText:
		return s.Text, nil
	case KindSticker:
		return s.Sticker, nil
	}
	return nil, fmt.Errorf("unknown overlay kind %q", kind)
}

// ResetForTesting clears all session overlay state
func (m *Manager) ResetForTesting() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*SessionOverlays)
}
