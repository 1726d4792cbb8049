package overlaymodule

import (
	"sync"

	"github.com/openreel/openreel/internal/geometry"
)

// Store is one overlay state machine (text or sticker) for a session.
// All mutation goes through Dispatch; queries return copies.
type Store struct {
	mu     sync.RWMutex
	policy policy
	state  overlayState
}

// NewTextStore builds the text overlay store. Text positions are
// percentages of the frame, so dimensions are the percent box [0,100]
// and duplicates shift by +20,+20.
func NewTextStore() *Store {
	return &Store{
		policy: policy{
			kind:            KindText,
			frame:           geometry.Frame{Width: 100, Height: 100},
			margin:          0,
			duplicateOffset: geometry.Position{X: 20, Y: 20},
			percentUnits:    true,
		},
	}
}

// NewStickerStore builds the sticker overlay store against the virtual
// reference frame, with pixel sizes clamped to the sticker bounds and
// duplicates shifted by +50,+50.
func NewStickerStore(frame geometry.Frame, margin, minAxis, maxAxis float64) *Store {
	return &Store{
		policy: policy{
			kind:            KindSticker,
			frame:           frame,
			margin:          margin,
			duplicateOffset: geometry.Position{X: 50, Y: 50},
			minAxis:         minAxis,
			maxAxis:         maxAxis,
		},
	}
}

// Kind returns which overlay family this store holds
func (s *Store) Kind() OverlayKind {
	return s.policy.kind
}

// Dispatch applies one action and reports whether state changed
func (s *Store) Dispatch(action Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return apply(&s.state, s.policy, action)
}

// Get returns a copy of one overlay
func (s *Store) Get(id string) (Overlay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if o := findOverlay(&s.state, id); o != nil {
		return *o, true
	}
	return Overlay{}, false
}

// List returns copies of all overlays in insertion order
func (s *Store) List() []Overlay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Overlay, 0, len(s.state.overlays))
	for _, o := range s.state.overlays {
		out = append(out, *o)
	}
	return out
}

// Selected returns the currently selected overlay, if any
func (s *Store) Selected() (Overlay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.state.overlays {
		if o.IsSelected {
			return *o, true
		}
	}
	return Overlay{}, false
}

// Clipboard returns a copy of the clipboard slot
func (s *Store) Clipboard() (Overlay, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.clipboard == nil {
		return Overlay{}, false
	}
	return *s.state.clipboard, true
}

// Len returns the overlay count
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.overlays)
}
