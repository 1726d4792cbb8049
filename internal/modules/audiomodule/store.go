package audiomodule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/openreel/openreel/internal/events"
)

// minTrimWindow is the smallest playable trim window in seconds
const minTrimWindow = 0.1

var (
	ErrClipNotFound   = errors.New("audio clip not found")
	ErrInvalidTrim    = errors.New("invalid trim window")
	ErrNoPendingEdits = errors.New("no pending preview edits")
)

// AudioClip is one uploaded audio track. Canonical fields change only
// on Save; the preview fields absorb high-frequency drag edits so
// sibling clips never see intermediate states.
type AudioClip struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SourcePath string  `json:"sourcePath"`
	Title      string  `json:"title,omitempty"`
	Artist     string  `json:"artist,omitempty"`
	Duration   float64 `json:"duration"`

	StartTime float64 `json:"startTime"`
	Volume    float64 `json:"volume"`
	TrimStart float64 `json:"trimStart"`
	TrimEnd   float64 `json:"trimEnd"`

	PreviewStartTime  float64 `json:"previewStartTime"`
	PreviewTrimStart  float64 `json:"previewTrimStart"`
	PreviewTrimEnd    float64 `json:"previewTrimEnd"`
	HasPendingChanges bool    `json:"hasPendingChanges"`
}

// PreviewUpdate carries one drag tick; nil fields are untouched
type PreviewUpdate struct {
	StartTime *float64 `json:"startTime,omitempty"`
	TrimStart *float64 `json:"trimStart,omitempty"`
	TrimEnd   *float64 `json:"trimEnd,omitempty"`
}

// Store holds the audio clips of one session. videoDuration bounds
// clip placement and comes from the session timeline.
type Store struct {
	mu            sync.RWMutex
	sessionID     string
	clips         map[string]*AudioClip
	order         []string
	videoDuration float64
	defaultVolume float64

	// activePreview is the single-flight playback token: starting a
	// preview implicitly stops the previous one.
	activePreview string
}

// NewStore creates an empty audio store for a session
func NewStore(sessionID string, defaultVolume float64) *Store {
	if defaultVolume <= 0 || defaultVolume > 1 {
		defaultVolume = 0.5
	}
	return &Store{
		sessionID:     sessionID,
		clips:         make(map[string]*AudioClip),
		defaultVolume: defaultVolume,
	}
}

// SetVideoDuration updates the placement bound
func (s *Store) SetVideoDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.videoDuration = d
}

// Add registers a probed clip. Defaults: placed at 0, trim spanning
// the full clip, volume at the configured default.
func (s *Store) Add(name, sourcePath string, duration float64, title, artist string) (*AudioClip, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("clip duration must be positive, got %v", duration)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clip := &AudioClip{
		ID:         uuid.New().String(),
		Name:       name,
		SourcePath: sourcePath,
		Title:      title,
		Artist:     artist,
		Duration:   duration,
		StartTime:  0,
		Volume:     s.defaultVolume,
		TrimStart:  0,
		TrimEnd:    duration,
	}
	clip.PreviewStartTime = clip.StartTime
	clip.PreviewTrimStart = clip.TrimStart
	clip.PreviewTrimEnd = clip.TrimEnd

	s.clips[clip.ID] = clip
	s.order = append(s.order, clip.ID)

	s.emit(events.EventAudioClipAdded, map[string]interface{}{
		"clipId": clip.ID, "name": name, "duration": duration,
	})
	out := *clip
	return &out, nil
}

// UpdatePreview applies one drag tick to the preview fields only.
// Trim edits keep at least minTrimWindow between the handles; the
// start time is clamped so the trimmed clip stays inside the video.
func (s *Store) UpdatePreview(id string, update PreviewUpdate) (*AudioClip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}

	trimStart := clip.PreviewTrimStart
	trimEnd := clip.PreviewTrimEnd
	if update.TrimStart != nil {
		trimStart = clampFloat(*update.TrimStart, 0, clip.Duration)
	}
	if update.TrimEnd != nil {
		trimEnd = clampFloat(*update.TrimEnd, 0, clip.Duration)
	}
	if trimStart > trimEnd-minTrimWindow {
		// Keep the dragged handle where the user put it and push the
		// window to its minimum instead of rejecting the tick.
		if update.TrimStart != nil && update.TrimEnd == nil {
			trimStart = trimEnd - minTrimWindow
			if trimStart < 0 {
				return nil, fmt.Errorf("%w: window below %.1fs", ErrInvalidTrim, minTrimWindow)
			}
		} else {
			trimEnd = trimStart + minTrimWindow
			if trimEnd > clip.Duration {
				return nil, fmt.Errorf("%w: window below %.1fs", ErrInvalidTrim, minTrimWindow)
			}
		}
	}
	clip.PreviewTrimStart = trimStart
	clip.PreviewTrimEnd = trimEnd

	if update.StartTime != nil {
		clipLen := clip.PreviewTrimEnd - clip.PreviewTrimStart
		maxStart := s.videoDuration - clipLen
		if maxStart < 0 {
			maxStart = 0
		}
		clip.PreviewStartTime = clampFloat(*update.StartTime, 0, maxStart)
	}

	clip.HasPendingChanges = true
	out := *clip
	return &out, nil
}

// Save commits the preview fields into the canonical ones
func (s *Store) Save(id string) (*AudioClip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	if !clip.HasPendingChanges {
		return nil, fmt.Errorf("%w: %s", ErrNoPendingEdits, id)
	}

	clip.StartTime = clip.PreviewStartTime
	clip.TrimStart = clip.PreviewTrimStart
	clip.TrimEnd = clip.PreviewTrimEnd
	clip.HasPendingChanges = false

	s.emit(events.EventAudioClipCommitted, map[string]interface{}{
		"clipId": id, "startTime": clip.StartTime,
		"trimStart": clip.TrimStart, "trimEnd": clip.TrimEnd,
	})
	out := *clip
	return &out, nil
}

// Reset discards pending preview edits, restoring the canonical values
func (s *Store) Reset(id string) (*AudioClip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, ok := s.clips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}

	clip.PreviewStartTime = clip.StartTime
	clip.PreviewTrimStart = clip.TrimStart
	clip.PreviewTrimEnd = clip.TrimEnd
	clip.HasPendingChanges = false

	out := *clip
	return &out, nil
}

// SetVolume updates the canonical volume immediately; volume is not
// part of the drag preview protocol.
func (s *Store) SetVolume(id string, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, ok := s.clips[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	clip.Volume = clampFloat(volume, 0, 1)
	return nil
}

// Remove deletes a clip
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clips[id]; !ok {
		return fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	delete(s.clips, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.activePreview == id {
		s.activePreview = ""
	}

	s.emit(events.EventAudioClipRemoved, map[string]interface{}{"clipId": id})
	return nil
}

// Get returns a copy of one clip
func (s *Store) Get(id string) (AudioClip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if clip, ok := s.clips[id]; ok {
		return *clip, true
	}
	return AudioClip{}, false
}

// List returns the clips in upload order
func (s *Store) List() []AudioClip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AudioClip, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.clips[id])
	}
	return out
}

// StartPreview claims playback for a clip, stopping whichever clip was
// previewing before. Returns the id of the clip that was stopped.
func (s *Store) StartPreview(id string) (stopped string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clips[id]; !ok {
		return "", fmt.Errorf("%w: %s", ErrClipNotFound, id)
	}
	stopped = s.activePreview
	if stopped == id {
		stopped = ""
	}
	s.activePreview = id
	return stopped, nil
}

// StopPreview releases playback if the clip holds it
func (s *Store) StopPreview(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activePreview == id {
		s.activePreview = ""
	}
}

// ActivePreview returns the clip currently claiming playback
func (s *Store) ActivePreview() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activePreview
}

func (s *Store) emit(eventType events.EventType, data map[string]interface{}) {
	data["sessionId"] = s.sessionID
	events.PublishGlobal(events.NewEvent(eventType, "audiomodule", "", data))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
