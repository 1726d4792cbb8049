package timelinemodule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/openreel/openreel/internal/events"
)

// Store errors, matched by callers with errors.Is
var (
	ErrTrackNotFound   = errors.New("track not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrTrackLocked     = errors.New("track is locked")
	ErrInvalidItem     = errors.New("invalid item")
	ErrTrackHasNoItems = errors.New("track has no items")
)

// Store owns one session's canonical multi-track arrangement. All
// operations are synchronous state transitions; there is no I/O here.
type Store struct {
	mu sync.RWMutex

	sessionID string
	tracks    []*Track

	currentTime float64
	duration    float64
	zoom        float64
	trimStart   float64
	trimEnd     float64
	videoVolume float64
}

// NewStore creates an empty timeline store for a session
func NewStore(sessionID string) *Store {
	return &Store{
		sessionID:   sessionID,
		zoom:        1.0,
		videoVolume: 1.0,
	}
}

// SeedDefaultTracks installs the four standard lanes for a fresh session
func (s *Store) SeedDefaultTracks() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tracks) > 0 {
		return
	}
	s.tracks = []*Track{
		{ID: uuid.New().String(), Name: "Main Video", Type: TrackTypeVideo, Height: 64, IsVisible: true, IsMain: true, Color: "#4f46e5"},
		{ID: uuid.New().String(), Name: "Overlays", Type: TrackTypeOverlay, Height: 48, IsVisible: true, Color: "#059669"},
		{ID: uuid.New().String(), Name: "Text", Type: TrackTypeText, Height: 48, IsVisible: true, Color: "#d97706"},
		{ID: uuid.New().String(), Name: "Audio", Type: TrackTypeAudio, Height: 48, IsVisible: true, Color: "#db2777"},
	}
}

// SessionID returns the owning session id
func (s *Store) SessionID() string {
	return s.sessionID
}

// AddTrack appends a track and returns its id
func (s *Store) AddTrack(track Track) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if track.ID == "" {
		track.ID = uuid.New().String()
	}
	if track.Height == 0 {
		track.Height = 48
	}
	track.IsVisible = true
	t := track
	s.tracks = append(s.tracks, &t)

	s.emit(events.EventTimelineTrackAdded, map[string]interface{}{"trackId": t.ID, "type": string(t.Type)})
	return t.ID
}

// RemoveTrack removes a track and all items it owns
func (s *Store) RemoveTrack(trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, track := range s.tracks {
		if track.ID == trackID {
			s.tracks = append(s.tracks[:i], s.tracks[i+1:]...)
			s.emit(events.EventTimelineTrackRemoved, map[string]interface{}{"trackId": trackID})
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
}

// AddItemToTrack places an item on a track and returns the item id.
// A locked track rejects the mutation.
func (s *Store) AddItemToTrack(trackID string, item Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track := s.findTrack(trackID)
	if track == nil {
		return "", fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}
	if track.IsLocked {
		return "", fmt.Errorf("%w: %s", ErrTrackLocked, trackID)
	}
	if item.StartTime < 0 || item.Duration <= 0 {
		return "", fmt.Errorf("%w: startTime=%v duration=%v", ErrInvalidItem, item.StartTime, item.Duration)
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.TrackID = trackID
	it := item
	track.Items = append(track.Items, &it)

	s.emit(events.EventTimelineItemAdded, map[string]interface{}{"trackId": trackID, "itemId": it.ID, "type": string(it.Type)})
	return it.ID, nil
}

// RemoveItemFromTrack removes an item from a track
func (s *Store) RemoveItemFromTrack(trackID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	track := s.findTrack(trackID)
	if track == nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}
	if track.IsLocked {
		return fmt.Errorf("%w: %s", ErrTrackLocked, trackID)
	}

	for i, item := range track.Items {
		if item.ID == itemID {
			track.Items = append(track.Items[:i], track.Items[i+1:]...)
			s.emit(events.EventTimelineItemRemoved, map[string]interface{}{"trackId": trackID, "itemId": itemID})
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}

// UpdateItem applies a partial update to an item
func (s *Store) UpdateItem(trackID, itemID string, update ItemUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	track := s.findTrack(trackID)
	if track == nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}
	if track.IsLocked {
		return fmt.Errorf("%w: %s", ErrTrackLocked, trackID)
	}

	item := findItem(track, itemID)
	if item == nil {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}

	applyItemUpdate(item, update)
	s.emit(events.EventTimelineItemUpdated, map[string]interface{}{"trackId": trackID, "itemId": itemID})
	return nil
}

// UpdateTrack applies a partial update to a track. Lock state itself is
// always updatable so a locked track can be unlocked again.
func (s *Store) UpdateTrack(trackID string, update TrackUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	track := s.findTrack(trackID)
	if track == nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
	}

	if update.Name != nil {
		track.Name = *update.Name
	}
	if update.Height != nil {
		track.Height = *update.Height
	}
	if update.IsVisible != nil {
		track.IsVisible = *update.IsVisible
	}
	if update.IsLocked != nil {
		track.IsLocked = *update.IsLocked
	}
	if update.IsMuted != nil {
		track.IsMuted = *update.IsMuted
	}
	if update.Volume != nil {
		track.Volume = update.Volume
	}
	if update.Color != nil {
		track.Color = *update.Color
	}
	return nil
}

// MoveItem relocates an item between tracks at a new start time. An
// item missing from the source track is a reported error, not a silent
// no-op.
func (s *Store) MoveItem(itemID, fromTrackID, toTrackID string, newStartTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.findTrack(fromTrackID)
	if from == nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, fromTrackID)
	}
	to := s.findTrack(toTrackID)
	if to == nil {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, toTrackID)
	}
	if from.IsLocked || to.IsLocked {
		return ErrTrackLocked
	}
	if newStartTime < 0 {
		newStartTime = 0
	}

	for i, item := range from.Items {
		if item.ID == itemID {
			from.Items = append(from.Items[:i], from.Items[i+1:]...)
			item.TrackID = toTrackID
			item.StartTime = newStartTime
			to.Items = append(to.Items, item)
			s.emit(events.EventTimelineItemMoved, map[string]interface{}{
				"itemId": itemID, "from": fromTrackID, "to": toTrackID, "startTime": newStartTime,
			})
			return nil
		}
	}
	return fmt.Errorf("%w: %s in track %s", ErrItemNotFound, itemID, fromTrackID)
}

// FindItem looks an item up by id across all tracks, returning copies
func (s *Store) FindItem(itemID string) (Track, Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, track := range s.tracks {
		for _, item := range track.Items {
			if item.ID == itemID {
				return *track, *item, true
			}
		}
	}
	return Track{}, Item{}, false
}

// Tracks returns a deep copy of the current track list
func (s *Store) Tracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Track, 0, len(s.tracks))
	for _, track := range s.tracks {
		t := *track
		t.Items = make([]*Item, 0, len(track.Items))
		for _, item := range track.Items {
			it := *item
			t.Items = append(t.Items, &it)
		}
		out = append(out, t)
	}
	return out
}

// EligibleTrackFor returns an unlocked, non-main track matching one of
// the wanted types, creating a new lane when none exists.
func (s *Store) EligibleTrackFor(wanted ...TrackType) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, track := range s.tracks {
		if track.IsLocked || track.IsMain {
			continue
		}
		for _, w := range wanted {
			if track.Type == w {
				return track.ID
			}
		}
	}

	// No eligible lane; create one of the first wanted type
	trackType := TrackTypeOverlay
	if len(wanted) > 0 {
		trackType = wanted[0]
	}
	t := &Track{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("%s %d", trackType, len(s.tracks)+1),
		Type:      trackType,
		Height:    48,
		IsVisible: true,
	}
	s.tracks = append(s.tracks, t)
	s.emit(events.EventTimelineTrackAdded, map[string]interface{}{"trackId": t.ID, "type": string(t.Type)})
	return t.ID
}

// Global playhead and view setters

func (s *Store) SetCurrentTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t < 0 {
		t = 0
	}
	s.currentTime = t
}

func (s *Store) SetDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.duration = d
	if s.trimEnd == 0 || s.trimEnd > d {
		s.trimEnd = d
	}
}

func (s *Store) SetZoom(z float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if z <= 0 {
		z = 1.0
	}
	s.zoom = z
}

func (s *Store) SetTrim(start, end float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start < 0 {
		start = 0
	}
	if end > s.duration && s.duration > 0 {
		end = s.duration
	}
	if end <= start {
		return
	}
	s.trimStart = start
	s.trimEnd = end
}

func (s *Store) SetVideoVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	s.videoVolume = v
}

// View returns the playhead/view state as one consistent read
func (s *Store) View() (currentTime, duration, zoom, trimStart, trimEnd, videoVolume float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTime, s.duration, s.zoom, s.trimStart, s.trimEnd, s.videoVolume
}

// internal helpers, caller holds the lock

func (s *Store) findTrack(trackID string) *Track {
	for _, track := range s.tracks {
		if track.ID == trackID {
			return track
		}
	}
	return nil
}

func findItem(track *Track, itemID string) *Item {
	for _, item := range track.Items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

func applyItemUpdate(item *Item, update ItemUpdate) {
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.StartTime != nil && *update.StartTime >= 0 {
		item.StartTime = *update.StartTime
	}
	if update.Duration != nil && *update.Duration > 0 {
		item.Duration = *update.Duration
	}
	if update.URL != nil {
		item.URL = *update.URL
	}
	if update.Thumbnail != nil {
		item.Thumbnail = *update.Thumbnail
	}
	if update.Volume != nil {
		item.Volume = update.Volume
	}
	if update.Opacity != nil {
		item.Opacity = update.Opacity
	}
	if update.Position != nil {
		item.Position = update.Position
	}
	if update.Size != nil {
		item.Size = update.Size
	}
	if update.Text != nil {
		item.Text = *update.Text
	}
	if update.Style != nil {
		item.Style = update.Style
	}
}

func (s *Store) emit(eventType events.EventType, data map[string]interface{}) {
	data["sessionId"] = s.sessionID
	events.PublishGlobal(events.NewEvent(eventType, "timeline", "", data))
}
