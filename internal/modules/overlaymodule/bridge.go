package overlaymodule

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/openreel/openreel/internal/events"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// Origin tags who initiated a timing edit. Propagated writes carry the
// origin of the initiating side, so the receiving store never writes
// back: the bridge is the single writer for cross-store propagation
// and no guard flags or settle timers are needed.
type Origin int

const (
	OriginOverlay Origin = iota
	OriginTimeline
)

// ErrOverlayNotFound is returned when an overlay id is unknown
var ErrOverlayNotFound = fmt.Errorf("overlay not found")

// ReconcileResult summarizes one reconciliation pass
type ReconcileResult struct {
	TimingAligned  int `json:"timingAligned"`
	OrphanOverlays int `json:"orphanOverlays"`
	OrphanItems    int `json:"orphanItems"`
}

// Changed reports whether the pass touched anything
func (r ReconcileResult) Changed() bool {
	return r.TimingAligned+r.OrphanOverlays+r.OrphanItems > 0
}

// Bridge keeps one overlay store and the timeline store consistent.
// The timeline is the source of truth for placement and timing; the
// overlay store owns presentation. Every overlay shares its id with
// its linked timeline item, assigned once at creation.
type Bridge struct {
	sessionID  string
	timeline   *timelinemodule.Store
	store      *Store
	itemType   timelinemodule.ItemType
	trackTypes []timelinemodule.TrackType
}

// NewTextBridge links a text overlay store to the session timeline
func NewTextBridge(sessionID string, timeline *timelinemodule.Store, store *Store) *Bridge {
	return &Bridge{
		sessionID:  sessionID,
		timeline:   timeline,
		store:      store,
		itemType:   timelinemodule.ItemTypeText,
		trackTypes: []timelinemodule.TrackType{timelinemodule.TrackTypeText, timelinemodule.TrackTypeOverlay},
	}
}

// NewStickerBridge links a sticker overlay store to the session timeline
func NewStickerBridge(sessionID string, timeline *timelinemodule.Store, store *Store) *Bridge {
	return &Bridge{
		sessionID:  sessionID,
		timeline:   timeline,
		store:      store,
		itemType:   timelinemodule.ItemTypeImage,
		trackTypes: []timelinemodule.TrackType{timelinemodule.TrackTypeOverlay},
	}
}

// Store exposes the overlay store for purely store-local actions
// (select, rotate, opacity, z-order, visibility, lock, clipboard).
func (b *Bridge) Store() *Store {
	return b.store
}

// AddOverlay creates the overlay and its linked timeline item with a
// single shared id, placed on the first eligible unlocked lane.
func (b *Bridge) AddOverlay(overlay Overlay) (string, error) {
	id := uuid.New().String()
	overlay.ID = id
	if !b.store.Dispatch(Action{Type: ActionAdd, Overlay: &overlay}) {
		return "", fmt.Errorf("overlay store rejected add")
	}

	stored, _ := b.store.Get(id)
	trackID := b.timeline.EligibleTrackFor(b.trackTypes...)
	if _, err := b.timeline.AddItemToTrack(trackID, b.itemFor(stored)); err != nil {
		// Roll the overlay back so the two stores never disagree.
		b.store.Dispatch(Action{Type: ActionRemove, ID: id})
		return "", err
	}

	b.emit(events.EventOverlayAdded, map[string]interface{}{"overlayId": id, "kind": string(b.store.Kind())})
	return id, nil
}

// RemoveOverlay removes the overlay and its linked timeline item
func (b *Bridge) RemoveOverlay(id string) error {
	if !b.store.Dispatch(Action{Type: ActionRemove, ID: id}) {
		return fmt.Errorf("%w: %s", ErrOverlayNotFound, id)
	}
	if track, _, found := b.timeline.FindItem(id); found {
		if err := b.timeline.RemoveItemFromTrack(track.ID, id); err != nil {
			return err
		}
	}
	b.emit(events.EventOverlayRemoved, map[string]interface{}{"overlayId": id})
	return nil
}

// SetTiming applies a timing edit from one side and propagates it to
// the other. A timeline-origin edit means the timeline item already
// holds the new values, so only the overlay store is written; an
// overlay-origin edit writes the overlay store first and then mirrors
// into the timeline. Neither path re-enters the other.
func (b *Bridge) SetTiming(id string, start, duration float64, origin Origin) error {
	timing := NewTiming(start, duration)
	if !b.store.Dispatch(Action{Type: ActionSetTiming, ID: id, Timing: timing}) {
		return fmt.Errorf("%w: %s", ErrOverlayNotFound, id)
	}
	if origin == OriginOverlay {
		if track, _, found := b.timeline.FindItem(id); found {
			err := b.timeline.UpdateItem(track.ID, id, timelinemodule.ItemUpdate{
				StartTime: &timing.StartTime,
				Duration:  &timing.Duration,
			})
			if err != nil {
				return err
			}
		}
	}
	b.emit(events.EventOverlayUpdated, map[string]interface{}{"overlayId": id})
	return nil
}

// UpdateContent applies a presentation update and mirrors the fields
// the timeline item also carries (text, style, url).
func (b *Bridge) UpdateContent(id string, update OverlayUpdate) error {
	if !b.store.Dispatch(Action{Type: ActionUpdate, ID: id, Update: &update}) {
		return fmt.Errorf("%w: %s", ErrOverlayNotFound, id)
	}
	if track, _, found := b.timeline.FindItem(id); found {
		itemUpdate := timelinemodule.ItemUpdate{Text: update.Text, Style: update.Style, URL: update.URL}
		if itemUpdate.Text != nil || itemUpdate.Style != nil || itemUpdate.URL != nil {
			if err := b.timeline.UpdateItem(track.ID, id, itemUpdate); err != nil {
				return err
			}
		}
	}
	b.emit(events.EventOverlayUpdated, map[string]interface{}{"overlayId": id})
	return nil
}

// Duplicate clones an overlay and creates a matching timeline item for
// the clone, both under one new id.
func (b *Bridge) Duplicate(id string) (string, error) {
	newID := uuid.New().String()
	if !b.store.Dispatch(Action{Type: ActionDuplicate, ID: id, NewID: newID}) {
		return "", fmt.Errorf("%w: %s", ErrOverlayNotFound, id)
	}
	return newID, b.linkClone(newID)
}

// Paste clones the clipboard slot into the store and the timeline
func (b *Bridge) Paste() (string, error) {
	newID := uuid.New().String()
	if !b.store.Dispatch(Action{Type: ActionPaste, NewID: newID}) {
		return "", fmt.Errorf("clipboard is empty")
	}
	return newID, b.linkClone(newID)
}

func (b *Bridge) linkClone(id string) error {
	stored, ok := b.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrOverlayNotFound, id)
	}
	trackID := b.timeline.EligibleTrackFor(b.trackTypes...)
	if _, err := b.timeline.AddItemToTrack(trackID, b.itemFor(stored)); err != nil {
		b.store.Dispatch(Action{Type: ActionRemove, ID: id})
		return err
	}
	b.emit(events.EventOverlayAdded, map[string]interface{}{"overlayId": id, "kind": string(b.store.Kind())})
	return nil
}

// Reconcile runs one deterministic pass aligning the two stores:
// overlay timing follows the linked item, overlays whose item vanished
// are removed, and items of this bridge's type whose overlay vanished
// are removed. A second pass right after a converged first pass is a
// no-op, so a single edit settles in at most two passes.
func (b *Bridge) Reconcile() ReconcileResult {
	var result ReconcileResult

	timings := make(map[string]Timing)
	for _, overlay := range b.store.List() {
		_, item, found := b.timeline.FindItem(overlay.ID)
		if !found {
			if b.store.Dispatch(Action{Type: ActionRemove, ID: overlay.ID}) {
				result.OrphanOverlays++
			}
			continue
		}
		want := NewTiming(item.StartTime, item.Duration)
		if overlay.Timing != want {
			timings[overlay.ID] = want
		}
	}
	if len(timings) > 0 {
		if b.store.Dispatch(Action{Type: ActionBulkTiming, Timings: timings}) {
			result.TimingAligned = len(timings)
		}
	}

	// Items of our type with no backing overlay were deleted on the
	// overlay side; mirror the deletion into the timeline.
	for _, track := range b.timeline.Tracks() {
		if track.IsMain {
			continue
		}
		for _, item := range track.Items {
			if item.Type != b.itemType {
				continue
			}
			if _, ok := b.store.Get(item.ID); !ok {
				if err := b.timeline.RemoveItemFromTrack(track.ID, item.ID); err == nil {
					result.OrphanItems++
				}
			}
		}
	}

	if result.Changed() {
		b.emit(events.EventOverlayReconciled, map[string]interface{}{
			"aligned":        result.TimingAligned,
			"orphanOverlays": result.OrphanOverlays,
			"orphanItems":    result.OrphanItems,
		})
	}
	return result
}

// itemFor builds the timeline mirror of an overlay
func (b *Bridge) itemFor(o Overlay) timelinemodule.Item {
	name := o.Text
	if name == "" {
		name = o.StickerID
	}
	if name == "" {
		name = string(o.Kind)
	}
	pos := o.Position
	size := o.Size
	opacity := o.Opacity
	return timelinemodule.Item{
		ID:        o.ID,
		Type:      b.itemType,
		Name:      name,
		StartTime: o.Timing.StartTime,
		Duration:  o.Timing.Duration,
		URL:       o.URL,
		Opacity:   &opacity,
		Position:  &pos,
		Size:      &size,
		Text:      o.Text,
		Style:     o.Style,
	}
}

func (b *Bridge) emit(eventType events.EventType, data map[string]interface{}) {
	if bus := events.GetGlobalEventBus(); bus != nil {
		data["sessionId"] = b.sessionID
		bus.PublishAsync(events.NewEvent(eventType, "overlaymodule", "", data))
	}
}
