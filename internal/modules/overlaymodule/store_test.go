package overlaymodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openreel/openreel/internal/geometry"
)

func newTestStickerStore() *Store {
	return NewStickerStore(geometry.Frame{Width: 720, Height: 1280}, 10, 10, 180)
}

func addOverlay(t *testing.T, store *Store, text string, start, duration float64) string {
	t.Helper()
	ok := store.Dispatch(Action{Type: ActionAdd, Overlay: &Overlay{
		Text:     text,
		Position: geometry.Position{X: 30, Y: 30},
		Size:     geometry.Size{Width: 100, Height: 60},
		Timing:   NewTiming(start, duration),
	}})
	require.True(t, ok)
	selected, ok := store.Selected()
	require.True(t, ok)
	return selected.ID
}

func TestAddSelectsExclusively(t *testing.T) {
	store := NewTextStore()

	first := addOverlay(t, store, "one", 0, 5)
	second := addOverlay(t, store, "two", 1, 3)

	selected, ok := store.Selected()
	require.True(t, ok)
	assert.Equal(t, second, selected.ID)

	firstOverlay, _ := store.Get(first)
	assert.False(t, firstOverlay.IsSelected)

	// Re-selecting the first clears the second.
	require.True(t, store.Dispatch(Action{Type: ActionSelect, ID: first}))
	selected, _ = store.Selected()
	assert.Equal(t, first, selected.ID)
	secondOverlay, _ := store.Get(second)
	assert.False(t, secondOverlay.IsSelected)

	// Selecting an unknown id changes nothing.
	assert.False(t, store.Dispatch(Action{Type: ActionSelect, ID: "missing"}))
	selected, _ = store.Selected()
	assert.Equal(t, first, selected.ID)
}

func TestZOrderMonotonicity(t *testing.T) {
	store := NewTextStore()
	a := addOverlay(t, store, "a", 0, 5)
	b := addOverlay(t, store, "b", 0, 5)

	// Alternating bring-to-front always lands strictly above the other.
	targets := []string{a, b, a, b, a}
	for _, target := range targets {
		require.True(t, store.Dispatch(Action{Type: ActionBringToFront, ID: target}))
		fronted, _ := store.Get(target)
		for _, other := range store.List() {
			if other.ID == target {
				continue
			}
			assert.Greater(t, fronted.ZIndex, other.ZIndex)
		}
	}

	require.True(t, store.Dispatch(Action{Type: ActionSendToBack, ID: a}))
	backed, _ := store.Get(a)
	other, _ := store.Get(b)
	assert.Less(t, backed.ZIndex, other.ZIndex)
}

func TestOpacityDefaultsOpaqueAndAllowsZero(t *testing.T) {
	store := NewTextStore()
	id := addOverlay(t, store, "caption", 0, 5)

	created, _ := store.Get(id)
	assert.Equal(t, 1.0, created.Opacity)

	require.True(t, store.Dispatch(Action{Type: ActionSetOpacity, ID: id, Opacity: 0}))
	transparent, _ := store.Get(id)
	assert.Equal(t, 0.0, transparent.Opacity)

	// Unrelated edits must not re-coerce an explicit zero.
	require.True(t, store.Dispatch(Action{Type: ActionRotate, ID: id, Rotation: 15}))
	after, _ := store.Get(id)
	assert.Equal(t, 0.0, after.Opacity)
}

func TestZOrderStepsFromActualExtremes(t *testing.T) {
	store := NewTextStore()
	addOverlay(t, store, "a", 0, 5)
	addOverlay(t, store, "b", 0, 5)
	c := addOverlay(t, store, "c", 0, 5)

	// Stack sits at {1,2,3}; back means min of the set minus one, not
	// a step below zero.
	require.True(t, store.Dispatch(Action{Type: ActionSendToBack, ID: c}))
	backed, _ := store.Get(c)
	assert.Equal(t, 0, backed.ZIndex)

	require.True(t, store.Dispatch(Action{Type: ActionBringToFront, ID: c}))
	fronted, _ := store.Get(c)
	assert.Equal(t, 3, fronted.ZIndex)
}

func TestDuplicateOffsetsAndStacking(t *testing.T) {
	text := NewTextStore()
	id := addOverlay(t, text, "caption", 2, 4)

	require.True(t, text.Dispatch(Action{Type: ActionDuplicate, ID: id, NewID: "copy-1"}))
	src, _ := text.Get(id)
	clone, ok := text.Get("copy-1")
	require.True(t, ok)
	assert.Equal(t, src.Position.X+20, clone.Position.X)
	assert.Equal(t, src.Position.Y+20, clone.Position.Y)
	assert.Greater(t, clone.ZIndex, src.ZIndex)
	assert.True(t, clone.IsSelected)
	assert.Equal(t, src.Timing, clone.Timing)

	sticker := newTestStickerStore()
	require.True(t, sticker.Dispatch(Action{Type: ActionAdd, Overlay: &Overlay{
		StickerID: "s1",
		Position:  geometry.Position{X: 100, Y: 100},
		Size:      geometry.Size{Width: 120, Height: 120},
		Timing:    NewTiming(0, 3),
	}}))
	stickerID := sticker.List()[0].ID
	require.True(t, sticker.Dispatch(Action{Type: ActionDuplicate, ID: stickerID, NewID: "copy-2"}))
	stickerClone, _ := sticker.Get("copy-2")
	assert.Equal(t, 150.0, stickerClone.Position.X)
	assert.Equal(t, 150.0, stickerClone.Position.Y)
}

func TestDuplicateClampsIntoFrame(t *testing.T) {
	store := newTestStickerStore()
	require.True(t, store.Dispatch(Action{Type: ActionAdd, Overlay: &Overlay{
		StickerID: "edge",
		Position:  geometry.Position{X: 530, Y: 1090},
		Size:      geometry.Size{Width: 180, Height: 180},
		Timing:    NewTiming(0, 3),
	}}))
	id := store.List()[0].ID

	require.True(t, store.Dispatch(Action{Type: ActionDuplicate, ID: id, NewID: "clamped"}))
	clone, _ := store.Get("clamped")
	// 720 - 180 - 10 margin
	assert.Equal(t, 530.0, clone.Position.X)
	assert.Equal(t, 1090.0, clone.Position.Y)
}

func TestStickerSizeClampedAtStore(t *testing.T) {
	store := newTestStickerStore()
	require.True(t, store.Dispatch(Action{Type: ActionAdd, Overlay: &Overlay{
		StickerID: "big",
		Size:      geometry.Size{Width: 500, Height: 4},
		Timing:    NewTiming(0, 3),
	}}))
	o := store.List()[0]
	assert.Equal(t, 180.0, o.Size.Width)
	assert.Equal(t, 10.0, o.Size.Height)

	require.True(t, store.Dispatch(Action{Type: ActionResize, ID: o.ID, Size: geometry.Size{Width: 999, Height: 50}}))
	resized, _ := store.Get(o.ID)
	assert.Equal(t, 180.0, resized.Size.Width)
	assert.Equal(t, 50.0, resized.Size.Height)
}

func TestClipboardSingleSlot(t *testing.T) {
	store := NewTextStore()
	a := addOverlay(t, store, "first", 0, 2)
	b := addOverlay(t, store, "second", 0, 2)

	require.True(t, store.Dispatch(Action{Type: ActionCopy, ID: a}))
	require.True(t, store.Dispatch(Action{Type: ActionCopy, ID: b}))

	clip, ok := store.Clipboard()
	require.True(t, ok)
	assert.Equal(t, "second", clip.Text)

	require.True(t, store.Dispatch(Action{Type: ActionPaste, NewID: "pasted"}))
	pasted, ok := store.Get("pasted")
	require.True(t, ok)
	assert.Equal(t, "second", pasted.Text)
	assert.True(t, pasted.IsSelected)

	require.True(t, store.Dispatch(Action{Type: ActionClearClipboard}))
	_, ok = store.Clipboard()
	assert.False(t, ok)
	assert.False(t, store.Dispatch(Action{Type: ActionPaste, NewID: "nope"}))
}

func TestLockedOverlayRejectsGeometryEdits(t *testing.T) {
	store := NewTextStore()
	id := addOverlay(t, store, "locked", 0, 2)

	require.True(t, store.Dispatch(Action{Type: ActionSetLock, ID: id, Locked: true}))

	assert.False(t, store.Dispatch(Action{Type: ActionMove, ID: id, Position: geometry.Position{X: 50, Y: 50}}))
	assert.False(t, store.Dispatch(Action{Type: ActionResize, ID: id, Size: geometry.Size{Width: 10, Height: 10}}))
	assert.False(t, store.Dispatch(Action{Type: ActionRotate, ID: id, Rotation: 45}))

	// Unlock is always possible.
	require.True(t, store.Dispatch(Action{Type: ActionSetLock, ID: id, Locked: false}))
	assert.True(t, store.Dispatch(Action{Type: ActionRotate, ID: id, Rotation: 45}))
}

func TestBulkTimingNormalizesEndTime(t *testing.T) {
	store := NewTextStore()
	id := addOverlay(t, store, "timed", 0, 2)

	require.True(t, store.Dispatch(Action{Type: ActionBulkTiming, Timings: map[string]Timing{
		id: {StartTime: 3, Duration: 4},
	}}))
	o, _ := store.Get(id)
	assert.Equal(t, 3.0, o.Timing.StartTime)
	assert.Equal(t, 4.0, o.Timing.Duration)
	assert.Equal(t, 7.0, o.Timing.EndTime)

	// Identical timings report no change.
	assert.False(t, store.Dispatch(Action{Type: ActionBulkTiming, Timings: map[string]Timing{
		id: {StartTime: 3, Duration: 4},
	}}))
}
