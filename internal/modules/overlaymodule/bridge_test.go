package overlaymodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openreel/openreel/internal/geometry"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

func newTestBridge(t *testing.T) (*Bridge, *timelinemodule.Store) {
	t.Helper()
	timeline := timelinemodule.NewStore("bridge-session")
	timeline.SeedDefaultTracks()
	bridge := NewTextBridge("bridge-session", timeline, NewTextStore())
	return bridge, timeline
}

func TestAddOverlayCreatesLinkedItem(t *testing.T) {
	bridge, timeline := newTestBridge(t)

	id, err := bridge.AddOverlay(Overlay{
		Text:     "Hello",
		Position: geometry.Position{X: 50, Y: 50},
		Size:     geometry.Size{Width: 200, Height: 80},
		Timing:   NewTiming(0, 5),
	})
	require.NoError(t, err)

	overlay, ok := bridge.Store().Get(id)
	require.True(t, ok)
	assert.Equal(t, "Hello", overlay.Text)
	assert.True(t, overlay.IsSelected)
	assert.Equal(t, 0.0, overlay.Timing.StartTime)
	assert.Equal(t, 5.0, overlay.Timing.Duration)

	track, item, found := timeline.FindItem(id)
	require.True(t, found)
	assert.Equal(t, timelinemodule.ItemTypeText, item.Type)
	assert.Equal(t, 0.0, item.StartTime)
	assert.Equal(t, 5.0, item.Duration)
	assert.Equal(t, "Hello", item.Text)
	assert.Contains(t, []timelinemodule.TrackType{
		timelinemodule.TrackTypeText, timelinemodule.TrackTypeOverlay,
	}, track.Type)
	assert.False(t, track.IsMain)

	// Fresh session still has exactly the four default tracks.
	assert.Len(t, timeline.Tracks(), 4)
}

func TestTimingPropagationBothDirections(t *testing.T) {
	bridge, timeline := newTestBridge(t)

	id, err := bridge.AddOverlay(Overlay{Text: "sync", Timing: NewTiming(0, 5)})
	require.NoError(t, err)

	// Overlay-origin edit mirrors into the timeline immediately.
	require.NoError(t, bridge.SetTiming(id, 2, 3, OriginOverlay))
	_, item, found := timeline.FindItem(id)
	require.True(t, found)
	assert.Equal(t, 2.0, item.StartTime)
	assert.Equal(t, 3.0, item.Duration)

	// Timeline-origin edit touches only the overlay store; the item
	// already carries the values, so nothing is written back.
	track, _, _ := timeline.FindItem(id)
	start, dur := 4.0, 6.0
	require.NoError(t, timeline.UpdateItem(track.ID, id, timelinemodule.ItemUpdate{
		StartTime: &start, Duration: &dur,
	}))
	require.NoError(t, bridge.SetTiming(id, start, dur, OriginTimeline))

	overlay, _ := bridge.Store().Get(id)
	assert.Equal(t, 4.0, overlay.Timing.StartTime)
	assert.Equal(t, 10.0, overlay.Timing.EndTime)
}

func TestReconcileConvergesWithinTwoPasses(t *testing.T) {
	bridge, timeline := newTestBridge(t)

	id, err := bridge.AddOverlay(Overlay{Text: "drift", Timing: NewTiming(0, 5)})
	require.NoError(t, err)

	// Timeline edited directly, overlay store not yet told.
	track, _, _ := timeline.FindItem(id)
	start, dur := 1.5, 2.5
	require.NoError(t, timeline.UpdateItem(track.ID, id, timelinemodule.ItemUpdate{
		StartTime: &start, Duration: &dur,
	}))

	first := bridge.Reconcile()
	assert.Equal(t, 1, first.TimingAligned)

	overlay, _ := bridge.Store().Get(id)
	assert.Equal(t, 1.5, overlay.Timing.StartTime)
	assert.Equal(t, 4.0, overlay.Timing.EndTime)

	// Converged: the second pass is a no-op.
	second := bridge.Reconcile()
	assert.False(t, second.Changed())
}

func TestReconcileRemovesOrphanedOverlay(t *testing.T) {
	bridge, timeline := newTestBridge(t)

	id, err := bridge.AddOverlay(Overlay{Text: "orphan", Timing: NewTiming(0, 5)})
	require.NoError(t, err)

	// Item deleted straight off the timeline.
	track, _, _ := timeline.FindItem(id)
	require.NoError(t, timeline.RemoveItemFromTrack(track.ID, id))

	result := bridge.Reconcile()
	assert.Equal(t, 1, result.OrphanOverlays)
	_, ok := bridge.Store().Get(id)
	assert.False(t, ok)
}

func TestReconcileRemovesOrphanedItem(t *testing.T) {
	bridge, timeline := newTestBridge(t)

	id, err := bridge.AddOverlay(Overlay{Text: "gone", Timing: NewTiming(0, 5)})
	require.NoError(t, err)

	// Overlay removed store-side without going through the bridge.
	require.True(t, bridge.Store().Dispatch(Action{Type: ActionRemove, ID: id}))

	result := bridge.Reconcile()
	assert.Equal(t, 1, result.OrphanItems)
	_, _, found := timeline.FindItem(id)
	assert.False(t, found)
}

func TestRemoveOverlayRemovesLinkedItem(t *testing.T) {
	bridge, timeline := newTestBridge(t)

	id, err := bridge.AddOverlay(Overlay{Text: "bye", Timing: NewTiming(0, 5)})
	require.NoError(t, err)

	require.NoError(t, bridge.RemoveOverlay(id))
	_, ok := bridge.Store().Get(id)
	assert.False(t, ok)
	_, _, found := timeline.FindItem(id)
	assert.False(t, found)

	assert.ErrorIs(t, bridge.RemoveOverlay(id), ErrOverlayNotFound)
}

func TestDuplicateLinksCloneToTimeline(t *testing.T) {
	bridge, timeline := newTestBridge(t)

	id, err := bridge.AddOverlay(Overlay{Text: "base", Timing: NewTiming(1, 4)})
	require.NoError(t, err)

	cloneID, err := bridge.Duplicate(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, cloneID)

	_, item, found := timeline.FindItem(cloneID)
	require.True(t, found)
	assert.Equal(t, 1.0, item.StartTime)
	assert.Equal(t, 4.0, item.Duration)

	// Both directions already consistent, reconcile finds nothing.
	assert.False(t, bridge.Reconcile().Changed())
}
