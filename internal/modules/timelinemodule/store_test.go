package timelinemodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore("test-session")
	store.SeedDefaultTracks()
	return store
}

func trackByType(t *testing.T, store *Store, trackType TrackType) Track {
	t.Helper()
	for _, track := range store.Tracks() {
		if track.Type == trackType {
			return track
		}
	}
	t.Fatalf("no track of type %s", trackType)
	return Track{}
}

func TestSeedDefaultTracks(t *testing.T) {
	store := newSeededStore(t)

	tracks := store.Tracks()
	require.Len(t, tracks, 4)

	main := trackByType(t, store, TrackTypeVideo)
	assert.True(t, main.IsMain)
	assert.False(t, main.IsLocked)

	for _, trackType := range []TrackType{TrackTypeOverlay, TrackTypeText, TrackTypeAudio} {
		track := trackByType(t, store, trackType)
		assert.False(t, track.IsMain)
		assert.True(t, track.IsVisible)
	}
}

func TestAddItemToLockedTrackRejected(t *testing.T) {
	store := newSeededStore(t)
	overlay := trackByType(t, store, TrackTypeOverlay)

	require.NoError(t, store.UpdateTrack(overlay.ID, TrackUpdate{IsLocked: boolPtr(true)}))

	_, err := store.AddItemToTrack(overlay.ID, Item{
		Type:      ItemTypeImage,
		Name:      "sticker",
		StartTime: 0,
		Duration:  3,
	})
	assert.ErrorIs(t, err, ErrTrackLocked)

	// The lock flag itself stays editable on a locked track.
	require.NoError(t, store.UpdateTrack(overlay.ID, TrackUpdate{IsLocked: boolPtr(false)}))
	_, err = store.AddItemToTrack(overlay.ID, Item{
		Type:      ItemTypeImage,
		Name:      "sticker",
		StartTime: 0,
		Duration:  3,
	})
	assert.NoError(t, err)
}

func TestRemoveItemFromLockedTrackRejected(t *testing.T) {
	store := newSeededStore(t)
	overlay := trackByType(t, store, TrackTypeOverlay)

	itemID, err := store.AddItemToTrack(overlay.ID, Item{
		Type: ItemTypeImage, Name: "s", Duration: 2,
	})
	require.NoError(t, err)

	require.NoError(t, store.UpdateTrack(overlay.ID, TrackUpdate{IsLocked: boolPtr(true)}))
	assert.ErrorIs(t, store.RemoveItemFromTrack(overlay.ID, itemID), ErrTrackLocked)
	assert.ErrorIs(t, store.UpdateItem(overlay.ID, itemID, ItemUpdate{Name: strPtr("renamed")}), ErrTrackLocked)

	// Item survived untouched.
	_, item, found := store.FindItem(itemID)
	require.True(t, found)
	assert.Equal(t, "s", item.Name)
}

func TestAddItemValidation(t *testing.T) {
	store := newSeededStore(t)
	text := trackByType(t, store, TrackTypeText)

	_, err := store.AddItemToTrack(text.ID, Item{Type: ItemTypeText, StartTime: -1, Duration: 2})
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = store.AddItemToTrack(text.ID, Item{Type: ItemTypeText, StartTime: 0, Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidItem)

	_, err = store.AddItemToTrack("missing", Item{Type: ItemTypeText, Duration: 1})
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestMoveItemBetweenTracks(t *testing.T) {
	store := newSeededStore(t)
	overlay := trackByType(t, store, TrackTypeOverlay)
	text := trackByType(t, store, TrackTypeText)

	itemID, err := store.AddItemToTrack(overlay.ID, Item{
		Type: ItemTypeImage, Name: "s", StartTime: 1, Duration: 2,
	})
	require.NoError(t, err)

	require.NoError(t, store.MoveItem(itemID, overlay.ID, text.ID, 4.5))

	track, item, found := store.FindItem(itemID)
	require.True(t, found)
	assert.Equal(t, text.ID, track.ID)
	assert.Equal(t, 4.5, item.StartTime)

	// The item no longer lives on the source track.
	for _, it := range trackByType(t, store, TrackTypeOverlay).Items {
		assert.NotEqual(t, itemID, it.ID)
	}
}

func TestMoveItemUnknownIDReturnsError(t *testing.T) {
	store := newSeededStore(t)
	overlay := trackByType(t, store, TrackTypeOverlay)
	text := trackByType(t, store, TrackTypeText)

	err := store.MoveItem("no-such-item", overlay.ID, text.ID, 0)
	assert.ErrorIs(t, err, ErrItemNotFound)

	err = store.MoveItem("no-such-item", "no-such-track", text.ID, 0)
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestMoveItemToLockedTrackRejected(t *testing.T) {
	store := newSeededStore(t)
	overlay := trackByType(t, store, TrackTypeOverlay)
	text := trackByType(t, store, TrackTypeText)

	itemID, err := store.AddItemToTrack(overlay.ID, Item{Type: ItemTypeImage, Duration: 2})
	require.NoError(t, err)

	require.NoError(t, store.UpdateTrack(text.ID, TrackUpdate{IsLocked: boolPtr(true)}))
	assert.ErrorIs(t, store.MoveItem(itemID, overlay.ID, text.ID, 0), ErrTrackLocked)

	// Item still on its original track.
	track, _, found := store.FindItem(itemID)
	require.True(t, found)
	assert.Equal(t, overlay.ID, track.ID)
}

func TestTracksReturnsDeepCopy(t *testing.T) {
	store := newSeededStore(t)
	overlay := trackByType(t, store, TrackTypeOverlay)

	itemID, err := store.AddItemToTrack(overlay.ID, Item{Type: ItemTypeImage, Name: "orig", Duration: 2})
	require.NoError(t, err)

	snapshot := store.Tracks()
	for i := range snapshot {
		snapshot[i].Name = "mutated"
		for _, item := range snapshot[i].Items {
			item.Name = "mutated"
		}
	}

	_, item, found := store.FindItem(itemID)
	require.True(t, found)
	assert.Equal(t, "orig", item.Name)
	assert.Equal(t, "Overlays", trackByType(t, store, TrackTypeOverlay).Name)
}

func TestEligibleTrackForCreatesLane(t *testing.T) {
	store := newSeededStore(t)
	overlay := trackByType(t, store, TrackTypeOverlay)

	// Existing unlocked overlay lane is reused.
	assert.Equal(t, overlay.ID, store.EligibleTrackFor(TrackTypeOverlay))

	// Lock it and a fresh lane appears.
	require.NoError(t, store.UpdateTrack(overlay.ID, TrackUpdate{IsLocked: boolPtr(true)}))
	newID := store.EligibleTrackFor(TrackTypeOverlay)
	assert.NotEqual(t, overlay.ID, newID)
	require.Len(t, store.Tracks(), 5)
}

func TestSetTrimClampsToDuration(t *testing.T) {
	store := newSeededStore(t)
	store.SetDuration(10)

	store.SetTrim(-1, 15)
	_, _, _, trimStart, trimEnd, _ := store.View()
	assert.Equal(t, 0.0, trimStart)
	assert.Equal(t, 10.0, trimEnd)
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
