package audiomodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, videoDuration float64) *Store {
	t.Helper()
	store := NewStore("audio-session", 0.5)
	store.SetVideoDuration(videoDuration)
	return store
}

func TestUploadDefaults(t *testing.T) {
	store := newTestStore(t, 60)

	clip, err := store.Add("song.mp3", "/tmp/song.mp3", 12.4, "Song", "Artist")
	require.NoError(t, err)

	assert.Equal(t, 0.0, clip.TrimStart)
	assert.Equal(t, 12.4, clip.TrimEnd)
	assert.Equal(t, 0.5, clip.Volume)
	assert.Equal(t, 0.0, clip.StartTime)
	assert.False(t, clip.HasPendingChanges)

	// Preview mirrors canonical on upload.
	assert.Equal(t, clip.TrimStart, clip.PreviewTrimStart)
	assert.Equal(t, clip.TrimEnd, clip.PreviewTrimEnd)
	assert.Equal(t, clip.StartTime, clip.PreviewStartTime)

	_, err = store.Add("broken.mp3", "/tmp/broken.mp3", 0, "", "")
	assert.Error(t, err)
}

func TestPreviewCommitIsolation(t *testing.T) {
	store := newTestStore(t, 60)
	clip, err := store.Add("song.mp3", "/tmp/song.mp3", 20, "", "")
	require.NoError(t, err)

	// Drag ticks touch only the preview fields.
	updated, err := store.UpdatePreview(clip.ID, PreviewUpdate{
		StartTime: floatPtr(5), TrimStart: floatPtr(2), TrimEnd: floatPtr(18),
	})
	require.NoError(t, err)
	assert.True(t, updated.HasPendingChanges)
	assert.Equal(t, 5.0, updated.PreviewStartTime)
	assert.Equal(t, 2.0, updated.PreviewTrimStart)
	assert.Equal(t, 18.0, updated.PreviewTrimEnd)

	assert.Equal(t, 0.0, updated.StartTime)
	assert.Equal(t, 0.0, updated.TrimStart)
	assert.Equal(t, 20.0, updated.TrimEnd)

	// Save promotes preview into canonical.
	saved, err := store.Save(clip.ID)
	require.NoError(t, err)
	assert.False(t, saved.HasPendingChanges)
	assert.Equal(t, 5.0, saved.StartTime)
	assert.Equal(t, 2.0, saved.TrimStart)
	assert.Equal(t, 18.0, saved.TrimEnd)

	// Saving again with nothing pending is rejected.
	_, err = store.Save(clip.ID)
	assert.ErrorIs(t, err, ErrNoPendingEdits)
}

func TestResetRestoresCanonical(t *testing.T) {
	store := newTestStore(t, 60)
	clip, err := store.Add("song.mp3", "/tmp/song.mp3", 20, "", "")
	require.NoError(t, err)

	_, err = store.UpdatePreview(clip.ID, PreviewUpdate{TrimStart: floatPtr(4), TrimEnd: floatPtr(10)})
	require.NoError(t, err)

	reset, err := store.Reset(clip.ID)
	require.NoError(t, err)
	assert.False(t, reset.HasPendingChanges)
	assert.Equal(t, reset.TrimStart, reset.PreviewTrimStart)
	assert.Equal(t, reset.TrimEnd, reset.PreviewTrimEnd)
	assert.Equal(t, reset.StartTime, reset.PreviewStartTime)
	assert.Equal(t, 0.0, reset.PreviewTrimStart)
	assert.Equal(t, 20.0, reset.PreviewTrimEnd)
}

func TestTrimWindowMinimum(t *testing.T) {
	store := newTestStore(t, 60)
	clip, err := store.Add("song.mp3", "/tmp/song.mp3", 10, "", "")
	require.NoError(t, err)

	// Dragging trimStart past trimEnd collapses to the minimum window.
	updated, err := store.UpdatePreview(clip.ID, PreviewUpdate{TrimStart: floatPtr(9.99)})
	require.NoError(t, err)
	assert.InDelta(t, 9.9, updated.PreviewTrimStart, 1e-9)
	assert.Equal(t, 10.0, updated.PreviewTrimEnd)

	// Same from the other handle.
	_, err = store.Reset(clip.ID)
	require.NoError(t, err)
	updated, err = store.UpdatePreview(clip.ID, PreviewUpdate{TrimEnd: floatPtr(0.0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.PreviewTrimStart)

	// Trim values are clamped to the clip duration.
	updated, err = store.UpdatePreview(clip.ID, PreviewUpdate{TrimStart: floatPtr(-5), TrimEnd: floatPtr(25)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.PreviewTrimStart)
	assert.Equal(t, 10.0, updated.PreviewTrimEnd)
}

func TestStartTimeClampedToVideo(t *testing.T) {
	store := newTestStore(t, 30)
	clip, err := store.Add("song.mp3", "/tmp/song.mp3", 10, "", "")
	require.NoError(t, err)

	// Full 10s clip in a 30s video: start may reach 20.
	updated, err := store.UpdatePreview(clip.ID, PreviewUpdate{StartTime: floatPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, updated.PreviewStartTime)

	updated, err = store.UpdatePreview(clip.ID, PreviewUpdate{StartTime: floatPtr(-3)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, updated.PreviewStartTime)

	// Trimming the clip shorter extends the allowed placement range.
	_, err = store.UpdatePreview(clip.ID, PreviewUpdate{TrimEnd: floatPtr(4)})
	require.NoError(t, err)
	updated, err = store.UpdatePreview(clip.ID, PreviewUpdate{StartTime: floatPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, 26.0, updated.PreviewStartTime)
}

func TestSingleFlightPreviewPlayback(t *testing.T) {
	store := newTestStore(t, 60)
	a, err := store.Add("a.mp3", "/tmp/a.mp3", 5, "", "")
	require.NoError(t, err)
	b, err := store.Add("b.mp3", "/tmp/b.mp3", 5, "", "")
	require.NoError(t, err)

	stopped, err := store.StartPreview(a.ID)
	require.NoError(t, err)
	assert.Empty(t, stopped)
	assert.Equal(t, a.ID, store.ActivePreview())

	// Starting another preview implicitly stops the first.
	stopped, err = store.StartPreview(b.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, stopped)
	assert.Equal(t, b.ID, store.ActivePreview())

	// Stopping a clip that no longer holds the token is a no-op.
	store.StopPreview(a.ID)
	assert.Equal(t, b.ID, store.ActivePreview())

	store.StopPreview(b.ID)
	assert.Empty(t, store.ActivePreview())
}

func TestRemoveClearsPreviewToken(t *testing.T) {
	store := newTestStore(t, 60)
	clip, err := store.Add("a.mp3", "/tmp/a.mp3", 5, "", "")
	require.NoError(t, err)

	_, err = store.StartPreview(clip.ID)
	require.NoError(t, err)
	require.NoError(t, store.Remove(clip.ID))
	assert.Empty(t, store.ActivePreview())

	assert.ErrorIs(t, store.Remove(clip.ID), ErrClipNotFound)
}

func floatPtr(f float64) *float64 { return &f }
