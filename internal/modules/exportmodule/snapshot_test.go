package exportmodule

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openreel/openreel/internal/geometry"
	"github.com/openreel/openreel/internal/modules/overlaymodule"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

func buildTestSnapshot(t *testing.T) Snapshot {
	t.Helper()
	timeline := timelinemodule.NewStore("snap-session")
	timeline.SeedDefaultTracks()
	timeline.SetDuration(30)

	var videoTrack timelinemodule.Track
	for _, track := range timeline.Tracks() {
		if track.IsMain {
			videoTrack = track
		}
	}
	_, err := timeline.AddItemToTrack(videoTrack.ID, timelinemodule.Item{
		Type:            timelinemodule.ItemTypeVideo,
		Name:            "source",
		Duration:        30,
		URL:             "/var/openreel/work/staging/source-abc123.mp4",
		Thumbnail:       "data:image/png;base64,AAAA",
		IsMainVideoUnit: true,
	})
	require.NoError(t, err)

	overlays := []overlaymodule.Overlay{{
		ID:        "ov-1",
		Text:      strings.Repeat("long caption ", 40),
		Timing:    overlaymodule.NewTiming(2, 6),
		Position:  geometry.Position{X: 40, Y: 60},
		Style:     &timelinemodule.TextStyle{FontFamily: "Inter", FontSize: 32},
		IsVisible: true,
	}}
	return BuildSnapshot(timeline, overlays)
}

func TestSnapshotFirstPassStripping(t *testing.T) {
	snapshot := buildTestSnapshot(t)

	assert.Equal(t, 30.0, snapshot.Duration)
	require.Len(t, snapshot.Tracks, 4)

	var item SnapshotItem
	for _, track := range snapshot.Tracks {
		for _, it := range track.Items {
			item = it
		}
	}
	// URL reduced to its basename, thumbnail absent entirely.
	assert.Equal(t, "source-abc123.mp4", item.URL)
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "thumbnail")
	assert.NotContains(t, string(data), "base64")

	require.Len(t, snapshot.TextOverlays, 1)
	assert.Equal(t, 8.0, snapshot.TextOverlays[0].Timing.EndTime)
}

func TestMarshalBoundedSecondPass(t *testing.T) {
	snapshot := buildTestSnapshot(t)

	// Roomy ceiling: payload untouched.
	data, stripped, err := MarshalBounded(snapshot, 1<<20)
	require.NoError(t, err)
	assert.False(t, stripped)
	assert.Contains(t, string(data), "Inter")

	// Tight ceiling: style and position dropped, text truncated, but
	// the export payload still serializes instead of failing.
	data, stripped, err = MarshalBounded(snapshot, 64)
	require.NoError(t, err)
	assert.True(t, stripped)
	assert.NotContains(t, string(data), "Inter")

	var reduced Snapshot
	require.NoError(t, json.Unmarshal(data, &reduced))
	require.Len(t, reduced.TextOverlays, 1)
	assert.Nil(t, reduced.TextOverlays[0].Style)
	assert.Nil(t, reduced.TextOverlays[0].Position)
	assert.LessOrEqual(t, len([]rune(reduced.TextOverlays[0].Text)), 256)

	// The original snapshot is untouched by the reduction.
	assert.NotNil(t, snapshot.TextOverlays[0].Style)
}

func TestMarshalBoundedZeroCeilingDisablesStripping(t *testing.T) {
	snapshot := buildTestSnapshot(t)
	_, stripped, err := MarshalBounded(snapshot, 0)
	require.NoError(t, err)
	assert.False(t, stripped)
}
