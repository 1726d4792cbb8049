package exportmodule

import (
	"encoding/json"
	"path/filepath"

	"github.com/openreel/openreel/internal/geometry"
	"github.com/openreel/openreel/internal/modules/overlaymodule"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// maxTextRunes bounds overlay text after the aggressive stripping pass
const maxTextRunes = 256

// SnapshotItem is the persisted projection of a timeline item.
// Thumbnails are dropped and URLs reduced to their basename on the way
// in; the raw forms are workspace-local and meaningless server-side.
type SnapshotItem struct {
	ID              string                    `json:"id"`
	Type            string                    `json:"type"`
	StartTime       float64                   `json:"startTime"`
	Duration        float64                   `json:"duration"`
	Volume          *float64                  `json:"volume,omitempty"`
	IsMainVideoUnit bool                      `json:"isMainVideoUnit,omitempty"`
	URL             string                    `json:"url,omitempty"`
	Text            string                    `json:"text,omitempty"`
	Style           *timelinemodule.TextStyle `json:"style,omitempty"`
	Position        *geometry.Position        `json:"position,omitempty"`
}

// SnapshotTrack is the persisted projection of a track
type SnapshotTrack struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Volume  *float64       `json:"volume,omitempty"`
	IsMuted bool           `json:"isMuted,omitempty"`
	Items   []SnapshotItem `json:"items"`
}

// SnapshotOverlay is the persisted projection of a text overlay
type SnapshotOverlay struct {
	ID        string                    `json:"id"`
	Text      string                    `json:"text"`
	Timing    overlaymodule.Timing      `json:"timing"`
	Position  *geometry.Position        `json:"position,omitempty"`
	Style     *timelinemodule.TextStyle `json:"style,omitempty"`
	IsVisible bool                      `json:"isVisible"`
}

// Snapshot is the timeline_data payload persisted with an export
type Snapshot struct {
	Duration     float64           `json:"duration"`
	CurrentTime  float64           `json:"currentTime"`
	TrimStart    float64           `json:"trimStart"`
	TrimEnd      float64           `json:"trimEnd"`
	VideoVolume  float64           `json:"videoVolume"`
	Tracks       []SnapshotTrack   `json:"tracks"`
	TextOverlays []SnapshotOverlay `json:"textOverlays"`
}

// BuildSnapshot serializes the session state with the first stripping
// pass already applied: no thumbnails or inline previews, URLs cut to
// their filename.
func BuildSnapshot(timeline *timelinemodule.Store, textOverlays []overlaymodule.Overlay) Snapshot {
	currentTime, duration, _, trimStart, trimEnd, videoVolume := timeline.View()

	snapshot := Snapshot{
		Duration:    duration,
		CurrentTime: currentTime,
		TrimStart:   trimStart,
		TrimEnd:     trimEnd,
		VideoVolume: videoVolume,
	}

	for _, track := range timeline.Tracks() {
		st := SnapshotTrack{
			ID:      track.ID,
			Type:    string(track.Type),
			Volume:  track.Volume,
			IsMuted: track.IsMuted,
			Items:   make([]SnapshotItem, 0, len(track.Items)),
		}
		for _, item := range track.Items {
			st.Items = append(st.Items, SnapshotItem{
				ID:              item.ID,
				Type:            string(item.Type),
				StartTime:       item.StartTime,
				Duration:        item.Duration,
				Volume:          item.Volume,
				IsMainVideoUnit: item.IsMainVideoUnit,
				URL:             baseName(item.URL),
				Text:            item.Text,
				Style:           item.Style,
				Position:        item.Position,
			})
		}
		snapshot.Tracks = append(snapshot.Tracks, st)
	}

	for _, overlay := range textOverlays {
		pos := overlay.Position
		snapshot.TextOverlays = append(snapshot.TextOverlays, SnapshotOverlay{
			ID:        overlay.ID,
			Text:      overlay.Text,
			Timing:    overlay.Timing,
			Position:  &pos,
			Style:     overlay.Style,
			IsVisible: overlay.IsVisible,
		})
	}
	return snapshot
}

// MarshalBounded serializes the snapshot, applying the second, more
// aggressive stripping pass when the payload exceeds maxBytes: style
// and position detail is dropped and overlay text truncated. The
// export proceeds either way; stripped reports whether the second pass
// ran.
func MarshalBounded(snapshot Snapshot, maxBytes int64) (data []byte, stripped bool, err error) {
	data, err = json.Marshal(snapshot)
	if err != nil {
		return nil, false, err
	}
	if maxBytes <= 0 || int64(len(data)) <= maxBytes {
		return data, false, nil
	}

	reduced := snapshot
	reduced.Tracks = make([]SnapshotTrack, len(snapshot.Tracks))
	for i, track := range snapshot.Tracks {
		rt := track
		rt.Items = make([]SnapshotItem, len(track.Items))
		for j, item := range track.Items {
			item.Style = nil
			item.Position = nil
			item.Text = truncateRunes(item.Text, maxTextRunes)
			rt.Items[j] = item
		}
		reduced.Tracks[i] = rt
	}
	reduced.TextOverlays = make([]SnapshotOverlay, len(snapshot.TextOverlays))
	for i, overlay := range snapshot.TextOverlays {
		overlay.Style = nil
		overlay.Position = nil
		overlay.Text = truncateRunes(overlay.Text, maxTextRunes)
		reduced.TextOverlays[i] = overlay
	}

	data, err = json.Marshal(reduced)
	return data, true, err
}

func baseName(url string) string {
	if url == "" {
		return ""
	}
	return filepath.Base(url)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
