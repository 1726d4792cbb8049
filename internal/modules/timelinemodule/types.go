package timelinemodule

import (
	"github.com/openreel/openreel/internal/geometry"
)

// ItemType classifies a timeline item
type ItemType string

const (
	ItemTypeVideo  ItemType = "video"
	ItemTypeAudio  ItemType = "audio"
	ItemTypeImage  ItemType = "image"
	ItemTypeText   ItemType = "text"
	ItemTypeEffect ItemType = "effect"
)

// TrackType classifies a track lane
type TrackType string

const (
	TrackTypeVideo   TrackType = "video"
	TrackTypeAudio   TrackType = "audio"
	TrackTypeOverlay TrackType = "overlay"
	TrackTypeText    TrackType = "text"
	TrackTypeEffect  TrackType = "effect"
)

// TextStyle carries font metadata for text items
type TextStyle struct {
	FontFamily    string  `json:"fontFamily,omitempty"`
	FontSize      float64 `json:"fontSize,omitempty"`
	Color         string  `json:"color,omitempty"`
	FontWeight    string  `json:"fontWeight,omitempty"`
	TextAlign     string  `json:"textAlign,omitempty"`
	Decoration    string  `json:"decoration,omitempty"`
	LineHeight    float64 `json:"lineHeight,omitempty"`
	LetterSpacing float64 `json:"letterSpacing,omitempty"`
}

// Item is the canonical, minimal scheduling record for one placed
// element: type, start, duration, track. Overlay stores reference items
// by id; the track owns them.
type Item struct {
	ID        string   `json:"id"`
	Type      ItemType `json:"type"`
	Name      string   `json:"name"`
	StartTime float64  `json:"startTime"`
	Duration  float64  `json:"duration"`
	TrackID   string   `json:"trackId"`

	URL       string `json:"url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`

	Volume  *float64 `json:"volume,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`

	Position *geometry.Position `json:"position,omitempty"`
	Size     *geometry.Size     `json:"size,omitempty"`

	Text  string     `json:"text,omitempty"`
	Style *TextStyle `json:"style,omitempty"`

	// IsMainVideoUnit marks the primary source clip on the main track
	IsMainVideoUnit bool `json:"isMainVideoUnit,omitempty"`
}

// ItemUpdate is a partial update applied to an item; nil fields are
// left untouched.
type ItemUpdate struct {
	Name      *string            `json:"name,omitempty"`
	StartTime *float64           `json:"startTime,omitempty"`
	Duration  *float64           `json:"duration,omitempty"`
	URL       *string            `json:"url,omitempty"`
	Thumbnail *string            `json:"thumbnail,omitempty"`
	Volume    *float64           `json:"volume,omitempty"`
	Opacity   *float64           `json:"opacity,omitempty"`
	Position  *geometry.Position `json:"position,omitempty"`
	Size      *geometry.Size     `json:"size,omitempty"`
	Text      *string            `json:"text,omitempty"`
	Style     *TextStyle         `json:"style,omitempty"`
}

// Track is an ordered lane of items. Insertion order is stacking order
// within the lane; items may overlap in time and overlap resolution is
// the renderer's concern.
type Track struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      TrackType `json:"type"`
	Height    int       `json:"height"`
	IsVisible bool      `json:"isVisible"`
	IsLocked  bool      `json:"isLocked"`
	IsMuted   bool      `json:"isMuted,omitempty"`
	Volume    *float64  `json:"volume,omitempty"`
	Items     []*Item   `json:"items"`
	Color     string    `json:"color,omitempty"`
	IsMain    bool      `json:"isMain,omitempty"`
}

// TrackUpdate is a partial update applied to a track
type TrackUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Height    *int     `json:"height,omitempty"`
	IsVisible *bool    `json:"isVisible,omitempty"`
	IsLocked  *bool    `json:"isLocked,omitempty"`
	IsMuted   *bool    `json:"isMuted,omitempty"`
	Volume    *float64 `json:"volume,omitempty"`
	Color     *string  `json:"color,omitempty"`
}
