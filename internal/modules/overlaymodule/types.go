package overlaymodule

import (
	"github.com/openreel/openreel/internal/geometry"
	"github.com/openreel/openreel/internal/modules/timelinemodule"
)

// OverlayKind distinguishes the two overlay families. Text overlays
// store position as percentages of the video frame; sticker overlays
// store position and size in pixels against the virtual reference frame.
type OverlayKind string

const (
	KindText    OverlayKind = "text"
	KindSticker OverlayKind = "sticker"
)

// Timing is the schedule of an overlay. EndTime is derived and kept
// equal to StartTime+Duration on every write.
type Timing struct {
	StartTime float64 `json:"startTime"`
	Duration  float64 `json:"duration"`
	EndTime   float64 `json:"endTime"`
}

// NewTiming normalizes a start/duration pair into a Timing
func NewTiming(start, duration float64) Timing {
	if start < 0 {
		start = 0
	}
	if duration <= 0 {
		duration = 0.1
	}
	return Timing{StartTime: start, Duration: duration, EndTime: start + duration}
}

// ShadowStyle is an optional drop shadow
type ShadowStyle struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// OutlineStyle is an optional text outline
type OutlineStyle struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// BackgroundStyle is an optional backing plate behind a text overlay
type BackgroundStyle struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Padding float64 `json:"padding"`
	Radius  float64 `json:"radius"`
}

// Overlay is one composited element. The ID is shared with its linked
// timeline item; both records are created with the same id in a single
// operation so there is never a window where the two disagree.
type Overlay struct {
	ID   string      `json:"id"`
	Kind OverlayKind `json:"kind"`

	Text      string `json:"text,omitempty"`
	StickerID string `json:"stickerId,omitempty"`
	URL       string `json:"url,omitempty"`

	Position geometry.Position         `json:"position"`
	Size     geometry.Size             `json:"size"`
	Style    *timelinemodule.TextStyle `json:"style,omitempty"`
	Timing   Timing                    `json:"timing"`

	Animation  string  `json:"animation,omitempty"`
	IsVisible  bool    `json:"isVisible"`
	IsLocked   bool    `json:"isLocked"`
	IsSelected bool    `json:"isSelected"`
	ZIndex     int     `json:"zIndex"`
	Rotation   float64 `json:"rotation"`
	// Opacity 0 on an Add payload means unset and defaults to fully
	// opaque; transparency is applied through setOpacity afterwards.
	Opacity float64 `json:"opacity"`

	Shadow     *ShadowStyle     `json:"shadow,omitempty"`
	Outline    *OutlineStyle    `json:"outline,omitempty"`
	Background *BackgroundStyle `json:"background,omitempty"`
}

// OverlayUpdate is a partial update; nil fields are untouched
type OverlayUpdate struct {
	Text       *string                   `json:"text,omitempty"`
	URL        *string                   `json:"url,omitempty"`
	Style      *timelinemodule.TextStyle `json:"style,omitempty"`
	Animation  *string                   `json:"animation,omitempty"`
	IsVisible  *bool                     `json:"isVisible,omitempty"`
	Shadow     *ShadowStyle              `json:"shadow,omitempty"`
	Outline    *OutlineStyle             `json:"outline,omitempty"`
	Background *BackgroundStyle          `json:"background,omitempty"`
}
