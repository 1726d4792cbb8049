// Package geometry computes safe overlay positions and sizes against a
// virtual video frame. The virtual frame is the fixed nominal resolution
// overlay geometry is stored in, decoupled from on-screen display scale;
// the renderer applies displayed/virtual as a scale factor.
//
// All functions are pure. Given identical inputs they return identical
// outputs; the only randomness lives in RandomOffsetPosition, which takes
// an explicit source.
package geometry

import (
	"math/rand"
)

// Position is a point in virtual-frame coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in virtual-frame pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Frame is the virtual video frame geometry operates against
type Frame struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultReferenceFrame is the nominal vertical-video frame sticker
// geometry is stored against.
var DefaultReferenceFrame = Frame{Width: 720, Height: 1280}

const (
	minStickerAxis    = 50.0
	maxStickerWidth   = 320.0
	maxStickerHeight  = 180.0
	frameDivisorLimit = 4.0
)

// ClampPositionToBounds clamps pos so an overlay of the given size stays
// inside the frame with the given margin on every side. When the overlay
// is larger than the frame minus margins, the margin is the floor: the
// result never goes below it.
func ClampPositionToBounds(pos Position, size Size, frame Frame, margin float64) Position {
	maxX := frame.Width - size.Width - margin
	maxY := frame.Height - size.Height - margin

	return Position{
		X: clamp(pos.X, margin, maxX),
		Y: clamp(pos.Y, margin, maxY),
	}
}

// SafeCenterPosition centers the overlay in the frame, then clamps the
// result with the same rule as ClampPositionToBounds.
func SafeCenterPosition(size Size, frame Frame, margin float64) Position {
	center := Position{
		X: (frame.Width - size.Width) / 2,
		Y: (frame.Height - size.Height) / 2,
	}
	return ClampPositionToBounds(center, size, frame, margin)
}

// OptimalStickerSize scales base by the frame/reference ratio so stickers
// stay legible on large frames without dominating small ones. The scaled
// size is floored at 50px per axis, then capped at min(W/4, 320) wide and
// min(H/4, 180) tall.
func OptimalStickerSize(base Size, frame Frame) Size {
	ref := DefaultReferenceFrame
	scale := minFloat(frame.Width/ref.Width, frame.Height/ref.Height)

	w := base.Width * scale
	h := base.Height * scale

	if w < minStickerAxis {
		w = minStickerAxis
	}
	if h < minStickerAxis {
		h = minStickerAxis
	}

	capW := minFloat(frame.Width/frameDivisorLimit, maxStickerWidth)
	capH := minFloat(frame.Height/frameDivisorLimit, maxStickerHeight)
	if w > capW {
		w = capW
	}
	if h > capH {
		h = capH
	}

	return Size{Width: w, Height: h}
}

// RandomOffsetPosition jitters pos by up to maxOffset on each axis and
// clamps the result into the frame. The caller supplies the source so
// placement stays reproducible under test.
func RandomOffsetPosition(rng *rand.Rand, pos Position, size Size, frame Frame, margin, maxOffset float64) Position {
	offset := Position{
		X: pos.X + (rng.Float64()*2-1)*maxOffset,
		Y: pos.Y + (rng.Float64()*2-1)*maxOffset,
	}
	return ClampPositionToBounds(offset, size, frame, margin)
}

// ClampSize bounds both axes of size to [minAxis, maxAxis].
func ClampSize(size Size, minAxis, maxAxis float64) Size {
	return Size{
		Width:  clamp(size.Width, minAxis, maxAxis),
		Height: clamp(size.Height, minAxis, maxAxis),
	}
}

// clamp returns v bounded to [lo, hi]; lo wins when hi < lo.
func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
