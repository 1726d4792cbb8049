package geometry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPositionToBounds(t *testing.T) {
	frame := Frame{Width: 720, Height: 1280}
	size := Size{Width: 100, Height: 50}

	tests := []struct {
		name   string
		pos    Position
		margin float64
		want   Position
	}{
		{
			name:   "inside bounds unchanged",
			pos:    Position{X: 300, Y: 600},
			margin: 10,
			want:   Position{X: 300, Y: 600},
		},
		{
			name:   "negative clamped to margin",
			pos:    Position{X: -50, Y: -20},
			margin: 10,
			want:   Position{X: 10, Y: 10},
		},
		{
			name:   "overflow clamped to far edge",
			pos:    Position{X: 5000, Y: 5000},
			margin: 10,
			want:   Position{X: 720 - 100 - 10, Y: 1280 - 50 - 10},
		},
		{
			name:   "zero margin allows edges",
			pos:    Position{X: 0, Y: 1230},
			margin: 0,
			want:   Position{X: 0, Y: 1230},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampPositionToBounds(tt.pos, size, frame, tt.margin)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClampPositionOversizedOverlay(t *testing.T) {
	// Overlay wider than the frame: the margin must still be the floor
	frame := Frame{Width: 200, Height: 200}
	size := Size{Width: 500, Height: 500}

	got := ClampPositionToBounds(Position{X: 90, Y: -40}, size, frame, 10)
	assert.Equal(t, Position{X: 10, Y: 10}, got)
}

func TestClampPositionIdempotent(t *testing.T) {
	frame := Frame{Width: 720, Height: 1280}
	margin := 10.0

	positions := []Position{
		{X: -500, Y: 9999},
		{X: 0, Y: 0},
		{X: 360, Y: 640},
		{X: 719, Y: 1279},
	}
	sizes := []Size{
		{Width: 10, Height: 10},
		{Width: 180, Height: 180},
		{Width: 2000, Height: 2000},
	}

	for _, pos := range positions {
		for _, size := range sizes {
			once := ClampPositionToBounds(pos, size, frame, margin)
			twice := ClampPositionToBounds(once, size, frame, margin)
			assert.Equal(t, once, twice, "clamp must be idempotent for pos=%v size=%v", pos, size)
		}
	}
}

func TestSafeCenterPosition(t *testing.T) {
	frame := Frame{Width: 720, Height: 1280}

	got := SafeCenterPosition(Size{Width: 120, Height: 80}, frame, 10)
	assert.Equal(t, Position{X: 300, Y: 600}, got)

	// Oversized overlay centers negative, clamps to margin
	got = SafeCenterPosition(Size{Width: 1000, Height: 2000}, frame, 10)
	assert.Equal(t, Position{X: 10, Y: 10}, got)
}

func TestOptimalStickerSize(t *testing.T) {
	tests := []struct {
		name  string
		base  Size
		frame Frame
		want  Size
	}{
		{
			name:  "reference frame keeps base",
			base:  Size{Width: 120, Height: 120},
			frame: Frame{Width: 720, Height: 1280},
			want:  Size{Width: 120, Height: 120},
		},
		{
			name:  "small frame floors at 50",
			base:  Size{Width: 120, Height: 120},
			frame: Frame{Width: 240, Height: 240},
			// scale = min(240/720, 240/1280) = 0.1875 -> 22.5, floored to 50,
			// then capped by min(240/4, 320)=60 and min(240/4, 180)=60
			want: Size{Width: 50, Height: 50},
		},
		{
			name:  "large frame capped per axis",
			base:  Size{Width: 400, Height: 400},
			frame: Frame{Width: 3840, Height: 2160},
			// scale = min(3840/720, 2160/1280) = 1.6875 -> 675, capped by
			// min(3840/4, 320)=320 and min(2160/4, 180)=180
			want: Size{Width: 320, Height: 180},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OptimalStickerSize(tt.base, tt.frame)
			assert.InDelta(t, tt.want.Width, got.Width, 0.001)
			assert.InDelta(t, tt.want.Height, got.Height, 0.001)
		})
	}
}

func TestOptimalStickerSizeDeterministic(t *testing.T) {
	base := Size{Width: 140, Height: 90}
	frame := Frame{Width: 1920, Height: 1080}

	first := OptimalStickerSize(base, frame)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, OptimalStickerSize(base, frame))
	}
}

func TestRandomOffsetPositionStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	frame := Frame{Width: 720, Height: 1280}
	size := Size{Width: 100, Height: 100}
	margin := 10.0

	for i := 0; i < 200; i++ {
		got := RandomOffsetPosition(rng, Position{X: 5, Y: 1275}, size, frame, margin, 80)
		assert.GreaterOrEqual(t, got.X, margin)
		assert.GreaterOrEqual(t, got.Y, margin)
		assert.LessOrEqual(t, got.X, frame.Width-size.Width-margin)
		assert.LessOrEqual(t, got.Y, frame.Height-size.Height-margin)
	}
}

func TestClampSize(t *testing.T) {
	got := ClampSize(Size{Width: 5, Height: 500}, 10, 180)
	assert.Equal(t, Size{Width: 10, Height: 180}, got)

	got = ClampSize(Size{Width: 64, Height: 64}, 10, 180)
	assert.Equal(t, Size{Width: 64, Height: 64}, got)
}
