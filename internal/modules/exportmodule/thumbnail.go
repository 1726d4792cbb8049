package exportmodule

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/chai2010/webp"

	"github.com/openreel/openreel/internal/mediaengine"
)

// Poster renders the export poster: a frame pulled from the final
// video, re-encoded as webp. Failures here never fail the export; the
// caller attaches the thumbnail only when one comes back.
func Poster(ctx context.Context, engine mediaengine.Engine, video []byte, at float64, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	frame, err := engine.ExtractFrame(ctx, video, at)
	if err != nil {
		return nil, fmt.Errorf("failed to extract poster frame: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode poster frame: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("failed to encode poster: %w", err)
	}
	return buf.Bytes(), nil
}
