package audiomodule

import (
	"context"
	"fmt"
	"os"

	"github.com/dhowden/tag"

	"github.com/openreel/openreel/internal/mediaengine"
)

// ClipInfo is the result of probing an uploaded audio file
type ClipInfo struct {
	Duration float64
	Title    string
	Artist   string
}

// ProbeFile reads the clip duration through ffprobe and, best-effort,
// the embedded title/artist tags. A missing or unreadable tag block is
// not an error; duration is mandatory.
func ProbeFile(ctx context.Context, path string) (ClipInfo, error) {
	engine := mediaengine.Default()
	if engine == nil {
		return ClipInfo{}, fmt.Errorf("media engine not initialized")
	}

	duration, err := engine.ProbePath(ctx, path)
	if err != nil {
		return ClipInfo{}, fmt.Errorf("failed to probe audio duration: %w", err)
	}
	if duration <= 0 {
		return ClipInfo{}, fmt.Errorf("audio file reports no duration")
	}

	info := ClipInfo{Duration: duration}
	if f, err := os.Open(path); err == nil {
		defer f.Close()
		if meta, err := tag.ReadFrom(f); err == nil {
			info.Title = meta.Title()
			info.Artist = meta.Artist()
		}
	}
	return info, nil
}
