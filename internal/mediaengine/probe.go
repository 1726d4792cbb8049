package mediaengine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Duration   string `json:"duration,omitempty"`
	SampleRate string `json:"sample_rate,omitempty"`
}

type probeResult struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

// Probe returns the duration of the media blob in seconds
func (e *FFmpegEngine) Probe(ctx context.Context, blob []byte) (float64, error) {
	path, err := e.stageBlob(blob, "probe")
	if err != nil {
		return 0, err
	}
	defer os.Remove(path)

	return e.ProbePath(ctx, path)
}

// ProbePath returns the duration of a media file in seconds
func (e *FFmpegEngine) ProbePath(ctx context.Context, path string) (float64, error) {
	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	cmd := exec.CommandContext(opCtx, e.ffprobePath,
		"-v", "error",
		"-show_format",
		"-show_streams",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var result probeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	if result.Format.Duration != "" {
		if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil && d > 0 {
			return d, nil
		}
	}

	// Container did not report a duration; fall back to stream durations
	var longest float64
	for _, stream := range result.Streams {
		if stream.Duration == "" {
			continue
		}
		if d, err := strconv.ParseFloat(stream.Duration, 64); err == nil && d > longest {
			longest = d
		}
	}
	if longest > 0 {
		return longest, nil
	}

	return 0, fmt.Errorf("media reports no duration")
}
