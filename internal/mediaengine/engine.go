// Package mediaengine wraps FFmpeg as the destructive media-processing
// engine behind the editing pipeline. The engine works on in-memory
// blobs: each operation stages its input in the work directory, shells
// out to FFmpeg, and reads the result back.
//
// The engine holds a single processing session. Operations are
// serialized by an internal mutex; callers that need try-lock semantics
// (reject instead of queue) use TryAcquire/Release around their call.
package mediaengine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// AudioMixOptions controls AddAudioToVideo
type AudioMixOptions struct {
	// AudioVolume scales the incoming audio stream, 0..1
	AudioVolume float64
	// AudioStartTime delays the incoming audio by this many seconds
	AudioStartTime float64
	// ReplaceOriginalAudio drops the video's own audio instead of mixing
	ReplaceOriginalAudio bool
}

// Engine is the media-processing contract the pipeline depends on
type Engine interface {
	// Initialize verifies the engine binaries are reachable
	Initialize(ctx context.Context) error

	// Probe returns the duration of the media blob in seconds
	Probe(ctx context.Context, blob []byte) (float64, error)

	// Trim re-encodes the blob to the [start, end) window
	Trim(ctx context.Context, blob []byte, start, end float64) ([]byte, error)

	// AddAudioToVideo mixes or replaces the video's audio stream
	AddAudioToVideo(ctx context.Context, video, audio []byte, opts AudioMixOptions) ([]byte, error)

	// Compress re-encodes the blob at the given bitrate and resolution
	Compress(ctx context.Context, blob []byte, bitrate, resolution string) ([]byte, error)

	// ExtractFrame renders the frame at the given offset as PNG bytes
	ExtractFrame(ctx context.Context, blob []byte, at float64) ([]byte, error)

	// WriteFile persists a blob under the engine work directory
	WriteFile(blob []byte, filename string) (string, error)

	// Close releases engine resources
	Close() error
}

// FFmpegEngine implements Engine by shelling out to ffmpeg/ffprobe
type FFmpegEngine struct {
	ffmpegPath  string
	ffprobePath string
	workDir     string
	opTimeout   time.Duration
	resources   *ResourceManager
	logger      hclog.Logger

	mu       sync.Mutex
	busy     bool
	busyLock sync.Mutex
}

// Options configures a new FFmpegEngine
type Options struct {
	FFmpegPath  string
	FFprobePath string
	WorkDir     string
	OpTimeout   time.Duration
	Logger      hclog.Logger
}

// NewFFmpegEngine creates an engine rooted at opts.WorkDir
func NewFFmpegEngine(opts Options) (*FFmpegEngine, error) {
	if opts.FFmpegPath == "" {
		opts.FFmpegPath = "ffmpeg"
	}
	if opts.FFprobePath == "" {
		opts.FFprobePath = "ffprobe"
	}
	if opts.WorkDir == "" {
		opts.WorkDir = filepath.Join(os.TempDir(), "openreel-engine")
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	if err := os.MkdirAll(filepath.Join(opts.WorkDir, "staging"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	return &FFmpegEngine{
		ffmpegPath:  opts.FFmpegPath,
		ffprobePath: opts.FFprobePath,
		workDir:     opts.WorkDir,
		opTimeout:   opts.OpTimeout,
		resources:   NewResourceManager(opts.Logger.Named("resources")),
		logger:      opts.Logger,
	}, nil
}

// Initialize verifies the ffmpeg and ffprobe binaries are reachable
func (e *FFmpegEngine) Initialize(ctx context.Context) error {
	for _, bin := range []string{e.ffmpegPath, e.ffprobePath} {
		cmd := exec.CommandContext(ctx, bin, "-version")
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("media engine binary %q not available: %w", bin, err)
		}
	}
	e.logger.Info("media engine initialized", "work_dir", e.workDir)
	return nil
}

// TryAcquire attempts to claim the engine for an exclusive operation
// sequence. It returns false when another pipeline is mid-operation.
func (e *FFmpegEngine) TryAcquire() bool {
	e.busyLock.Lock()
	defer e.busyLock.Unlock()
	if e.busy {
		return false
	}
	e.busy = true
	return true
}

// Release returns the engine claimed by TryAcquire
func (e *FFmpegEngine) Release() {
	e.busyLock.Lock()
	defer e.busyLock.Unlock()
	e.busy = false
}

// Trim re-encodes the blob to the [start, end) window and returns the
// trimmed bytes. Duration of the result is end-start.
func (e *FFmpegEngine) Trim(ctx context.Context, blob []byte, start, end float64) ([]byte, error) {
	if end <= start {
		return nil, fmt.Errorf("invalid trim window [%v,%v)", start, end)
	}

	return e.run(ctx, blob, "trim", func(input, output string) []string {
		return []string{
			"-y",
			"-i", input,
			"-ss", formatSeconds(start),
			"-to", formatSeconds(end),
			"-c:v", "libx264",
			"-preset", "fast",
			"-c:a", "aac",
			"-threads", e.resources.ThreadCount(),
			"-movflags", "+faststart",
			output,
		}
	})
}

// AddAudioToVideo mixes the audio blob into the video, or replaces the
// video's audio stream when opts.ReplaceOriginalAudio is set. In mix
// mode the output duration follows the video's own audio stream
// (amix duration=first).
func (e *FFmpegEngine) AddAudioToVideo(ctx context.Context, video, audio []byte, opts AudioMixOptions) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	videoPath, err := e.stageBlob(video, "mix-video")
	if err != nil {
		return nil, err
	}
	defer os.Remove(videoPath)

	audioPath, err := e.stageBlob(audio, "mix-audio")
	if err != nil {
		return nil, err
	}
	defer os.Remove(audioPath)

	output := e.tempPath("mix-out")
	defer os.Remove(output)

	filter, audioMap := BuildAudioMixFilter(opts)
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-filter_complex", filter,
		"-map", "0:v:0",
		"-map", audioMap,
		"-c:v", "copy",
		"-c:a", "aac",
		"-threads", e.resources.ThreadCount(),
		output,
	}

	if err := e.exec(opCtx, args); err != nil {
		return nil, fmt.Errorf("audio mix failed: %w", err)
	}
	return os.ReadFile(output)
}

// Compress re-encodes the blob at the target bitrate and resolution
func (e *FFmpegEngine) Compress(ctx context.Context, blob []byte, bitrate, resolution string) ([]byte, error) {
	return e.run(ctx, blob, "compress", func(input, output string) []string {
		args := []string{
			"-y",
			"-i", input,
			"-c:v", "libx264",
			"-b:v", bitrate,
			"-preset", "fast",
			"-c:a", "aac",
			"-b:a", "128k",
			"-threads", e.resources.ThreadCount(),
			"-movflags", "+faststart",
		}
		if resolution != "" {
			args = append(args, "-s", resolution)
		}
		return append(args, output)
	})
}

// ExtractFrame renders the frame at the given offset as PNG bytes
func (e *FFmpegEngine) ExtractFrame(ctx context.Context, blob []byte, at float64) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	input, err := e.stageBlob(blob, "frame-in")
	if err != nil {
		return nil, err
	}
	defer os.Remove(input)

	output := e.tempPath("frame-out", ".png")
	defer os.Remove(output)

	args := []string{
		"-y",
		"-ss", formatSeconds(at),
		"-i", input,
		"-frames:v", "1",
		output,
	}
	if err := e.exec(opCtx, args); err != nil {
		return nil, fmt.Errorf("frame extraction failed: %w", err)
	}
	return os.ReadFile(output)
}

// WriteFile persists a blob under the engine work directory
func (e *FFmpegEngine) WriteFile(blob []byte, filename string) (string, error) {
	path := filepath.Join(e.workDir, filepath.Base(filename))
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return path, nil
}

// Close removes staged temp files
func (e *FFmpegEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	staging := filepath.Join(e.workDir, "staging")
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	return os.MkdirAll(staging, 0o755)
}

// run stages blob, executes the built args against it, and reads the
// output back. Serialized by the engine mutex.
func (e *FFmpegEngine) run(ctx context.Context, blob []byte, op string, build func(input, output string) []string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	opCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
	defer cancel()

	input, err := e.stageBlob(blob, op+"-in")
	if err != nil {
		return nil, err
	}
	defer os.Remove(input)

	output := e.tempPath(op + "-out")
	defer os.Remove(output)

	started := time.Now()
	if err := e.exec(opCtx, build(input, output)); err != nil {
		return nil, fmt.Errorf("%s failed: %w", op, err)
	}
	e.logger.Debug("engine operation complete", "op", op, "elapsed", time.Since(started).String())

	return os.ReadFile(output)
}

func (e *FFmpegEngine) exec(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(string(out), 400))
	}
	return nil
}

func (e *FFmpegEngine) stageBlob(blob []byte, prefix string) (string, error) {
	if len(blob) == 0 {
		return "", fmt.Errorf("empty media blob")
	}
	path := e.tempPath(prefix)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("failed to stage blob: %w", err)
	}
	return path, nil
}

func (e *FFmpegEngine) tempPath(prefix string, ext ...string) string {
	suffix := ".mp4"
	if len(ext) > 0 {
		suffix = ext[0]
	}
	return filepath.Join(e.workDir, "staging", prefix+"-"+uuid.New().String()+suffix)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
