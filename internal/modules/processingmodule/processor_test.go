package processingmodule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/mediaengine"
)

// fakeEngine applies transforms by appending markers to the blob so
// tests can assert on the exact operation sequence a blob went
// through.
type fakeEngine struct {
	mu           sync.Mutex
	dir          string
	duration     float64
	failMix      bool
	failCompress bool
	writes       int

	// onTrim runs inside Trim, before it returns
	onTrim func()
}

func newFakeEngine(t *testing.T, duration float64) *fakeEngine {
	t.Helper()
	return &fakeEngine{dir: t.TempDir(), duration: duration}
}

func (f *fakeEngine) Initialize(ctx context.Context) error { return nil }

func (f *fakeEngine) Probe(ctx context.Context, blob []byte) (float64, error) {
	return f.duration, nil
}

func (f *fakeEngine) Trim(ctx context.Context, blob []byte, start, end float64) ([]byte, error) {
	if f.onTrim != nil {
		f.onTrim()
	}
	return []byte(fmt.Sprintf("%s|trim(%g,%g)", blob, start, end)), nil
}

func (f *fakeEngine) AddAudioToVideo(ctx context.Context, video, audio []byte, opts mediaengine.AudioMixOptions) ([]byte, error) {
	f.mu.Lock()
	fail := f.failMix
	f.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("mix failed")
	}
	op := "mix"
	if opts.ReplaceOriginalAudio {
		op = "replace"
	}
	return []byte(fmt.Sprintf("%s|%s(%g,%g)", video, op, opts.AudioVolume, opts.AudioStartTime)), nil
}

func (f *fakeEngine) Compress(ctx context.Context, blob []byte, bitrate, resolution string) ([]byte, error) {
	if f.failCompress {
		return nil, fmt.Errorf("compress failed")
	}
	return []byte(fmt.Sprintf("%s|compress(%s,%s)", blob, bitrate, resolution)), nil
}

func (f *fakeEngine) ExtractFrame(ctx context.Context, blob []byte, at float64) ([]byte, error) {
	return []byte("frame"), nil
}

func (f *fakeEngine) WriteFile(blob []byte, filename string) (string, error) {
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	path := filepath.Join(f.dir, filename)
	return path, os.WriteFile(path, blob, 0o644)
}

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) setFailMix(fail bool) {
	f.mu.Lock()
	f.failMix = fail
	f.mu.Unlock()
}

func newTestProcessor(t *testing.T, duration float64) (*Processor, *fakeEngine) {
	t.Helper()
	engine := newFakeEngine(t, duration)
	p := NewProcessor("test-session", engine, nil)
	require.NoError(t, p.Initialize(context.Background(), []byte("src")))
	return p, engine
}

func writeAudioFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), uuid.New().String()+".mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))
	return path
}

func TestTrimUpdatesDuration(t *testing.T) {
	p, _ := newTestProcessor(t, 10)

	step, err := p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 1, End: 8}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, step.ID)

	blob, duration := p.Current()
	assert.Equal(t, "src|trim(1,8)", string(blob))
	assert.Equal(t, 7.0, duration)
	assert.Len(t, p.Steps(), 1)
}

func TestTrimValidatesWindow(t *testing.T) {
	p, _ := newTestProcessor(t, 10)

	_, err := p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 5, End: 3}, nil)
	assert.ErrorIs(t, err, ErrInvalidTrim)
	_, err = p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 12}, nil)
	assert.ErrorIs(t, err, ErrInvalidTrim)
	assert.Empty(t, p.Steps())
}

func TestReplaceAudioForcesReplaceFlag(t *testing.T) {
	p, _ := newTestProcessor(t, 10)
	audio := writeAudioFixture(t)

	_, err := p.AddStep(context.Background(), StepReplaceAudio, nil, &AudioParams{
		AudioPath: audio, Volume: 0.8, StartTime: 2,
	})
	require.NoError(t, err)

	blob, _ := p.Current()
	assert.Equal(t, "src|replace(0.8,2)", string(blob))
}

func TestAdjustVolumeIsNotSupported(t *testing.T) {
	p, _ := newTestProcessor(t, 10)

	_, err := p.AddStep(context.Background(), StepAdjustVolume, nil, nil)
	assert.ErrorIs(t, err, ErrStepNotSupported)
	assert.Empty(t, p.Steps())
}

func TestUndoReplaysFromOriginal(t *testing.T) {
	p, _ := newTestProcessor(t, 10)
	audio := writeAudioFixture(t)

	_, err := p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 8}, nil)
	require.NoError(t, err)
	_, err = p.AddStep(context.Background(), StepAddAudio, nil, &AudioParams{AudioPath: audio, Volume: 0.5})
	require.NoError(t, err)

	require.NoError(t, p.UndoLastStep(context.Background()))

	// The result equals replaying only the trim from the original.
	blob, duration := p.Current()
	assert.Equal(t, "src|trim(0,8)", string(blob))
	assert.Equal(t, 8.0, duration)
	assert.Len(t, p.Steps(), 1)

	// Undoing the last remaining step restores the original.
	require.NoError(t, p.UndoLastStep(context.Background()))
	blob, duration = p.Current()
	assert.Equal(t, "src", string(blob))
	assert.Equal(t, 10.0, duration)
	assert.Empty(t, p.Steps())

	assert.ErrorIs(t, p.UndoLastStep(context.Background()), ErrNothingToUndo)
}

func TestUndoPartialReplayKeepsPrefix(t *testing.T) {
	p, engine := newTestProcessor(t, 10)
	audio := writeAudioFixture(t)

	_, err := p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 8}, nil)
	require.NoError(t, err)
	_, err = p.AddStep(context.Background(), StepAddAudio, nil, &AudioParams{AudioPath: audio, Volume: 0.5})
	require.NoError(t, err)
	_, err = p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 4}, nil)
	require.NoError(t, err)

	// The mix fails during replay, so undo stops after the trim.
	engine.setFailMix(true)
	err = p.UndoLastStep(context.Background())
	require.Error(t, err)

	var partial *apperrors.PartialReplayError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, partial.Applied)
	assert.Equal(t, 2, partial.Total)

	// State and log reflect exactly the replayed prefix.
	blob, duration := p.Current()
	assert.Equal(t, "src|trim(0,8)", string(blob))
	assert.Equal(t, 8.0, duration)
	assert.Len(t, p.Steps(), 1)
}

func TestOverlappingStepsRejected(t *testing.T) {
	p, _ := newTestProcessor(t, 10)

	// Claim the pipeline the way a running operation would.
	require.NoError(t, p.acquire())
	_, err := p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 5}, nil)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, p.UndoLastStep(context.Background()), ErrBusy)

	p.release()
	_, err = p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 5}, nil)
	assert.NoError(t, err)
}

func TestPublishedFileReleasedExactlyOnceOnSwap(t *testing.T) {
	p, _ := newTestProcessor(t, 10)

	first := p.CurrentPath()
	require.NotEmpty(t, first)
	_, err := os.Stat(first)
	require.NoError(t, err)

	_, err = p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 5}, nil)
	require.NoError(t, err)

	second := p.CurrentPath()
	assert.NotEqual(t, first, second)
	_, err = os.Stat(first)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(second)
	assert.NoError(t, err)
}

func TestCleanupIsIdempotent(t *testing.T) {
	p, _ := newTestProcessor(t, 10)
	path := p.CurrentPath()

	p.Cleanup()
	assert.False(t, p.Initialized())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Second call must not panic or double-release.
	p.Cleanup()

	_, err = p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 5}, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestCleanupDuringStepDiscardsResult(t *testing.T) {
	p, engine := newTestProcessor(t, 10)
	initialPath := p.CurrentPath()

	// Teardown lands while the engine is applying the step; the step
	// must commit nothing afterwards.
	engine.onTrim = func() { p.Cleanup() }

	_, err := p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 5}, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.False(t, p.Initialized())
	assert.Empty(t, p.CurrentPath())
	assert.Empty(t, p.Steps())
	blob, _ := p.Current()
	assert.Nil(t, blob)

	_, statErr := os.Stat(initialPath)
	assert.True(t, os.IsNotExist(statErr))

	// No file survives under the work dir after teardown.
	entries, err := os.ReadDir(engine.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanupDuringUndoDiscardsResult(t *testing.T) {
	p, engine := newTestProcessor(t, 10)
	_, err := p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 1, End: 8}, nil)
	require.NoError(t, err)
	_, err = p.AddStep(context.Background(), StepTrim, &TrimParams{Start: 0, End: 5}, nil)
	require.NoError(t, err)

	engine.onTrim = func() { p.Cleanup() }

	err = p.UndoLastStep(context.Background())
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Empty(t, p.CurrentPath())

	entries, err := os.ReadDir(engine.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
