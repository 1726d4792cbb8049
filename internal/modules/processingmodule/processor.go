package processingmodule

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/openreel/openreel/internal/apperrors"
	"github.com/openreel/openreel/internal/events"
	"github.com/openreel/openreel/internal/mediaengine"
)

var (
	ErrNotInitialized   = errors.New("processor not initialized")
	ErrBusy             = errors.New("another processing operation is in progress")
	ErrStepNotSupported = errors.New("processing step not supported")
	ErrNothingToUndo    = errors.New("step log is empty")
	ErrInvalidTrim      = errors.New("invalid trim window")
)

// Processor maintains the replayable processing pipeline for one
// session: the immutable original source, the current working blob,
// and the append-only step log. Undo replays the log from the original
// because the engine's transforms are lossy and have no inverse.
type Processor struct {
	sessionID string
	engine    mediaengine.Engine
	logger    hclog.Logger

	mu          sync.Mutex
	busy        bool
	initialized bool
	cleaned     bool

	original         []byte
	originalDuration float64
	current          []byte
	duration         float64
	currentPath      string
	steps            []ProcessingStep
}

// NewProcessor builds a pipeline bound to an engine
func NewProcessor(sessionID string, engine mediaengine.Engine, logger hclog.Logger) *Processor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Processor{
		sessionID: sessionID,
		engine:    engine,
		logger:    logger,
	}
}

// Initialize probes the source and pins it as the immutable replay
// origin. The working blob starts as the source itself.
func (p *Processor) Initialize(ctx context.Context, source []byte) error {
	if len(source) == 0 {
		return fmt.Errorf("source blob is empty")
	}

	duration, err := p.engine.Probe(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to probe source: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return fmt.Errorf("processor already initialized")
	}
	p.original = source
	p.originalDuration = duration
	p.current = source
	p.duration = duration
	p.initialized = true
	p.cleaned = false
	return p.publishCurrentLocked()
}

// AddStep applies one destructive transformation, swaps the working
// blob and appends to the log. Overlapping calls are rejected; the
// engine holds a single session and cannot interleave operations.
func (p *Processor) AddStep(ctx context.Context, stepType StepType, trim *TrimParams, audio *AudioParams) (ProcessingStep, error) {
	if err := p.acquire(); err != nil {
		return ProcessingStep{}, err
	}
	defer p.release()

	step := ProcessingStep{
		ID:        uuid.New().String(),
		Type:      stepType,
		Trim:      trim,
		Audio:     audio,
		Timestamp: time.Now(),
	}

	p.emit(events.EventProcessingStepStarted, map[string]interface{}{
		"stepId": step.ID, "type": string(stepType),
	})

	p.mu.Lock()
	input, inputDuration := p.current, p.duration
	p.mu.Unlock()

	out, newDuration, err := p.applyStep(ctx, step, input, inputDuration)
	if err != nil {
		p.emit(events.EventProcessingStepFailed, map[string]interface{}{
			"stepId": step.ID, "type": string(stepType), "error": err.Error(),
		})
		return ProcessingStep{}, err
	}

	p.mu.Lock()
	if p.cleaned {
		// Session torn down while the step ran; discard the result
		// instead of resurrecting state past Cleanup.
		p.mu.Unlock()
		return ProcessingStep{}, ErrNotInitialized
	}
	p.current = out
	p.duration = newDuration
	p.steps = append(p.steps, step)
	err = p.publishCurrentLocked()
	p.mu.Unlock()
	if err != nil {
		p.logger.Warn("failed to publish working file", "error", err)
	}

	p.emit(events.EventProcessingStepApplied, map[string]interface{}{
		"stepId": step.ID, "type": string(stepType), "duration": newDuration, "steps": len(p.Steps()),
	})
	return step, nil
}

// UndoLastStep drops the last log entry and replays every remaining
// step from the original source in order. A failure mid-replay stops
// there: the state and the log keep the successfully replayed prefix
// and the caller gets a partial-replay error naming how far it got.
func (p *Processor) UndoLastStep(ctx context.Context) error {
	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()

	p.mu.Lock()
	if len(p.steps) == 0 {
		p.mu.Unlock()
		return ErrNothingToUndo
	}
	remaining := make([]ProcessingStep, len(p.steps)-1)
	copy(remaining, p.steps[:len(p.steps)-1])
	p.mu.Unlock()

	current := p.original
	duration := p.originalDuration
	applied := 0
	var replayErr error
	for _, step := range remaining {
		out, d, err := p.applyStep(ctx, step, current, duration)
		if err != nil {
			replayErr = err
			break
		}
		current = out
		duration = d
		applied++
	}

	p.mu.Lock()
	if p.cleaned {
		p.mu.Unlock()
		return ErrNotInitialized
	}
	p.current = current
	p.duration = duration
	p.steps = remaining[:applied]
	if err := p.publishCurrentLocked(); err != nil {
		p.logger.Warn("failed to publish working file", "error", err)
	}
	p.mu.Unlock()

	p.emit(events.EventProcessingUndoReplayed, map[string]interface{}{
		"applied": applied, "total": len(remaining),
	})

	if replayErr != nil {
		return &apperrors.PartialReplayError{
			Applied: applied,
			Total:   len(remaining),
			Cause:   replayErr,
		}
	}
	return nil
}

// applyStep runs one step through the engine. adjustVolume is declared
// in the step taxonomy but has no engine implementation; it fails
// loudly instead of passing the blob through with wrong semantics.
func (p *Processor) applyStep(ctx context.Context, step ProcessingStep, input []byte, duration float64) ([]byte, float64, error) {
	switch step.Type {
	case StepTrim:
		if step.Trim == nil {
			return nil, 0, fmt.Errorf("%w: missing window", ErrInvalidTrim)
		}
		start, end := step.Trim.Start, step.Trim.End
		if start < 0 || end <= start || end > duration+0.001 {
			return nil, 0, fmt.Errorf("%w: [%v, %v] against duration %v", ErrInvalidTrim, start, end, duration)
		}
		out, err := p.engine.Trim(ctx, input, start, end)
		if err != nil {
			return nil, 0, err
		}
		return out, end - start, nil

	case StepAddAudio, StepReplaceAudio:
		if step.Audio == nil {
			return nil, 0, fmt.Errorf("audio step missing parameters")
		}
		audioBlob, err := os.ReadFile(step.Audio.AudioPath)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read audio source: %w", err)
		}
		out, err := p.engine.AddAudioToVideo(ctx, input, audioBlob, mediaengine.AudioMixOptions{
			AudioVolume:          step.Audio.Volume,
			AudioStartTime:       step.Audio.StartTime,
			ReplaceOriginalAudio: step.Type == StepReplaceAudio,
		})
		if err != nil {
			return nil, 0, err
		}
		return out, duration, nil

	case StepAdjustVolume:
		return nil, 0, fmt.Errorf("%w: adjustVolume", ErrStepNotSupported)
	}
	return nil, 0, fmt.Errorf("%w: %s", ErrStepNotSupported, step.Type)
}

// publishCurrentLocked writes the working blob to a file for the
// player and removes the previous one. Each published path is released
// exactly once. Caller holds p.mu.
func (p *Processor) publishCurrentLocked() error {
	previous := p.currentPath
	p.currentPath = ""
	if previous != "" {
		os.Remove(previous)
	}

	path, err := p.engine.WriteFile(p.current, fmt.Sprintf("session-%s-%s.mp4", p.sessionID, uuid.New().String()[:8]))
	if err != nil {
		return err
	}
	p.currentPath = path
	return nil
}

// Cleanup tears the pipeline down, releasing the published file. Safe
// to call twice; the second call is a no-op. A step still in flight
// finds cleaned set when it comes back to commit and discards its
// result, so nothing is published after teardown.
func (p *Processor) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cleaned {
		return
	}
	if p.currentPath != "" {
		os.Remove(p.currentPath)
		p.currentPath = ""
	}
	p.original = nil
	p.current = nil
	p.steps = nil
	p.duration = 0
	p.originalDuration = 0
	p.initialized = false
	p.cleaned = true
}

// Steps returns a copy of the step log
func (p *Processor) Steps() []ProcessingStep {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ProcessingStep, len(p.steps))
	copy(out, p.steps)
	return out
}

// StrippedSteps returns the upload-safe projection of the log
func (p *Processor) StrippedSteps() []StrippedStep {
	steps := p.Steps()
	out := make([]StrippedStep, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Strip())
	}
	return out
}

// Current returns the working blob and its duration
func (p *Processor) Current() ([]byte, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.duration
}

// CurrentPath returns the published working file path
func (p *Processor) CurrentPath() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPath
}

// Initialized reports whether Initialize has run
func (p *Processor) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

// acquire claims the pipeline for one operation
func (p *Processor) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return ErrNotInitialized
	}
	if p.busy {
		return ErrBusy
	}
	p.busy = true
	return nil
}

func (p *Processor) release() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}

func (p *Processor) emit(eventType events.EventType, data map[string]interface{}) {
	data["sessionId"] = p.sessionID
	events.PublishGlobal(events.NewEvent(eventType, "processingmodule", "", data))
}
