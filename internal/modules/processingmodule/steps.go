package processingmodule

import (
	"time"
)

// StepType identifies one destructive transformation
type StepType string

const (
	StepTrim         StepType = "trim"
	StepAddAudio     StepType = "addAudio"
	StepAdjustVolume StepType = "adjustVolume"
	StepReplaceAudio StepType = "replaceAudio"
)

// TrimParams is the window for a trim step
type TrimParams struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// AudioParams configures an addAudio/replaceAudio step. AudioPath
// points at the stored upload; the processor reads it at apply time so
// the step log stays small enough to persist.
type AudioParams struct {
	AudioPath string  `json:"audioPath"`
	Volume    float64 `json:"volume"`
	StartTime float64 `json:"startTime"`
}

// ProcessingStep is one entry in the append-only step log. The log is
// the sole authority for reconstructing prior states: undo replays the
// remaining entries from the original source rather than inverting the
// last one.
type ProcessingStep struct {
	ID        string       `json:"id"`
	Type      StepType     `json:"type"`
	Trim      *TrimParams  `json:"trim,omitempty"`
	Audio     *AudioParams `json:"audio,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// StrippedStep is the upload-safe projection of a step: parameters
// only, no file paths into the local workspace.
type StrippedStep struct {
	ID        string    `json:"id"`
	Type      StepType  `json:"type"`
	Start     float64   `json:"start,omitempty"`
	End       float64   `json:"end,omitempty"`
	Volume    float64   `json:"volume,omitempty"`
	StartTime float64   `json:"startTime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Strip drops the opaque fields from a step for persistence
func (s ProcessingStep) Strip() StrippedStep {
	out := StrippedStep{ID: s.ID, Type: s.Type, Timestamp: s.Timestamp}
	if s.Trim != nil {
		out.Start = s.Trim.Start
		out.End = s.Trim.End
	}
	if s.Audio != nil {
		out.Volume = s.Audio.Volume
		out.StartTime = s.Audio.StartTime
	}
	return out
}
