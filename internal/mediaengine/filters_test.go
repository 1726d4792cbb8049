package mediaengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAudioMixFilter(t *testing.T) {
	tests := []struct {
		name       string
		opts       AudioMixOptions
		wantFilter string
		wantMap    string
	}{
		{
			name:       "mix at full volume",
			opts:       AudioMixOptions{AudioVolume: 1.0},
			wantFilter: "[1:a]volume=1.00[na];[0:a][na]amix=inputs=2:duration=first:dropout_transition=2[aout]",
			wantMap:    "[aout]",
		},
		{
			name:       "mix with delay",
			opts:       AudioMixOptions{AudioVolume: 0.5, AudioStartTime: 2.5},
			wantFilter: "[1:a]volume=0.50,adelay=2500|2500[na];[0:a][na]amix=inputs=2:duration=first:dropout_transition=2[aout]",
			wantMap:    "[aout]",
		},
		{
			name:       "replace drops original stream",
			opts:       AudioMixOptions{AudioVolume: 0.8, ReplaceOriginalAudio: true},
			wantFilter: "[1:a]volume=0.80[na]",
			wantMap:    "[na]",
		},
		{
			name:       "replace with delay",
			opts:       AudioMixOptions{AudioVolume: 1.0, AudioStartTime: 0.75, ReplaceOriginalAudio: true},
			wantFilter: "[1:a]volume=1.00,adelay=750|750[na]",
			wantMap:    "[na]",
		},
		{
			name:       "volume clamped into range",
			opts:       AudioMixOptions{AudioVolume: 3.0, ReplaceOriginalAudio: true},
			wantFilter: "[1:a]volume=1.00[na]",
			wantMap:    "[na]",
		},
		{
			name:       "negative volume muted",
			opts:       AudioMixOptions{AudioVolume: -1, ReplaceOriginalAudio: true},
			wantFilter: "[1:a]volume=0.00[na]",
			wantMap:    "[na]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, audioMap := BuildAudioMixFilter(tt.opts)
			assert.Equal(t, tt.wantFilter, filter)
			assert.Equal(t, tt.wantMap, audioMap)
		})
	}
}

// amix duration=first makes the first listed input (the video's own
// audio) govern the mix length. Asserting the literal tie-break keeps
// refactors from silently flipping it.
func TestMixDurationFollowsFirstInput(t *testing.T) {
	filter, _ := BuildAudioMixFilter(AudioMixOptions{AudioVolume: 1})
	assert.Contains(t, filter, "duration=first")
	assert.Contains(t, filter, "[0:a][na]amix")
}
