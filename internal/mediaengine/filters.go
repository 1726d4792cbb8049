package mediaengine

import (
	"fmt"
	"math"
	"strings"
)

// BuildAudioMixFilter constructs the filter_complex graph for
// AddAudioToVideo and returns it with the output stream label to map.
//
// The incoming audio is volume-scaled and, when AudioStartTime > 0,
// front-padded with adelay. In replace mode the processed chain becomes
// the sole audio stream. In mix mode it is mixed against the video's own
// audio with amix duration=first: the first input (the video's original
// audio) bounds the mix length. That tie-break mirrors the product's
// established behavior and is load-bearing; see the processing tests.
func BuildAudioMixFilter(opts AudioMixOptions) (filter string, audioMap string) {
	volume := opts.AudioVolume
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	var chain []string
	chain = append(chain, fmt.Sprintf("volume=%.2f", volume))

	if opts.AudioStartTime > 0 {
		delayMs := int(math.Round(opts.AudioStartTime * 1000))
		// adelay wants one value per channel; repeat for stereo
		chain = append(chain, fmt.Sprintf("adelay=%d|%d", delayMs, delayMs))
	}

	processed := fmt.Sprintf("[1:a]%s[na]", strings.Join(chain, ","))

	if opts.ReplaceOriginalAudio {
		return processed, "[na]"
	}

	mix := processed + ";[0:a][na]amix=inputs=2:duration=first:dropout_transition=2[aout]"
	return mix, "[aout]"
}
