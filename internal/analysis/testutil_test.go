package analysis

import (
	"math"

	"github.com/deckmix/deckmix/internal/audio"
)

// makeClickTrack synthesizes a mono analysis-rate waveform with short noise
// bursts on every beat of the given tempo, which gives the onset detector
// clean transients to latch onto.
func makeClickTrack(durationSec float64, bpm float64) *audio.Waveform {
	rate := audio.AnalysisRate
	w := audio.NewWaveform(int(durationSec*float64(rate)), rate, 1)

	beatInterval := 60.0 / bpm
	clickLen := rate / 100 // 10ms bursts
	for t := 0.0; t < durationSec; t += beatInterval {
		start := int(t * float64(rate))
		for i := 0; i < clickLen && start+i < w.Frames(); i++ {
			// Decaying burst at 1 kHz
			phase := 2 * math.Pi * 1000 * float64(i) / float64(rate)
			decay := 1.0 - float64(i)/float64(clickLen)
			w.Samples[start+i] = 0.8 * decay * math.Sin(phase)
		}
	}
	return w
}

// stepRMS builds a synthetic smoothed-RMS curve that jumps from low to high
// at the given instant, the minimal shape that reads as a drop.
func stepRMS(durationSec, stepAtSec, frameRate float64, low, high float64) []float64 {
	n := int(durationSec * frameRate)
	out := make([]float64, n)
	stepFrame := int(stepAtSec * frameRate)
	for i := range out {
		if i < stepFrame {
			out[i] = low
		} else {
			out[i] = high
		}
	}
	return out
}

// beatGrid returns beat instants every interval seconds up to duration.
func beatGrid(durationSec, interval float64) []float64 {
	var beats []float64
	for t := 0.0; t < durationSec; t += interval {
		beats = append(beats, t)
	}
	return beats
}
