package mix

import (
	"math"

	"github.com/deckmix/deckmix/internal/audio"
)

// testRate keeps buffers small and millisecond-to-frame conversion exact.
const testRate = 1000

func noopLogf(string, ...any) {}

func constWaveform(ms int, value float64, rate, channels int) *audio.Waveform {
	w := audio.Silence(ms, rate, channels)
	for i := range w.Samples {
		w.Samples[i] = value
	}
	return w
}

func sineWaveform(ms int, freqHz float64, rate, channels int) *audio.Waveform {
	w := audio.Silence(ms, rate, channels)
	frames := w.Frames()
	for f := 0; f < frames; f++ {
		s := math.Sin(2 * math.Pi * freqHz * float64(f) / float64(rate))
		for c := 0; c < channels; c++ {
			w.Samples[f*channels+c] = s
		}
	}
	return w
}
