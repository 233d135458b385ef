// Package audio provides waveform buffers and audio file I/O using ffmpeg-go
package audio

import (
	"math"
)

// Render and analysis sample rates used throughout the engine.
// Analysis runs on a mono downsampled copy; rendering on full-rate stereo.
const (
	RenderRate     = 44100
	RenderChannels = 2

	AnalysisRate     = 22050
	AnalysisChannels = 1
)

// Waveform is an owned buffer of decoded audio samples. Samples are
// interleaved float64 in [-1, 1]. A Waveform is never mutated across stage
// boundaries: transforms return a new buffer (copy-on-transform).
type Waveform struct {
	Samples  []float64
	Rate     int
	Channels int
}

// NewWaveform allocates a silent waveform of the given frame count.
func NewWaveform(frames, rate, channels int) *Waveform {
	return &Waveform{
		Samples:  make([]float64, frames*channels),
		Rate:     rate,
		Channels: channels,
	}
}

// Silence returns a silent waveform of the given duration.
func Silence(ms, rate, channels int) *Waveform {
	return NewWaveform(msToFrames(ms, rate), rate, channels)
}

// Frames returns the number of sample frames (samples per channel).
func (w *Waveform) Frames() int {
	if w.Channels == 0 {
		return 0
	}
	return len(w.Samples) / w.Channels
}

// Duration returns the waveform length in seconds.
func (w *Waveform) Duration() float64 {
	if w.Rate == 0 {
		return 0
	}
	return float64(w.Frames()) / float64(w.Rate)
}

// DurationMs returns the waveform length in milliseconds.
func (w *Waveform) DurationMs() int {
	if w.Rate == 0 {
		return 0
	}
	return w.Frames() * 1000 / w.Rate
}

// Clone returns an independent copy of the waveform.
func (w *Waveform) Clone() *Waveform {
	out := &Waveform{
		Samples:  make([]float64, len(w.Samples)),
		Rate:     w.Rate,
		Channels: w.Channels,
	}
	copy(out.Samples, w.Samples)
	return out
}

// SliceMs returns a copy of the region [startMs, endMs). Bounds are clamped
// to the waveform; an inverted range yields an empty buffer.
func (w *Waveform) SliceMs(startMs, endMs int) *Waveform {
	start := msToFrames(startMs, w.Rate)
	end := msToFrames(endMs, w.Rate)
	frames := w.Frames()
	if start < 0 {
		start = 0
	}
	if end > frames {
		end = frames
	}
	if end < start {
		end = start
	}
	out := NewWaveform(end-start, w.Rate, w.Channels)
	copy(out.Samples, w.Samples[start*w.Channels:end*w.Channels])
	return out
}

// HeadMs returns a copy of the first ms milliseconds.
func (w *Waveform) HeadMs(ms int) *Waveform {
	return w.SliceMs(0, ms)
}

// TailMs returns a copy of the last ms milliseconds.
func (w *Waveform) TailMs(ms int) *Waveform {
	return w.SliceMs(w.DurationMs()-ms, w.DurationMs())
}

// Concat returns a new waveform containing w followed by others.
func (w *Waveform) Concat(others ...*Waveform) *Waveform {
	total := len(w.Samples)
	for _, o := range others {
		total += len(o.Samples)
	}
	out := &Waveform{
		Samples:  make([]float64, 0, total),
		Rate:     w.Rate,
		Channels: w.Channels,
	}
	out.Samples = append(out.Samples, w.Samples...)
	for _, o := range others {
		out.Samples = append(out.Samples, o.Samples...)
	}
	return out
}

// OverlayMs returns a copy of w with other summed in starting at atMs.
// The result keeps w's length; overhanging samples of other are dropped.
func (w *Waveform) OverlayMs(other *Waveform, atMs int) *Waveform {
	out := w.Clone()
	offset := msToFrames(atMs, w.Rate) * w.Channels
	for i := 0; i < len(other.Samples); i++ {
		j := offset + i
		if j >= len(out.Samples) {
			break
		}
		out.Samples[j] += other.Samples[i]
	}
	return out
}

// FadeInMs returns a copy with a linear fade-in over the first ms milliseconds.
func (w *Waveform) FadeInMs(ms int) *Waveform {
	out := w.Clone()
	fadeFrames := msToFrames(ms, w.Rate)
	if fadeFrames > out.Frames() {
		fadeFrames = out.Frames()
	}
	for f := 0; f < fadeFrames; f++ {
		g := float64(f) / float64(fadeFrames)
		for c := 0; c < out.Channels; c++ {
			out.Samples[f*out.Channels+c] *= g
		}
	}
	return out
}

// FadeOutMs returns a copy with a linear fade-out over the last ms milliseconds.
func (w *Waveform) FadeOutMs(ms int) *Waveform {
	out := w.Clone()
	frames := out.Frames()
	fadeFrames := msToFrames(ms, w.Rate)
	if fadeFrames > frames {
		fadeFrames = frames
	}
	for f := 0; f < fadeFrames; f++ {
		g := float64(fadeFrames-1-f) / float64(fadeFrames)
		idx := frames - fadeFrames + f
		for c := 0; c < out.Channels; c++ {
			out.Samples[idx*out.Channels+c] *= g
		}
	}
	return out
}

// GainDB returns a copy attenuated (or boosted) by the given decibels.
func (w *Waveform) GainDB(db float64) *Waveform {
	out := w.Clone()
	g := math.Pow(10, db/20.0)
	for i := range out.Samples {
		out.Samples[i] *= g
	}
	return out
}

// Reverse returns a copy with frame order reversed (channels stay paired).
func (w *Waveform) Reverse() *Waveform {
	frames := w.Frames()
	out := NewWaveform(frames, w.Rate, w.Channels)
	for f := 0; f < frames; f++ {
		src := (frames - 1 - f) * w.Channels
		dst := f * w.Channels
		copy(out.Samples[dst:dst+w.Channels], w.Samples[src:src+w.Channels])
	}
	return out
}

// ResampleLinear returns a copy stretched in time by the given factor using
// per-channel linear interpolation. factor > 1 slows the audio down.
func (w *Waveform) ResampleLinear(factor float64) *Waveform {
	frames := w.Frames()
	if frames < 2 || factor <= 0 {
		return w.Clone()
	}
	outFrames := int(float64(frames) * factor)
	out := NewWaveform(outFrames, w.Rate, w.Channels)
	for f := 0; f < outFrames; f++ {
		pos := float64(f) * float64(frames-1) / float64(outFrames-1)
		i := int(pos)
		frac := pos - float64(i)
		next := i + 1
		if next >= frames {
			next = frames - 1
		}
		for c := 0; c < w.Channels; c++ {
			a := w.Samples[i*w.Channels+c]
			b := w.Samples[next*w.Channels+c]
			out.Samples[f*w.Channels+c] = a + (b-a)*frac
		}
	}
	return out
}

// Peak returns the maximum absolute sample value.
func (w *Waveform) Peak() float64 {
	peak := 0.0
	for _, s := range w.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// NormalizePeak returns a copy scaled so its peak hits target (linear, 0-1).
// Silent buffers are returned unchanged.
func (w *Waveform) NormalizePeak(target float64) *Waveform {
	peak := w.Peak()
	if peak < 1e-9 {
		return w.Clone()
	}
	out := w.Clone()
	g := target / peak
	for i := range out.Samples {
		out.Samples[i] *= g
	}
	return out
}

// Mono returns a single-channel view of the waveform, averaging channels.
// A mono input is copied as-is.
func (w *Waveform) Mono() *Waveform {
	if w.Channels == 1 {
		return w.Clone()
	}
	frames := w.Frames()
	out := NewWaveform(frames, w.Rate, 1)
	for f := 0; f < frames; f++ {
		sum := 0.0
		for c := 0; c < w.Channels; c++ {
			sum += w.Samples[f*w.Channels+c]
		}
		out.Samples[f] = sum / float64(w.Channels)
	}
	return out
}

func msToFrames(ms, rate int) int {
	return int(int64(ms) * int64(rate) / 1000)
}
