package audio

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func rampWaveform(frames, rate, channels int) *Waveform {
	w := NewWaveform(frames, rate, channels)
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			w.Samples[f*channels+c] = float64(f) / float64(frames)
		}
	}
	return w
}

func TestWaveformDuration(t *testing.T) {
	tests := []struct {
		name     string
		frames   int
		rate     int
		channels int
		wantSec  float64
		wantMs   int
	}{
		{"one second mono", 22050, 22050, 1, 1.0, 1000},
		{"one second stereo", 44100, 44100, 2, 1.0, 1000},
		{"half second", 11025, 22050, 1, 0.5, 500},
		{"empty", 0, 44100, 2, 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWaveform(tt.frames, tt.rate, tt.channels)
			if got := w.Duration(); !almostEqual(got, tt.wantSec, 1e-9) {
				t.Errorf("Duration() = %v, want %v", got, tt.wantSec)
			}
			if got := w.DurationMs(); got != tt.wantMs {
				t.Errorf("DurationMs() = %v, want %v", got, tt.wantMs)
			}
		})
	}
}

func TestSliceMs(t *testing.T) {
	w := rampWaveform(1000, 1000, 2) // 1s stereo at 1kHz for easy math

	tests := []struct {
		name       string
		start, end int
		wantFrames int
	}{
		{"middle region", 100, 300, 200},
		{"clamped end", 900, 2000, 100},
		{"clamped start", -50, 100, 100},
		{"inverted range", 500, 200, 0},
		{"full range", 0, 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.SliceMs(tt.start, tt.end)
			if got.Frames() != tt.wantFrames {
				t.Errorf("Frames() = %d, want %d", got.Frames(), tt.wantFrames)
			}
			if got.Channels != w.Channels || got.Rate != w.Rate {
				t.Errorf("slice changed format: %d ch %d Hz", got.Channels, got.Rate)
			}
		})
	}

	t.Run("slice is a copy", func(t *testing.T) {
		s := w.SliceMs(0, 100)
		s.Samples[0] = 42
		if w.Samples[0] == 42 {
			t.Error("mutating slice affected source waveform")
		}
	})
}

func TestOverlayMs(t *testing.T) {
	base := NewWaveform(1000, 1000, 1)
	for i := range base.Samples {
		base.Samples[i] = 0.5
	}
	add := NewWaveform(100, 1000, 1)
	for i := range add.Samples {
		add.Samples[i] = 0.25
	}

	out := base.OverlayMs(add, 200)

	if got := out.Samples[100]; !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("sample before overlay = %v, want 0.5", got)
	}
	if got := out.Samples[250]; !almostEqual(got, 0.75, 1e-9) {
		t.Errorf("sample inside overlay = %v, want 0.75", got)
	}
	if got := out.Samples[350]; !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("sample after overlay = %v, want 0.5", got)
	}
	if got := base.Samples[250]; !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("overlay mutated source, sample = %v", got)
	}

	t.Run("overhang dropped", func(t *testing.T) {
		out := base.OverlayMs(add, 950)
		if out.Frames() != base.Frames() {
			t.Errorf("overlay changed length: %d, want %d", out.Frames(), base.Frames())
		}
	})
}

func TestFades(t *testing.T) {
	w := NewWaveform(1000, 1000, 2)
	for i := range w.Samples {
		w.Samples[i] = 1.0
	}

	t.Run("fade in starts silent", func(t *testing.T) {
		out := w.FadeInMs(500)
		if got := out.Samples[0]; got != 0 {
			t.Errorf("first sample = %v, want 0", got)
		}
		if got := out.Samples[999*2]; !almostEqual(got, 1.0, 1e-9) {
			t.Errorf("last sample = %v, want 1.0", got)
		}
		mid := out.Samples[250*2]
		if mid <= 0.4 || mid >= 0.6 {
			t.Errorf("midpoint of fade = %v, want near 0.5", mid)
		}
	})

	t.Run("fade out ends silent", func(t *testing.T) {
		out := w.FadeOutMs(500)
		if got := out.Samples[0]; !almostEqual(got, 1.0, 1e-9) {
			t.Errorf("first sample = %v, want 1.0", got)
		}
		if got := out.Samples[999*2]; !almostEqual(got, 0, 1e-3) {
			t.Errorf("last sample = %v, want ~0", got)
		}
	})

	t.Run("fade longer than buffer", func(t *testing.T) {
		out := w.FadeInMs(5000)
		if out.Frames() != w.Frames() {
			t.Errorf("fade changed length: %d, want %d", out.Frames(), w.Frames())
		}
		if got := out.Samples[0]; got != 0 {
			t.Errorf("first sample = %v, want 0", got)
		}
	})
}

func TestReverse(t *testing.T) {
	w := NewWaveform(4, 1000, 2)
	// Frames: (1,2) (3,4) (5,6) (7,8)
	for i := range w.Samples {
		w.Samples[i] = float64(i + 1)
	}

	out := w.Reverse()

	want := []float64{7, 8, 5, 6, 3, 4, 1, 2}
	for i, v := range want {
		if out.Samples[i] != v {
			t.Fatalf("Samples[%d] = %v, want %v (channels must stay paired)", i, out.Samples[i], v)
		}
	}
}

func TestResampleLinear(t *testing.T) {
	tests := []struct {
		name   string
		frames int
		factor float64
	}{
		{"slow down 1.5x", 1000, 1.5},
		{"speed up", 1000, 0.5},
		{"identity", 1000, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := rampWaveform(tt.frames, 1000, 1)
			out := w.ResampleLinear(tt.factor)
			wantFrames := int(float64(tt.frames) * tt.factor)
			if out.Frames() != wantFrames {
				t.Errorf("Frames() = %d, want %d", out.Frames(), wantFrames)
			}
			// Endpoints are preserved by the interpolation
			if !almostEqual(out.Samples[0], w.Samples[0], 1e-9) {
				t.Errorf("first sample = %v, want %v", out.Samples[0], w.Samples[0])
			}
			last := out.Samples[len(out.Samples)-1]
			wantLast := w.Samples[len(w.Samples)-1]
			if !almostEqual(last, wantLast, 1e-9) {
				t.Errorf("last sample = %v, want %v", last, wantLast)
			}
		})
	}
}

func TestNormalizePeak(t *testing.T) {
	t.Run("scales to target", func(t *testing.T) {
		w := NewWaveform(100, 1000, 1)
		w.Samples[50] = 0.25
		out := w.NormalizePeak(0.9885)
		if got := out.Peak(); !almostEqual(got, 0.9885, 1e-9) {
			t.Errorf("Peak() = %v, want 0.9885", got)
		}
	})

	t.Run("silence unchanged", func(t *testing.T) {
		w := NewWaveform(100, 1000, 1)
		out := w.NormalizePeak(0.9885)
		if got := out.Peak(); got != 0 {
			t.Errorf("Peak() = %v, want 0", got)
		}
	})
}

func TestGainDB(t *testing.T) {
	w := NewWaveform(10, 1000, 1)
	for i := range w.Samples {
		w.Samples[i] = 0.5
	}

	out := w.GainDB(-6)
	// -6 dB is very close to halving
	if got := out.Samples[0]; !almostEqual(got, 0.2506, 1e-3) {
		t.Errorf("sample after -6dB = %v, want ~0.2506", got)
	}
}

func TestMono(t *testing.T) {
	w := NewWaveform(2, 1000, 2)
	w.Samples = []float64{0.2, 0.4, -1.0, 1.0}

	out := w.Mono()
	if out.Channels != 1 {
		t.Fatalf("Channels = %d, want 1", out.Channels)
	}
	if !almostEqual(out.Samples[0], 0.3, 1e-9) {
		t.Errorf("Samples[0] = %v, want 0.3", out.Samples[0])
	}
	if !almostEqual(out.Samples[1], 0.0, 1e-9) {
		t.Errorf("Samples[1] = %v, want 0.0", out.Samples[1])
	}
}

func TestConcat(t *testing.T) {
	a := Silence(100, 1000, 2)
	b := Silence(250, 1000, 2)
	c := Silence(50, 1000, 2)

	out := a.Concat(b, c)
	if got := out.DurationMs(); got != 400 {
		t.Errorf("DurationMs() = %d, want 400", got)
	}
}
