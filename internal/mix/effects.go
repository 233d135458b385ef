package mix

import (
	"math"

	"github.com/deckmix/deckmix/internal/audio"
)

// Per-effect tuning constants.
const (
	// crossfade degrades to plain concatenation below this overlap
	CrossfadeFloorMs = 100

	// echo_out and filter_sweep fall back to crossfade below this
	EffectFloorMs = 500

	EchoCount   = 4
	EchoDelayMs = 150
	EchoStepDB  = 6.0

	SweepChunks      = 8
	SweepLowStartHz  = 8000.0
	SweepLowSpanHz   = 7500.0 // sweeps down to 500 Hz
	SweepHighStartHz = 100.0
	SweepHighSpanHz  = 7900.0 // sweeps up to 8000 Hz
	SweepGainDB      = 12.0

	BackspinOutgoingFloorMs = 2000
	BackspinIncomingFloorMs = 1000
	BackspinMaxSpinMs       = 1500
	BackspinMinSpinMs       = 200
	BackspinMarginMs        = 500
	BackspinSlowFactor      = 1.5
	BackspinGapMs           = 50
)

// applyCrossfade joins two buffers with an equal-power overlap. When either
// side is too short for a meaningful blend the buffers are concatenated.
func applyCrossfade(outgoing, incoming *audio.Waveform, durationMs int) *audio.Waveform {
	maxOverlap := min(outgoing.DurationMs(), incoming.DurationMs()) - CrossfadeFloorMs
	if maxOverlap < CrossfadeFloorMs {
		return outgoing.Concat(incoming)
	}

	durationMs = min(durationMs, maxOverlap)
	durationMs = max(durationMs, CrossfadeFloorMs)

	head := outgoing.SliceMs(0, outgoing.DurationMs()-durationMs)
	tail := outgoing.TailMs(durationMs)
	lead := incoming.HeadMs(durationMs)
	rest := incoming.SliceMs(durationMs, incoming.DurationMs())

	overlap := equalPowerBlend(tail, lead)
	return head.Concat(overlap, rest)
}

// equalPowerBlend mixes two equal-length buffers with cosine/sine gain
// curves so perceived loudness stays flat across the overlap.
func equalPowerBlend(fadeOut, fadeIn *audio.Waveform) *audio.Waveform {
	frames := min(fadeOut.Frames(), fadeIn.Frames())
	out := audio.NewWaveform(frames, fadeOut.Rate, fadeOut.Channels)

	for f := 0; f < frames; f++ {
		pos := float64(f) / float64(frames)
		gainOut := math.Cos(pos * math.Pi / 2)
		gainIn := math.Sin(pos * math.Pi / 2)
		for c := 0; c < out.Channels; c++ {
			i := f*out.Channels + c
			out.Samples[i] = fadeOut.Samples[i]*gainOut + fadeIn.Samples[i]*gainIn
		}
	}
	return out
}

// applyEchoOut fades the outgoing tail while layering four delayed,
// progressively attenuated copies over it, then overlays the incoming
// fade-in. Short clips fall back to crossfade.
func applyEchoOut(outgoing, incoming *audio.Waveform, durationMs int) *audio.Waveform {
	maxDuration := min(outgoing.DurationMs(), incoming.DurationMs()) - CrossfadeFloorMs
	if maxDuration < EffectFloorMs {
		return applyCrossfade(outgoing, incoming, durationMs)
	}

	durationMs = min(durationMs, maxDuration)
	durationMs = max(durationMs, EffectFloorMs)

	mainOut := outgoing.SliceMs(0, outgoing.DurationMs()-durationMs)
	tail := outgoing.TailMs(durationMs)

	echoTail := tail.FadeOutMs(durationMs)
	for i := 1; i <= EchoCount; i++ {
		delay := EchoDelayMs * i
		if delay >= durationMs {
			break
		}
		echo := tail.HeadMs(durationMs - delay).
			GainDB(-EchoStepDB * float64(i))
		echo = echo.FadeOutMs(echo.DurationMs())
		echoTail = echoTail.OverlayMs(echo, delay)
	}

	lead := incoming.HeadMs(durationMs).FadeInMs(durationMs)
	rest := incoming.SliceMs(durationMs, incoming.DurationMs())

	transition := echoTail.OverlayMs(lead, 0)
	return mainOut.Concat(transition, rest)
}

// applyFilterSweep splits the outgoing tail into chunks and sweeps a filter
// across them with progressive gain reduction, overlaying the incoming
// fade-in. Short clips fall back to crossfade.
func applyFilterSweep(outgoing, incoming *audio.Waveform, durationMs int, direction SweepDirection) *audio.Waveform {
	maxDuration := min(outgoing.DurationMs(), incoming.DurationMs()) - CrossfadeFloorMs
	if maxDuration < EffectFloorMs {
		return applyCrossfade(outgoing, incoming, durationMs)
	}

	durationMs = min(durationMs, maxDuration)
	durationMs = max(durationMs, EffectFloorMs)

	mainOut := outgoing.SliceMs(0, outgoing.DurationMs()-durationMs)
	tail := outgoing.TailMs(durationMs)

	chunkMs := durationMs / SweepChunks
	filtered := audio.Silence(0, tail.Rate, tail.Channels)
	for i := 0; i < SweepChunks; i++ {
		chunk := tail.SliceMs(i*chunkMs, (i+1)*chunkMs)
		progress := float64(i) / SweepChunks

		var freq float64
		if direction == SweepHighpass {
			freq = SweepHighStartHz + progress*SweepHighSpanHz
			chunk = highpassFilter(chunk, freq)
		} else {
			freq = SweepLowStartHz - progress*SweepLowSpanHz
			chunk = lowpassFilter(chunk, freq)
		}

		chunk = chunk.GainDB(-progress * SweepGainDB)
		filtered = filtered.Concat(chunk)
	}

	lead := incoming.HeadMs(durationMs).FadeInMs(durationMs)
	rest := incoming.SliceMs(durationMs, incoming.DurationMs())

	transition := filtered.OverlayMs(lead, 0)
	return mainOut.Concat(transition, rest)
}

// applyBackspin reverses the outgoing tail, slows it by 1.5x to mimic a
// record winding down, fades it out, and drops a 50ms gap before the
// incoming fade-in. Short clips fall back to crossfade.
func applyBackspin(outgoing, incoming *audio.Waveform, durationMs int) *audio.Waveform {
	if outgoing.DurationMs() < BackspinOutgoingFloorMs || incoming.DurationMs() < BackspinIncomingFloorMs {
		return applyCrossfade(outgoing, incoming, durationMs)
	}

	spinMs := min(BackspinMaxSpinMs, durationMs/2, outgoing.DurationMs()-BackspinMarginMs)
	spinMs = max(spinMs, BackspinMinSpinMs)

	mainOut := outgoing.SliceMs(0, outgoing.DurationMs()-spinMs)
	spin := outgoing.TailMs(spinMs).
		Reverse().
		ResampleLinear(BackspinSlowFactor)
	spin = spin.FadeOutMs(spin.DurationMs())

	gap := audio.Silence(BackspinGapMs, outgoing.Rate, outgoing.Channels)

	remainingMs := durationMs - spinMs
	if remainingMs < 0 {
		remainingMs = 0
	}
	lead := incoming.HeadMs(remainingMs).FadeInMs(remainingMs / 2)
	rest := incoming.SliceMs(remainingMs, incoming.DurationMs())

	return mainOut.Concat(spin, gap, lead, rest)
}

// lowpassFilter applies a Butterworth-Q RBJ biquad low-pass per channel.
func lowpassFilter(w *audio.Waveform, cutoffHz float64) *audio.Waveform {
	b0, b1, b2, a1, a2 := lowpassCoeffs(cutoffHz, float64(w.Rate))
	return biquad(w, b0, b1, b2, a1, a2)
}

// highpassFilter applies a Butterworth-Q RBJ biquad high-pass per channel.
func highpassFilter(w *audio.Waveform, cutoffHz float64) *audio.Waveform {
	b0, b1, b2, a1, a2 := highpassCoeffs(cutoffHz, float64(w.Rate))
	return biquad(w, b0, b1, b2, a1, a2)
}

const filterQ = 0.707 // Butterworth, maximally flat passband

func lowpassCoeffs(cutoffHz, rate float64) (b0, b1, b2, a1, a2 float64) {
	w0 := 2 * math.Pi * cutoffHz / rate
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * filterQ)

	a0 := 1 + alpha
	b0 = (1 - cosw0) / 2 / a0
	b1 = (1 - cosw0) / a0
	b2 = (1 - cosw0) / 2 / a0
	a1 = -2 * cosw0 / a0
	a2 = (1 - alpha) / a0
	return
}

func highpassCoeffs(cutoffHz, rate float64) (b0, b1, b2, a1, a2 float64) {
	w0 := 2 * math.Pi * cutoffHz / rate
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * filterQ)

	a0 := 1 + alpha
	b0 = (1 + cosw0) / 2 / a0
	b1 = -(1 + cosw0) / a0
	b2 = (1 + cosw0) / 2 / a0
	a1 = -2 * cosw0 / a0
	a2 = (1 - alpha) / a0
	return
}

// biquad runs a direct form I filter independently per channel.
func biquad(w *audio.Waveform, b0, b1, b2, a1, a2 float64) *audio.Waveform {
	out := w.Clone()
	frames := w.Frames()

	for c := 0; c < w.Channels; c++ {
		var x1, x2, y1, y2 float64
		for f := 0; f < frames; f++ {
			i := f*w.Channels + c
			x := w.Samples[i]
			y := b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2
			out.Samples[i] = y
			x2, x1 = x1, x
			y2, y1 = y1, y
		}
	}
	return out
}
