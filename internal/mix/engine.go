package mix

import (
	"context"
	"fmt"

	"github.com/deckmix/deckmix/internal/analysis"
	"github.com/deckmix/deckmix/internal/audio"
)

// Transition sizing. Durations use a fixed 500 ms/beat grid (a 120 BPM
// reference independent of either track's tempo; downstream timing is
// calibrated against it).
const (
	MsPerBeat       = 500
	BeatsPerBar     = 4
	MinTransitionMs = 1000
	MaxTransitionMs = 8000

	// Transitions overlapping a climactic section of the incoming track
	// are capped to avoid cutting through it.
	HighEnergyCapMs     = 3000
	HighEnergyThreshold = 0.7
)

// Loop-window extraction bounds (milliseconds on the render timeline).
const (
	WindowMinLeadMs   = 10000
	WindowMinSpanMs   = 30000
	WindowMinUsableMs = 5000

	// Fallback when no usable loop window exists: 60s starting at 20%.
	FallbackStartRatio = 0.2
	FallbackSpanMs     = 60000
)

// Final mix peak target, just under full scale.
const NormalizePeakTarget = 0.9886 // -0.1 dBFS

// RenderTrack pairs a full-rate stretch-adjusted waveform with everything
// the fold needs to place it. Created once per track at render start.
type RenderTrack struct {
	Audio     *audio.Waveform
	Analysis  *analysis.Result
	Directive Directive
	Meta      audio.TrackMeta

	// StretchRatio is original_bpm/target_bpm as specified for the track.
	// EffectiveRatio is the ratio actually applied to the audio: equal to
	// StretchRatio after a stretch, 1.0 when stretching was skipped, so
	// loop timestamps stay aligned with the buffer they index into.
	StretchRatio    float64
	EffectiveRatio  float64
	StretchDecision StretchDecision
}

// Engine folds render tracks into a single mix buffer, strictly in playlist
// order. The Mix accumulator has exactly one writer: this fold.
type Engine struct {
	Logf     func(format string, args ...any)
	Progress ProgressFunc
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logf != nil {
		e.Logf(format, args...)
	}
}

// Fold assembles the mix. A single-track playlist returns that track's
// audio unmodified. Cancellation is checked between tracks and between the
// two halves of each transition.
func (e *Engine) Fold(ctx context.Context, tracks []RenderTrack) (*audio.Waveform, error) {
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: no tracks to mix", ErrRenderAborted)
	}

	if len(tracks) == 1 {
		return tracks[0].Audio, nil
	}

	mix := loopWindow(tracks[0])
	e.logf("track 1 (%s): playing %.1fs window", tracks[0].Meta.Display(), float64(mix.DurationMs())/1000)

	for i := 1; i < len(tracks); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		track := tracks[i]
		incoming := loopWindow(track)

		durationMs := transitionDuration(mix, incoming, track, e.logf)

		e.Progress.emit(StageMixing, 50+i*40/len(tracks),
			fmt.Sprintf("Transition %d/%d: %s", i, len(tracks)-1, track.Meta.Display()))

		// Second half of the transition: the effect itself
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch track.Directive.Type {
		case EffectCrossfade:
			mix = applyCrossfade(mix, incoming, durationMs)
		case EffectEchoOut:
			mix = applyEchoOut(mix, incoming, durationMs)
		case EffectFilterSweep:
			mix = applyFilterSweep(mix, incoming, durationMs, track.Directive.Direction)
		case EffectBackspin:
			mix = applyBackspin(mix, incoming, durationMs)
		}

		e.logf("track %d (%s): %s over %dms", i+1, track.Meta.Display(), track.Directive.Type, durationMs)
	}

	return mix.NormalizePeak(NormalizePeakTarget), nil
}

// loopWindow extracts the playable section of a track from its full-rate
// buffer, scaling analysis timestamps by the ratio actually applied to the
// audio. Windows that come out degenerate fall back to a 60 second span at
// 20%, and anything under 5 seconds plays the full track.
func loopWindow(t RenderTrack) *audio.Waveform {
	trackLenMs := t.Audio.DurationMs()

	var startMs, endMs int
	if t.Analysis != nil && t.Analysis.BestLoopEnd > t.Analysis.BestLoopStart {
		startMs = int(t.Analysis.BestLoopStart * 1000 * t.EffectiveRatio)
		endMs = int(t.Analysis.BestLoopEnd * 1000 * t.EffectiveRatio)

		startMs = max(0, min(startMs, trackLenMs-WindowMinLeadMs))
		endMs = min(trackLenMs, max(endMs, startMs+WindowMinSpanMs))
	} else {
		startMs = min(int(float64(trackLenMs)*FallbackStartRatio), trackLenMs-FallbackSpanMs)
		startMs = max(0, startMs)
		endMs = min(trackLenMs, startMs+FallbackSpanMs)
	}

	window := t.Audio.SliceMs(startMs, endMs)
	if window.DurationMs() < WindowMinUsableMs {
		return t.Audio.Clone()
	}
	return window
}

// transitionDuration sizes a transition: nominal bars on the fixed beat
// grid, capped when it would land on a climactic section of the incoming
// track, then clamped against both buffer lengths and the hard ceiling.
func transitionDuration(mix, incoming *audio.Waveform, t RenderTrack, logf func(string, ...any)) int {
	durationMs := t.Directive.Bars * BeatsPerBar * MsPerBeat

	if t.Analysis != nil && overlapsHighEnergy(mix, durationMs, t.Analysis.Sections) {
		if durationMs > HighEnergyCapMs {
			durationMs = HighEnergyCapMs
			if logf != nil {
				logf("capped transition before %s to %dms: high-energy section in the way",
					t.Meta.Display(), durationMs)
			}
		}
	}

	durationMs = min(durationMs, mix.DurationMs()/2, incoming.DurationMs()/2, MaxTransitionMs)
	return max(durationMs, MinTransitionMs)
}

// overlapsHighEnergy reports whether the transition span around the current
// mix tail intersects a chorus or energy > 0.7 section of the incoming track.
func overlapsHighEnergy(mix *audio.Waveform, durationMs int, sections []analysis.SongSection) bool {
	mixEnd := float64(mix.DurationMs()) / 1000
	half := float64(durationMs) / 2000
	spanStart := mixEnd - half
	spanEnd := mixEnd + half

	for _, s := range sections {
		if s.Start <= spanEnd && s.End >= spanStart &&
			(s.Category == analysis.SectionChorus || s.Energy > HighEnergyThreshold) {
			return true
		}
	}
	return false
}
