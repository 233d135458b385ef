package mix

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/deckmix/deckmix/internal/audio"
)

// Stretch decision thresholds. Stretching is skipped for near-target tempos
// (inaudible difference) and for extreme ratios (audible artifacts).
const (
	StretchMaxBPMDelta   = 2.0
	StretchCloseRatio    = 0.95
	StretchMinRatio      = 0.8
	StretchMaxRatio      = 1.25
	RubberBandQualityArg = "-2"
)

// StretchDecision is the explicit outcome of the tempo normalization policy.
// Skips and failures are logged decisions, never errors.
type StretchDecision int

const (
	StretchApply StretchDecision = iota
	StretchSkipClose
	StretchSkipExtreme
	StretchSkipSingle
	StretchFailed
)

func (d StretchDecision) String() string {
	switch d {
	case StretchApply:
		return "apply"
	case StretchSkipClose:
		return "skip: tempo close to target"
	case StretchSkipExtreme:
		return "skip: ratio out of range"
	case StretchSkipSingle:
		return "skip: single track"
	case StretchFailed:
		return "failed: kept original"
	}
	return "unknown"
}

// DecideStretch applies the normalization policy for a track against the
// target tempo. The returned ratio is original/target regardless of the
// decision; callers use it only when the decision is StretchApply.
func DecideStretch(originalBPM, targetBPM float64) (float64, StretchDecision) {
	ratio := originalBPM / targetBPM

	delta := originalBPM - targetBPM
	if delta < 0 {
		delta = -delta
	}
	closeness := min(originalBPM, targetBPM) / max(originalBPM, targetBPM)
	if delta <= StretchMaxBPMDelta || closeness > StretchCloseRatio {
		return ratio, StretchSkipClose
	}

	if ratio < StretchMinRatio || ratio > StretchMaxRatio {
		return ratio, StretchSkipExtreme
	}

	return ratio, StretchApply
}

// Stretcher performs pitch-preserving time stretching.
type Stretcher interface {
	Stretch(ctx context.Context, w *audio.Waveform, ratio float64) (*audio.Waveform, error)
}

// RubberBand shells out to the rubberband CLI through WAV intermediates in
// TmpDir. High quality mode, pitch preserved.
type RubberBand struct {
	TmpDir string
	Logf   func(format string, args ...any)
}

func (r *RubberBand) logf(format string, args ...any) {
	if r.Logf != nil {
		r.Logf(format, args...)
	}
}

// Stretch writes the waveform to disk, runs rubberband at the given tempo
// ratio, and decodes the result at render rate.
func (r *RubberBand) Stretch(ctx context.Context, w *audio.Waveform, ratio float64) (*audio.Waveform, error) {
	inPath := filepath.Join(r.TmpDir, fmt.Sprintf("stretch_in_%p.wav", w))
	outPath := filepath.Join(r.TmpDir, fmt.Sprintf("stretch_out_%p.wav", w))

	if err := audio.WriteWAV(w, inPath); err != nil {
		return nil, fmt.Errorf("failed to stage stretch input: %w", err)
	}

	cmd := exec.CommandContext(ctx, "rubberband",
		"--tempo", fmt.Sprintf("%.6f", ratio),
		"--pitch", "1.0",
		RubberBandQualityArg,
		inPath, outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		r.logf("rubberband failed: %v: %s", err, out)
		return nil, fmt.Errorf("rubberband failed: %w", err)
	}

	stretched, err := audio.DecodeFile(outPath, w.Rate, w.Channels)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stretched audio: %w", err)
	}
	return stretched, nil
}
