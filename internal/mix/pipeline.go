package mix

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/deckmix/deckmix/internal/analysis"
	"github.com/deckmix/deckmix/internal/audio"
)

// ErrRenderAborted is the fatal render failure: no usable tracks survived
// decoding, or the final export failed. No partial mix is returned.
var ErrRenderAborted = errors.New("render aborted")

// Config carries everything a render needs. Zero values are filled from
// DefaultConfig.
type Config struct {
	TargetBPM  float64
	OutputPath string

	// Workers sizes the analysis and stretch pools.
	Workers int

	// TmpRoot hosts the per-session temp directory (os.TempDir if empty).
	TmpRoot string

	// Stretcher overrides the default rubberband CLI invocation, mainly
	// for tests.
	Stretcher Stretcher

	Logf     func(format string, args ...any)
	Progress ProgressFunc

	// OnExclude is called for every track dropped by a decode failure.
	OnExclude func(path string, err error)
}

// DefaultConfig returns render defaults: 120 BPM target, one worker per
// core minus one for the coordinator.
func DefaultConfig() Config {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	return Config{
		TargetBPM: 120,
		Workers:   workers,
	}
}

// PlaylistEntry is one ordered playlist position: a decodable local file
// and the transition to apply after it.
type PlaylistEntry struct {
	Path      string
	Directive Directive
}

// TrackReport records what happened to one track during the render.
type TrackReport struct {
	Path            string
	Meta            audio.TrackMeta
	Analysis        *analysis.Result
	Directive       Directive
	StretchRatio    float64
	StretchDecision StretchDecision
}

// Result is the outcome of a successful render.
type Result struct {
	OutputPath      string
	DurationSeconds float64
	Excluded        []string // paths dropped by decode failures
	Reports         []TrackReport
}

// analyzedTrack is the per-track payload flowing between pipeline stages.
type analyzedTrack struct {
	entry    PlaylistEntry
	meta     audio.TrackMeta
	render   *audio.Waveform
	analysis *analysis.Result
	err      error
}

// Render runs the full pipeline: parallel per-track analysis, parallel
// tempo normalization, the sequential transition fold, and export. Decode
// failures exclude single tracks; the render aborts only when nothing
// usable remains or the export fails. A playlist that reduces to one track
// is exported with its original audio, tempo untouched.
func Render(ctx context.Context, cfg Config, entries []PlaylistEntry) (*Result, error) {
	if cfg.Workers < 1 {
		cfg.Workers = DefaultConfig().Workers
	}
	if cfg.TargetBPM <= 0 {
		cfg.TargetBPM = DefaultConfig().TargetBPM
	}
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty playlist", ErrRenderAborted)
	}

	session, err := NewSession(cfg.TmpRoot)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	stretcher := cfg.Stretcher
	if stretcher == nil {
		stretcher = &RubberBand{TmpDir: session.Dir, Logf: logf}
	}

	analyzed, err := analyzeAll(ctx, cfg, entries)
	if err != nil {
		return nil, err
	}

	var usable []analyzedTrack
	var excluded []string
	for _, t := range analyzed {
		if t.err != nil {
			logf("excluding %s: %v", t.entry.Path, t.err)
			if cfg.OnExclude != nil {
				cfg.OnExclude(t.entry.Path, t.err)
			}
			excluded = append(excluded, t.entry.Path)
			continue
		}
		usable = append(usable, t)
	}
	if len(usable) == 0 {
		return nil, fmt.Errorf("%w: no decodable tracks in playlist", ErrRenderAborted)
	}

	mixBuf, reports, err := assembleMix(ctx, cfg, stretcher, usable, logf)
	if err != nil {
		return nil, err
	}

	cfg.Progress.emit(StageExporting, 90, "Exporting final mix")
	duration, err := audio.Export(mixBuf, cfg.OutputPath, session.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: export failed: %v", ErrRenderAborted, err)
	}
	cfg.Progress.emit(StageExporting, 100, "Mix complete")

	return &Result{
		OutputPath:      cfg.OutputPath,
		DurationSeconds: duration,
		Excluded:        excluded,
		Reports:         reports,
	}, nil
}

// assembleMix turns the usable tracks into the final mix buffer. A
// single-track playlist passes through untouched: no tempo normalization,
// no windowing, no peak normalization. Anything longer runs the stretch
// pool and the transition fold.
func assembleMix(
	ctx context.Context,
	cfg Config,
	stretcher Stretcher,
	usable []analyzedTrack,
	logf func(string, ...any),
) (*audio.Waveform, []TrackReport, error) {
	if len(usable) == 1 {
		only := usable[0]
		logf("%s: single-track playlist, rendering unmodified", only.meta.Display())
		cfg.Progress.emit(StageStretching, 100, "Single track, tempo unchanged")
		cfg.Progress.emit(StageMixing, 100, "Single track, no transitions")

		report := TrackReport{
			Path:            only.entry.Path,
			Meta:            only.meta,
			Analysis:        only.analysis,
			Directive:       only.entry.Directive,
			StretchRatio:    1.0,
			StretchDecision: StretchSkipSingle,
		}
		return only.render, []TrackReport{report}, nil
	}

	tracks, reports, err := stretchAll(ctx, cfg, stretcher, usable, logf)
	if err != nil {
		return nil, nil, err
	}

	engine := &Engine{Logf: logf, Progress: cfg.Progress}
	mixBuf, err := engine.Fold(ctx, tracks)
	if err != nil {
		return nil, nil, err
	}
	return mixBuf, reports, nil
}

// analyzeAll decodes and analyzes every playlist entry across the worker
// pool. Each worker owns its Analyzer since FFT plans are not safe to
// share. Results keep playlist order.
func analyzeAll(ctx context.Context, cfg Config, entries []PlaylistEntry) ([]analyzedTrack, error) {
	results := make([]analyzedTrack, len(entries))
	jobs := make(chan int)
	var done atomic.Int32
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			analyzer := analysis.NewAnalyzer()
			analyzer.Logf = cfg.Logf

			for i := range jobs {
				results[i] = analyzeOne(ctx, analyzer, entries[i])

				n := done.Add(1)
				cfg.Progress.emit(StageAnalyzing, int(n)*100/len(entries),
					fmt.Sprintf("Analyzed %s", results[i].meta.Display()))
			}
		}()
	}

	for i := range entries {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func analyzeOne(ctx context.Context, analyzer *analysis.Analyzer, entry PlaylistEntry) analyzedTrack {
	out := analyzedTrack{
		entry: entry,
		meta:  audio.ReadTrackMeta(entry.Path),
	}

	if err := ctx.Err(); err != nil {
		out.err = err
		return out
	}

	mono, err := audio.DecodeFile(entry.Path, audio.AnalysisRate, audio.AnalysisChannels)
	if err != nil {
		out.err = err
		return out
	}
	out.analysis = analyzer.Analyze(mono)

	out.render, err = audio.DecodeFile(entry.Path, audio.RenderRate, audio.RenderChannels)
	if err != nil {
		out.err = err
	}
	return out
}

// stretchAll normalizes every usable track toward the target tempo across
// the worker pool. Stretch skips and utility failures degrade to the
// original audio; they never fail the render.
func stretchAll(
	ctx context.Context,
	cfg Config,
	stretcher Stretcher,
	usable []analyzedTrack,
	logf func(string, ...any),
) ([]RenderTrack, []TrackReport, error) {
	tracks := make([]RenderTrack, len(usable))
	reports := make([]TrackReport, len(usable))
	jobs := make(chan int)
	var done atomic.Int32
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				tracks[i] = stretchOne(ctx, stretcher, cfg.TargetBPM, usable[i], logf)
				reports[i] = TrackReport{
					Path:            usable[i].entry.Path,
					Meta:            usable[i].meta,
					Analysis:        usable[i].analysis,
					Directive:       usable[i].entry.Directive,
					StretchRatio:    tracks[i].StretchRatio,
					StretchDecision: tracks[i].StretchDecision,
				}

				n := done.Add(1)
				cfg.Progress.emit(StageStretching, int(n)*100/len(usable),
					fmt.Sprintf("Time-stretching: %s", usable[i].meta.Display()))
			}
		}()
	}

	for i := range usable {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return tracks, reports, nil
}

func stretchOne(
	ctx context.Context,
	stretcher Stretcher,
	targetBPM float64,
	t analyzedTrack,
	logf func(string, ...any),
) RenderTrack {
	out := RenderTrack{
		Audio:          t.render,
		Analysis:       t.analysis,
		Directive:      t.entry.Directive,
		Meta:           t.meta,
		EffectiveRatio: 1.0,
	}

	ratio, decision := DecideStretch(t.analysis.BPM, targetBPM)
	out.StretchRatio = ratio
	out.StretchDecision = decision

	if decision != StretchApply {
		logf("%s: %s (bpm %.1f, target %.1f)", t.meta.Display(), decision, t.analysis.BPM, targetBPM)
		return out
	}

	stretched, err := stretcher.Stretch(ctx, t.render, ratio)
	if err != nil {
		out.StretchDecision = StretchFailed
		logf("%s: stretch failed, keeping original tempo: %v", t.meta.Display(), err)
		return out
	}

	out.Audio = stretched
	out.EffectiveRatio = ratio
	logf("%s: stretched %.1f -> %.1f BPM (ratio %.3f)", t.meta.Display(), t.analysis.BPM, targetBPM, ratio)
	return out
}
