package mix

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestRenderEmptyPlaylist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputPath = "out.wav"

	_, err := Render(context.Background(), cfg, nil)
	if !errors.Is(err, ErrRenderAborted) {
		t.Errorf("Render with empty playlist: error = %v, want ErrRenderAborted", err)
	}
}

func TestRenderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.OutputPath = "never.wav"
	cfg.TmpRoot = t.TempDir()
	entries := []PlaylistEntry{
		{Path: "a.mp3", Directive: DefaultDirective()},
		{Path: "b.mp3", Directive: DefaultDirective()},
	}

	result, err := Render(ctx, cfg, entries)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Render with canceled context: error = %v, want context.Canceled", err)
	}
	if result != nil {
		t.Errorf("Render with canceled context: result = %v, want nil", result)
	}
}

func TestAssembleMixSingleTrackUnmodified(t *testing.T) {
	src := fakeAnalyzed(100, 30000)
	fake := &fakeStretcher{out: constWaveform(36000, 0.5, testRate, 1)}
	cfg := DefaultConfig()

	got, reports, err := assembleMix(context.Background(), cfg, fake, []analyzedTrack{src}, noopLogf)
	if err != nil {
		t.Fatalf("assembleMix: %v", err)
	}
	if fake.called {
		t.Error("stretcher ran for a single-track playlist")
	}
	if got != src.render {
		t.Error("output should be the original buffer, untouched")
	}
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	if reports[0].StretchDecision != StretchSkipSingle {
		t.Errorf("decision = %v, want %v", reports[0].StretchDecision, StretchSkipSingle)
	}
	if reports[0].StretchRatio != 1.0 {
		t.Errorf("StretchRatio = %v, want 1.0", reports[0].StretchRatio)
	}
}

func TestAssembleMixTwoTracksRunsStretch(t *testing.T) {
	a := fakeAnalyzed(100, 60000)
	b := fakeAnalyzed(100, 60000)
	fake := &fakeStretcher{out: constWaveform(72000, 0.5, testRate, 1)}
	cfg := DefaultConfig()

	got, reports, err := assembleMix(context.Background(), cfg, fake, []analyzedTrack{a, b}, noopLogf)
	if err != nil {
		t.Fatalf("assembleMix: %v", err)
	}
	if !fake.called {
		t.Error("stretcher never ran for a multi-track playlist")
	}
	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(reports))
	}

	// Fallback windows are 60s each; the default 8-bar crossfade clamps to
	// the 8s ceiling.
	want := 60000 + 60000 - MaxTransitionMs
	if got.DurationMs() != want {
		t.Errorf("mix duration = %dms, want %dms", got.DurationMs(), want)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Workers)
	}
	if cfg.TargetBPM != 120 {
		t.Errorf("TargetBPM = %v, want 120", cfg.TargetBPM)
	}
}

func TestSessionLifecycle(t *testing.T) {
	root := t.TempDir()

	s, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if !strings.HasPrefix(s.Dir, root) {
		t.Errorf("session dir %q not under root %q", s.Dir, root)
	}
	if _, err := os.Stat(s.Dir); err != nil {
		t.Fatalf("session dir missing: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(s.Dir); !os.IsNotExist(err) {
		t.Errorf("session dir still present after Close")
	}

	// Close is safe to call twice and on nil.
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	var nilSession *Session
	if err := nilSession.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestSessionDirsAreUnique(t *testing.T) {
	root := t.TempDir()

	a, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer a.Close()

	b, err := NewSession(root)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	defer b.Close()

	if a.Dir == b.Dir {
		t.Errorf("two sessions share a directory: %q", a.Dir)
	}
}
