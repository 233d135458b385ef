package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/deckmix/deckmix/internal/analysis"
	"github.com/deckmix/deckmix/internal/audio"
	"github.com/deckmix/deckmix/internal/mix"
)

func sampleReportData() MixReportData {
	start := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	return MixReportData{
		TargetBPM: 120,
		StartTime: start,
		EndTime:   start.Add(90 * time.Second),
		Result: &mix.Result{
			OutputPath:      "club_mix.mp3",
			DurationSeconds: 360,
			Excluded:        []string{"/music/broken.mp3"},
			Reports: []mix.TrackReport{
				{
					Path:            "/music/a.mp3",
					Meta:            audio.TrackMeta{Artist: "Artist A", Title: "Opener"},
					Analysis:        &analysis.Result{BPM: 128, Key: "8A", Energy: 0.8},
					StretchRatio:    128.0 / 120.0,
					StretchDecision: mix.StretchApply,
				},
				{
					Path:            "/music/b.mp3",
					Meta:            audio.TrackMeta{Artist: "Artist B", Title: "Closer"},
					Analysis:        &analysis.Result{BPM: 120, Key: "3B", Energy: 0.6},
					StretchRatio:    1.0,
					StretchDecision: mix.StretchSkipClose,
				},
			},
		},
	}
}

func TestWriteMixReport(t *testing.T) {
	var sb strings.Builder
	WriteMixReport(&sb, sampleReportData())
	out := sb.String()

	for _, want := range []string{
		"Deckmix Mix Report",
		"club_mix.mp3",
		"Target tempo: 120 BPM",
		"Tracklist",
		"Artist A - Opener",
		"Artist B - Closer",
		"128.0",
		"8A",
		"Harmonic Compatibility",
		"8A → 3B",
		"Excluded Tracks",
		"/music/broken.mp3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteMixReportSingleTrackSkipsCompatibility(t *testing.T) {
	data := sampleReportData()
	data.Result.Reports = data.Result.Reports[:1]
	data.Result.Excluded = nil

	var sb strings.Builder
	WriteMixReport(&sb, data)
	out := sb.String()

	if strings.Contains(out, "Harmonic Compatibility") {
		t.Error("single-track report should not include a compatibility section")
	}
	if strings.Contains(out, "Excluded Tracks") {
		t.Error("report should omit the excluded section when nothing was dropped")
	}
}

func TestCompatibilityVerdict(t *testing.T) {
	tests := []struct {
		distance int
		want     string
	}{
		{0, "same key"},
		{1, "compatible"},
		{2, "passable"},
		{3, "passable"},
		{4, "clashing"},
		{6, "clashing"},
	}
	for _, tt := range tests {
		if got := compatibilityVerdict(tt.distance); got != tt.want {
			t.Errorf("compatibilityVerdict(%d) = %q, want %q", tt.distance, got, tt.want)
		}
	}
}

func TestStretchSummary(t *testing.T) {
	tests := []struct {
		name   string
		report mix.TrackReport
		want   string
	}{
		{
			name: "applied slow down",
			report: mix.TrackReport{
				StretchRatio:    128.0 / 120.0,
				StretchDecision: mix.StretchApply,
			},
			want: "-6.2%",
		},
		{
			name:   "skipped close",
			report: mix.TrackReport{StretchDecision: mix.StretchSkipClose},
			want:   "none (close)",
		},
		{
			name:   "skipped extreme",
			report: mix.TrackReport{StretchDecision: mix.StretchSkipExtreme},
			want:   "none (extreme)",
		},
		{
			name:   "single track",
			report: mix.TrackReport{StretchDecision: mix.StretchSkipSingle},
			want:   "none (single track)",
		},
		{
			name:   "failed",
			report: mix.TrackReport{StretchDecision: mix.StretchFailed},
			want:   "failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stretchSummary(tt.report); got != tt.want {
				t.Errorf("stretchSummary = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "1m 30s"},
		{3700 * time.Second, "1h 1m 40s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{65, "1:05"},
		{600, "10:00"},
	}
	for _, tt := range tests {
		if got := formatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("formatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
