// Package logging handles generation of mix reports for rendered playlists

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/deckmix/deckmix/internal/analysis"
	"github.com/deckmix/deckmix/internal/mix"
)

// MixReportData contains all the information needed to generate a mix report.
type MixReportData struct {
	TargetBPM float64
	Result    *mix.Result
	StartTime time.Time
	EndTime   time.Time
}

// GenerateReport creates a mix report and saves it alongside the output file.
// The report filename will be <output>.log
//
// Report structure:
// 1. Header - output file, timestamp, render time
// 2. Tracklist - per-track analysis (tempo, key, energy, stretch decision)
// 3. Harmonic Compatibility - Camelot distance per adjacent pair
// 4. Excluded Tracks - anything dropped during decoding
func GenerateReport(data MixReportData) error {
	logPath := strings.TrimSuffix(data.Result.OutputPath,
		filepath.Ext(data.Result.OutputPath)) + ".log"

	f, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	WriteMixReport(f, data)
	return nil
}

// WriteMixReport writes the plain-text mix report to w.
func WriteMixReport(w io.Writer, data MixReportData) {
	writeReportHeader(w, data)
	writeTracklist(w, data)
	writeCompatibility(w, data.Result.Reports)
	writeExcluded(w, data.Result.Excluded)
}

// writeSection writes a section header with title and dashed underline.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

func writeReportHeader(w io.Writer, data MixReportData) {
	fmt.Fprintln(w, "Deckmix Mix Report")
	fmt.Fprintln(w, "==================")
	fmt.Fprintf(w, "Output: %s\n", filepath.Base(data.Result.OutputPath))
	fmt.Fprintf(w, "Rendered: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Target tempo: %.0f BPM\n", data.TargetBPM)
	fmt.Fprintf(w, "Mix duration: %s\n",
		formatDuration(time.Duration(data.Result.DurationSeconds*float64(time.Second))))

	renderTime := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "Render time: %s", formatDuration(renderTime))
	if data.Result.DurationSeconds > 0 && renderTime > 0 {
		mixDuration := time.Duration(data.Result.DurationSeconds * float64(time.Second))
		fmt.Fprintf(w, " (%.1fx real-time)", float64(mixDuration)/float64(renderTime))
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

func writeTracklist(w io.Writer, data MixReportData) {
	writeSection(w, "Tracklist")

	table := NewReportTable("BPM", "Key", "Energy", "Stretch")
	for i, r := range data.Result.Reports {
		label := fmt.Sprintf("%2d. %s", i+1, r.Meta.Display())

		bpm := MissingValue
		key := MissingValue
		energy := MissingValue
		if r.Analysis != nil {
			bpm = formatMetric(r.Analysis.BPM, 1)
			key = r.Analysis.Key
			energy = formatMetric(r.Analysis.Energy, 2)
		}

		note := ""
		if r.Analysis != nil && r.Analysis.Degraded {
			note = "analysis degraded (track too short)"
		}

		table.AddRow(label, []string{bpm, key, energy, stretchSummary(r)}, note)
	}

	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

// stretchSummary condenses a stretch outcome into one table cell.
func stretchSummary(r mix.TrackReport) string {
	switch r.StretchDecision {
	case mix.StretchApply:
		return fmt.Sprintf("%s%%", formatMetricSigned((1/r.StretchRatio-1)*100, 1))
	case mix.StretchSkipClose:
		return "none (close)"
	case mix.StretchSkipExtreme:
		return "none (extreme)"
	case mix.StretchSkipSingle:
		return "none (single track)"
	case mix.StretchFailed:
		return "failed"
	}
	return MissingValue
}

func writeCompatibility(w io.Writer, reports []mix.TrackReport) {
	if len(reports) < 2 {
		return
	}

	writeSection(w, "Harmonic Compatibility")

	table := NewReportTable("Keys", "Distance")
	for i := 1; i < len(reports); i++ {
		prev, next := reports[i-1], reports[i]
		label := fmt.Sprintf("%2d → %2d", i, i+1)

		prevKey, nextKey := reportKey(prev), reportKey(next)
		pair := fmt.Sprintf("%s → %s", prevKey, nextKey)

		dist := analysis.CamelotDistance(prevKey, nextKey)
		table.AddRow(label, []string{pair, fmt.Sprintf("%d", dist)}, compatibilityVerdict(dist))
	}

	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

func reportKey(r mix.TrackReport) string {
	if r.Analysis == nil {
		return ""
	}
	return r.Analysis.Key
}

// compatibilityVerdict maps a Camelot distance to a mixing verdict.
func compatibilityVerdict(distance int) string {
	switch {
	case distance == 0:
		return "same key"
	case distance == 1:
		return "compatible"
	case distance <= 3:
		return "passable"
	default:
		return "clashing"
	}
}

func writeExcluded(w io.Writer, excluded []string) {
	if len(excluded) == 0 {
		return
	}

	writeSection(w, "Excluded Tracks")
	for _, path := range excluded {
		fmt.Fprintf(w, "  %s (decode failed)\n", path)
	}
	fmt.Fprintln(w, "")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
