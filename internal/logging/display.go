// Package logging handles generation of mix reports for rendered playlists.
// This file provides console display for analysis-only mode.

package logging

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/deckmix/deckmix/internal/analysis"
	"github.com/deckmix/deckmix/internal/audio"
)

// DisplayTrackAnalysis outputs a single track's analysis to the console.
// Used by --inspect mode for rapid inspection without rendering a mix.
func DisplayTrackAnalysis(w io.Writer, inputPath string, meta audio.TrackMeta, res *analysis.Result) {
	// Header
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "ANALYSIS: %s\n", filepath.Base(inputPath))
	fmt.Fprintln(w, strings.Repeat("=", 70))

	fmt.Fprintf(w, "Track:    %s\n", meta.Display())
	fmt.Fprintf(w, "Duration: %s\n", formatTimestamp(res.Duration))
	if res.Degraded {
		fmt.Fprintln(w, "Status:   DEGRADED (too short to analyze, defaults reported)")
	}
	fmt.Fprintln(w)

	// Tempo section
	writeAnalysisSection(w, "TEMPO")
	fmt.Fprintf(w, "  BPM:       %.1f\n", res.BPM)
	fmt.Fprintf(w, "  Beats:     %d tracked\n", len(res.Beats))
	fmt.Fprintf(w, "  Phrases:   %d boundaries\n", len(res.PhraseBoundaries))
	fmt.Fprintln(w)

	// Key section
	writeAnalysisSection(w, "KEY")
	fmt.Fprintf(w, "  Camelot:     %s\n", res.Key)
	if compatible := analysis.CompatibleKeys(res.Key); compatible != nil {
		fmt.Fprintf(w, "  Mixes with:  %s\n", strings.Join(compatible, ", "))
	}
	fmt.Fprintln(w)

	// Energy and structure section
	writeAnalysisSection(w, "STRUCTURE")
	fmt.Fprintf(w, "  Energy:     %.2f\n", res.Energy)
	fmt.Fprintf(w, "  Intro end:  %s\n", formatTimestamp(res.IntroEnd))
	fmt.Fprintf(w, "  Outro from: %s\n", formatTimestamp(res.OutroStart))
	fmt.Fprintln(w)

	for _, s := range res.Sections {
		vocal := ""
		if s.IsVocal {
			vocal = " [vocal]"
		}
		fmt.Fprintf(w, "  %s - %s  %-9s energy %.2f%s\n",
			formatTimestamp(s.Start), formatTimestamp(s.End), s.Category, s.Energy, vocal)
	}
	fmt.Fprintln(w)

	// Loop window section
	writeAnalysisSection(w, "LOOP WINDOW")
	fmt.Fprintf(w, "  Window: %s - %s (%.1fs)\n",
		formatTimestamp(res.BestLoopStart), formatTimestamp(res.BestLoopEnd),
		res.BestLoopEnd-res.BestLoopStart)
	if res.DropTime != nil {
		fmt.Fprintf(w, "  Drop:   %s\n", formatTimestamp(*res.DropTime))
	} else {
		fmt.Fprintln(w, "  Drop:   none detected")
	}
	fmt.Fprintln(w)
}

// writeAnalysisSection writes an uppercase section header.
func writeAnalysisSection(w io.Writer, title string) {
	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// formatTimestamp renders seconds as M:SS for display.
func formatTimestamp(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
