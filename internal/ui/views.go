package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	doneIconStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	activeIconStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	queuedIconStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Width(60)

	barFilledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// Stage display names keyed by the pipeline's stage vocabulary.
var stageLabels = map[string]string{
	"analyzing":  "Analyzing tracks",
	"stretching": "Normalizing tempo",
	"mixing":     "Building transitions",
	"exporting":  "Exporting mix",
}

// renderProgressView renders the live render view.
func renderProgressView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	spinner := activeIconStyle.Render(spinnerFrames[m.spinnerIndex])

	for _, stage := range m.Stages {
		label := stageLabels[stage.Name]
		if label == "" {
			label = stage.Name
		}

		switch {
		case stage.Done:
			b.WriteString(fmt.Sprintf(" %s %s\n", doneIconStyle.Render("✓"), label))
		case stage.Active:
			b.WriteString(fmt.Sprintf(" %s %s\n", spinner, label))
			b.WriteString(renderStageDetails(stage, time.Since(m.StartTime)))
			b.WriteString("\n")
		default:
			b.WriteString(fmt.Sprintf(" %s %s\n", queuedIconStyle.Render("○"), label))
		}
	}

	if len(m.Excluded) > 0 {
		b.WriteString("\n")
		for _, ex := range m.Excluded {
			b.WriteString(errorStyle.Render(fmt.Sprintf(" ✗ excluded %s", ex.Path)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := headerStyle.Render("Deckmix 🎧 - Automated DJ Mix Renderer")
	subtitle := subtitleStyle.Render(
		fmt.Sprintf("Mixing %d track(s) → %s", m.PlaylistLen, m.OutputPath))
	return title + "\n" + subtitle
}

// renderStageDetails renders the progress box for the active stage.
func renderStageDetails(stage StageStatus, elapsed time.Duration) string {
	var content strings.Builder

	content.WriteString(renderProgressBar(stage.Percent, 40))
	content.WriteString(fmt.Sprintf(" [%s]\n", formatElapsed(elapsed)))

	if stage.Detail != "" {
		content.WriteString(stage.Detail)
	}

	return boxStyle.Render(content.String())
}

// renderProgressBar renders a progress bar
func renderProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	empty := width - filled

	bar := barFilledStyle.Render(strings.Repeat("━", filled)) +
		barEmptyStyle.Render(strings.Repeat("━", empty))

	return fmt.Sprintf("%s %3d%%", bar, percent)
}

// renderCompletionView renders the final summary.
func renderCompletionView(m Model) string {
	var b strings.Builder

	if m.Err != nil {
		b.WriteString(errorStyle.Render("✗ Render failed"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  %v\n", m.Err))
		return b.String()
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#04B575")).
		Render("✨ Mix Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	if m.Result != nil {
		b.WriteString(fmt.Sprintf(" %s %s\n", doneIconStyle.Render("✓"), m.Result.OutputPath))
		b.WriteString(fmt.Sprintf("   Duration: %s | Tracks: %d",
			formatElapsed(time.Duration(m.Result.DurationSeconds)*time.Second),
			len(m.Result.Reports)))
		if len(m.Result.Excluded) > 0 {
			b.WriteString(fmt.Sprintf(" | Excluded: %d", len(m.Result.Excluded)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Rendered in %s\n", formatElapsed(time.Since(m.StartTime))))

	return b.String()
}

// formatElapsed formats elapsed time as MM:SS or HH:MM:SS
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
