package ui

import "github.com/deckmix/deckmix/internal/mix"

// StageMsg carries one pipeline progress milestone.
type StageMsg struct {
	Stage   string // mix.StageAnalyzing .. mix.StageExporting
	Percent int    // 0-100 within the stage
	Detail  string // human description, e.g. "Time-stretching: Artist - Title"
}

// TrackExcludedMsg reports a track dropped from the render.
type TrackExcludedMsg struct {
	Path string
	Err  error
}

// RenderCompleteMsg ends the TUI, successfully or not.
type RenderCompleteMsg struct {
	Result *mix.Result
	Err    error
}
