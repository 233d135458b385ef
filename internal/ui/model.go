// Package ui provides the Bubbletea terminal user interface for deckmix
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deckmix/deckmix/internal/mix"
)

// Spinner frames for the active stage indicator
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StageStatus tracks one pipeline stage in display order.
type StageStatus struct {
	Name    string
	Percent int
	Detail  string
	Active  bool
	Done    bool
}

// Model is the Bubbletea model for the render UI.
type Model struct {
	PlaylistLen int
	OutputPath  string

	Stages   []StageStatus
	Excluded []TrackExcludedMsg

	StartTime time.Time
	Done      bool
	Result    *mix.Result
	Err       error

	spinnerIndex int

	// Terminal dimensions
	Width  int
	Height int
}

// tickMsg drives the spinner and elapsed clock.
type tickMsg time.Time

// NewModel creates a render UI model for a playlist of the given length.
func NewModel(playlistLen int, outputPath string) Model {
	stages := []StageStatus{
		{Name: mix.StageAnalyzing},
		{Name: mix.StageStretching},
		{Name: mix.StageMixing},
		{Name: mix.StageExporting},
	}
	return Model{
		PlaylistLen: playlistLen,
		OutputPath:  outputPath,
		Stages:      stages,
		StartTime:   time.Now(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tickMsg:
		if !m.Done {
			m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
			return m, tickCmd()
		}
		return m, nil

	case StageMsg:
		m.applyStage(msg)
		return m, nil

	case TrackExcludedMsg:
		m.Excluded = append(m.Excluded, msg)
		return m, nil

	case RenderCompleteMsg:
		m.Result = msg.Result
		m.Err = msg.Err
		m.Done = true
		for i := range m.Stages {
			m.Stages[i].Active = false
			if msg.Err == nil {
				m.Stages[i].Done = true
				m.Stages[i].Percent = 100
			}
		}
		return m, tea.Quit
	}

	return m, nil
}

// applyStage advances the stage list: everything before the reported stage is
// complete, everything after is still queued.
func (m *Model) applyStage(msg StageMsg) {
	idx := -1
	for i := range m.Stages {
		if m.Stages[i].Name == msg.Stage {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	for i := range m.Stages {
		switch {
		case i < idx:
			m.Stages[i].Done = true
			m.Stages[i].Active = false
			m.Stages[i].Percent = 100
		case i == idx:
			m.Stages[i].Active = true
			m.Stages[i].Percent = msg.Percent
			m.Stages[i].Detail = msg.Detail
			if msg.Percent >= 100 {
				m.Stages[i].Done = true
				m.Stages[i].Active = false
			}
		}
	}
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	if m.Done {
		return renderCompletionView(m)
	}

	return renderProgressView(m)
}
