package mix

import (
	"encoding/json"
	"fmt"
	"os"
)

// Playlist is the JSON manifest a render is driven by: an ordered tracklist
// with per-track transition directives and the target tempo.
type Playlist struct {
	TargetBPM float64         `json:"target_bpm"`
	Tracks    []PlaylistTrack `json:"tracks"`
}

// PlaylistTrack is one manifest entry.
type PlaylistTrack struct {
	Path       string              `json:"path"`
	Transition *PlaylistTransition `json:"transition,omitempty"`
}

// PlaylistTransition is the raw transition directive as written in the
// manifest. Unrecognized values fall back to defaults during parsing.
type PlaylistTransition struct {
	Type      string `json:"type"`
	Bars      int    `json:"bars"`
	Direction string `json:"direction,omitempty"`
}

// LoadPlaylist reads and validates a playlist manifest.
func LoadPlaylist(path string) (*Playlist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}

	var pl Playlist
	if err := json.Unmarshal(raw, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse playlist: %w", err)
	}

	if len(pl.Tracks) == 0 {
		return nil, fmt.Errorf("playlist %s contains no tracks", path)
	}
	for i, t := range pl.Tracks {
		if t.Path == "" {
			return nil, fmt.Errorf("playlist track %d has no path", i+1)
		}
	}

	if pl.TargetBPM <= 0 {
		pl.TargetBPM = DefaultConfig().TargetBPM
	}

	return &pl, nil
}

// Entries converts the manifest into pipeline entries, applying directive
// defaults for missing or unrecognized transitions.
func (pl *Playlist) Entries() []PlaylistEntry {
	entries := make([]PlaylistEntry, len(pl.Tracks))
	for i, t := range pl.Tracks {
		directive := DefaultDirective()
		if t.Transition != nil {
			directive = ParseDirective(t.Transition.Type, t.Transition.Bars, t.Transition.Direction)
		}
		entries[i] = PlaylistEntry{Path: t.Path, Directive: directive}
	}
	return entries
}
