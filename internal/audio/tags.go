package audio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// TrackMeta holds the display metadata of a track
type TrackMeta struct {
	Title  string
	Artist string
}

// Display returns "Artist - Title", or just the title when no artist is known.
func (m TrackMeta) Display() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}

// ReadTrackMeta reads title and artist from the file's tags. Files without
// usable tags fall back to the bare filename, so the result is always
// displayable.
func ReadTrackMeta(path string) TrackMeta {
	meta := TrackMeta{
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	f, err := os.Open(path)
	if err != nil {
		return meta
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return meta
	}

	if t := strings.TrimSpace(m.Title()); t != "" {
		meta.Title = t
	}
	if a := strings.TrimSpace(m.Artist()); a != "" {
		meta.Artist = a
	}
	return meta
}
