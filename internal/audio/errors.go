package audio

import "fmt"

// DecodeError reports a track that could not be opened or decoded. The render
// pipeline excludes the track and carries on with the rest of the playlist.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
