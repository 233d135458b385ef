package mix

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Session scopes a render's temporary files to one directory, removed on
// every exit path including cancellation.
type Session struct {
	ID  string
	Dir string
}

// NewSession creates a per-render temp directory under root (os.TempDir
// when empty).
func NewSession(root string) (*Session, error) {
	if root == "" {
		root = os.TempDir()
	}

	id := uuid.NewString()
	dir := filepath.Join(root, "deckmix-"+id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}

	return &Session{ID: id, Dir: dir}, nil
}

// Close removes the session directory and everything in it.
func (s *Session) Close() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	return os.RemoveAll(s.Dir)
}
