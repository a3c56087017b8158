package exempt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionFile remembers the session id of the most recent hook invocation,
// so that admin commands run outside a hook address the same session.
type SessionFile struct {
	path string
}

// NewSessionFile returns a session file at path.
func NewSessionFile(path string) *SessionFile {
	return &SessionFile{path: path}
}

// Current returns the remembered session id, or "" when none is recorded.
func (f *SessionFile) Current() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Set records id as the current session. Unchanged ids are not rewritten.
func (f *SessionFile) Set(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if cur, err := f.Current(); err == nil && cur == id {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
