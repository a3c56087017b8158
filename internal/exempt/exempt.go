// Package exempt stores per-session exemptions from the path denylist.
//
// An exemption is one line of text naming a path or a base name. Entries
// are appended, never rewritten, and the file is only ever cleared as a
// whole. A missing file is an empty set.
package exempt

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Set is a loaded set of exemption entries.
type Set map[string]struct{}

// Covers reports whether path is exempted, either by its full path, its
// cleaned form, or its base name.
func (s Set) Covers(path string) bool {
	if len(s) == 0 || path == "" {
		return false
	}
	trimmed := strings.TrimRight(path, `/\`)
	candidates := []string{path, trimmed, filepath.Clean(path), filepath.Base(trimmed)}
	for _, c := range candidates {
		if _, ok := s[c]; ok {
			return true
		}
	}
	return false
}

// Entries returns the exemptions sorted.
func (s Set) Entries() []string {
	out := make([]string, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Store reads and appends exemptions at a fixed file path.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the exemption set. Blank lines and # comments are ignored.
func (s *Store) Load() (Set, error) {
	set := Set{}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open exemptions: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read exemptions: %w", err)
	}
	return set, nil
}

// Add appends entries to the store.
func (s *Store) Add(entries ...string) error {
	var b strings.Builder
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.ContainsAny(e, "\r\n") {
			return fmt.Errorf("exemption %q contains a newline", e)
		}
		b.WriteString(e)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create exemptions dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open exemptions: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write exemptions: %w", err)
	}
	return f.Close()
}

// Clear removes every exemption.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear exemptions: %w", err)
	}
	return nil
}
