// Package cache provides the regenerable per-user store behind the pattern
// resolver. Writes are atomic (temp file + rename) so a reader racing a
// writer sees either the old artifact or the new one, never a partial file.
package cache

import (
	"context"
	"time"
)

// Store is a flat key-value store of small JSON artifacts.
type Store interface {
	// Read returns the artifact or an error wrapping ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write replaces the artifact atomically.
	Write(ctx context.Context, key string, data []byte) error
	// ModTime reports when the artifact was last written.
	ModTime(ctx context.Context, key string) (time.Time, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}
