package cache

import "errors"

var (
	// ErrNotFound is returned when a requested key does not exist in the store.
	ErrNotFound = errors.New("cache entry not found")

	// ErrInvalidKey is returned for keys that would escape the cache directory.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrUnsafeDir is returned when the cache directory is a symlink or not a
	// directory, which would let another user redirect our writes.
	ErrUnsafeDir = errors.New("unsafe cache directory")
)
