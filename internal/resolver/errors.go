package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrDefaultsMissing is the fatal case: a required tier-1 file is absent
	// or unreadable. Dependent security policies must fail closed.
	ErrDefaultsMissing = errors.New("defaults unavailable")

	// ErrCacheMiss reports an absent, stale or corrupt cache artifact.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnknownDomain is returned for a domain name outside Domains().
	ErrUnknownDomain = errors.New("unknown configuration domain")
)

// ConfigError is a fatal configuration error for one domain.
type ConfigError struct {
	Domain Domain
	Path   string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Domain, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Domain, e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *ConfigError) Unwrap() []error {
	return []error{ErrDefaultsMissing, e.Err}
}
