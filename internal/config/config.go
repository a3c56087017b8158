// Package config resolves hookguard's process environment and the on-disk
// locations of its configuration tiers, pattern cache and exemption store.
//
// Configuration is layered (lowest to highest priority):
//  1. Built-in defaults (<defaults dir>/<file>, required for security domains)
//  2. User-global overrides (~/.claude/hookguard/<file>)
//  3. Project-local overrides (<project>/.claude/hookguard/<file>)
//
// Process behavior (cache location, log level, kill switches) comes from
// HOOKGUARD_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const namespace = "HOOKGUARD"

// DefaultMaxInputBytes caps a single hook invocation read from stdin.
const DefaultMaxInputBytes = 1 << 20

// Env holds all HOOKGUARD_* environment settings.
type Env struct {
	// DefaultsDir holds the tier-1 default files. Empty means auto-detect.
	DefaultsDir string `envconfig:"DEFAULTS_DIR"`

	// CacheDir is the per-user pattern cache directory. Empty means
	// $TMPDIR/hookguard-<uid>.
	CacheDir string `envconfig:"CACHE_DIR"`

	// ExemptionsFile overrides the session-scoped exemption store path.
	ExemptionsFile string `envconfig:"EXEMPTIONS_FILE"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFile  string `envconfig:"LOG_FILE"`

	// Disabled turns every policy off (global kill switch).
	Disabled bool `envconfig:"DISABLED" default:"false"`

	// DisabledPolicies turns individual policies off by name.
	DisabledPolicies []string `envconfig:"DISABLED_POLICIES"`

	MaxInputBytes int64 `envconfig:"MAX_INPUT_BYTES" default:"1048576"`

	// Events enables the append-only decision event log.
	Events bool `envconfig:"EVENTS" default:"true"`
}

// LoadEnv reads HOOKGUARD_* variables into an Env.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if env.MaxInputBytes <= 0 {
		env.MaxInputBytes = DefaultMaxInputBytes
	}
	return &env, nil
}

// SlogLevel parses LogLevel, defaulting to warn.
func (e *Env) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// PolicyDisabled reports whether the named policy is switched off, either
// globally or through DisabledPolicies.
func (e *Env) PolicyDisabled(name string) bool {
	if e == nil {
		return false
	}
	if e.Disabled {
		return true
	}
	for _, p := range e.DisabledPolicies {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return true
		}
	}
	return false
}
