package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tier identifies one configuration layer.
type Tier int

const (
	// TierBuiltin is the compiled-in fallback (commit rules only).
	TierBuiltin Tier = iota
	// TierDefaults is the shipped defaults directory.
	TierDefaults
	// TierUser is the user-global override directory.
	TierUser
	// TierProject is the project-local override directory.
	TierProject
)

// Source represents where a config value came from.
type Source string

const (
	SourceBuiltin  Source = "built-in"
	SourceDefaults Source = "defaults"
	SourceUser     Source = "~/.claude/hookguard"
	SourceProject  Source = ".claude/hookguard"
)

// Source returns the display label for the tier.
func (t Tier) Source() Source {
	switch t {
	case TierDefaults:
		return SourceDefaults
	case TierUser:
		return SourceUser
	case TierProject:
		return SourceProject
	default:
		return SourceBuiltin
	}
}

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t.Source())
}

// Paths are the resolved filesystem locations for one invocation.
type Paths struct {
	DefaultsDir string
	UserDir     string
	ProjectDir  string
	CacheDir    string
}

// TierFile is one candidate configuration file.
type TierFile struct {
	Tier Tier
	Path string
}

// ResolvePaths computes Paths from the environment and the project root.
// projectRoot may be empty, in which case the project tier is skipped.
func ResolvePaths(env *Env, projectRoot string) Paths {
	p := Paths{
		DefaultsDir: DefaultDefaultsDir(),
		UserDir:     userDir(),
		CacheDir:    DefaultCacheDir(),
	}
	if env != nil {
		if env.DefaultsDir != "" {
			p.DefaultsDir = env.DefaultsDir
		}
		if env.CacheDir != "" {
			p.CacheDir = env.CacheDir
		}
	}
	if projectRoot != "" {
		p.ProjectDir = filepath.Join(projectRoot, ".claude", "hookguard")
	}
	return p
}

// TierFiles returns the three on-disk candidates for a domain file, lowest
// priority first. Tiers without a directory are omitted.
func (p Paths) TierFiles(name string) []TierFile {
	files := []TierFile{{Tier: TierDefaults, Path: filepath.Join(p.DefaultsDir, name)}}
	if p.UserDir != "" {
		files = append(files, TierFile{Tier: TierUser, Path: filepath.Join(p.UserDir, name)})
	}
	if p.ProjectDir != "" && p.ProjectDir != p.UserDir {
		files = append(files, TierFile{Tier: TierProject, Path: filepath.Join(p.ProjectDir, name)})
	}
	return files
}

// ExemptionsFile returns the exemption store for a session. An explicit
// HOOKGUARD_EXEMPTIONS_FILE wins over the per-session default.
func (p Paths) ExemptionsFile(env *Env, sessionID string) string {
	if env != nil && env.ExemptionsFile != "" {
		return env.ExemptionsFile
	}
	if sessionID == "" {
		sessionID = "default"
	}
	return filepath.Join(p.CacheDir, "exemptions", sanitizeSessionID(sessionID)+".txt")
}

// CurrentSessionFile records the most recent session id seen by the hook.
func (p Paths) CurrentSessionFile() string {
	return filepath.Join(p.CacheDir, "current-session")
}

// EventsFile is the append-only decision log.
func (p Paths) EventsFile() string {
	return filepath.Join(p.CacheDir, "events.jsonl")
}

// LogFile returns the slog output path.
func (p Paths) LogFile(env *Env) string {
	if env != nil && env.LogFile != "" {
		return env.LogFile
	}
	return filepath.Join(p.CacheDir, "hookguard.log")
}

// DefaultCacheDir is scoped per effective user so unrelated users on a shared
// host never share or corrupt each other's cache.
func DefaultCacheDir() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("hookguard-%d", os.Geteuid()))
}

// DefaultDefaultsDir looks for a config/ directory next to the installed
// binary (plugin layout: <root>/bin/hookguard, <root>/config), falling back
// to ~/.config/hookguard.
func DefaultDefaultsDir() string {
	if root := os.Getenv("CLAUDE_PLUGIN_ROOT"); root != "" {
		return filepath.Join(root, "config")
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(filepath.Dir(exe)), "config")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config")
	}
	return filepath.Join(home, ".config", "hookguard")
}

// ProjectRoot picks the project directory for the project tier:
// CLAUDE_PROJECT_DIR, then the invocation cwd, then the process cwd.
func ProjectRoot(invocationCwd string) string {
	if v := strings.TrimSpace(os.Getenv("CLAUDE_PROJECT_DIR")); v != "" {
		return v
	}
	if invocationCwd != "" {
		return invocationCwd
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}

func userDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "hookguard")
}

// sanitizeSessionID keeps session ids usable as file names.
func sanitizeSessionID(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}
