package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_Defaults(t *testing.T) {
	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "warn", env.LogLevel)
	assert.Equal(t, int64(DefaultMaxInputBytes), env.MaxInputBytes)
	assert.True(t, env.Events)
	assert.False(t, env.Disabled)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("HOOKGUARD_CACHE_DIR", "/tmp/custom-cache")
	t.Setenv("HOOKGUARD_DISABLED_POLICIES", "typosquat,commit-msg")
	t.Setenv("HOOKGUARD_MAX_INPUT_BYTES", "2048")
	t.Setenv("HOOKGUARD_LOG_LEVEL", "debug")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/custom-cache", env.CacheDir)
	assert.Equal(t, []string{"typosquat", "commit-msg"}, env.DisabledPolicies)
	assert.Equal(t, int64(2048), env.MaxInputBytes)
	assert.Equal(t, slog.LevelDebug, env.SlogLevel())
}

func TestEnv_PolicyDisabled(t *testing.T) {
	env := &Env{DisabledPolicies: []string{" Typosquat "}}
	assert.True(t, env.PolicyDisabled("typosquat"))
	assert.False(t, env.PolicyDisabled("paths"))

	env.Disabled = true
	assert.True(t, env.PolicyDisabled("paths"), "global kill switch disables everything")

	var nilEnv *Env
	assert.False(t, nilEnv.PolicyDisabled("paths"))
}

func TestSlogLevel_Invalid(t *testing.T) {
	env := &Env{LogLevel: "loud"}
	assert.Equal(t, slog.LevelWarn, env.SlogLevel())
}

func TestResolvePaths(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	env := &Env{DefaultsDir: "/opt/hookguard/config", CacheDir: "/tmp/hg"}

	p := ResolvePaths(env, "/work/repo")

	assert.Equal(t, "/opt/hookguard/config", p.DefaultsDir)
	assert.Equal(t, "/tmp/hg", p.CacheDir)
	assert.Equal(t, filepath.Join("/work/repo", ".claude", "hookguard"), p.ProjectDir)

	files := p.TierFiles("secret-patterns.json")
	require.Len(t, files, 3)
	assert.Equal(t, TierDefaults, files[0].Tier)
	assert.Equal(t, TierUser, files[1].Tier)
	assert.Equal(t, TierProject, files[2].Tier)
	assert.Equal(t, filepath.Join("/work/repo", ".claude", "hookguard", "secret-patterns.json"), files[2].Path)
}

func TestResolvePaths_NoProject(t *testing.T) {
	p := ResolvePaths(&Env{DefaultsDir: "/d"}, "")
	for _, f := range p.TierFiles("x.json") {
		assert.NotEqual(t, TierProject, f.Tier)
	}
}

func TestDefaultCacheDir_UserScoped(t *testing.T) {
	dir := DefaultCacheDir()
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "hookguard-"))
}

func TestExemptionsFile(t *testing.T) {
	p := Paths{CacheDir: "/tmp/hg"}

	assert.Equal(t, filepath.Join("/tmp/hg", "exemptions", "abc-123.txt"), p.ExemptionsFile(nil, "abc-123"))
	assert.Equal(t, filepath.Join("/tmp/hg", "exemptions", "default.txt"), p.ExemptionsFile(nil, ""))
	assert.Equal(t, filepath.Join("/tmp/hg", "exemptions", "___etc_passwd.txt"), p.ExemptionsFile(nil, "../etc/passwd"))

	env := &Env{ExemptionsFile: "/var/tmp/ex.txt"}
	assert.Equal(t, "/var/tmp/ex.txt", p.ExemptionsFile(env, "abc"))
}

func TestProjectRoot(t *testing.T) {
	t.Setenv("CLAUDE_PROJECT_DIR", "")
	assert.Equal(t, "/from/invocation", ProjectRoot("/from/invocation"))

	t.Setenv("CLAUDE_PROJECT_DIR", "/from/env")
	assert.Equal(t, "/from/env", ProjectRoot("/from/invocation"))
}

func TestTierSource(t *testing.T) {
	assert.Equal(t, SourceBuiltin, TierBuiltin.Source())
	assert.Equal(t, SourceDefaults, TierDefaults.Source())
	assert.Equal(t, SourceUser, TierUser.Source())
	assert.Equal(t, "~/.claude/hookguard", TierUser.String())
	assert.Equal(t, SourceProject, TierProject.Source())
}
