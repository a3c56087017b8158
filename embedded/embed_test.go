package embedded

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/commitlint"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/resolver"
)

func TestDefaults_OneFilePerDomain(t *testing.T) {
	for _, d := range resolver.Domains() {
		data, err := fs.ReadFile(Defaults(), d.FileName())
		require.NoError(t, err, d)
		assert.True(t, json.Valid(data), d)
	}
}

func TestDefaults_SecretPatterns(t *testing.T) {
	data, err := fs.ReadFile(Defaults(), resolver.DomainSecretPaths.FileName())
	require.NoError(t, err)
	var set resolver.PatternSet
	require.NoError(t, json.Unmarshal(data, &set))
	assert.Contains(t, set.Deny, ".env")
	assert.Contains(t, set.Allow, ".env.example")
}

func TestDefaults_CommitRulesMatchBuiltin(t *testing.T) {
	data, err := fs.ReadFile(Defaults(), resolver.DomainCommitRules.FileName())
	require.NoError(t, err)

	got := commitlint.DefaultRules()
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, commitlint.DefaultRules(), got)
}

func TestHooksJSON(t *testing.T) {
	var manifest struct {
		Hooks map[string][]struct {
			Matcher string `json:"matcher"`
		} `json:"hooks"`
	}
	require.NoError(t, json.Unmarshal(HooksJSON, &manifest))
	require.Len(t, manifest.Hooks["PreToolUse"], 2)
	assert.Equal(t, "Bash", manifest.Hooks["PreToolUse"][1].Matcher)
}
