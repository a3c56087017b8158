package pathguard

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/cache"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/config"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/exempt"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/resolver"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
)

type staticPatterns struct {
	set resolver.PatternSet
	err error
}

func (s staticPatterns) SecretPatterns(context.Context) (resolver.PatternSet, error) {
	return s.set, s.err
}

var defaultSet = resolver.PatternSet{
	Deny:  []string{".env", ".env.*", "*.pem", "*.key", "id_rsa", "credentials.json", ".aws/credentials"},
	Allow: []string{".env.example", ".env.sample"},
}

func readInv(path string) *hook.Invocation {
	return &hook.Invocation{ToolName: hook.ToolRead, ToolInput: hook.ToolInput{FilePath: path}}
}

func bashInv(cmd string) *hook.Invocation {
	return &hook.Invocation{ToolName: hook.ToolBash, ToolInput: hook.ToolInput{Command: cmd}}
}

func evaluate(t *testing.T, p *Policy, inv *hook.Invocation) hook.Decision {
	t.Helper()
	d, err := p.Evaluate(context.Background(), inv)
	require.NoError(t, err)
	return d
}

func TestExactBasenameScenario(t *testing.T) {
	p := NewPolicy(staticPatterns{set: resolver.PatternSet{Deny: []string{".env"}}}, nil)

	d := evaluate(t, p, readInv("/repo/.env"))
	assert.True(t, d.Blocked())
	assert.Contains(t, d.Message, "'.env'")
	assert.Contains(t, d.Message, "hookguard exempt add .env")

	d = evaluate(t, p, readInv("/repo/.env.example"))
	assert.False(t, d.Blocked())
}

func TestPrecedence(t *testing.T) {
	set := resolver.PatternSet{Deny: []string{"*.pem"}, Allow: []string{"public.pem"}}
	m, err := NewMatcher(set)
	require.NoError(t, err)

	res := m.Check(Target{Path: "certs/public.pem"}, nil)
	assert.Equal(t, OutcomeAllowed, res.Outcome)
	assert.Equal(t, "public.pem", res.Pattern)

	res = m.Check(Target{Path: "certs/server.pem"}, exempt.Set{"server.pem": {}})
	assert.Equal(t, OutcomeExempt, res.Outcome)

	res = m.Check(Target{Path: "certs/server.pem"}, nil)
	assert.Equal(t, OutcomeDenied, res.Outcome)
	assert.Equal(t, "*.pem", res.Pattern)
	assert.Equal(t, "server.pem", res.Basename)

	res = m.Check(Target{Path: "main.go"}, nil)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
}

func TestAllowBeatsDenyForAnyBasename(t *testing.T) {
	m, err := NewMatcher(resolver.PatternSet{Deny: []string{"*"}, Allow: []string{"*"}})
	require.NoError(t, err)
	for _, name := range []string{".env", "id_rsa", "x.pem", "a b"} {
		assert.Equal(t, OutcomeAllowed, m.Check(Target{Path: name}, nil).Outcome, name)
	}
}

func TestExemptionAcrossInvocations(t *testing.T) {
	store := exempt.NewStore(filepath.Join(t.TempDir(), "exemptions.txt"))
	p := NewPolicy(staticPatterns{set: defaultSet}, store)

	assert.True(t, evaluate(t, p, readInv("/repo/.env")).Blocked())
	require.NoError(t, store.Add(".env"))
	for i := 0; i < 3; i++ {
		assert.False(t, evaluate(t, p, readInv("/repo/.env")).Blocked())
		assert.False(t, evaluate(t, p, bashInv("cat /repo/.env")).Blocked())
	}
	assert.True(t, evaluate(t, p, readInv("/repo/server.key")).Blocked())
}

func TestTrailingSeparator(t *testing.T) {
	p := NewPolicy(staticPatterns{set: defaultSet}, nil)
	assert.True(t, evaluate(t, p, readInv("/repo/.env/")).Blocked())
	assert.Equal(t, ".env", Basename("/repo/.env//"))
	assert.Equal(t, "", Basename("/"))
	assert.Equal(t, "", Basename("."))
}

func TestPathPatterns(t *testing.T) {
	p := NewPolicy(staticPatterns{set: defaultSet}, nil)
	assert.True(t, evaluate(t, p, readInv(".aws/credentials")).Blocked())
	assert.False(t, evaluate(t, p, readInv("/home/u/docs/credentials")).Blocked())
}

func TestFileTools(t *testing.T) {
	p := NewPolicy(staticPatterns{set: defaultSet}, nil)
	tests := []struct {
		name    string
		inv     *hook.Invocation
		blocked bool
	}{
		{"write", &hook.Invocation{ToolName: hook.ToolWrite, ToolInput: hook.ToolInput{FilePath: "/r/.env.local"}}, true},
		{"edit allowed", &hook.Invocation{ToolName: hook.ToolEdit, ToolInput: hook.ToolInput{FilePath: "/r/.env.example"}}, false},
		{"notebook", &hook.Invocation{ToolName: hook.ToolNotebookEdit, ToolInput: hook.ToolInput{NotebookPath: "/r/id_rsa"}}, true},
		{"glob pattern", &hook.Invocation{ToolName: hook.ToolGlob, ToolInput: hook.ToolInput{Pattern: "**/.env"}}, true},
		{"glob wildcard", &hook.Invocation{ToolName: hook.ToolGlob, ToolInput: hook.ToolInput{Pattern: "**/*.go"}}, false},
		{"grep path", &hook.Invocation{ToolName: hook.ToolGrep, ToolInput: hook.ToolInput{Pattern: "KEY", Path: "/r/server.key"}}, true},
		{"grep glob", &hook.Invocation{ToolName: hook.ToolGrep, ToolInput: hook.ToolInput{Pattern: "KEY", Glob: "*.pem"}}, true},
		{"grep regex not a path", &hook.Invocation{ToolName: hook.ToolGrep, ToolInput: hook.ToolInput{Pattern: ".env"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.blocked, evaluate(t, p, tt.inv).Blocked())
		})
	}
}

func TestSearchBlockMessage(t *testing.T) {
	p := NewPolicy(staticPatterns{set: defaultSet}, nil)
	d := evaluate(t, p, &hook.Invocation{ToolName: hook.ToolGlob, ToolInput: hook.ToolInput{Pattern: "**/.env"}})
	assert.Contains(t, d.Message, "search pattern '**/.env'")
}

func TestShellCommands(t *testing.T) {
	p := NewPolicy(staticPatterns{set: defaultSet}, nil)
	tests := []struct {
		cmd     string
		blocked bool
	}{
		{"cat .env", true},
		{"cat .env.example", false},
		{"ls -la", false},
		{"echo hello > notes.txt", false},
		{"echo KEY=1 >> .env", true},
		{"mysql < config/.env", true},
		{"cd app && cat server.key | head -5", true},
		{"head -n 20 id_rsa", true},
		{"grep -r SECRET .env", true},
		{"grep .env README.md", false},
		{"grep -e TOKEN -- .env", true},
		{"sed -i 's/a/b/' .env", true},
		{"awk -F= '{print $1}' .env", true},
		{"rg TOKEN -g '*.pem'", true},
		{"cp id_rsa /tmp/x", true},
		{"scp host:/home/u/.env .", true},
		{"source .env", true},
		{". ./.env", true},
		{"sudo cat /etc/ssl/private/server.key", true},
		{"echo $(cat .env)", true},
		{`cat "$HOME/.env"`, false},
		{"python manage.py runserver", false},
		{"git diff .env", false},
		{"cat 'unterminated .env", false},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			assert.Equal(t, tt.blocked, evaluate(t, p, bashInv(tt.cmd)).Blocked())
		})
	}
}

func TestCommandTargets(t *testing.T) {
	targets := CommandTargets("cat a.txt b.txt > out.txt")
	var paths []string
	for _, tg := range targets {
		paths = append(paths, tg.Path)
	}
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "out.txt"}, paths)
}

func TestCommandTargets_HostPrefix(t *testing.T) {
	tests := []struct {
		cmd  string
		want []string
	}{
		{"scp deploy@host:/srv/.env .", []string{"/srv/.env", "."}},
		{"rsync -a host:conf/ ./conf", []string{"conf/", "./conf"}},
		{"cat notes:draft.txt", []string{"notes:draft.txt"}},
		{"less a:b", []string{"a:b"}},
	}
	for _, tt := range tests {
		var paths []string
		for _, tg := range CommandTargets(tt.cmd) {
			paths = append(paths, tg.Path)
		}
		assert.Equal(t, tt.want, paths, tt.cmd)
	}
}

func TestApplies(t *testing.T) {
	p := NewPolicy(staticPatterns{}, nil)
	assert.True(t, p.Applies(readInv("x")))
	assert.True(t, p.Applies(bashInv("ls")))
	assert.False(t, p.Applies(bashInv("")))
	assert.False(t, p.Applies(&hook.Invocation{ToolName: "WebFetch"}))
	assert.Equal(t, safety.FailClosed, p.FailureMode())
}

func TestResolverErrorFailsClosed(t *testing.T) {
	p := NewPolicy(staticPatterns{err: errors.New("boom")}, nil)
	_, err := p.Evaluate(context.Background(), readInv("/repo/main.go"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protection cache unavailable")

	d := safety.NewDispatcher([]safety.Policy{p}).Evaluate(context.Background(), p, readInv("/repo/main.go"))
	assert.True(t, d.Blocked())
}

func TestMissingDefaultsScenario(t *testing.T) {
	root := t.TempDir()
	paths := config.Paths{
		DefaultsDir: filepath.Join(root, "defaults"),
		CacheDir:    filepath.Join(root, "cache"),
	}
	store, err := cache.NewFileStore(paths.CacheDir)
	require.NoError(t, err)
	res := resolver.New(paths, store, nil)

	_, err = res.SecretPatterns(context.Background())
	require.ErrorIs(t, err, resolver.ErrDefaultsMissing)

	p := NewPolicy(res, nil)
	dispatcher := safety.NewDispatcher([]safety.Policy{p})
	for _, inv := range []*hook.Invocation{readInv("/repo/main.go"), bashInv("cat README.md")} {
		d, err := dispatcher.Dispatch(context.Background(), inv, "")
		require.NoError(t, err)
		assert.True(t, d.Blocked())
		assert.Contains(t, d.Message, "protection cache unavailable")
	}
}

func TestPathPatternSuffix(t *testing.T) {
	m, err := NewMatcher(resolver.PatternSet{Deny: []string{".aws/credentials"}})
	require.NoError(t, err)
	assert.Equal(t, OutcomeDenied, m.Check(Target{Path: "/home/u/.aws/credentials"}, nil).Outcome)
	assert.Equal(t, OutcomeNoMatch, m.Check(Target{Path: "/home/u/x.aws/credentials"}, nil).Outcome)
}

func TestSelfGrantBlocked(t *testing.T) {
	p := NewPolicy(staticPatterns{set: defaultSet}, nil)

	for _, cmd := range []string{
		"hookguard exempt add .env",
		"/opt/plugin/bin/hookguard exempt add id_rsa",
		"sudo hookguard -o json exempt add .env",
		"true && hookguard exempt --session s1 add .env",
		`hookguard exempt "$SUB" .env`,
	} {
		d := evaluate(t, p, bashInv(cmd))
		assert.True(t, d.Blocked(), cmd)
		assert.Contains(t, d.Message, "only be granted by the user", cmd)
	}

	for _, cmd := range []string{"hookguard exempt list", "hookguard exempt clear", "hookguard doctor", "echo hookguard exempt add .env"} {
		assert.False(t, evaluate(t, p, bashInv(cmd)).Blocked(), cmd)
	}
}

func TestProtectedState(t *testing.T) {
	home := "/home/dev"
	cache := "/tmp/hookguard-1000"
	p := NewPolicy(staticPatterns{set: defaultSet}, nil, WithProtectedState(home,
		"/opt/plugin/config",
		filepath.Join(home, ".claude", "hookguard"),
		"/repo/.claude/hookguard",
		cache,
		"/var/lib/exemptions.txt",
		"relative/dir",
		"",
	))
	write := func(path string) *hook.Invocation {
		return &hook.Invocation{Cwd: "/repo", ToolName: hook.ToolWrite, ToolInput: hook.ToolInput{FilePath: path}}
	}
	shellIn := func(cmd string) *hook.Invocation {
		inv := bashInv(cmd)
		inv.Cwd = "/repo"
		return inv
	}

	blocked := []*hook.Invocation{
		write("/repo/.claude/hookguard/secret-patterns.json"),
		write(".claude/hookguard/secret-patterns.json"),
		write("/opt/plugin/config/secret-patterns.json"),
		shellIn("echo .env >> " + cache + "/exemptions/s1.txt"),
		shellIn("cp allow.json ~/.claude/hookguard/secret-patterns.json"),
		shellIn("cat /var/lib/exemptions.txt"),
		shellIn("sed -i s/x/y/ " + cache + "/patterns.json"),
	}
	for _, inv := range blocked {
		d := evaluate(t, p, inv)
		assert.True(t, d.Blocked(), "%+v", inv.ToolInput)
		assert.Contains(t, d.Message, "hookguard configuration or state")
	}

	allowed := []*hook.Invocation{
		write("/repo/src/main.go"),
		write("/repo/.claude/settings.json"),
		write("/tmp/hookguard-10000/x"),
		write("/repo/relative/dir/file"),
	}
	for _, inv := range allowed {
		assert.False(t, evaluate(t, p, inv).Blocked(), inv.ToolInput.FilePath)
	}
}
