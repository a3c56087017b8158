package typosquat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"lodahs", "lodash", 1},
		{"lodash", "lodash", 0},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"reqeusts", "requests", 1},
		{"expres", "express", 1},
		{"ca", "abc", 3},
		{"colors", "colours", 1},
		{"crossenv", "cross-env", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
			assert.Equal(t, tt.want, Distance(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestCheck_LodashScenario(t *testing.T) {
	s, bad := Check(EcosystemNPM, "lodahs", []string{"react", "lodash"})
	require.True(t, bad)
	assert.Equal(t, "lodash", s.Reference)
	assert.Equal(t, 1, s.Distance)
	assert.Equal(t, "1 character different from lodash", s.Reason)
}

func TestCheck_ExactMatchNeverFlags(t *testing.T) {
	refs := []string{"lodash", "react", "react-dom", "@types/node"}
	for _, name := range refs {
		_, bad := Check(EcosystemNPM, name, refs)
		assert.False(t, bad, name)
	}
	_, bad := Check(EcosystemPyPI, "Python_DateUtil", []string{"python-dateutil"})
	assert.False(t, bad)
}

func TestCheck_SeparatorSwap(t *testing.T) {
	s, bad := Check(EcosystemNPM, "react_dom", []string{"react-dom"})
	require.True(t, bad)
	assert.Equal(t, "differs only by hyphen/underscore swap from react-dom", s.Reason)

	s, bad = Check(EcosystemNPM, "crossenv", []string{"cross-env"})
	require.True(t, bad)
	assert.Contains(t, s.Reason, "hyphen/underscore")
}

func TestCheck_TwoEdits(t *testing.T) {
	s, bad := Check(EcosystemNPM, "expresss", []string{"expr"})
	assert.False(t, bad, "length pre-filter")

	s, bad = Check(EcosystemPyPI, "reqests", []string{"requests", "flask"})
	require.True(t, bad)
	assert.Equal(t, 1, s.Distance)

	s, bad = Check(EcosystemNPM, "mongoos", []string{"mongodb", "mongoose"})
	require.True(t, bad)
	assert.Equal(t, "mongoose", s.Reference)
	assert.Equal(t, 1, s.Distance)

	s, bad = Check(EcosystemNPM, "axois-http", []string{"axios-http"})
	require.True(t, bad)
	assert.Equal(t, 1, s.Distance)

	s, bad = Check(EcosystemNPM, "chalkk2", []string{"chalk"})
	require.True(t, bad)
	assert.Equal(t, "2 characters different from chalk", s.Reason)
}

func TestCheck_ShortNamesFlagTwoEdits(t *testing.T) {
	refs := []string{"vue", "koa", "pg", "react"}

	s, bad := Check(EcosystemNPM, "vuw", refs)
	require.True(t, bad)
	assert.Equal(t, 1, s.Distance)

	s, bad = Check(EcosystemNPM, "vxx", refs)
	require.True(t, bad)
	assert.Equal(t, "vue", s.Reference)
	assert.Equal(t, "2 characters different from vue", s.Reason)

	s, bad = Check(EcosystemNPM, "kxz", refs)
	require.True(t, bad)
	assert.Equal(t, "koa", s.Reference)

	_, bad = Check(EcosystemNPM, "abc", []string{"xyz"})
	assert.False(t, bad)
}

func TestCheck_Namespaces(t *testing.T) {
	s, bad := Check(EcosystemNPM, "@typse/node", []string{"node", "@types/node"})
	require.True(t, bad)
	assert.Equal(t, "@types/node", s.Reference)

	_, bad = Check(EcosystemNPM, "expres", []string{"@x/express"})
	assert.False(t, bad)
	_, bad = Check(EcosystemNPM, "@a/lodahs", []string{"lodash"})
	assert.False(t, bad)
}

func TestCheck_Unrelated(t *testing.T) {
	_, bad := Check(EcosystemNPM, "my-internal-tool", []string{"lodash", "react"})
	assert.False(t, bad)
	_, bad = Check(EcosystemNPM, "anything", nil)
	assert.False(t, bad)
}

func TestInstalls(t *testing.T) {
	tests := []struct {
		cmd       string
		ecosystem string
		want      []string
	}{
		{"npm install lodahs", EcosystemNPM, []string{"lodahs"}},
		{"npm i -D @types/node@18 react@^18.2.0 ./local ../x.tgz user/repo git+https://h/r.git", EcosystemNPM, []string{"@types/node", "react"}},
		{"npm install --registry https://r.example.com left-pad", EcosystemNPM, []string{"left-pad"}},
		{"sudo npm install -g typescript", EcosystemNPM, []string{"typescript"}},
		{"cd web && yarn add left-pad", EcosystemNPM, []string{"left-pad"}},
		{"pnpm add zod", EcosystemNPM, []string{"zod"}},
		{"bun add hono", EcosystemNPM, []string{"hono"}},
		{"npx create-react-app my-app", EcosystemNPM, []string{"create-react-app"}},
		{"pip install requests==2.31 'flask[async]>=2' -r req.txt", EcosystemPyPI, []string{"requests", "flask"}},
		{"python3 -m pip install numpy", EcosystemPyPI, []string{"numpy"}},
		{"uv pip install pandas", EcosystemPyPI, []string{"pandas"}},
		{"poetry add --group dev pytest", EcosystemPyPI, []string{"pytest"}},
		{"composer require monolog/monolog:^3.0 php ext-json", EcosystemPackagist, []string{"monolog/monolog"}},
		{"cargo add serde@1.0 --features derive tokio", EcosystemCrates, []string{"serde", "tokio"}},
		{"gem install rails -v 7.0", EcosystemRubyGems, []string{"rails"}},
		{"go get github.com/spf13/cobra@v1.8.0", EcosystemGo, []string{"github.com/spf13/cobra"}},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			installs := Installs(tt.cmd)
			if len(tt.want) == 0 {
				assert.Empty(t, installs)
				return
			}
			require.Len(t, installs, 1)
			assert.Equal(t, tt.ecosystem, installs[0].Ecosystem)
			assert.Equal(t, tt.want, installs[0].Packages)
		})
	}
}

func TestInstalls_NotInstalls(t *testing.T) {
	for _, cmd := range []string{
		"npm run build", "npm install", "pip install .", "pip install -e .", "go build ./...",
		"go install ./cmd/tool", "cargo build", "ls -la", "yarn", "echo npm install lodahs",
	} {
		assert.Empty(t, Installs(cmd), cmd)
	}
}

type fakeRefs struct {
	lists map[string][]string
	err   error
	calls int
}

func (f *fakeRefs) PopularPackages(_ context.Context, eco string) ([]string, error) {
	f.calls++
	return f.lists[eco], f.err
}

func bash(cmd string) *hook.Invocation {
	return &hook.Invocation{ToolName: hook.ToolBash, ToolInput: hook.ToolInput{Command: cmd}}
}

func TestPolicy(t *testing.T) {
	refs := &fakeRefs{lists: map[string][]string{
		EcosystemNPM:  {"lodash", "react"},
		EcosystemPyPI: {"requests"},
	}}
	p := NewPolicy(refs)

	d, err := p.Evaluate(context.Background(), bash("npm install lodahs"))
	require.NoError(t, err)
	assert.True(t, d.Blocked())
	assert.Contains(t, d.Message, "lodahs (npm): 1 character different from lodash")

	d, err = p.Evaluate(context.Background(), bash("npm install lodash react && pip install requests"))
	require.NoError(t, err)
	assert.False(t, d.Blocked())

	refs.calls = 0
	d, err = p.Evaluate(context.Background(), bash("npm i lodahs reactt && npm i lodash"))
	require.NoError(t, err)
	assert.True(t, d.Blocked())
	assert.Contains(t, d.Message, "packages:")
	assert.Contains(t, d.Message, "reactt (npm)")
	assert.Equal(t, 1, refs.calls)
}

func TestPolicy_FailsOpen(t *testing.T) {
	p := NewPolicy(&fakeRefs{err: errors.New("defaults unavailable")})
	_, err := p.Evaluate(context.Background(), bash("npm install lodahs"))
	require.Error(t, err)

	assert.Equal(t, safety.FailOpen, p.FailureMode())
	d := safety.NewDispatcher([]safety.Policy{p}).Evaluate(context.Background(), p, bash("npm install lodahs"))
	assert.False(t, d.Blocked())
}
