package hook

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInvocation_HostFields(t *testing.T) {
	inv, err := ParseInvocation([]byte(`{
		"session_id": "abc",
		"cwd": "/repo",
		"hook_event_name": "PreToolUse",
		"tool_name": "Read",
		"tool_input": {"file_path": "/repo/.env", "extra": 1}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", inv.SessionID)
	assert.Equal(t, "/repo", inv.Cwd)
	assert.Equal(t, "Read", inv.ToolName)
	assert.Equal(t, "/repo/.env", inv.TargetPath())
	assert.Equal(t, KindFile, inv.Kind())
}

func TestParseInvocation_GenericAliases(t *testing.T) {
	inv, err := ParseInvocation([]byte(`{"action_kind":"Bash","payload":{"command":"ls"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Bash", inv.ToolName)
	assert.Equal(t, "ls", inv.ToolInput.Command)
	assert.Equal(t, KindShell, inv.Kind())
}

func TestParseInvocation_Errors(t *testing.T) {
	_, err := ParseInvocation([]byte("  \n"))
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = ParseInvocation([]byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = ParseInvocation([]byte(`{"action_kind":"Bash","payload":"oops"}`))
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestReadInvocation_SizeLimit(t *testing.T) {
	payload := `{"tool_name":"Bash","tool_input":{"command":"` + strings.Repeat("a", 100) + `"}}`

	_, err := ReadInvocation(strings.NewReader(payload), 50)
	assert.ErrorIs(t, err, ErrInputTooLarge)

	inv, err := ReadInvocation(strings.NewReader(payload), int64(len(payload)))
	require.NoError(t, err)
	assert.Equal(t, "Bash", inv.ToolName)
}

func TestInvocationKind(t *testing.T) {
	tests := map[string]Kind{
		"Read":         KindFile,
		"Write":        KindFile,
		"Edit":         KindFile,
		"MultiEdit":    KindFile,
		"NotebookEdit": KindFile,
		"Glob":         KindSearch,
		"Grep":         KindSearch,
		"Bash":         KindShell,
		"WebFetch":     KindOther,
		"":             KindOther,
	}
	for tool, want := range tests {
		inv := &Invocation{ToolName: tool}
		assert.Equal(t, want, inv.Kind(), tool)
	}
}

func TestTargetPath_Notebook(t *testing.T) {
	inv := &Invocation{ToolName: ToolNotebookEdit, ToolInput: ToolInput{NotebookPath: "a.ipynb"}}
	assert.Equal(t, "a.ipynb", inv.TargetPath())
}

func TestEmit(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ExitAllow, Emit(&buf, Allow()))
	assert.Empty(t, buf.String())

	buf.Reset()
	assert.Equal(t, ExitAllow, Emit(&buf, Warn("commit-msg", "subject is %d characters", 60)))
	assert.Equal(t, "subject is 60 characters\n", buf.String())

	buf.Reset()
	assert.Equal(t, ExitBlock, Emit(&buf, Block("paths", "blocked\n")))
	assert.Equal(t, "blocked\n", buf.String())
}

func TestCombine(t *testing.T) {
	assert.Equal(t, Allow(), Combine())
	assert.Equal(t, Allow(), Combine(Allow(), Allow()))

	d := Combine(Warn("a", "one"), Allow(), Warn("b", "two"))
	assert.Equal(t, VerdictWarn, d.Verdict)
	assert.Equal(t, "one\ntwo", d.Message)
	assert.Equal(t, "a,b", d.Policy)

	d = Combine(Warn("a", "one"), Block("b", "stop"), Block("c", "later"))
	assert.True(t, d.Blocked())
	assert.Equal(t, "stop", d.Message)
	assert.Equal(t, "b", d.Policy)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "allow", VerdictAllow.String())
	assert.Equal(t, "warn", VerdictWarn.String())
	assert.Equal(t, "block", VerdictBlock.String())
}

func TestEventLog_RecordAndTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "events.jsonl")
	log := NewEventLog(path)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	log.now = func() time.Time { return fixed }

	inv := &Invocation{SessionID: "s1", ToolName: "Read"}
	require.NoError(t, log.Record(inv, Block("paths", "no")))
	require.NoError(t, log.Record(inv, Allow()))
	require.NoError(t, log.Record(nil, Warn("typosquat", "hmm")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	events, err := log.Tail(2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "allow", events[0].Verdict)
	assert.Equal(t, "warn", events[1].Verdict)
	assert.Equal(t, "typosquat", events[1].Policy)
	assert.True(t, fixed.Equal(events[0].Time))
	assert.NotEmpty(t, events[0].ID)
	assert.NotEqual(t, events[0].ID, events[1].ID)

	all, err := log.Tail(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "s1", all[0].SessionID)
}

func TestEventLog_NilAndMissing(t *testing.T) {
	var log *EventLog
	assert.NoError(t, log.Record(&Invocation{}, Allow()))
	events, err := log.Tail(5)
	assert.NoError(t, err)
	assert.Nil(t, events)

	events, err = NewEventLog(filepath.Join(t.TempDir(), "none.jsonl")).Tail(5)
	assert.NoError(t, err)
	assert.Empty(t, events)
}

func TestReadEvents_SkipsGarbage(t *testing.T) {
	events, err := readEvents(strings.NewReader("garbage\n{\"verdict\":\"block\"}\n"), 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "block", events[0].Verdict)
}
