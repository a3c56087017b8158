// Package hook defines the wire contract between the agent host and the
// guard: the invocation payload read from stdin, the decision written back
// through the exit code and stderr, and the append-only event log.
package hook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Kind classifies an invocation by the shape of its tool input.
type Kind string

const (
	KindFile   Kind = "file"
	KindSearch Kind = "search"
	KindShell  Kind = "shell"
	KindOther  Kind = "other"
)

// Tool names as sent by the host.
const (
	ToolRead         = "Read"
	ToolWrite        = "Write"
	ToolEdit         = "Edit"
	ToolMultiEdit    = "MultiEdit"
	ToolNotebookEdit = "NotebookEdit"
	ToolGlob         = "Glob"
	ToolGrep         = "Grep"
	ToolBash         = "Bash"
)

// ToolInput is the union of tool input fields the guard inspects.
// Unknown fields are ignored.
type ToolInput struct {
	FilePath     string `json:"file_path,omitempty"`
	NotebookPath string `json:"notebook_path,omitempty"`
	Path         string `json:"path,omitempty"`
	Pattern      string `json:"pattern,omitempty"`
	Glob         string `json:"glob,omitempty"`
	Command      string `json:"command,omitempty"`
}

// Invocation is one PreToolUse payload.
type Invocation struct {
	SessionID      string    `json:"session_id,omitempty"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	Cwd            string    `json:"cwd,omitempty"`
	HookEventName  string    `json:"hook_event_name,omitempty"`
	ToolName       string    `json:"tool_name,omitempty"`
	ToolInput      ToolInput `json:"tool_input"`
}

// UnmarshalJSON accepts the host's field names and the generic
// action_kind/payload aliases used by other callers.
func (inv *Invocation) UnmarshalJSON(data []byte) error {
	type plain Invocation
	var raw struct {
		plain
		ActionKind string          `json:"action_kind"`
		Payload    json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*inv = Invocation(raw.plain)
	if inv.ToolName == "" {
		inv.ToolName = raw.ActionKind
	}
	if len(raw.Payload) > 0 && inv.ToolInput == (ToolInput{}) {
		if err := json.Unmarshal(raw.Payload, &inv.ToolInput); err != nil {
			return fmt.Errorf("payload: %w", err)
		}
	}
	return nil
}

// Kind reports how the tool input should be interpreted.
func (inv *Invocation) Kind() Kind {
	switch inv.ToolName {
	case ToolRead, ToolWrite, ToolEdit, ToolMultiEdit, ToolNotebookEdit:
		return KindFile
	case ToolGlob, ToolGrep:
		return KindSearch
	case ToolBash:
		return KindShell
	}
	return KindOther
}

// TargetPath returns the file the tool acts on, if any.
func (inv *Invocation) TargetPath() string {
	if inv.ToolInput.FilePath != "" {
		return inv.ToolInput.FilePath
	}
	return inv.ToolInput.NotebookPath
}

// ReadInvocation decodes one invocation from r, reading at most max bytes.
func ReadInvocation(r io.Reader, max int64) (*Invocation, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read hook input: %w", err)
	}
	if int64(len(data)) > max {
		return nil, ErrInputTooLarge
	}
	return ParseInvocation(data)
}

// ParseInvocation decodes an invocation from a byte slice.
func ParseInvocation(data []byte) (*Invocation, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	var inv Invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	inv.ToolName = strings.TrimSpace(inv.ToolName)
	return &inv, nil
}
