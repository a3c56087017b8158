package hook

import (
	"fmt"
	"io"
	"strings"
)

// Verdict is the outcome of evaluating an invocation.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictWarn
	VerdictBlock
)

func (v Verdict) String() string {
	switch v {
	case VerdictWarn:
		return "warn"
	case VerdictBlock:
		return "block"
	}
	return "allow"
}

// Exit codes understood by the host.
const (
	ExitAllow = 0
	ExitBlock = 2
)

// Decision is a verdict with its human-readable reason.
type Decision struct {
	Verdict Verdict
	Message string
	Policy  string
}

// Allow is the zero-reason allow decision.
func Allow() Decision { return Decision{Verdict: VerdictAllow} }

// Block returns a blocking decision.
func Block(policy, format string, args ...any) Decision {
	return Decision{Verdict: VerdictBlock, Policy: policy, Message: fmt.Sprintf(format, args...)}
}

// Warn returns an advisory decision.
func Warn(policy, format string, args ...any) Decision {
	return Decision{Verdict: VerdictWarn, Policy: policy, Message: fmt.Sprintf(format, args...)}
}

// Blocked reports whether the decision stops the tool call.
func (d Decision) Blocked() bool { return d.Verdict == VerdictBlock }

// ExitCode maps the verdict to the host exit code.
func (d Decision) ExitCode() int {
	if d.Blocked() {
		return ExitBlock
	}
	return ExitAllow
}

// Emit writes the decision message to w (the host's stderr) and returns the
// exit code to terminate with. Allow decisions write nothing.
func Emit(w io.Writer, d Decision) int {
	if d.Verdict != VerdictAllow && d.Message != "" {
		msg := strings.TrimRight(d.Message, "\n")
		_, _ = fmt.Fprintln(w, msg)
	}
	return d.ExitCode()
}

// Combine folds decisions: the first block wins, warnings accumulate.
func Combine(decisions ...Decision) Decision {
	var warnings []string
	var policies []string
	for _, d := range decisions {
		switch d.Verdict {
		case VerdictBlock:
			return d
		case VerdictWarn:
			warnings = append(warnings, d.Message)
			policies = append(policies, d.Policy)
		}
	}
	if len(warnings) == 0 {
		return Allow()
	}
	return Decision{
		Verdict: VerdictWarn,
		Message: strings.Join(warnings, "\n"),
		Policy:  strings.Join(policies, ","),
	}
}
