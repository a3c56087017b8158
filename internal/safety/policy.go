package safety

import (
	"context"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
)

// FailureMode selects the verdict used when a policy cannot decide.
type FailureMode int

const (
	// FailOpen allows the action when the policy errors or panics.
	FailOpen FailureMode = iota
	// FailClosed blocks the action when the policy errors or panics.
	FailClosed
)

func (m FailureMode) String() string {
	if m == FailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

// Policy is one guard evaluated against an invocation.
type Policy interface {
	// Name is the identifier used on the command line and in kill switches.
	Name() string
	// FailureMode applies to errors returned by Evaluate and to panics.
	FailureMode() FailureMode
	// Applies is a cheap pre-check on the invocation shape.
	Applies(inv *hook.Invocation) bool
	// Evaluate returns the verdict for an applicable invocation.
	Evaluate(ctx context.Context, inv *hook.Invocation) (hook.Decision, error)
}
