package commitlint

import (
	"context"
	"fmt"
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
)

// Name identifies the policy.
const Name = "commit-msg"

// RulesSource overlays the configured rules onto fallback and decodes the
// result into out.
type RulesSource interface {
	CommitRules(ctx context.Context, fallback, out any) error
}

// Policy lints the literal message of git commit commands.
type Policy struct {
	rules RulesSource
}

// NewPolicy returns the commit message policy.
func NewPolicy(rules RulesSource) *Policy {
	return &Policy{rules: rules}
}

func (p *Policy) Name() string                    { return Name }
func (p *Policy) FailureMode() safety.FailureMode { return safety.FailOpen }

func (p *Policy) Applies(inv *hook.Invocation) bool {
	cmd := inv.ToolInput.Command
	return inv.Kind() == hook.KindShell && strings.Contains(cmd, "git") && strings.Contains(cmd, "commit")
}

func (p *Policy) Evaluate(ctx context.Context, inv *hook.Invocation) (hook.Decision, error) {
	commits := Commits(inv.ToolInput.Command)
	if len(commits) == 0 {
		return hook.Allow(), nil
	}

	rules := DefaultRules()
	if p.rules != nil {
		var resolved Rules
		if err := p.rules.CommitRules(ctx, DefaultRules(), &resolved); err != nil {
			return hook.Decision{}, fmt.Errorf("load commit rules: %w", err)
		}
		rules = resolved
	}
	if !rules.Enabled {
		return hook.Allow(), nil
	}

	var report Report
	for _, c := range commits {
		if rules.exempt(c.Mode) || !c.HasMessage {
			continue
		}
		r := Lint(c.Message, rules)
		report.Errors = append(report.Errors, r.Errors...)
		report.Warnings = append(report.Warnings, r.Warnings...)
	}

	switch {
	case report.Failed():
		return hook.Decision{Verdict: hook.VerdictBlock, Policy: Name, Message: formatReport(report)}, nil
	case len(report.Warnings) > 0:
		return hook.Decision{Verdict: hook.VerdictWarn, Policy: Name, Message: formatReport(report)}, nil
	}
	return hook.Allow(), nil
}

func formatReport(r Report) string {
	var b strings.Builder
	if r.Failed() {
		b.WriteString("Blocked: commit message does not follow the commit rules:\n")
	} else {
		b.WriteString("Commit message warnings:\n")
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "  error: %s\n", e)
	}
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	if r.Failed() {
		b.WriteString("Rewrite the message and commit again.")
	}
	return strings.TrimRight(b.String(), "\n")
}
