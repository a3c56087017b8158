package pathguard

import (
	"context"
	"fmt"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/exempt"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/resolver"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
)

// Name identifies the policy.
const Name = "paths"

// PatternSource serves the resolved secret-path patterns.
type PatternSource interface {
	SecretPatterns(ctx context.Context) (resolver.PatternSet, error)
}

// ExemptionSource loads the current session's exemptions.
type ExemptionSource interface {
	Load() (exempt.Set, error)
}

// Policy blocks file access to protected paths.
type Policy struct {
	patterns   PatternSource
	exemptions ExemptionSource
	home       string
	stateRoots []string
}

// NewPolicy returns the path policy. exemptions may be nil.
func NewPolicy(patterns PatternSource, exemptions ExemptionSource, opts ...Option) *Policy {
	p := &Policy{patterns: patterns, exemptions: exemptions}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) Name() string                    { return Name }
func (p *Policy) FailureMode() safety.FailureMode { return safety.FailClosed }

func (p *Policy) Applies(inv *hook.Invocation) bool {
	switch inv.Kind() {
	case hook.KindFile, hook.KindSearch:
		return true
	case hook.KindShell:
		return inv.ToolInput.Command != ""
	}
	return false
}

func (p *Policy) Evaluate(ctx context.Context, inv *hook.Invocation) (hook.Decision, error) {
	if selfGrant(inv) {
		return selfGrantMessage(), nil
	}
	targets := Targets(inv)
	if t, ok := p.stateTarget(inv, targets); ok {
		return stateMessage(t), nil
	}
	if len(targets) == 0 {
		return hook.Allow(), nil
	}
	set, err := p.patterns.SecretPatterns(ctx)
	if err != nil {
		return hook.Decision{}, fmt.Errorf("protection cache unavailable: %w", err)
	}
	m, err := NewMatcher(set)
	if err != nil {
		return hook.Decision{}, fmt.Errorf("protection cache unavailable: %w", err)
	}
	// An unreadable exemption store grants nothing.
	exemptions := exempt.Set{}
	if p.exemptions != nil {
		if loaded, err := p.exemptions.Load(); err == nil {
			exemptions = loaded
		}
	}

	for _, t := range targets {
		res := m.Check(t, exemptions)
		if res.Outcome == OutcomeDenied {
			return blockMessage(res), nil
		}
	}
	return hook.Allow(), nil
}

func blockMessage(res Result) hook.Decision {
	what := fmt.Sprintf("access to '%s'", res.Target.Path)
	switch res.Target.Via {
	case "pattern", "glob":
		what = fmt.Sprintf("search pattern '%s'", res.Target.Path)
	}
	return hook.Block(Name,
		"Blocked: %s matches protected pattern '%s' (file '%s').\n"+
			"This file may contain secrets. If access is intended, ask the user to run:\n"+
			"  hookguard exempt add %s",
		what, res.Pattern, res.Basename, res.Basename)
}
