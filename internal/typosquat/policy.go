package typosquat

import (
	"context"
	"fmt"
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
)

// Name identifies the policy.
const Name = "typosquat"

// ReferenceSource serves the merged popular-package list per ecosystem.
type ReferenceSource interface {
	PopularPackages(ctx context.Context, ecosystem string) ([]string, error)
}

// Policy blocks installs of likely typosquatted packages.
type Policy struct {
	refs ReferenceSource
}

// NewPolicy returns the typosquat policy.
func NewPolicy(refs ReferenceSource) *Policy {
	return &Policy{refs: refs}
}

func (p *Policy) Name() string                    { return Name }
func (p *Policy) FailureMode() safety.FailureMode { return safety.FailOpen }

func (p *Policy) Applies(inv *hook.Invocation) bool {
	return inv.Kind() == hook.KindShell && inv.ToolInput.Command != ""
}

func (p *Policy) Evaluate(ctx context.Context, inv *hook.Invocation) (hook.Decision, error) {
	suspects, err := p.Suspects(ctx, inv.ToolInput.Command)
	if err != nil {
		return hook.Decision{}, err
	}
	if len(suspects) == 0 {
		return hook.Allow(), nil
	}
	return hook.Decision{Verdict: hook.VerdictBlock, Policy: Name, Message: formatSuspects(suspects)}, nil
}

// Suspects checks every package installed by command.
func (p *Policy) Suspects(ctx context.Context, command string) ([]Suspect, error) {
	installs := Installs(command)
	if len(installs) == 0 {
		return nil, nil
	}
	refsByEco := map[string][]string{}
	var suspects []Suspect
	for _, in := range installs {
		refs, ok := refsByEco[in.Ecosystem]
		if !ok {
			var err error
			refs, err = p.refs.PopularPackages(ctx, in.Ecosystem)
			if err != nil {
				return nil, fmt.Errorf("load %s reference list: %w", in.Ecosystem, err)
			}
			refsByEco[in.Ecosystem] = refs
		}
		for _, name := range in.Packages {
			if s, bad := Check(in.Ecosystem, name, refs); bad {
				suspects = append(suspects, s)
			}
		}
	}
	return suspects, nil
}

func formatSuspects(suspects []Suspect) string {
	var b strings.Builder
	b.WriteString("Blocked: possible typosquatted package")
	if len(suspects) > 1 {
		b.WriteString("s")
	}
	b.WriteString(":\n")
	for _, s := range suspects {
		fmt.Fprintf(&b, "  - %s (%s): %s\n", s.Name, s.Ecosystem, s.Reason)
	}
	b.WriteString("Double-check the spelling. If the name is intended, add it to .claude/hookguard/popular-packages.json.")
	return b.String()
}
