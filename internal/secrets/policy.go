package secrets

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/pathguard"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/shell"
)

// Name identifies the policy.
const Name = "credentials"

// MaxListed bounds the findings listed in a block message.
const MaxListed = 10

// Policy blocks commits whose staged changes contain credentials or
// protected files.
type Policy struct {
	source   DiffSource
	patterns pathguard.PatternSource
}

// NewPolicy returns the credential policy. patterns may be nil, in which
// case staged file names are not checked against the path denylist.
func NewPolicy(source DiffSource, patterns pathguard.PatternSource) *Policy {
	return &Policy{source: source, patterns: patterns}
}

func (p *Policy) Name() string                    { return Name }
func (p *Policy) FailureMode() safety.FailureMode { return safety.FailClosed }

// Applies is a hot-path check: only shell commands mentioning git.
func (p *Policy) Applies(inv *hook.Invocation) bool {
	return inv.Kind() == hook.KindShell && strings.Contains(inv.ToolInput.Command, "git")
}

func (p *Policy) Evaluate(ctx context.Context, inv *hook.Invocation) (hook.Decision, error) {
	cmds := shell.Commands(inv.ToolInput.Command)
	var findings []Finding
	staged := false
	for _, c := range cmds {
		call, ok := c.Git()
		if !ok {
			continue
		}
		if call.Subcommand == "add" {
			staged = true
			continue
		}
		if call.Subcommand != "commit" {
			continue
		}
		dir := commitDir(inv.Cwd, call.Dir)
		// Changes staged earlier in the same command line are not in the
		// index yet, so compare against HEAD instead.
		unified, err := p.source.Diff(ctx, dir, staged || commitsAll(call.Args))
		if err != nil {
			return hook.Decision{}, fmt.Errorf("read staged diff: %w", err)
		}
		found, err := p.scan(ctx, unified)
		if err != nil {
			return hook.Decision{}, err
		}
		findings = append(findings, found...)
	}
	if len(findings) == 0 {
		return hook.Allow(), nil
	}
	return hook.Decision{Verdict: hook.VerdictBlock, Policy: Name, Message: FormatFindings(findings)}, nil
}

func (p *Policy) scan(ctx context.Context, unified []byte) ([]Finding, error) {
	var findings []Finding
	if p.patterns != nil {
		set, err := p.patterns.SecretPatterns(ctx)
		if err != nil {
			return nil, fmt.Errorf("protection cache unavailable: %w", err)
		}
		m, err := pathguard.NewMatcher(set)
		if err != nil {
			return nil, fmt.Errorf("protection cache unavailable: %w", err)
		}
		for _, f := range ChangedFiles(unified) {
			res := m.Check(pathguard.Target{Path: f}, nil)
			if res.Outcome == pathguard.OutcomeDenied {
				findings = append(findings, Finding{
					Kind:      "Protected File",
					File:      f,
					Excerpt:   "staged file matches a protected path",
					Reference: res.Pattern,
				})
			}
		}
	}
	return append(findings, Scan(unified)...), nil
}

// commitsAll reports -a/--all, including combined short flags like -am.
func commitsAll(args []shell.Word) bool {
	for _, a := range args {
		v := a.Value
		if v == "--" {
			return false
		}
		if v == "--all" {
			return true
		}
		if strings.HasPrefix(v, "-") && !strings.HasPrefix(v, "--") {
			flags := v[1:]
			// -m and -F take a value; letters after them are the value.
			if i := strings.IndexAny(flags, "mFCcut"); i >= 0 {
				flags = flags[:i]
			}
			if strings.Contains(flags, "a") {
				return true
			}
		}
	}
	return false
}

func commitDir(cwd, dir string) string {
	switch {
	case dir == "":
		return cwd
	case filepath.IsAbs(dir) || cwd == "":
		return dir
	default:
		return filepath.Join(cwd, dir)
	}
}

// FormatFindings renders the block message, listing at most MaxListed
// findings.
func FormatFindings(findings []Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Blocked: potential secrets in the changes being committed (%d finding", len(findings))
	if len(findings) != 1 {
		b.WriteString("s")
	}
	b.WriteString("):\n")
	for i, f := range findings {
		if i == MaxListed {
			fmt.Fprintf(&b, "  +%d more\n", len(findings)-MaxListed)
			break
		}
		loc := f.File
		if f.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.File, f.Line)
		}
		fmt.Fprintf(&b, "  - %s at %s: %s", f.Kind, loc, f.Excerpt)
		if f.Reference != "" {
			fmt.Fprintf(&b, " (pattern '%s')", f.Reference)
		}
		b.WriteString("\n")
	}
	b.WriteString("Move secrets to environment variables or a secret manager, unstage protected files, and retry.")
	return b.String()
}
