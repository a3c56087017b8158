package pathguard

import (
	"path/filepath"
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/shell"
)

// Option configures a Policy.
type Option func(*Policy)

// WithProtectedState marks hookguard's own configuration directories,
// cache and exemption store as off-limits to the agent. A leading "~" in a
// target expands to home; relative targets resolve against the invocation
// cwd. Roots that are not absolute are ignored.
func WithProtectedState(home string, roots ...string) Option {
	return func(p *Policy) {
		p.home = home
		for _, r := range roots {
			if r != "" && filepath.IsAbs(r) {
				p.stateRoots = append(p.stateRoots, filepath.Clean(r))
			}
		}
	}
}

// selfGrant reports whether a shell invocation runs "hookguard exempt add".
// A subcommand that depends on expansion counts as a grant.
func selfGrant(inv *hook.Invocation) bool {
	if inv.Kind() != hook.KindShell {
		return false
	}
	for _, cmd := range shell.Commands(inv.ToolInput.Command) {
		cmd = cmd.Unwrap()
		if cmd.Name() != "hookguard" {
			continue
		}
		words := subcommands(cmd.Args[1:])
		if len(words) >= 2 && words[0] == "exempt" && (words[1] == "add" || words[1] == "") {
			return true
		}
	}
	return false
}

// subcommands returns the positional words of a hookguard command line;
// non-literal words come back empty.
func subcommands(args []shell.Word) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a.Literal && strings.HasPrefix(a.Value, "-") {
			switch a.Value {
			case "-o", "--output", "--session":
				i++
			}
			continue
		}
		if !a.Literal {
			out = append(out, "")
			continue
		}
		out = append(out, a.Value)
	}
	return out
}

// stateTarget returns the first target inside a protected root.
func (p *Policy) stateTarget(inv *hook.Invocation, targets []Target) (Target, bool) {
	if len(p.stateRoots) == 0 {
		return Target{}, false
	}
	for _, t := range targets {
		abs := p.absolute(inv.Cwd, t.Path)
		if abs == "" {
			continue
		}
		for _, root := range p.stateRoots {
			if within(root, abs) {
				return t, true
			}
		}
	}
	return Target{}, false
}

func (p *Policy) absolute(cwd, path string) string {
	switch {
	case path == "~" && p.home != "":
		path = p.home
	case strings.HasPrefix(path, "~/") && p.home != "":
		path = filepath.Join(p.home, path[2:])
	}
	if !filepath.IsAbs(path) {
		if cwd == "" {
			return ""
		}
		path = filepath.Join(cwd, path)
	}
	return filepath.Clean(path)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func selfGrantMessage() hook.Decision {
	return hook.Block(Name,
		"Blocked: exemptions can only be granted by the user.\n"+
			"Ask the user to run the hookguard exempt add command themselves.")
}

func stateMessage(t Target) hook.Decision {
	return hook.Block(Name,
		"Blocked: '%s' is hookguard configuration or state and can only be changed by the user.\n"+
			"To inspect the active configuration, run: hookguard config show",
		t.Path)
}
