package typosquat

import (
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/shell"
)

// Ecosystem names, matching the keys of popular-packages.json.
const (
	EcosystemNPM       = "npm"
	EcosystemPyPI      = "pypi"
	EcosystemPackagist = "packagist"
	EcosystemCrates    = "crates"
	EcosystemRubyGems  = "rubygems"
	EcosystemGo        = "go"
)

// Install is one package-manager install found in a command.
type Install struct {
	Manager   string
	Ecosystem string
	Packages  []string
}

// manager describes how one tool's install verbs take package operands.
type manager struct {
	ecosystem string
	// verbs are subcommand paths, e.g. "install", "global add", "pip install".
	verbs []string
	// valueFlags consume the following argument.
	valueFlags map[string]bool
	// firstOnly keeps only the first operand (npx runs one package).
	firstOnly bool
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var npmValueFlags = set("--registry", "--prefix", "-w", "--workspace", "--tag", "--cache",
	"--userconfig", "--filter", "-C", "--dir", "--cwd", "--omit", "--include", "-p", "--package")

var pipValueFlags = set("-r", "--requirement", "-c", "--constraint", "-e", "--editable",
	"-i", "--index-url", "--extra-index-url", "-t", "--target", "--prefix", "--root",
	"-f", "--find-links", "--trusted-host", "--platform", "--python-version",
	"--implementation", "--abi", "--no-binary", "--only-binary", "--src",
	"--upgrade-strategy", "--cache-dir", "--log", "--python", "-p", "--group",
	"-G", "--source", "-E", "--extras", "--optional", "--with", "--index")

var managers = map[string]manager{
	"npm":      {ecosystem: EcosystemNPM, verbs: []string{"install", "i", "in", "add", "isntall", "install-test", "it"}, valueFlags: npmValueFlags},
	"pnpm":     {ecosystem: EcosystemNPM, verbs: []string{"add", "install", "i"}, valueFlags: npmValueFlags},
	"yarn":     {ecosystem: EcosystemNPM, verbs: []string{"add", "global add"}, valueFlags: npmValueFlags},
	"bun":      {ecosystem: EcosystemNPM, verbs: []string{"add", "install", "i"}, valueFlags: npmValueFlags},
	"npx":      {ecosystem: EcosystemNPM, verbs: []string{""}, valueFlags: npmValueFlags, firstOnly: true},
	"bunx":     {ecosystem: EcosystemNPM, verbs: []string{""}, valueFlags: npmValueFlags, firstOnly: true},
	"pip":      {ecosystem: EcosystemPyPI, verbs: []string{"install"}, valueFlags: pipValueFlags},
	"pip3":     {ecosystem: EcosystemPyPI, verbs: []string{"install"}, valueFlags: pipValueFlags},
	"uv":       {ecosystem: EcosystemPyPI, verbs: []string{"add", "pip install", "tool install"}, valueFlags: pipValueFlags},
	"poetry":   {ecosystem: EcosystemPyPI, verbs: []string{"add"}, valueFlags: pipValueFlags},
	"pipenv":   {ecosystem: EcosystemPyPI, verbs: []string{"install"}, valueFlags: pipValueFlags},
	"pipx":     {ecosystem: EcosystemPyPI, verbs: []string{"install"}, valueFlags: pipValueFlags},
	"composer": {ecosystem: EcosystemPackagist, verbs: []string{"require", "global require"}, valueFlags: set("-d", "--working-dir")},
	"cargo": {ecosystem: EcosystemCrates, verbs: []string{"add", "install"}, valueFlags: set("--version", "--vers",
		"--git", "--path", "--branch", "--tag", "--rev", "-F", "--features", "--registry", "--index", "--root",
		"--target", "-p", "--package", "--rename", "-j", "--jobs", "--profile", "--manifest-path")},
	"gem":    {ecosystem: EcosystemRubyGems, verbs: []string{"install"}, valueFlags: set("-v", "--version", "-s", "--source", "-i", "--install-dir", "-n", "--bindir", "--platform")},
	"bundle": {ecosystem: EcosystemRubyGems, verbs: []string{"add"}, valueFlags: set("-v", "--version", "-s", "--source", "-g", "--group", "--git", "--path", "--branch")},
	"go":     {ecosystem: EcosystemGo, verbs: []string{"get", "install"}, valueFlags: set("-C", "-modfile", "-tags", "-ldflags", "-gcflags", "-o", "-p")},
}

// Installs finds every package-manager install in a shell command.
func Installs(command string) []Install {
	var out []Install
	for _, cmd := range shell.Commands(command) {
		if in, ok := detect(cmd.Unwrap()); ok && len(in.Packages) > 0 {
			out = append(out, in)
		}
	}
	return out
}

func detect(cmd shell.Command) (Install, bool) {
	name := cmd.Name()
	args := cmd.Args
	if len(args) == 0 {
		return Install{}, false
	}
	args = args[1:]
	// python -m pip install ...
	if strings.HasPrefix(name, "python") && len(args) >= 2 && args[0].Value == "-m" && args[1].Literal {
		name = args[1].Value
		args = args[2:]
	}
	m, ok := managers[name]
	if !ok {
		return Install{}, false
	}
	rest, ok := matchVerb(m, args)
	if !ok {
		return Install{}, false
	}
	in := Install{Manager: name, Ecosystem: m.ecosystem}
	for _, op := range operands(rest, m.valueFlags) {
		if pkg := packageName(m.ecosystem, op); pkg != "" {
			in.Packages = append(in.Packages, pkg)
		}
		if m.firstOnly {
			break
		}
	}
	return in, true
}

// matchVerb skips leading flags and matches one of the manager's verbs.
func matchVerb(m manager, args []shell.Word) ([]shell.Word, bool) {
	var words []string
	start := 0
	for start < len(args) && args[start].Literal && strings.HasPrefix(args[start].Value, "-") {
		if m.valueFlags[args[start].Value] {
			start++
		}
		start++
	}
	for _, a := range args[min(start, len(args)):] {
		words = append(words, a.Value)
	}
	for _, verb := range m.verbs {
		if verb == "" {
			return args[min(start, len(args)):], true
		}
		parts := strings.Fields(verb)
		if len(words) < len(parts) {
			continue
		}
		matched := true
		for i, p := range parts {
			if words[i] != p {
				matched = false
				break
			}
		}
		if matched {
			return args[start+len(parts):], true
		}
	}
	return nil, false
}

// operands drops flags, flag values and non-literal words.
func operands(args []shell.Word, valueFlags map[string]bool) []string {
	var out []string
	endOfFlags := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !a.Literal {
			continue
		}
		if !endOfFlags && a.Value == "--" {
			endOfFlags = true
			continue
		}
		if !endOfFlags && strings.HasPrefix(a.Value, "-") {
			flag, _, hasValue := strings.Cut(a.Value, "=")
			if !hasValue && valueFlags[flag] {
				i++
			}
			continue
		}
		out = append(out, a.Value)
	}
	return out
}

// packageName reduces an operand to a bare registry name, or "" for
// operands that are not registry lookups (paths, URLs, archives, versions).
func packageName(ecosystem, op string) string {
	op = strings.TrimSpace(op)
	if op == "" || isLocalOrURL(op) || isVersionConstraint(op) {
		return ""
	}
	switch ecosystem {
	case EcosystemNPM:
		if strings.HasPrefix(op, "@") {
			// @scope/name@version
			if i := strings.Index(op[1:], "@"); i >= 0 {
				op = op[:i+1]
			}
			if !strings.Contains(op, "/") {
				return ""
			}
			return strings.ToLower(op)
		}
		op, _, _ = strings.Cut(op, "@")
		if strings.Contains(op, "/") || strings.Contains(op, ":") {
			// user/repo GitHub shorthand, npm:alias
			return ""
		}
		return strings.ToLower(op)
	case EcosystemPyPI:
		if i := strings.IndexAny(op, "=<>!~[;@ "); i >= 0 {
			op = op[:i]
		}
		return op
	case EcosystemPackagist:
		op, _, _ = strings.Cut(op, ":")
		if !strings.Contains(op, "/") {
			// Platform packages such as php or ext-json.
			return ""
		}
		return strings.ToLower(op)
	case EcosystemCrates:
		op, _, _ = strings.Cut(op, "@")
		return strings.ToLower(op)
	case EcosystemRubyGems:
		op, _, _ = strings.Cut(op, ":")
		return op
	case EcosystemGo:
		op, _, _ = strings.Cut(op, "@")
		if op == "all" || strings.Contains(op, "...") {
			return ""
		}
		return op
	}
	return op
}

func isLocalOrURL(op string) bool {
	lower := strings.ToLower(op)
	for _, p := range []string{".", "/", "~", "file:", "git+", "git:", "github:", "link:", "workspace:", "portal:", "http:", "https:"} {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	if strings.Contains(lower, "://") || (len(op) > 2 && op[1] == ':' && (op[2] == '\\' || op[2] == '/')) {
		return true
	}
	for _, s := range []string{".tgz", ".tar.gz", ".tar.bz2", ".whl", ".zip", ".gem", ".crate"} {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func isVersionConstraint(op string) bool {
	switch op[0] {
	case '^', '~', '>', '<', '=', '*':
		return true
	}
	return strings.HasPrefix(op, "dev-")
}
