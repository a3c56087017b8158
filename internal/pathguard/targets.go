package pathguard

import (
	"path/filepath"
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/shell"
)

// Target is one path an invocation would touch.
type Target struct {
	Path string
	// Via names where the path came from, for messages: "file_path",
	// "pattern", "glob", "path", or the shell verb.
	Via string
}

// Targets extracts every path an invocation reads, writes or searches.
func Targets(inv *hook.Invocation) []Target {
	in := inv.ToolInput
	var out []Target
	add := func(path, via string) {
		if strings.TrimSpace(path) != "" {
			out = append(out, Target{Path: path, Via: via})
		}
	}
	switch inv.Kind() {
	case hook.KindFile:
		add(in.FilePath, "file_path")
		add(in.NotebookPath, "notebook_path")
	case hook.KindSearch:
		add(in.Path, "path")
		add(in.Glob, "glob")
		if inv.ToolName == hook.ToolGlob {
			add(in.Pattern, "pattern")
		}
	case hook.KindShell:
		out = append(out, CommandTargets(in.Command)...)
	}
	return out
}

// CommandTargets extracts file operands of recognized verbs and redirection
// targets from a shell command. Words that depend on expansion are skipped.
func CommandTargets(command string) []Target {
	var out []Target
	for _, cmd := range shell.Commands(command) {
		for _, r := range cmd.Redirects {
			if isFileRedirect(r.Op) && r.Target.Literal {
				out = append(out, Target{Path: r.Target.Value, Via: r.Op})
			}
		}
		cmd = cmd.Unwrap()
		verb := cmd.Name()
		if verb == "" {
			continue
		}
		for _, p := range operands(verb, cmd.Args[1:]) {
			out = append(out, Target{Path: p, Via: verb})
		}
	}
	return out
}

func isFileRedirect(op string) bool {
	switch op {
	case "<", ">", ">>", ">|", "<>", "&>", "&>>":
		return true
	}
	return false
}

// verb describes how to find the file operands of a command.
type verb struct {
	// valueFlags consume the following argument.
	valueFlags map[string]bool
	// scriptFirst means the first operand is a pattern or program, unless
	// one of scriptFlags supplied it.
	scriptFirst bool
	scriptFlags map[string]bool
	// globFlags take a glob that is checked like a search pattern.
	globFlags map[string]bool
	// firstOnly keeps only the first operand (source, .).
	firstOnly bool
	// remote operands may carry a host: prefix.
	remote bool
}

func flags(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var plain = verb{}

var verbs = map[string]verb{
	"cat":     plain,
	"tac":     plain,
	"nl":      {valueFlags: flags("-b", "-s", "-v", "-w", "-i")},
	"less":    {valueFlags: flags("-p", "-x", "-y", "-b", "-h", "-j", "-z")},
	"more":    plain,
	"head":    {valueFlags: flags("-n", "-c")},
	"tail":    {valueFlags: flags("-n", "-c", "-s", "--pid")},
	"bat":     {valueFlags: flags("-l", "-r", "-H", "-m", "--language", "--line-range", "--highlight-line", "--style", "--theme")},
	"strings": {valueFlags: flags("-n", "-t", "-e")},
	"xxd":     {valueFlags: flags("-c", "-g", "-l", "-o", "-s")},
	"od":      {valueFlags: flags("-A", "-j", "-N", "-t", "-w")},
	"hexdump": {valueFlags: flags("-e", "-f", "-n", "-s")},
	"base64":  {valueFlags: flags("-w", "-b")},
	"cp":      {valueFlags: flags("-t", "-S", "--target-directory", "--suffix")},
	"mv":      {valueFlags: flags("-t", "-S", "--target-directory", "--suffix")},
	"scp":     {valueFlags: flags("-P", "-i", "-o", "-F", "-c", "-l", "-S", "-J"), remote: true},
	"rsync":   {valueFlags: flags("-e", "--rsh", "--exclude", "--include", "--filter", "-f"), remote: true},
	"tee":     plain,
	"vim":     {valueFlags: flags("-c", "-S", "-u", "-i", "-T", "--cmd")},
	"vi":      {valueFlags: flags("-c", "-S", "-u", "-i", "-T", "--cmd")},
	"nano":    {valueFlags: flags("-o", "-Y", "-T", "-r", "-s")},
	"emacs":   {valueFlags: flags("-l", "--load", "-f", "--funcall", "--eval")},
	"code":    {valueFlags: flags("-g", "--goto", "--diff", "--user-data-dir", "--extensions-dir")},
	"open":    {valueFlags: flags("-a", "-b")},
	"source":  {firstOnly: true},
	".":       {firstOnly: true},
	"grep": {
		valueFlags:  flags("-e", "-f", "-m", "-A", "-B", "-C", "-d", "-D", "--regexp", "--file", "--max-count", "--exclude", "--include", "--exclude-dir"),
		scriptFirst: true,
		scriptFlags: flags("-e", "-f", "--regexp", "--file"),
	},
	"egrep": {
		valueFlags:  flags("-e", "-f", "-m", "-A", "-B", "-C"),
		scriptFirst: true,
		scriptFlags: flags("-e", "-f"),
	},
	"rg": {
		valueFlags:  flags("-e", "-f", "-m", "-A", "-B", "-C", "-t", "-T", "-g", "--glob", "--iglob", "--type", "--type-not", "--regexp", "--file", "--max-count", "-j", "--threads"),
		scriptFirst: true,
		scriptFlags: flags("-e", "-f", "--regexp", "--file"),
		globFlags:   flags("-g", "--glob", "--iglob"),
	},
	"ag": {
		valueFlags:  flags("-A", "-B", "-C", "-m", "-G", "--file-search-regex", "--ignore"),
		scriptFirst: true,
	},
	"sed": {
		valueFlags:  flags("-e", "-f", "-l", "--expression", "--file", "--line-length"),
		scriptFirst: true,
		scriptFlags: flags("-e", "-f", "--expression", "--file"),
	},
	"awk": {
		valueFlags:  flags("-F", "-v", "-f", "--field-separator", "--assign", "--file"),
		scriptFirst: true,
		scriptFlags: flags("-f", "--file"),
	},
}

// operands returns the literal file operands of a recognized verb.
func operands(name string, args []shell.Word) []string {
	v, ok := verbs[name]
	if !ok {
		return nil
	}
	var out, positional []string
	scriptGiven := false
	endOfFlags := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !endOfFlags && a.Literal && a.Value == "--" {
			endOfFlags = true
			continue
		}
		if !endOfFlags && a.Literal && strings.HasPrefix(a.Value, "-") && a.Value != "-" {
			flag, value, hasValue := strings.Cut(a.Value, "=")
			if v.scriptFlags[flag] {
				scriptGiven = true
			}
			if v.globFlags[flag] {
				if hasValue {
					out = append(out, value)
				} else if i+1 < len(args) && args[i+1].Literal {
					out = append(out, args[i+1].Value)
				}
			}
			if !hasValue && v.valueFlags[flag] {
				i++
			}
			continue
		}
		if !a.Literal {
			positional = append(positional, "")
			continue
		}
		positional = append(positional, a.Value)
	}
	if v.scriptFirst && !scriptGiven && len(positional) > 0 {
		positional = positional[1:]
	}
	if v.firstOnly && len(positional) > 1 {
		positional = positional[:1]
	}
	for _, p := range positional {
		if p == "" || p == "-" {
			continue
		}
		if v.remote {
			p = remotePath(p)
		}
		out = append(out, p)
	}
	return out
}

// remotePath strips a host prefix from scp/rsync style operands.
func remotePath(p string) string {
	if i := strings.Index(p, ":"); i > 0 && !strings.Contains(p[:i], "/") {
		return p[i+1:]
	}
	return p
}

// Basename returns the final element of path after stripping trailing
// separators, or "" when nothing remains.
func Basename(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return ""
	}
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "." || trimmed == ".." {
		return ""
	}
	return trimmed
}

func cleanPath(path string) string {
	return filepath.Clean(strings.TrimRight(path, `/\`))
}
