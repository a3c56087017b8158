package commitlint

import (
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/shell"
)

// Commit modes that rewrite an existing commit rather than author a new one.
const (
	ModeAmend  = "amend"
	ModeFixup  = "fixup"
	ModeSquash = "squash"
)

// Commit is one git commit invocation found in a shell command.
type Commit struct {
	// Mode is "", ModeAmend, ModeFixup or ModeSquash.
	Mode string
	// Message is the cleaned literal message when HasMessage.
	Message string
	// HasMessage is false when the message comes from an editor, a file,
	// another commit or a runtime expansion.
	HasMessage bool
}

// commitValueFlags consume the next argument without affecting the message.
var commitValueFlags = map[string]bool{
	"--author":             true,
	"--date":               true,
	"--cleanup":            true,
	"--trailer":            true,
	"-t":                   true,
	"--template":           true,
	"--pathspec-from-file": true,
}

// reuseFlags take the message from an existing commit.
var reuseFlags = map[string]bool{
	"-C":               true,
	"-c":               true,
	"--reuse-message":  true,
	"--reedit-message": true,
}

// Commits returns every git commit in command.
func Commits(command string) []Commit {
	calls := shell.FindGit(shell.Commands(command), "commit")
	out := make([]Commit, 0, len(calls))
	for _, call := range calls {
		out = append(out, parseCommit(call))
	}
	return out
}

type messageParts struct {
	parts   []string
	opaque  bool
	fromMsg bool
}

func (m *messageParts) add(w shell.Word) {
	m.fromMsg = true
	if !w.Literal {
		m.opaque = true
		return
	}
	m.parts = append(m.parts, w.Value)
}

func parseCommit(call shell.GitCall) Commit {
	var c Commit
	var msg messageParts
	args := call.Args
	next := func(i int) (shell.Word, bool) {
		if i+1 < len(args) {
			return args[i+1], true
		}
		return shell.Word{}, false
	}

loop:
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !a.Literal {
			continue
		}
		v := a.Value
		switch {
		case v == "--":
			break loop
		case v == "--amend":
			c.Mode = ModeAmend
		case v == "--fixup" || strings.HasPrefix(v, "--fixup="):
			c.Mode = ModeFixup
			if v == "--fixup" {
				i++
			}
		case v == "--squash" || strings.HasPrefix(v, "--squash="):
			c.Mode = ModeSquash
			if v == "--squash" {
				i++
			}
		case v == "-m" || v == "--message":
			if w, ok := next(i); ok {
				msg.add(w)
				i++
			}
		case strings.HasPrefix(v, "--message="):
			msg.add(shell.Word{Value: strings.TrimPrefix(v, "--message="), Literal: true})
		case v == "-F" || v == "--file":
			if w, ok := next(i); ok {
				msg.addFile(w, call.Redirects)
				i++
			}
		case strings.HasPrefix(v, "--file="):
			msg.addFile(shell.Word{Value: strings.TrimPrefix(v, "--file="), Literal: true}, call.Redirects)
		case reuseFlags[v]:
			msg.opaque = true
			i++
		case strings.HasPrefix(v, "--reuse-message=") || strings.HasPrefix(v, "--reedit-message="):
			msg.opaque = true
		case commitValueFlags[v]:
			i++
		case len(v) > 1 && v[0] == '-' && v[1] != '-':
			shortCluster(v, args, &i, &msg, call.Redirects)
		}
	}

	if msg.opaque || !msg.fromMsg {
		return c
	}
	c.Message = cleanup(strings.Join(msg.parts, "\n\n"))
	c.HasMessage = true
	return c
}

// shortCluster handles combined short flags such as -am "msg", -mmsg or
// -aF -, advancing *i past any consumed value.
func shortCluster(v string, args []shell.Word, i *int, msg *messageParts, redirects []shell.Redirect) {
	for j := 1; j < len(v); j++ {
		switch v[j] {
		case 'm', 'F', 'C', 'c':
			var w shell.Word
			if rest := v[j+1:]; rest != "" {
				w = shell.Word{Value: rest, Literal: true}
			} else if *i+1 < len(args) {
				*i++
				w = args[*i]
			} else {
				return
			}
			switch v[j] {
			case 'm':
				msg.add(w)
			case 'F':
				msg.addFile(w, redirects)
			default:
				msg.opaque = true
			}
			return
		case 't':
			if j == len(v)-1 {
				*i++
			}
			return
		}
	}
}

// addFile records a -F source. Only "-" fed by a here-document or
// here-string is readable without touching the filesystem.
func (m *messageParts) addFile(w shell.Word, redirects []shell.Redirect) {
	m.fromMsg = true
	if !w.Literal || w.Value != "-" {
		m.opaque = true
		return
	}
	for _, r := range redirects {
		switch {
		case r.IsHeredoc():
			m.parts = append(m.parts, r.Heredoc)
			return
		case r.Op == "<<<" && r.Target.Literal:
			m.parts = append(m.parts, r.Target.Value)
			return
		}
	}
	m.opaque = true
}

// cleanup applies git's "whitespace" cleanup: trailing whitespace is
// removed from every line, runs of blank lines collapse to one, and leading
// and trailing blank lines are dropped.
func cleanup(msg string) string {
	lines := strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
