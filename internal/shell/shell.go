// Package shell turns a raw shell command string into simple commands with
// literal argument values. It is a pure, total function of its input: it
// never executes anything, and input the bash parser rejects falls back to a
// conservative quote-aware splitter.
//
// Parsing uses mvdan.cc/sh/v3/syntax, so quoting, escapes, pipelines,
// lists, subshells and command substitutions are handled the way bash would
// tokenize them. Words whose value depends on expansion ($VAR, globs,
// arithmetic) are reported as non-literal and callers decide how to treat
// them.
package shell

import (
	"path"
	"strings"
)

// Word is one argument of a simple command.
type Word struct {
	// Value is the unquoted value when Literal, otherwise the source text.
	Value string
	// Literal is false when the value depends on runtime expansion.
	Literal bool
}

// Redirect is a redirection attached to a command.
type Redirect struct {
	// Op is the operator text: ">", ">>", "<", "<<", "<<-", "<<<", "&>", ...
	Op     string
	Target Word
	// Heredoc is the here-document body for "<<" and "<<-".
	Heredoc string
}

// IsHeredoc reports whether the redirect carries a here-document body.
func (r Redirect) IsHeredoc() bool {
	return r.Op == "<<" || r.Op == "<<-"
}

// Command is a simple command: argv plus redirections.
type Command struct {
	Args      []Word
	Redirects []Redirect
}

// Name returns the base name of argv[0], or "" when it is missing or
// not literal.
func (c Command) Name() string {
	if len(c.Args) == 0 || !c.Args[0].Literal {
		return ""
	}
	return path.Base(c.Args[0].Value)
}

// Strings returns the argument values.
func (c Command) Strings() []string {
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		out[i] = a.Value
	}
	return out
}

// wrappers are commands that run their remaining arguments as a command.
// The value lists the flags that consume a following token.
var wrappers = map[string]map[string]bool{
	"sudo":    {"-u": true, "-g": true, "-C": true, "-h": true, "-p": true, "-U": true, "-D": true, "-r": true, "-t": true},
	"env":     {"-u": true, "-C": true, "-S": true},
	"command": {},
	"builtin": {},
	"exec":    {"-a": true},
	"nohup":   {},
	"time":    {"-f": true, "-o": true},
	"nice":    {"-n": true},
	"timeout": {"-s": true, "-k": true},
	"doas":    {"-u": true, "-C": true},
}

// Unwrap strips privilege and environment wrappers (sudo, env, nohup, ...)
// so that "sudo -u root cat .env" is seen as "cat .env".
func (c Command) Unwrap() Command {
	for {
		valueFlags, ok := wrappers[c.Name()]
		if !ok {
			return c
		}
		name := c.Name()
		i := 1
		for i < len(c.Args) {
			a := c.Args[i]
			if !a.Literal {
				break
			}
			switch {
			case a.Value == "--":
				i++
				goto done
			case strings.HasPrefix(a.Value, "-"):
				if valueFlags[a.Value] {
					i++
				}
				i++
				continue
			case name == "env" && strings.Contains(a.Value, "=") && !strings.HasPrefix(a.Value, "="):
				i++
				continue
			case name == "timeout" && isDuration(a.Value):
				i++
				goto done
			}
			break
		}
	done:
		if i >= len(c.Args) {
			return Command{Redirects: c.Redirects}
		}
		c = Command{Args: c.Args[i:], Redirects: c.Redirects}
	}
}

func isDuration(s string) bool {
	s = strings.TrimRight(s, "smhd")
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// Commands parses src and returns every simple command it contains, in
// source order, including commands nested in substitutions and subshells.
// Unparseable input is split conservatively instead of returning an error.
func Commands(src string) []Command {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	cmds, err := Parse(src)
	if err != nil {
		return Split(src)
	}
	return cmds
}
