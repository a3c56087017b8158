package shell

import "strings"

// GitCall is a git invocation with its global options removed.
type GitCall struct {
	// Subcommand is the first non-option argument, e.g. "commit".
	Subcommand string
	// Args follow the subcommand.
	Args []Word
	// Dir is the value of -C when given.
	Dir string
	// Redirects of the git command, e.g. a here-document fed to -F -.
	Redirects []Redirect
}

// gitValueOptions are git global options that consume the next argument.
var gitValueOptions = map[string]bool{
	"-C":          true,
	"-c":          true,
	"--git-dir":   true,
	"--work-tree": true,
	"--namespace": true,
}

// Git reports whether c runs git, and if so its subcommand and arguments.
func (c Command) Git() (GitCall, bool) {
	c = c.Unwrap()
	if c.Name() != "git" {
		return GitCall{}, false
	}
	call := GitCall{Redirects: c.Redirects}
	for i := 1; i < len(c.Args); i++ {
		a := c.Args[i]
		if !a.Literal {
			return GitCall{}, false
		}
		if !strings.HasPrefix(a.Value, "-") {
			call.Subcommand = a.Value
			call.Args = c.Args[i+1:]
			return call, true
		}
		if gitValueOptions[a.Value] && i+1 < len(c.Args) {
			if a.Value == "-C" {
				call.Dir = joinDir(call.Dir, c.Args[i+1].Value)
			}
			i++
		}
	}
	return GitCall{}, false
}

// FindGit returns every git invocation with the given subcommand in cmds.
func FindGit(cmds []Command, subcommand string) []GitCall {
	var out []GitCall
	for _, c := range cmds {
		if call, ok := c.Git(); ok && call.Subcommand == subcommand {
			out = append(out, call)
		}
	}
	return out
}

// Repeated -C options are relative to the previous one.
func joinDir(base, dir string) string {
	if base == "" || strings.HasPrefix(dir, "/") {
		return dir
	}
	return strings.TrimSuffix(base, "/") + "/" + dir
}
