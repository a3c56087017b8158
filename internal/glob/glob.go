// Package glob implements the restricted shell-glob dialect used by pattern
// files: '*' matches any run of characters, '?' matches exactly one, and
// every other character is literal. Literal runs are regex-escaped before
// compilation so pattern authors cannot inject regex behavior.
package glob

import (
	"regexp"
	"strings"
)

// Pattern is a compiled glob.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// Compile translates a glob into an anchored regular expression.
func Compile(pattern string) (*Pattern, error) {
	re, err := regexp.Compile(translate(pattern))
	if err != nil {
		return nil, err
	}
	return &Pattern{raw: pattern, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether name matches the whole pattern.
func (p *Pattern) Match(name string) bool {
	return p.re.MatchString(name)
}

// String returns the original glob text.
func (p *Pattern) String() string {
	return p.raw
}

// Match is a one-shot convenience wrapper around Compile.
func Match(pattern, name string) bool {
	p, err := Compile(pattern)
	if err != nil {
		return false
	}
	return p.Match(name)
}

func translate(pattern string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)
	literal := strings.Builder{}
	flush := func() {
		if literal.Len() > 0 {
			b.WriteString(regexp.QuoteMeta(literal.String()))
			literal.Reset()
		}
	}
	for _, r := range pattern {
		switch r {
		case '*':
			flush()
			b.WriteString(`.*`)
		case '?':
			flush()
			b.WriteString(`.`)
		default:
			literal.WriteRune(r)
		}
	}
	flush()
	b.WriteString(`$`)
	return b.String()
}
