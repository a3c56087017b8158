// Package pathguard blocks agent access to files whose names match the
// secret-path denylist.
//
// Precedence for every target is allow pattern, then session exemption, then
// deny pattern. Patterns are matched against the target's base name; a
// pattern containing a separator is matched against the trailing segments of
// the path instead.
package pathguard

import (
	"strings"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/exempt"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/glob"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/resolver"
)

// Outcome is the result of checking one target.
type Outcome int

const (
	OutcomeNoMatch Outcome = iota
	OutcomeAllowed
	OutcomeExempt
	OutcomeDenied
)

// Result explains an Outcome.
type Result struct {
	Outcome  Outcome
	Target   Target
	Basename string
	// Pattern is the allow or deny pattern that decided the outcome.
	Pattern string
}

// Matcher holds compiled deny and allow patterns.
type Matcher struct {
	deny  []*glob.Pattern
	allow []*glob.Pattern
}

// NewMatcher compiles a resolved pattern set.
func NewMatcher(set resolver.PatternSet) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range set.Deny {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		m.deny = append(m.deny, g)
	}
	for _, p := range set.Allow {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		m.allow = append(m.allow, g)
	}
	return m, nil
}

// Check applies allow, exemption and deny precedence to one target.
func (m *Matcher) Check(t Target, exemptions exempt.Set) Result {
	base := Basename(t.Path)
	res := Result{Target: t, Basename: base}
	if base == "" {
		return res
	}
	if p := firstMatch(m.allow, t.Path, base); p != nil {
		res.Outcome = OutcomeAllowed
		res.Pattern = p.String()
		return res
	}
	if exemptions.Covers(t.Path) {
		res.Outcome = OutcomeExempt
		return res
	}
	if p := firstMatch(m.deny, t.Path, base); p != nil {
		res.Outcome = OutcomeDenied
		res.Pattern = p.String()
	}
	return res
}

func firstMatch(patterns []*glob.Pattern, path, base string) *glob.Pattern {
	for _, p := range patterns {
		if strings.ContainsAny(p.String(), `/\`) {
			if matchPathSuffix(p, cleanPath(path)) {
				return p
			}
			continue
		}
		if p.Match(base) {
			return p
		}
	}
	return nil
}

// matchPathSuffix matches a path pattern against the whole path and every
// suffix that starts at a separator, so ".aws/credentials" also covers
// "/home/u/.aws/credentials".
func matchPathSuffix(p *glob.Pattern, path string) bool {
	for {
		if p.Match(path) {
			return true
		}
		i := strings.IndexAny(path, `/\`)
		if i < 0 {
			return false
		}
		path = path[i+1:]
	}
}
