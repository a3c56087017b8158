package resolver

import (
	"fmt"
	"strings"
)

// Domain is one policy configuration domain.
type Domain string

const (
	DomainSecretPaths     Domain = "secret-paths"
	DomainPopularPackages Domain = "popular-packages"
	DomainCommitRules     Domain = "commit-rules"
)

// Domains lists every configuration domain.
func Domains() []Domain {
	return []Domain{DomainSecretPaths, DomainPopularPackages, DomainCommitRules}
}

// ParseDomain accepts a domain name or its file name.
func ParseDomain(s string) (Domain, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".json")
	for _, d := range Domains() {
		if s == string(d) || s == strings.TrimSuffix(d.FileName(), ".json") {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// FileName is the tier file name for the domain.
func (d Domain) FileName() string {
	switch d {
	case DomainSecretPaths:
		return "secret-patterns.json"
	case DomainPopularPackages:
		return "popular-packages.json"
	case DomainCommitRules:
		return "commit-rules.json"
	}
	return string(d) + ".json"
}

// Required reports whether a missing tier-1 file is fatal. Commit rules
// have a compiled-in fallback instead.
func (d Domain) Required() bool {
	return d != DomainCommitRules
}

// PatternSet is a resolved deny/allow pair of glob patterns.
type PatternSet struct {
	Deny  []string `json:"deny"`
	Allow []string `json:"allow"`
}
