// Package typosquat flags package installs whose names are suspiciously
// close to a popular package.
package typosquat

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxLengthDelta is the length pre-filter applied before computing the
// edit distance.
const MaxLengthDelta = 2

// Suspect is a package name that resembles a reference package.
type Suspect struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
	Reference string `json:"reference"`
	Distance  int    `json:"distance,omitempty"`
	Reason    string `json:"reason"`
}

// MaxDistance is the largest edit distance still flagged as a near-miss.
const MaxDistance = 2

var pep503 = regexp.MustCompile(`[-_.]+`)

// normalize folds case, and for PyPI the separators PEP 503 treats as equal.
func normalize(ecosystem, name string) string {
	name = strings.ToLower(name)
	if ecosystem == EcosystemPyPI {
		name = pep503.ReplaceAllString(name, "-")
	}
	return name
}

func namespaced(name string) bool {
	return strings.Contains(name, "/")
}

func stripSeparators(name string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

// Check compares name against the reference list. Exact matches are trusted.
func Check(ecosystem, name string, refs []string) (Suspect, bool) {
	n := normalize(ecosystem, name)
	norm := make([]string, len(refs))
	for i, r := range refs {
		norm[i] = normalize(ecosystem, r)
		if norm[i] == n {
			return Suspect{}, false
		}
	}

	ns := namespaced(n)
	if ecosystem != EcosystemPyPI {
		stripped := stripSeparators(n)
		for i, r := range norm {
			if namespaced(r) == ns && stripSeparators(r) == stripped {
				return Suspect{
					Name: name, Ecosystem: ecosystem, Reference: refs[i],
					Reason: "differs only by hyphen/underscore swap from " + refs[i],
				}, true
			}
		}
	}

	best, bestDist := -1, MaxDistance+1
	nl := len([]rune(n))
	for i, r := range norm {
		if namespaced(r) != ns {
			continue
		}
		if delta := len([]rune(r)) - nl; delta > MaxLengthDelta || delta < -MaxLengthDelta {
			continue
		}
		if d := Distance(n, r); d > 0 && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Suspect{}, false
	}
	return Suspect{
		Name: name, Ecosystem: ecosystem, Reference: refs[best], Distance: bestDist,
		Reason: reason(bestDist, refs[best]),
	}, true
}

func reason(d int, ref string) string {
	if d == 1 {
		return fmt.Sprintf("1 character different from %s", ref)
	}
	return fmt.Sprintf("%d characters different from %s", d, ref)
}
