package secrets

import (
	"path"
	"strings"
)

// lowRiskDirs are path segments whose files hold test data or prose.
var lowRiskDirs = map[string]bool{
	"test": true, "tests": true, "__tests__": true, "testdata": true,
	"spec": true, "specs": true, "fixture": true, "fixtures": true,
	"__fixtures__": true, "mocks": true, "__mocks__": true,
	"doc": true, "docs": true,
}

var lowRiskSuffixes = []string{
	"_test.go", ".test.js", ".test.ts", ".test.jsx", ".test.tsx", ".spec.js",
	".spec.ts", "_spec.rb", "_test.py",
	".md", ".rst", ".adoc",
	".example", ".sample", ".template", ".dist",
}

var lowRiskStems = map[string]bool{
	"changelog": true, "changes": true, "history": true, "news": true,
}

// LowRiskFile reports whether every line of file is skipped: tests,
// fixtures, docs, changelogs and example templates.
func LowRiskFile(file string) bool {
	p := strings.ToLower(strings.ReplaceAll(file, `\`, "/"))
	for _, seg := range strings.Split(path.Dir(p), "/") {
		if lowRiskDirs[seg] {
			return true
		}
	}
	base := path.Base(p)
	for _, s := range lowRiskSuffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	if lowRiskStems[strings.TrimSuffix(base, path.Ext(base))] {
		return true
	}
	// PHPUnit and JUnit name test classes FooTest.php, FooTest.java.
	orig := path.Base(strings.ReplaceAll(file, `\`, "/"))
	stem := strings.TrimSuffix(orig, path.Ext(orig))
	return strings.HasPrefix(base, "test_") || (len(stem) > 4 && strings.HasSuffix(stem, "Test"))
}

var commentPrefixes = []string{"//", "#", "/*", "*", "-- ", ";", "<!--", "%"}

// IsComment reports whether a line is a comment in a common style.
func IsComment(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	if t == "--" {
		return true
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

var placeholderMarkers = []string{
	"changeme", "change_me", "change-me", "xxx", "your_", "your-", "yourkey",
	"example", "placeholder", "dummy", "sample", "fake", "redacted", "replace",
	"insert", "<", ">", "${", "{{", "process.env", "os.environ", "getenv",
	"env(", "secrets.", "vault:", "****", "....",
}

var placeholderValues = map[string]bool{
	"password": true, "secret": true, "token": true, "null": true, "none": true,
	"undefined": true, "true": true, "false": true, "string": true,
}

// IsPlaceholder reports whether a matched value is clearly not a real
// secret.
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.Trim(value, `"' `))
	if v == "" || placeholderValues[v] {
		return true
	}
	for _, m := range placeholderMarkers {
		if strings.Contains(v, m) {
			return true
		}
	}
	return lowCardinality(v)
}

// lowCardinality catches repeated-character fillers such as "aaaaaaaa" or
// "12121212".
func lowCardinality(v string) bool {
	seen := map[rune]bool{}
	for _, r := range v {
		seen[r] = true
		if len(seen) > 3 {
			return false
		}
	}
	return true
}
