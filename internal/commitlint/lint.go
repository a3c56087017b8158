package commitlint

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Report holds the violations found in one message.
type Report struct {
	Errors   []string
	Warnings []string
}

// Failed reports whether any error-level rule was violated.
func (r Report) Failed() bool { return len(r.Errors) > 0 }

// Empty reports whether the message passed every rule.
func (r Report) Empty() bool { return len(r.Errors) == 0 && len(r.Warnings) == 0 }

// conventionalPrefix matches "type: ", "type(scope): " and "type!: ".
var conventionalPrefix = regexp.MustCompile(`^[A-Za-z]+(\([^)]*\))?!?:\s*`)

// Lint checks msg against rules.
func Lint(msg string, rules Rules) Report {
	var r Report
	lines := strings.Split(msg, "\n")
	subject := strings.TrimSpace(lines[0])

	if subject == "" {
		r.Errors = append(r.Errors, "Subject line is empty")
		return r
	}

	n := utf8.RuneCountInString(subject)
	switch {
	case rules.SubjectMaxLength > 0 && n > rules.SubjectMaxLength:
		r.Errors = append(r.Errors,
			fmt.Sprintf("Subject is %d characters (max %d)", n, rules.SubjectMaxLength))
	case rules.SubjectWarnLength > 0 && n > rules.SubjectWarnLength:
		r.Warnings = append(r.Warnings,
			fmt.Sprintf("Subject is %d characters (recommended %d or fewer)", n, rules.SubjectWarnLength))
	}

	if rules.NoTrailingPeriod && strings.HasSuffix(subject, ".") && !strings.HasSuffix(subject, "...") {
		r.Errors = append(r.Errors, "Subject must not end with a period")
	}

	if rules.ImperativeMood {
		if past, imperative, ok := pastTense(subject, rules.PastTenseVerbs); ok {
			r.Errors = append(r.Errors,
				fmt.Sprintf("Use imperative mood: '%s' instead of '%s'", title(imperative), title(past)))
		}
	}

	if rules.RequireBlankLine && len(lines) > 1 && strings.TrimSpace(lines[1]) != "" {
		r.Errors = append(r.Errors, "Separate the subject from the body with a blank line")
	}
	return r
}

// pastTense reports whether the first word of subject, after any
// conventional-commit prefix, is a listed past-tense verb.
func pastTense(subject string, verbs map[string]string) (past, imperative string, ok bool) {
	rest := conventionalPrefix.ReplaceAllString(subject, "")
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", "", false
	}
	word := strings.ToLower(strings.TrimRightFunc(fields[0], func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	imperative, ok = verbs[word]
	if !ok {
		return "", "", false
	}
	return word, imperative, true
}

func title(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
