// Package commitlint checks the literal message of a git commit command
// against a small set of style rules: subject length, trailing period,
// imperative mood and the blank line between subject and body.
//
// Rules are a flat object resolved through the configuration tiers; any key
// a tier does not set keeps its built-in value.
package commitlint

import "slices"

// Rules are the thresholds and switches of the linter.
type Rules struct {
	Enabled           bool `json:"enabled"`
	SubjectWarnLength int  `json:"subject_warn_length"`
	SubjectMaxLength  int  `json:"subject_max_length"`
	NoTrailingPeriod  bool `json:"no_trailing_period"`
	ImperativeMood    bool `json:"imperative_mood"`
	RequireBlankLine  bool `json:"require_blank_line"`
	// ExemptModes lists commit modes that skip linting: amend, fixup, squash.
	ExemptModes []string `json:"exempt_modes"`
	// PastTenseVerbs maps a lowercase past-tense verb to its imperative form.
	PastTenseVerbs map[string]string `json:"past_tense_verbs"`
}

// DefaultRules returns the built-in rules used when no tier overrides them.
func DefaultRules() Rules {
	return Rules{
		Enabled:           true,
		SubjectWarnLength: 50,
		SubjectMaxLength:  72,
		NoTrailingPeriod:  true,
		ImperativeMood:    true,
		RequireBlankLine:  true,
		ExemptModes:       []string{"amend", "fixup", "squash"},
		PastTenseVerbs:    defaultPastTense(),
	}
}

func (r Rules) exempt(mode string) bool {
	return mode != "" && slices.Contains(r.ExemptModes, mode)
}

func defaultPastTense() map[string]string {
	return map[string]string{
		"added":       "add",
		"adjusted":    "adjust",
		"allowed":     "allow",
		"applied":     "apply",
		"built":       "build",
		"bumped":      "bump",
		"changed":     "change",
		"cleaned":     "clean",
		"configured":  "configure",
		"converted":   "convert",
		"corrected":   "correct",
		"created":     "create",
		"deleted":     "delete",
		"deprecated":  "deprecate",
		"disabled":    "disable",
		"documented":  "document",
		"downgraded":  "downgrade",
		"dropped":     "drop",
		"enabled":     "enable",
		"ensured":     "ensure",
		"extracted":   "extract",
		"fixed":       "fix",
		"handled":     "handle",
		"implemented": "implement",
		"improved":    "improve",
		"initialized": "initialize",
		"integrated":  "integrate",
		"introduced":  "introduce",
		"made":        "make",
		"merged":      "merge",
		"migrated":    "migrate",
		"modified":    "modify",
		"moved":       "move",
		"optimized":   "optimize",
		"patched":     "patch",
		"prepared":    "prepare",
		"prevented":   "prevent",
		"refactored":  "refactor",
		"released":    "release",
		"removed":     "remove",
		"renamed":     "rename",
		"replaced":    "replace",
		"resolved":    "resolve",
		"restored":    "restore",
		"reverted":    "revert",
		"reworked":    "rework",
		"simplified":  "simplify",
		"stopped":     "stop",
		"supported":   "support",
		"switched":    "switch",
		"tested":      "test",
		"tweaked":     "tweak",
		"updated":     "update",
		"upgraded":    "upgrade",
		"used":        "use",
		"wrote":       "write",
	}
}
