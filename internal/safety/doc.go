// Package safety evaluates intercepted agent tool calls against the guard
// policies and turns every outcome, including internal failures, into a
// single Decision.
//
// An AI coding agent reads files, runs shell commands and creates commits on
// the user's behalf. Each of those actions reaches hookguard as a PreToolUse
// invocation before it executes, and the dispatcher in this package decides
// whether it proceeds.
//
// # Threat Model
//
// T1 - Secret File Disclosure: the agent reads or searches for files that hold
// credentials (.env, private keys, cloud credential files) and the content
// lands in a transcript or a remote model context. Mitigations include a
// basename denylist applied to file tools, search patterns and the file
// operands of shell commands, an allowlist for known-safe templates such as
// .env.example, and explicit per-session exemptions granted by a human.
//
// T2 - Credential Commit: a staged change introduces an API key, token or
// private key that would be pushed with the commit. Mitigations include
// scanning the added lines of the staged diff against an ordered signature
// library, suppressing fixtures, comments and placeholders, and redacting
// every excerpt so the report never leaks the secret it found.
//
// T3 - Dependency Confusion: the agent installs a package whose name is one
// or two edits away from a popular package, or differs only by a hyphen or
// underscore. Mitigations include per-ecosystem reference lists and an
// optimal string alignment distance check with a length pre-filter.
//
// T4 - Unreviewable History: commit subjects that are empty, overlong or
// written in the past tense make history hard to audit. Mitigations include a
// configurable commit message linter whose errors block and whose warnings are
// surfaced without blocking.
//
// T5 - Policy Bypass Through Broken Configuration: a missing defaults file or
// an unwritable cache makes a security policy unable to judge. Since an
// unavailable policy is indistinguishable from a bypassed one, the path and
// credential policies fail closed on internal errors.
//
// # Design Principles
//
// Fail open on malformed input: an empty, oversized or unparseable invocation
// is allowed. It is not itself evidence of an attack, and blocking blind stalls
// legitimate work.
//
// Per-policy failure modes: every Policy declares whether it fails open or
// closed, and the dispatcher applies that mode to both returned errors and
// recovered panics. Advisory policies (typosquat, commit message) fail open.
//
// Kill switches: HOOKGUARD_DISABLED turns every policy off, and
// HOOKGUARD_DISABLED_POLICIES turns off individual ones, so operators can stop
// enforcement without editing hook settings.
//
// Decisions, not exits: policies return a hook.Decision. Only the hook
// command converts it to an exit status.
package safety
