// Package embedded ships the tier-1 default configuration and the Claude Code
// hooks manifest inside the hookguard binary. "hookguard init" writes the
// defaults to disk; the resolver itself only ever reads the defaults
// directory.
package embedded

import (
	"embed"
	"io/fs"
)

// HooksJSON contains the raw hooks.json manifest.
//
//go:embed hooks/hooks.json
var HooksJSON []byte

//go:embed defaults/*.json
var defaultsFS embed.FS

// Defaults returns the default configuration files, rooted so that entries
// are plain file names such as "secret-patterns.json".
func Defaults() fs.FS {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		panic(err)
	}
	return sub
}
