// Package formatter renders hookguard's admin output: aligned tables for
// humans, JSON or YAML for scripts, and status markers that are colored
// only on a terminal.
package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ErrUnknownFormat is returned for an --output value outside the known set.
var ErrUnknownFormat = errors.New("unknown output format")

// ValidateFormat checks an --output value.
func ValidateFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("%w: %q (use table, json or yaml)", ErrUnknownFormat, format)
}

// Encode writes v as indented JSON or as YAML. Table output is built by the
// caller, so FormatTable is rejected here.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
