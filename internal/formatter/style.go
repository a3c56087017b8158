package formatter

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Styler prints one-line status markers. Colors are disabled unless the
// destination is a terminal.
type Styler struct {
	w    io.Writer
	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

// NewStyler returns a Styler writing to w.
func NewStyler(w io.Writer) *Styler {
	s := &Styler{
		w:    w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
	}
	if !IsTerminal(w) {
		s.ok.DisableColor()
		s.warn.DisableColor()
		s.fail.DisableColor()
	}
	return s
}

// IsTerminal reports whether w is a terminal (including Cygwin/MSYS ptys).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// OK prints a passing line.
func (s *Styler) OK(format string, args ...any) {
	s.line(s.ok, "✓", format, args...)
}

// Warn prints an advisory line.
func (s *Styler) Warn(format string, args ...any) {
	s.line(s.warn, "!", format, args...)
}

// Fail prints a failing line.
func (s *Styler) Fail(format string, args ...any) {
	s.line(s.fail, "✗", format, args...)
}

func (s *Styler) line(c *color.Color, marker, format string, args ...any) {
	//nolint:errcheck // best-effort console output
	fmt.Fprintf(s.w, "%s %s\n", c.Sprint(marker), fmt.Sprintf(format, args...))
}
