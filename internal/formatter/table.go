package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// Table writes aligned columns for admin listings (exemptions, cache
// artifacts, events). Nothing is written until the first row arrives, so
// an empty listing prints no header.
type Table struct {
	w        *tabwriter.Writer
	headers  []string
	maxWidth map[int]int
	rows     int
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:        tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers:  headers,
		maxWidth: make(map[int]int),
	}
}

// SetMaxWidth limits a column (0-indexed) to width runes. Longer values are
// cut and end in "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a row. Values beyond the header count are dropped and
// missing ones are left blank. Tabs and newlines inside a value are
// flattened to spaces so a row stays on one line.
func (t *Table) AddRow(values ...string) {
	if t.rows == 0 {
		t.writeLine(t.headers)
		rule := make([]string, len(t.headers))
		for i, h := range t.headers {
			rule[i] = strings.Repeat("-", utf8.RuneCountInString(h))
		}
		t.writeLine(rule)
	}
	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = t.truncate(i, flatten(values[i]))
		}
	}
	t.writeLine(cells)
	t.rows++
}

// Rows reports how many data rows were added.
func (t *Table) Rows() int { return t.rows }

// Render flushes the table. Call it once after the last AddRow.
func (t *Table) Render() error {
	return t.w.Flush()
}

func (t *Table) writeLine(cells []string) {
	//nolint:errcheck // surfaced by Render through Flush
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *Table) truncate(col int, s string) string {
	limit, ok := t.maxWidth[col]
	if !ok || limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

var flattener = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ")

func flatten(s string) string {
	return flattener.Replace(s)
}
