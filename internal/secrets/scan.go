// Package secrets scans the added lines of a commit's diff for credentials.
//
// Lines are classified against Signatures in order and the first accepted
// match wins. Files that hold test data or prose, comment lines and
// placeholder values are suppressed. Findings only ever carry redacted
// excerpts.
package secrets

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Finding is one detected credential.
type Finding struct {
	// Kind is the signature label, e.g. "AWS Access Key ID".
	Kind string `json:"kind"`
	File string `json:"file"`
	// Line is the 1-based line in the new file, or 0 when unknown.
	Line int `json:"line,omitempty"`
	// Excerpt is the redacted matched value.
	Excerpt string `json:"excerpt"`
	// Reference names what matched, such as a protected path pattern.
	Reference string `json:"reference,omitempty"`
}

// AddedLine is one line introduced by a diff.
type AddedLine struct {
	File string
	Line int
	Text string
}

// ClassifyLine returns the first signature whose match survives the
// placeholder filter. Comment lines never match.
func ClassifyLine(text string) (Signature, string, bool) {
	if IsComment(text) {
		return Signature{}, "", false
	}
	for _, s := range Signatures {
		for _, m := range s.Pattern.FindAllStringSubmatch(text, -1) {
			value := m[0]
			if len(m) > 1 && m[1] != "" {
				value = m[1]
			}
			if IsPlaceholder(value) {
				continue
			}
			return s, value, true
		}
	}
	return Signature{}, "", false
}

// ScanLines classifies added lines. It is a pure function of its input.
func ScanLines(lines []AddedLine) []Finding {
	var findings []Finding
	for _, l := range lines {
		if LowRiskFile(l.File) {
			continue
		}
		s, value, ok := ClassifyLine(l.Text)
		if !ok {
			continue
		}
		findings = append(findings, Finding{
			Kind:    s.Label,
			File:    l.File,
			Line:    l.Line,
			Excerpt: Redact(value),
		})
	}
	return findings
}

// Scan parses a unified diff and scans its added lines.
func Scan(unified []byte) []Finding {
	return ScanLines(AddedLines(unified))
}

// AddedLines extracts the added lines of a unified diff with their new-file
// line numbers. Input go-diff cannot parse is walked line by line instead.
func AddedLines(unified []byte) []AddedLine {
	if len(bytes.TrimSpace(unified)) == 0 {
		return nil
	}
	files, err := diff.ParseMultiFileDiff(unified)
	if err != nil {
		return addedLinesRaw(unified)
	}
	var out []AddedLine
	for _, fd := range files {
		name := newFileName(fd.NewName)
		if name == "" {
			continue
		}
		for _, h := range fd.Hunks {
			line := int(h.NewStartLine)
			for _, text := range strings.Split(string(h.Body), "\n") {
				if text == "" {
					continue
				}
				switch text[0] {
				case '+':
					out = append(out, AddedLine{File: name, Line: line, Text: text[1:]})
					line++
				case ' ':
					line++
				}
			}
		}
	}
	return out
}

// ChangedFiles lists the new-side file names of a diff, skipping deletions.
func ChangedFiles(unified []byte) []string {
	files, err := diff.ParseMultiFileDiff(unified)
	if err != nil {
		return nil
	}
	var out []string
	for _, fd := range files {
		if name := newFileName(fd.NewName); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func newFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(name, "b/")
}

// addedLinesRaw tracks "+++ " headers and "@@" hunk starts by hand.
func addedLinesRaw(unified []byte) []AddedLine {
	var out []AddedLine
	file := ""
	line := 0
	scanner := bufio.NewScanner(bytes.NewReader(unified))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		text := scanner.Text()
		switch {
		case strings.HasPrefix(text, "+++ "):
			file = newFileName(strings.TrimPrefix(text, "+++ "))
		case strings.HasPrefix(text, "@@"):
			line = hunkStart(text)
		case strings.HasPrefix(text, "+"):
			if file != "" {
				out = append(out, AddedLine{File: file, Line: line, Text: text[1:]})
			}
			line++
		case strings.HasPrefix(text, " "):
			line++
		}
	}
	return out
}

// hunkStart reads the new-file start line of "@@ -a,b +c,d @@".
func hunkStart(header string) int {
	i := strings.Index(header, "+")
	if i < 0 {
		return 0
	}
	n := 0
	for _, r := range header[i+1:] {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
