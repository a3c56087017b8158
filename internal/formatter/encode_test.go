package formatter

import (
	"bytes"
	"errors"
	"testing"
)

type sample struct {
	Name    string   `json:"name" yaml:"name"`
	Entries []string `json:"entries" yaml:"entries"`
}

func TestEncode(t *testing.T) {
	v := sample{Name: "secret-paths", Entries: []string{".env", "<key>"}}

	var buf bytes.Buffer
	if err := Encode(&buf, FormatJSON, v); err != nil {
		t.Fatalf("Encode json: %v", err)
	}
	want := "{\n  \"name\": \"secret-paths\",\n  \"entries\": [\n    \".env\",\n    \"<key>\"\n  ]\n}\n"
	if buf.String() != want {
		t.Errorf("json output:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	v.Entries = []string{".env", "id_rsa"}
	if err := Encode(&buf, FormatYAML, v); err != nil {
		t.Fatalf("Encode yaml: %v", err)
	}
	want = "name: secret-paths\nentries:\n  - .env\n  - id_rsa\n"
	if buf.String() != want {
		t.Errorf("yaml output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatTable, 1); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Encode(table) error = %v, want ErrUnknownFormat", err)
	}
	if err := ValidateFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ValidateFormat(xml) error = %v, want ErrUnknownFormat", err)
	}
	for _, f := range []string{FormatTable, FormatJSON, FormatYAML} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("ValidateFormat(%s) = %v", f, err)
		}
	}
}

func TestStyler_PlainOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewStyler(&buf)
	s.OK("defaults present (%d files)", 3)
	s.Warn("git not found")
	s.Fail("cache not writable")

	want := "✓ defaults present (3 files)\n! git not found\n✗ cache not writable\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
	if IsTerminal(&buf) {
		t.Error("a buffer is not a terminal")
	}
}
