package formatter

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_BasicOutput(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "ENTRY", "SOURCE")
	tbl.AddRow(".env", "defaults")
	tbl.AddRow("*.pem", ".claude/hookguard")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "ENTRY") || !strings.Contains(out, "SOURCE") {
		t.Errorf("missing headers in output:\n%s", out)
	}
	if !strings.Contains(out, ".env") || !strings.Contains(out, "*.pem") {
		t.Errorf("missing data rows in output:\n%s", out)
	}

	// header, rule, 2 rows
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d:\n%s", len(lines), out)
	}
	if tbl.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", tbl.Rows())
	}
}

func TestTable_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "A", "B")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output for table with no rows, got:\n%s", buf.String())
	}
}

func TestTable_MaxWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		value string
		want  string
	}{
		{"truncated", 8, "abcdefghijklmnop", "abcde..."},
		{"exact", 5, "abcde", "abcde"},
		{"tiny limit", 2, "abcdef", "ab"},
		{"runes", 4, "ääääää", "ä..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tbl := NewTable(&buf, "ID", "VALUE")
			tbl.SetMaxWidth(0, tt.width)
			tbl.AddRow(tt.value, "ok")
			if err := tbl.Render(); err != nil {
				t.Fatalf("Render: %v", err)
			}
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			got := strings.Fields(lines[2])[0]
			if got != tt.want {
				t.Errorf("cell = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTable_MissingValuesAndNewlines(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "A", "B", "C")
	tbl.AddRow("only-one")
	tbl.AddRow("multi\nline\treason")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "only-one") {
		t.Errorf("expected value in output:\n%s", out)
	}
	if !strings.Contains(out, "multi line reason") {
		t.Errorf("expected flattened value in output:\n%s", out)
	}
	if n := len(strings.Split(strings.TrimRight(out, "\n"), "\n")); n != 4 {
		t.Errorf("expected 4 lines, got %d:\n%s", n, out)
	}
}

func TestTable_RuleMatchesHeaderLength(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf, "SHORT", "LONGHEADER")
	tbl.AddRow("x", "y")
	if err := tbl.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	sep := strings.Fields(lines[1])
	if len(sep) != 2 || sep[0] != "-----" || sep[1] != "----------" {
		t.Errorf("unexpected rule line %q", lines[1])
	}
}

func BenchmarkTableRender(b *testing.B) {
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		tbl := NewTable(&buf, "KEY", "ENTRIES", "MODIFIED")
		tbl.SetMaxWidth(0, 40)
		for j := 0; j < 10; j++ {
			tbl.AddRow("secret-paths.3f2a1c.deny.json", "12", "2026-01-02 15:04")
		}
		_ = tbl.Render()
	}
}
