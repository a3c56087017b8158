package main

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Binary-Hype/claude-marketplace-sub001/embedded"
)

func TestWriteDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")

	n, err := writeDefaults(io.Discard, embedded.Defaults(), dir, false, false)
	if err != nil {
		t.Fatalf("writeDefaults: %v", err)
	}
	entries, err := fs.ReadDir(embedded.Defaults(), ".")
	if err != nil {
		t.Fatal(err)
	}
	if n != len(entries) {
		t.Errorf("wrote %d files, want %d", n, len(entries))
	}

	// Idempotent: local edits survive a second run.
	target := filepath.Join(dir, "commit-rules.json")
	if err := os.WriteFile(target, []byte(`{"enabled": false}`), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	n, err = writeDefaults(&out, embedded.Defaults(), dir, false, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second run wrote %d files, want 0", n)
	}
	if !strings.Contains(out.String(), "Kept existing") {
		t.Errorf("output = %q", out.String())
	}
	data, _ := os.ReadFile(target)
	if string(data) != `{"enabled": false}` {
		t.Error("existing file overwritten without force")
	}

	if _, err := writeDefaults(io.Discard, embedded.Defaults(), dir, true, false); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(target)
	if string(data) == `{"enabled": false}` {
		t.Error("force did not overwrite")
	}
}

func TestWriteDefaults_DryRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")
	var out bytes.Buffer
	n, err := writeDefaults(&out, embedded.Defaults(), dir, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("dry run wrote %d files", n)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("dry run created the directory")
	}
	if !strings.Contains(out.String(), "[dry-run] Would write") {
		t.Errorf("output = %q", out.String())
	}
}
