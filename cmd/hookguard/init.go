package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/embedded"
)

var (
	initDir    string
	initForce  bool
	initDryRun bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration files",
	Long: `Write the shipped defaults (secret-patterns.json, popular-packages.json,
commit-rules.json) to the defaults directory.

The defaults directory is $HOOKGUARD_DEFAULTS_DIR, else the plugin's
config/ directory, else ~/.config/hookguard. Existing files are kept unless
--force is given. Safe to run multiple times.

Overrides belong in ~/.claude/hookguard/ (user) or .claude/hookguard/
(project), not in the defaults directory.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDir, "dir", "", "Target directory (default: the resolved defaults directory)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "Show what would be written")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := initDir
	if dir == "" {
		rt, err := loadApp()
		if err != nil {
			return err
		}
		dir = rt.paths.DefaultsDir
		_ = rt.Close() //nolint:errcheck // log file only
	}
	written, err := writeDefaults(cmd.OutOrStdout(), embedded.Defaults(), dir, initForce, initDryRun)
	if err != nil {
		return err
	}
	if !initDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d default file(s) to %s\n", written, dir)
	}
	return nil
}

// writeDefaults copies every file of src into dir and returns how many were
// written. Existing files are skipped unless force is set.
func writeDefaults(w io.Writer, src fs.FS, dir string, force, dryRun bool) (int, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return 0, fmt.Errorf("read embedded defaults: %w", err)
	}
	if !dryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	written := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		target := filepath.Join(dir, e.Name())
		if _, err := os.Stat(target); err == nil && !force {
			fmt.Fprintf(w, "Kept existing %s\n", target)
			continue
		}
		if dryRun {
			fmt.Fprintf(w, "[dry-run] Would write %s\n", target)
			continue
		}
		data, err := fs.ReadFile(src, e.Name())
		if err != nil {
			return written, err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", target, err)
		}
		written++
	}
	return written, nil
}
