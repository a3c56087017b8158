package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version, build information, and the policies this binary enforces.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, _ := debug.ReadBuildInfo()
		return printVersion(cmd.OutOrStdout(), buildVersion(info))
	},
}

type versionInfo struct {
	Version   string   `json:"version" yaml:"version"`
	Module    string   `json:"module,omitempty" yaml:"module,omitempty"`
	Revision  string   `json:"revision,omitempty" yaml:"revision,omitempty"`
	Modified  bool     `json:"modified,omitempty" yaml:"modified,omitempty"`
	GoVersion string   `json:"go_version" yaml:"go_version"`
	Platform  string   `json:"platform" yaml:"platform"`
	Policies  []string `json:"policies" yaml:"policies"`
}

// buildVersion prefers the -ldflags version and falls back to the module
// version recorded by "go install". info may be nil.
func buildVersion(info *debug.BuildInfo) versionInfo {
	v := versionInfo{
		Version:   version,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Policies:  policyNames(),
	}
	if info == nil {
		return v
	}
	v.Module = info.Main.Path
	if v.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.Revision = s.Value
		case "vcs.modified":
			v.Modified = s.Value == "true"
		}
	}
	return v
}

func printVersion(w io.Writer, v versionInfo) error {
	if GetOutput() != formatter.FormatTable {
		return formatter.Encode(w, GetOutput(), v)
	}
	fmt.Fprintf(w, "hookguard version %s\n", v.Version)
	if v.Revision != "" {
		rev := v.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if v.Modified {
			rev += " (modified)"
		}
		fmt.Fprintf(w, "  Revision: %s\n", rev)
	}
	fmt.Fprintf(w, "  Go version: %s\n", v.GoVersion)
	fmt.Fprintf(w, "  Platform: %s\n", v.Platform)
	fmt.Fprintf(w, "  Policies: %s\n", strings.Join(v.Policies, ", "))
	return nil
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
