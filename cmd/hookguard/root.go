package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
)

var (
	// Global flags
	verbose bool
	output  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hookguard",
	Short: "Pre-execution security gate for AI coding agent tool calls",
	Long: `hookguard inspects every tool call an AI coding agent is about to make and
blocks the dangerous ones before they run.

Policies:
  paths        Reads, writes and searches of secret-bearing files (.env, keys, ...)
  credentials  Hardcoded credentials in the staged diff of git commit
  typosquat    Package installs whose names are near-misses of popular packages
  commit-msg   Commit message style (length, period, imperative mood)

Hook entrypoint:
  hookguard hook               Read a PreToolUse invocation on stdin, exit 0 or 2

Administration:
  exempt       Manage session exemptions for protected paths
  config       Show the resolved configuration and where each value came from
  cache        Inspect, rebuild or clear the pattern cache
  check        Evaluate a policy against a path or command by hand
  events       Show recent blocks and warnings
  init         Write the default configuration files
  hooks        Show or install the Claude Code hook registration
  doctor       Check the installation`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return formatter.ValidateFormat(output)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitFunc(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatter.FormatTable, "Output format (table, json, yaml)")
}

// GetVerbose returns the verbose flag value for use by subcommands.
func GetVerbose() bool {
	return verbose
}

// GetOutput returns the output format for use by subcommands.
func GetOutput() string {
	return output
}

// VerbosePrintf prints only when verbose mode is enabled.
func VerbosePrintf(format string, args ...any) {
	if verbose {
		fmt.Printf(format, args...)
	}
}
