package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
)

var exemptSession string

var exemptCmd = &cobra.Command{
	Use:   "exempt",
	Short: "Manage session exemptions for protected paths",
	Long: `Exemptions let a protected file through the paths policy for the rest of a
session. They are stored one per line and re-read on every hook invocation.

An entry matches a target by exact path or by basename:
  hookguard exempt add .env.local          # any .env.local
  hookguard exempt add /repo/config/.env   # only that file

Without --session the commands address the session of the most recent hook
invocation.`,
}

var exemptAddCmd = &cobra.Command{
	Use:   "add <path>...",
	Short: "Exempt paths or basenames for the session",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExemptAdd,
}

var exemptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the session's exemptions",
	Args:  cobra.NoArgs,
	RunE:  runExemptList,
}

var exemptClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every exemption of the session",
	Args:  cobra.NoArgs,
	RunE:  runExemptClear,
}

func init() {
	rootCmd.AddCommand(exemptCmd)
	exemptCmd.AddCommand(exemptAddCmd)
	exemptCmd.AddCommand(exemptListCmd)
	exemptCmd.AddCommand(exemptClearCmd)
	exemptCmd.PersistentFlags().StringVar(&exemptSession, "session", "", "Session id (default: most recent hook session)")
	_ = exemptCmd.RegisterFlagCompletionFunc("session", completeSessions) //nolint:errcheck // flag registered above
}

type exemptListing struct {
	Session string   `json:"session" yaml:"session"`
	Store   string   `json:"store" yaml:"store"`
	Entries []string `json:"entries" yaml:"entries"`
}

func runExemptAdd(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	session := rt.currentSession(exemptSession)
	store := rt.exemptions(session)
	if err := store.Add(args...); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, a := range args {
		fmt.Fprintf(w, "Exempted %s\n", a)
	}
	VerbosePrintf("Session %q, store %s\n", session, store.Path())
	return nil
}

func runExemptList(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	session := rt.currentSession(exemptSession)
	store := rt.exemptions(session)
	set, err := store.Load()
	if err != nil {
		return err
	}
	listing := exemptListing{Session: session, Store: store.Path(), Entries: set.Entries()}

	w := cmd.OutOrStdout()
	if GetOutput() != formatter.FormatTable {
		return formatter.Encode(w, GetOutput(), listing)
	}
	if len(listing.Entries) == 0 {
		fmt.Fprintln(w, "No exemptions.")
		return nil
	}
	tbl := formatter.NewTable(w, "EXEMPTION")
	for _, e := range listing.Entries {
		tbl.AddRow(e)
	}
	return tbl.Render()
}

func runExemptClear(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	store := rt.exemptions(rt.currentSession(exemptSession))
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cleared exemptions.")
	return nil
}
