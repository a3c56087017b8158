package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
)

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent blocks and warnings",
	Long: `Print the most recent entries of the decision event log. Every block, warning
and internal policy failure is recorded; plain allows are not.

Set HOOKGUARD_EVENTS=false to stop recording.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 20, "Number of events to show (0 for all)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	log := hook.NewEventLog(rt.paths.EventsFile())
	events, err := log.Tail(eventsLimit)
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	w := cmd.OutOrStdout()
	if GetOutput() != formatter.FormatTable {
		return formatter.Encode(w, GetOutput(), events)
	}
	if len(events) == 0 {
		fmt.Fprintf(w, "No events in %s\n", log.Path())
		return nil
	}
	tbl := formatter.NewTable(w, "TIME", "SESSION", "TOOL", "POLICY", "VERDICT", "REASON").
		SetMaxWidth(1, 12).
		SetMaxWidth(5, 80)
	for _, ev := range events {
		tbl.AddRow(ev.Time.Local().Format(time.DateTime), ev.SessionID, ev.Tool, ev.Policy, ev.Verdict, ev.Reason)
	}
	return tbl.Render()
}
