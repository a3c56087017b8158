package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/pathguard"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
)

var (
	checkTool    string
	checkCommand bool
	checkSession string
)

var checkCmd = &cobra.Command{
	Use:   "check <policy> <target>...",
	Short: "Evaluate one policy against a path or command",
	Long: `Run a single policy the way the hook would and print its verdict.

For the paths policy each target is a file path passed to --tool (default
Read); with --command the targets are joined into one shell command instead.
Every other policy takes a shell command.

Kill switches are ignored and no event is recorded. Exits 2 when blocked.

Examples:
  hookguard check paths .env config/id_rsa
  hookguard check paths --command 'cat .env'
  hookguard check typosquat 'npm install expresss'
  hookguard check commit-msg 'git commit -m "Added feature."'`,
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completePolicyArg,
	RunE:              runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkTool, "tool", hook.ToolRead, "Tool name used for path targets")
	checkCmd.Flags().BoolVar(&checkCommand, "command", false, "Treat targets as a shell command for the paths policy")
	checkCmd.Flags().StringVar(&checkSession, "session", "", "Session whose exemptions apply (default: most recent hook session)")
	_ = checkCmd.RegisterFlagCompletionFunc("session", completeSessions) //nolint:errcheck // flag registered above
}

type checkResult struct {
	Policy  string `json:"policy" yaml:"policy"`
	Target  string `json:"target" yaml:"target"`
	Verdict string `json:"verdict" yaml:"verdict"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// checkInvocations builds the invocations a check evaluates.
func checkInvocations(policy string, targets []string, tool string, asCommand bool) []*hook.Invocation {
	if policy == pathguard.Name && !asCommand {
		invs := make([]*hook.Invocation, 0, len(targets))
		for _, t := range targets {
			inv := &hook.Invocation{ToolName: tool}
			switch tool {
			case hook.ToolGlob, hook.ToolGrep:
				inv.ToolInput.Pattern = t
			case hook.ToolNotebookEdit:
				inv.ToolInput.NotebookPath = t
			default:
				inv.ToolInput.FilePath = t
			}
			invs = append(invs, inv)
		}
		return invs
	}
	return []*hook.Invocation{{
		ToolName:  hook.ToolBash,
		ToolInput: hook.ToolInput{Command: strings.Join(targets, " ")},
	}}
}

func invocationTarget(inv *hook.Invocation) string {
	if p := inv.TargetPath(); p != "" {
		return p
	}
	if inv.ToolInput.Command != "" {
		return inv.ToolInput.Command
	}
	return inv.ToolInput.Pattern
}

func runCheck(cmd *cobra.Command, args []string) error {
	policy := args[0]
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	session := rt.currentSession(checkSession)
	d := safety.NewDispatcher(rt.policies(session), safety.WithLogger(rt.logger))

	var (
		results   []checkResult
		decisions []hook.Decision
	)
	for _, inv := range checkInvocations(policy, args[1:], checkTool, checkCommand) {
		inv.SessionID = session
		dec, err := d.Dispatch(cmd.Context(), inv, policy)
		if err != nil {
			return err
		}
		decisions = append(decisions, dec)
		results = append(results, checkResult{
			Policy:  policy,
			Target:  invocationTarget(inv),
			Verdict: dec.Verdict.String(),
			Message: dec.Message,
		})
	}

	w := cmd.OutOrStdout()
	if GetOutput() != formatter.FormatTable {
		if err := formatter.Encode(w, GetOutput(), results); err != nil {
			return err
		}
	} else {
		s := formatter.NewStyler(w)
		for i, r := range results {
			switch decisions[i].Verdict {
			case hook.VerdictBlock:
				s.Fail("%s: %s", r.Verdict, r.Target)
			case hook.VerdictWarn:
				s.Warn("%s: %s", r.Verdict, r.Target)
			default:
				s.OK("%s: %s", r.Verdict, r.Target)
			}
			if r.Message != "" {
				fmt.Fprintln(w, indent(r.Message, "  "))
			}
		}
	}

	if combined := hook.Combine(decisions...); combined.Blocked() {
		exitFunc(combined.ExitCode())
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
