package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/config"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:   "hook [policy]",
	Short: "Evaluate a PreToolUse invocation read from stdin",
	Long: `Read one PreToolUse invocation (JSON) from stdin and decide whether the tool
call may run.

Exit status:
  0  allow (warnings, if any, are printed to stderr)
  2  block (the reason is printed to stderr)

With no argument every applicable policy runs in order (paths, credentials,
commit-msg, typosquat); the first block wins and warnings accumulate. Name a
policy to run only that one.

Empty, oversized or malformed input is allowed: the hook cannot judge what it
cannot read.

Example settings.json entry:
  {"matcher": "Bash", "hooks": [{"type": "command", "command": "hookguard hook"}]}`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: policyNames(),
	RunE:      runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	only := ""
	if len(args) == 1 {
		only = args[0]
	}
	exitFunc(evaluateHook(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr(), only))
	return nil
}

// evaluateHook turns stdin into an exit code. Every failure path ends in a
// verdict; nothing is returned to cobra, whose error output would reach the
// agent as a non-blocking hook error.
func evaluateHook(ctx context.Context, stdin io.Reader, stderr io.Writer, only string) int {
	env, envErr := config.LoadEnv()
	if envErr != nil {
		env = defaultEnv()
	}
	if env.Disabled {
		return hook.ExitAllow
	}

	inv, err := hook.ReadInvocation(stdin, env.MaxInputBytes)
	if err != nil {
		rt := newApp(env, "", false)
		defer rt.Close()
		rt.logger.Warn("unreadable hook input, allowing", "error", err)
		return hook.ExitAllow
	}

	rt := newApp(env, inv.Cwd, false)
	defer rt.Close()
	if envErr != nil {
		rt.logger.Warn("invalid HOOKGUARD_* environment, using defaults", "error", envErr)
	}
	if err := rt.session.Set(inv.SessionID); err != nil {
		rt.logger.Debug("record current session", "error", err)
	}

	rt.logger.Debug("evaluating", "tool", inv.ToolName, "session", inv.SessionID, "only", only)
	dec, err := rt.dispatcher(inv.SessionID).Dispatch(ctx, inv, only)
	if err != nil {
		rt.logger.Warn("hook misconfigured, allowing", "error", err)
		//nolint:errcheck // stderr
		fmt.Fprintf(stderr, "hookguard: %v\n", err)
		return hook.ExitAllow
	}
	return hook.Emit(stderr, dec)
}
