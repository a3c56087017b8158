package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for hookguard.

Policy names, configuration domains and the --session flag complete
from the local installation.

Usage:
  hookguard completion bash > /etc/bash_completion.d/hookguard
  hookguard completion zsh > "${fpath[1]}/_hookguard"
  hookguard completion fish > ~/.config/fish/completions/hookguard.fish`,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(w, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(w)
		case "fish":
			return cmd.Root().GenFishCompletion(w, true)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completePolicyArg completes the policy name, then falls back to files.
func completePolicyArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return policyNames(), cobra.ShellCompDirectiveNoFileComp
}

// completeSessions offers every session that has an exemption store.
func completeSessions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	rt, err := loadApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer rt.Close()
	dir := filepath.Dir(rt.paths.ExemptionsFile(nil, "default"))
	return sessionIDs(dir, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// sessionIDs lists the exemption stores in dir whose id starts with prefix.
func sessionIDs(dir, prefix string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var ids []string
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".txt")
		if e.IsDir() || !ok || !strings.HasPrefix(id, prefix) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
