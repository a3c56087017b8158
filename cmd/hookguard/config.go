package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/commitlint"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/resolver"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the layered configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show [domain]",
	Short: "Show resolved configuration and where each entry came from",
	Long: `Resolve a domain directly from its tier files (the cache is bypassed) and
show every entry with the tier that contributed it.

Domains: secret-paths, popular-packages, commit-rules.
With no argument every domain is shown.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: domainNames(),
	RunE:      runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func domainNames() []string {
	var names []string
	for _, d := range resolver.Domains() {
		names = append(names, string(d))
	}
	return names
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	domains := resolver.Domains()
	if len(args) == 1 {
		d, err := resolver.ParseDomain(args[0])
		if err != nil {
			return err
		}
		domains = []resolver.Domain{d}
	}

	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	var (
		explained []*resolver.Explanation
		errs      []error
	)
	for _, d := range domains {
		ex, err := rt.resolver.Explain(d, commitlint.DefaultRules())
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d, err))
		}
		if ex != nil {
			explained = append(explained, ex)
		}
	}

	w := cmd.OutOrStdout()
	if GetOutput() != formatter.FormatTable {
		if err := formatter.Encode(w, GetOutput(), explained); err != nil {
			return err
		}
		return errors.Join(errs...)
	}
	for i, ex := range explained {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := printExplanation(w, ex); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}

func printExplanation(w io.Writer, ex *resolver.Explanation) error {
	fmt.Fprintf(w, "== %s ==\n", ex.Domain)
	tiers := formatter.NewTable(w, "TIER", "STATUS", "PATH")
	for _, t := range ex.Tiers {
		tiers.AddRow(t.Tier, t.Status, t.Path)
	}
	if err := tiers.Render(); err != nil {
		return err
	}

	switch ex.Domain {
	case resolver.DomainSecretPaths:
		return printEntries(w, []string{"LIST", "PATTERN", "SOURCE"},
			entryRows("deny", ex.Deny), entryRows("allow", ex.Allow))
	case resolver.DomainPopularPackages:
		ecosystems := make([]string, 0, len(ex.Packages))
		for eco := range ex.Packages {
			ecosystems = append(ecosystems, eco)
		}
		sort.Strings(ecosystems)
		var groups [][][]string
		for _, eco := range ecosystems {
			groups = append(groups, entryRows(eco, ex.Packages[eco]))
		}
		return printEntries(w, []string{"ECOSYSTEM", "PACKAGE", "SOURCE"}, groups...)
	case resolver.DomainCommitRules:
		rows := make([][]string, 0, len(ex.Rules))
		for _, e := range ex.Rules {
			rows = append(rows, []string{e.Key, e.Text, string(e.Source)})
		}
		return printEntries(w, []string{"RULE", "VALUE", "SOURCE"}, rows)
	}
	return nil
}

func entryRows(label string, entries []resolver.EntrySource) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{label, e.Text, string(e.Source)})
	}
	return rows
}

func printEntries(w io.Writer, headers []string, groups ...[][]string) error {
	fmt.Fprintln(w)
	tbl := formatter.NewTable(w, headers...).SetMaxWidth(1, 60)
	for _, rows := range groups {
		for _, r := range rows {
			tbl.AddRow(r...)
		}
	}
	if tbl.Rows() == 0 {
		fmt.Fprintf(w, "(no %s)\n", strings.ToLower(headers[1])+"s")
		return nil
	}
	return tbl.Render()
}
