package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the pattern cache",
	Long: `The pattern cache holds the merged result of the configuration tiers for
each domain. Artifacts are rebuilt automatically when a tier file changes;
these commands exist for inspection and for recovering from a bad cache.`,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cached artifacts",
	Args:  cobra.NoArgs,
	RunE:  runCacheShow,
}

var cacheRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Re-resolve every domain and rewrite the cache",
	Args:  cobra.NoArgs,
	RunE:  runCacheRebuild,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached artifact",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheRebuildCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	artifacts, err := rt.resolver.Artifacts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list cache: %w", err)
	}
	w := cmd.OutOrStdout()
	if GetOutput() != formatter.FormatTable {
		return formatter.Encode(w, GetOutput(), artifacts)
	}
	if len(artifacts) == 0 {
		fmt.Fprintf(w, "Cache is empty (%s).\n", rt.paths.CacheDir)
		return nil
	}
	tbl := formatter.NewTable(w, "KEY", "ENTRIES", "MODIFIED", "STATUS")
	for _, a := range artifacts {
		status := "ok"
		if a.Corrupt {
			status = "corrupt"
		}
		modified := "-"
		if !a.ModTime.IsZero() {
			modified = a.ModTime.Local().Format(time.DateTime)
		}
		tbl.AddRow(a.Key, strconv.Itoa(a.Entries), modified, status)
	}
	return tbl.Render()
}

func runCacheRebuild(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.resolver.Rebuild(cmd.Context()); err != nil {
		return fmt.Errorf("rebuild cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt cache in %s\n", rt.paths.CacheDir)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	n, err := rt.resolver.Purge(cmd.Context())
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached artifacts\n", n)
	return nil
}
