package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/embedded"
)

// pluginBinary is the command prefix used by the plugin manifest.
const pluginBinary = "${CLAUDE_PLUGIN_ROOT}/bin/hookguard"

var (
	hooksDryRun   bool
	hooksForce    bool
	hooksBinary   string
	hooksSettings string
)

// HookEntry represents a single hook command (e.g., {"type": "command", "command": "..."}).
type HookEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// HookGroup represents a hook group with optional matcher and a hooks array.
type HookGroup struct {
	Matcher string      `json:"matcher,omitempty"`
	Hooks   []HookEntry `json:"hooks"`
}

type hooksManifest struct {
	Hooks map[string][]HookGroup `json:"hooks"`
}

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Show or install the Claude Code hook registration",
	Long: `hookguard runs as a PreToolUse hook. As a plugin it is registered by the
bundled hooks.json; without the plugin, "hooks install" writes the same
registration into ~/.claude/settings.json.`,
}

var hooksShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the hooks configuration snippet",
	Args:  cobra.NoArgs,
	RunE:  runHooksShow,
}

var hooksInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Register hookguard in ~/.claude/settings.json",
	Long: `Merge hookguard's PreToolUse hooks into Claude Code settings. Other hooks are
kept; earlier hookguard entries are replaced. The existing file is backed up
before it is rewritten.`,
	Args: cobra.NoArgs,
	RunE: runHooksInstall,
}

func init() {
	rootCmd.AddCommand(hooksCmd)
	hooksCmd.AddCommand(hooksShowCmd)
	hooksCmd.AddCommand(hooksInstallCmd)
	hooksCmd.PersistentFlags().StringVar(&hooksBinary, "binary", "", "Path to the hookguard binary (default: this executable)")
	hooksInstallCmd.Flags().BoolVar(&hooksDryRun, "dry-run", false, "Print the resulting settings without writing them")
	hooksInstallCmd.Flags().BoolVar(&hooksForce, "force", false, "Reinstall even if hookguard hooks are present")
	hooksInstallCmd.Flags().StringVar(&hooksSettings, "settings", "", "Settings file (default: ~/.claude/settings.json)")
}

// ReadHooksManifest parses a hooks.json manifest from raw bytes.
func ReadHooksManifest(data []byte) (map[string][]HookGroup, error) {
	var manifest hooksManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse hooks manifest: %w", err)
	}
	if manifest.Hooks == nil {
		return nil, fmt.Errorf("hooks manifest missing 'hooks' key")
	}
	return manifest.Hooks, nil
}

// replaceBinary points every manifest command at the given binary.
func replaceBinary(events map[string][]HookGroup, binary string) {
	for _, groups := range events {
		for i := range groups {
			for j := range groups[i].Hooks {
				groups[i].Hooks[j].Command = strings.ReplaceAll(groups[i].Hooks[j].Command, pluginBinary, binary)
			}
		}
	}
}

func resolveBinary() string {
	if hooksBinary != "" {
		return hooksBinary
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			return resolved
		}
		return exe
	}
	return "hookguard"
}

func generateHooks() (map[string][]HookGroup, error) {
	events, err := ReadHooksManifest(embedded.HooksJSON)
	if err != nil {
		return nil, err
	}
	replaceBinary(events, resolveBinary())
	return events, nil
}

func runHooksShow(cmd *cobra.Command, args []string) error {
	events, err := generateHooks()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(map[string]any{"hooks": events}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hooks: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func runHooksInstall(cmd *cobra.Command, args []string) error {
	settingsPath := hooksSettings
	if settingsPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home directory: %w", err)
		}
		settingsPath = filepath.Join(home, ".claude", "settings.json")
	}
	events, err := generateHooks()
	if err != nil {
		return err
	}
	return installHooks(cmd.OutOrStdout(), settingsPath, events, time.Now())
}

func installHooks(w io.Writer, settingsPath string, events map[string][]HookGroup, now time.Time) error {
	rawSettings, err := loadHooksSettings(settingsPath)
	if err != nil {
		return err
	}
	hooksMap := cloneHooksMap(rawSettings)
	if !hooksForce && hooksInstalled(hooksMap) {
		fmt.Fprintln(w, "hookguard hooks already installed. Use --force to overwrite.")
		return nil
	}
	installed := mergeHookEvents(hooksMap, events)
	rawSettings["hooks"] = hooksMap

	data, err := json.MarshalIndent(rawSettings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if hooksDryRun {
		fmt.Fprintln(w, "[dry-run] Would write to", settingsPath)
		fmt.Fprintln(w, string(data))
		return nil
	}
	if err := backupHooksSettings(w, settingsPath, now); err != nil {
		return err
	}
	if err := writeHooksSettings(settingsPath, data); err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Installed hookguard hooks to %s\n", settingsPath)
	for _, event := range installed {
		count := 0
		for _, g := range events[event] {
			count += len(g.Hooks)
		}
		fmt.Fprintf(w, "  %s: %d hook(s)\n", event, count)
	}
	return nil
}

func loadHooksSettings(settingsPath string) (map[string]any, error) {
	rawSettings := make(map[string]any)
	data, err := os.ReadFile(settingsPath)
	if err == nil {
		if err := json.Unmarshal(data, &rawSettings); err != nil {
			return nil, fmt.Errorf("parse existing settings: %w", err)
		}
		return rawSettings, nil
	}
	if os.IsNotExist(err) {
		return rawSettings, nil
	}
	return nil, fmt.Errorf("read settings: %w", err)
}

func cloneHooksMap(rawSettings map[string]any) map[string]any {
	hooksMap := make(map[string]any)
	if existing, ok := rawSettings["hooks"].(map[string]any); ok {
		for k, v := range existing {
			hooksMap[k] = v
		}
	}
	return hooksMap
}

// mergeHookEvents replaces hookguard groups in every manifest event and
// keeps everything else. It returns the events written, sorted.
func mergeHookEvents(hooksMap map[string]any, events map[string][]HookGroup) []string {
	var installed []string
	for event, newGroups := range events {
		if len(newGroups) == 0 {
			continue
		}
		groups := filterForeignHookGroups(hooksMap, event)
		for _, g := range newGroups {
			groups = append(groups, hookGroupToMap(g))
		}
		hooksMap[event] = groups
		installed = append(installed, event)
	}
	sort.Strings(installed)
	return installed
}

// hooksInstalled reports whether any event already has a hookguard group.
func hooksInstalled(hooksMap map[string]any) bool {
	for event := range hooksMap {
		groups, _ := hooksMap[event].([]any)
		for _, g := range groups {
			if group, ok := g.(map[string]any); ok && rawGroupIsManaged(group) {
				return true
			}
		}
	}
	return false
}

// filterForeignHookGroups returns the event's groups that hookguard does not
// manage.
func filterForeignHookGroups(hooksMap map[string]any, event string) []map[string]any {
	result := make([]map[string]any, 0)
	groups, ok := hooksMap[event].([]any)
	if !ok {
		return result
	}
	for _, g := range groups {
		group, ok := g.(map[string]any)
		if !ok {
			continue
		}
		if !rawGroupIsManaged(group) {
			result = append(result, group)
		}
	}
	return result
}

func rawGroupIsManaged(group map[string]any) bool {
	hooks, ok := group["hooks"].([]any)
	if !ok {
		return false
	}
	for _, h := range hooks {
		hook, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if cmd, ok := hook["command"].(string); ok && isManagedHookCommand(cmd) {
			return true
		}
	}
	return false
}

func isManagedHookCommand(cmd string) bool {
	fields := strings.Fields(cmd)
	return len(fields) >= 2 && filepath.Base(fields[0]) == "hookguard" && fields[1] == "hook"
}

// hookGroupToMap converts a HookGroup to a map for JSON serialization.
func hookGroupToMap(g HookGroup) map[string]any {
	hooks := make([]any, len(g.Hooks))
	for i, h := range g.Hooks {
		entry := map[string]any{
			"type":    h.Type,
			"command": h.Command,
		}
		if h.Timeout > 0 {
			entry["timeout"] = h.Timeout
		}
		hooks[i] = entry
	}
	result := map[string]any{
		"hooks": hooks,
	}
	if g.Matcher != "" {
		result["matcher"] = g.Matcher
	}
	return result
}

func backupHooksSettings(w io.Writer, settingsPath string, now time.Time) error {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil
	}
	backupPath := fmt.Sprintf("%s.backup.%s", settingsPath, now.Format("20060102-150405"))
	if err := os.WriteFile(backupPath, data, 0o600); err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	fmt.Fprintf(w, "Backed up existing settings to %s\n", backupPath)
	return nil
}

func writeHooksSettings(settingsPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	if err := os.WriteFile(settingsPath, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
