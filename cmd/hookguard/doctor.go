package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/cache"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/commitlint"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/formatter"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/resolver"
)

const (
	statusPass = "pass"
	statusWarn = "warn"
	statusFail = "fail"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the hookguard installation",
	Long: `Run health checks on the hookguard installation.

Required checks (defaults, configuration, cache) fail the command; optional
ones (git, hook registration, kill switches) are reported as warnings.

Examples:
  hookguard doctor
  hookguard doctor -o json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name" yaml:"name"`
	Status   string `json:"status" yaml:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail" yaml:"detail"`
	Required bool   `json:"required" yaml:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks" yaml:"checks"`
	Result  string        `json:"result" yaml:"result"` // "HEALTHY", "UNHEALTHY"
	Summary string        `json:"summary" yaml:"summary"`
}

// gatherDoctorChecks runs all doctor checks and returns the results.
func gatherDoctorChecks(ctx context.Context, rt *app) []doctorCheck {
	checks := []doctorCheck{
		{Name: "hookguard", Status: statusPass, Detail: version, Required: true},
		checkDefaultsDir(rt.paths.DefaultsDir),
	}
	for _, d := range resolver.Domains() {
		checks = append(checks, checkDomain(rt.resolver, d))
	}
	checks = append(checks,
		checkCache(ctx, rt.store, rt.paths.CacheDir),
		checkGit(),
		checkHookRegistration(),
		checkKillSwitches(rt.env.Disabled, rt.env.DisabledPolicies),
	)
	return checks
}

func runDoctor(cmd *cobra.Command, args []string) error {
	rt, err := loadApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	output := computeResult(gatherDoctorChecks(cmd.Context(), rt))
	w := cmd.OutOrStdout()
	if GetOutput() != formatter.FormatTable {
		return formatter.Encode(w, GetOutput(), output)
	}
	renderDoctor(w, output)
	if hasRequiredFailure(output.Checks) {
		return fmt.Errorf("doctor failed: one or more required checks did not pass")
	}
	return nil
}

// renderDoctor writes one styled line per check followed by the summary.
func renderDoctor(w io.Writer, output doctorOutput) {
	fmt.Fprintln(w, "hookguard doctor")
	fmt.Fprintln(w, strings.Repeat("─", 16))

	maxName := 0
	for _, c := range output.Checks {
		maxName = max(maxName, len(c.Name))
	}
	s := formatter.NewStyler(w)
	for _, c := range output.Checks {
		line := c.Name + strings.Repeat(" ", maxName-len(c.Name)) + "  " + c.Detail
		switch c.Status {
		case statusPass:
			s.OK("%s", line)
		case statusWarn:
			s.Warn("%s", line)
		default:
			s.Fail("%s", line)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.Summary)
}

// hasRequiredFailure returns true if any required check has failed.
func hasRequiredFailure(checks []doctorCheck) bool {
	for _, c := range checks {
		if c.Required && c.Status == statusFail {
			return true
		}
	}
	return false
}

func checkDefaultsDir(dir string) doctorCheck {
	c := doctorCheck{Name: "defaults", Required: true}
	var missing []string
	for _, d := range resolver.Domains() {
		if !d.Required() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, d.FileName())); err != nil {
			missing = append(missing, d.FileName())
		}
	}
	if len(missing) > 0 {
		c.Status = statusFail
		c.Detail = fmt.Sprintf("%s missing %s (run 'hookguard init')", dir, strings.Join(missing, ", "))
		return c
	}
	c.Status = statusPass
	c.Detail = dir
	return c
}

// checkDomain resolves a domain from its tier files and reports the entry
// count. Domains with a built-in fallback only warn.
func checkDomain(r *resolver.Resolver, d resolver.Domain) doctorCheck {
	c := doctorCheck{Name: string(d), Required: d.Required()}
	ex, err := r.Explain(d, commitlint.DefaultRules())
	if err != nil {
		c.Status = statusFail
		if !d.Required() {
			c.Status = statusWarn
		}
		c.Detail = err.Error()
		return c
	}
	loaded := 0
	for _, t := range ex.Tiers {
		if t.Status == "loaded" {
			loaded++
		}
	}
	entries := len(ex.Deny) + len(ex.Allow) + len(ex.Rules)
	for _, pkgs := range ex.Packages {
		entries += len(pkgs)
	}
	c.Status = statusPass
	c.Detail = fmt.Sprintf("%d entries from %d tier file(s)", entries, loaded)
	return c
}

const probeKey = ".doctor-probe"

func checkCache(ctx context.Context, store cache.Store, dir string) doctorCheck {
	c := doctorCheck{Name: "cache", Required: true}
	if _, ok := store.(*cache.MemoryStore); ok {
		c.Status = statusWarn
		c.Detail = dir + " unusable, patterns are resolved on every call"
		return c
	}
	if err := store.Write(ctx, probeKey, []byte("{}")); err != nil {
		c.Status = statusFail
		c.Detail = fmt.Sprintf("%s not writable: %v", dir, err)
		return c
	}
	_ = store.Delete(ctx, probeKey) //nolint:errcheck // probe cleanup
	c.Status = statusPass
	c.Detail = dir
	return c
}

func checkGit() doctorCheck {
	c := doctorCheck{Name: "git"}
	path, err := exec.LookPath("git")
	if err != nil {
		c.Status = statusWarn
		c.Detail = "not found in PATH (credential scanning allows every commit)"
		return c
	}
	c.Status = statusPass
	c.Detail = path
	return c
}

func checkHookRegistration() doctorCheck {
	c := doctorCheck{Name: "hook registration"}
	if root := os.Getenv("CLAUDE_PLUGIN_ROOT"); root != "" {
		c.Status = statusPass
		c.Detail = "plugin " + root
		return c
	}
	home, err := os.UserHomeDir()
	if err != nil {
		c.Status = statusWarn
		c.Detail = "cannot locate home directory"
		return c
	}
	settingsPath := filepath.Join(home, ".claude", "settings.json")
	raw, err := loadHooksSettings(settingsPath)
	if err != nil {
		c.Status = statusWarn
		c.Detail = err.Error()
		return c
	}
	if !hooksInstalled(cloneHooksMap(raw)) {
		c.Status = statusWarn
		c.Detail = "not registered in " + settingsPath + " (run 'hookguard hooks install')"
		return c
	}
	c.Status = statusPass
	c.Detail = settingsPath
	return c
}

func checkKillSwitches(disabled bool, policies []string) doctorCheck {
	c := doctorCheck{Name: "kill switch", Status: statusPass, Detail: "all policies enabled"}
	switch {
	case disabled:
		c.Status = statusWarn
		c.Detail = "HOOKGUARD_DISABLED is set, every tool call is allowed"
	case len(policies) > 0:
		c.Status = statusWarn
		c.Detail = "disabled: " + strings.Join(policies, ", ")
	}
	return c
}

// countCheckStatuses tallies pass, fail, and warn counts from checks.
func countCheckStatuses(checks []doctorCheck) (passes, fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case statusPass:
			passes++
		case statusFail:
			fails++
		case statusWarn:
			warns++
		}
	}
	return passes, fails, warns
}

// buildDoctorSummary constructs a human-readable summary from check tallies.
func buildDoctorSummary(passes, fails, warns, total int) string {
	parts := []string{fmt.Sprintf("%d/%d checks passed", passes, total)}
	if warns > 0 {
		w := fmt.Sprintf("%d warning", warns)
		if warns > 1 {
			w += "s"
		}
		parts = append(parts, w)
	}
	if fails > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", fails))
	}
	return strings.Join(parts, ", ")
}

func computeResult(checks []doctorCheck) doctorOutput {
	passes, fails, warns := countCheckStatuses(checks)
	result := "HEALTHY"
	if fails > 0 {
		result = "UNHEALTHY"
	}
	return doctorOutput{
		Checks:  checks,
		Result:  result,
		Summary: buildDoctorSummary(passes, fails, warns, len(checks)),
	}
}
