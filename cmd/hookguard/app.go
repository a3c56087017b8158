package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/cache"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/commitlint"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/config"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/exempt"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/pathguard"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/resolver"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/safety"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/secrets"
	"github.com/Binary-Hype/claude-marketplace-sub001/internal/typosquat"
)

// app holds the services one hookguard process works with.
type app struct {
	env      *config.Env
	paths    config.Paths
	logger   *slog.Logger
	store    cache.Store
	resolver *resolver.Resolver
	events   *hook.EventLog
	session  *exempt.SessionFile
	closers  []io.Closer
}

// defaultEnv is used when the HOOKGUARD_* environment cannot be parsed.
func defaultEnv() *config.Env {
	return &config.Env{
		LogLevel:      "warn",
		MaxInputBytes: config.DefaultMaxInputBytes,
		Events:        true,
	}
}

// loadApp wires an app for admin commands, which report a bad
// environment instead of working around it.
func loadApp() (*app, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	return newApp(env, "", verbose), nil
}

// newApp wires configuration, cache, resolver and logging for a
// project rooted at cwd (or the usual fallbacks when cwd is empty). It
// never fails: an unusable cache directory degrades to an in-memory store.
func newApp(env *config.Env, cwd string, debug bool) *app {
	paths := config.ResolvePaths(env, config.ProjectRoot(cwd))
	rt := &app{
		env:     env,
		paths:   paths,
		session: exempt.NewSessionFile(paths.CurrentSessionFile()),
	}
	rt.logger = rt.openLogger(debug)

	fileStore, err := cache.NewFileStore(paths.CacheDir)
	if err != nil {
		rt.logger.Warn("cache directory unusable, resolving without cache",
			"dir", paths.CacheDir, "error", err)
		rt.store = cache.NewMemoryStore()
	} else {
		rt.store = fileStore
	}
	rt.resolver = resolver.New(paths, rt.store, rt.logger)
	if env.Events {
		rt.events = hook.NewEventLog(paths.EventsFile())
	}
	return rt
}

// openLogger writes JSON logs to the log file. The hook must keep stderr
// for decisions, so only admin commands with --verbose log to stderr.
func (rt *app) openLogger(debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	path := rt.paths.LogFile(rt.env)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return slog.New(slog.DiscardHandler)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return slog.New(slog.DiscardHandler)
	}
	rt.closers = append(rt.closers, f)
	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: rt.env.SlogLevel()})
	return slog.New(handler).With("pid", os.Getpid())
}

func (rt *app) Close() error {
	for _, c := range rt.closers {
		_ = c.Close() //nolint:errcheck // log file, best-effort
	}
	rt.closers = nil
	return nil
}

// exemptions returns the exemption store for a session.
func (rt *app) exemptions(sessionID string) *exempt.Store {
	return exempt.NewStore(rt.paths.ExemptionsFile(rt.env, sessionID))
}

// currentSession resolves the session an admin command addresses: an
// explicit flag, else the session of the most recent hook invocation.
func (rt *app) currentSession(flag string) string {
	if flag != "" {
		return flag
	}
	id, err := rt.session.Current()
	if err != nil {
		rt.logger.Debug("no current session", "error", err)
		return ""
	}
	return id
}

// policies returns every policy in evaluation order.
func (rt *app) policies(sessionID string) []safety.Policy {
	return []safety.Policy{
		pathguard.NewPolicy(rt.resolver, rt.exemptions(sessionID), rt.protectedState(sessionID)),
		secrets.NewPolicy(secrets.GitDiff{}, rt.resolver),
		commitlint.NewPolicy(rt.resolver),
		typosquat.NewPolicy(rt.resolver),
	}
}

// protectedState lists the directories and files the agent must not touch:
// every configuration tier, the cache and the session's exemption store.
func (rt *app) protectedState(sessionID string) pathguard.Option {
	home, _ := os.UserHomeDir()
	return pathguard.WithProtectedState(home,
		rt.paths.DefaultsDir,
		rt.paths.UserDir,
		rt.paths.ProjectDir,
		rt.paths.CacheDir,
		rt.paths.ExemptionsFile(rt.env, sessionID),
	)
}

// dispatcher wires the policies with logging, events and kill switches.
func (rt *app) dispatcher(sessionID string) *safety.Dispatcher {
	return safety.NewDispatcher(rt.policies(sessionID),
		safety.WithLogger(rt.logger),
		safety.WithEvents(rt.events),
		safety.WithKillSwitch(rt.env.PolicyDisabled),
	)
}

// policyNames lists the names accepted by "hook" and "check".
func policyNames() []string {
	return []string{pathguard.Name, secrets.Name, commitlint.Name, typosquat.Name}
}
