package safety

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/Binary-Hype/claude-marketplace-sub001/internal/hook"
)

// Dispatcher runs registered policies against invocations.
type Dispatcher struct {
	policies []Policy
	disabled func(name string) bool
	logger   *slog.Logger
	events   *hook.EventLog
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithEvents records non-allow decisions and internal failures.
func WithEvents(events *hook.EventLog) Option {
	return func(d *Dispatcher) { d.events = events }
}

// WithKillSwitch skips every policy for which disabled returns true.
func WithKillSwitch(disabled func(name string) bool) Option {
	return func(d *Dispatcher) { d.disabled = disabled }
}

// NewDispatcher returns a dispatcher evaluating policies in the given order.
func NewDispatcher(policies []Policy, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		policies: policies,
		disabled: func(string) bool { return false },
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Names lists the registered policy names in evaluation order.
func (d *Dispatcher) Names() []string {
	names := make([]string, len(d.policies))
	for i, p := range d.policies {
		names[i] = p.Name()
	}
	return names
}

// Lookup returns the policy registered under name.
func (d *Dispatcher) Lookup(name string) (Policy, bool) {
	for _, p := range d.policies {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Dispatch evaluates inv. With only empty, every applicable policy runs in
// order: the first block wins and warnings accumulate. Otherwise only the
// named policy runs. The returned error is non-nil only for an unknown
// policy name; policy failures become decisions.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *hook.Invocation, only string) (hook.Decision, error) {
	policies := d.policies
	if only != "" {
		p, ok := d.Lookup(only)
		if !ok {
			return hook.Allow(), fmt.Errorf("%w: %q", ErrUnknownPolicy, only)
		}
		policies = []Policy{p}
	}

	var decisions []hook.Decision
	for _, p := range policies {
		if d.disabled(p.Name()) {
			d.logger.Debug("policy disabled", "policy", p.Name())
			continue
		}
		dec := d.Evaluate(ctx, p, inv)
		if dec.Verdict != hook.VerdictAllow {
			d.record(inv, dec)
		}
		if dec.Blocked() {
			return dec, nil
		}
		decisions = append(decisions, dec)
	}
	return hook.Combine(decisions...), nil
}

// Evaluate runs a single policy, mapping errors and panics through its
// failure mode.
func (d *Dispatcher) Evaluate(ctx context.Context, p Policy, inv *hook.Invocation) (dec hook.Decision) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("policy panicked",
				"policy", p.Name(), "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			dec = d.failure(p, inv, fmt.Errorf("internal error: %v", r))
		}
	}()

	if !p.Applies(inv) {
		return hook.Allow()
	}
	dec, err := p.Evaluate(ctx, inv)
	if err != nil {
		return d.failure(p, inv, err)
	}
	if dec.Policy == "" {
		dec.Policy = p.Name()
	}
	return dec
}

func (d *Dispatcher) failure(p Policy, inv *hook.Invocation, err error) hook.Decision {
	if p.FailureMode() == FailClosed {
		d.logger.Error("policy failed closed", "policy", p.Name(), "error", err)
		return hook.Block(p.Name(), "hookguard %s: %v (blocking until this is fixed)", p.Name(), err)
	}
	d.logger.Warn("policy failed open", "policy", p.Name(), "error", err)
	d.record(inv, hook.Decision{Verdict: hook.VerdictAllow, Policy: p.Name(), Message: "failed open: " + err.Error()})
	return hook.Allow()
}

func (d *Dispatcher) record(inv *hook.Invocation, dec hook.Decision) {
	if err := d.events.Record(inv, dec); err != nil {
		d.logger.Debug("event log write failed", "error", err)
	}
}
