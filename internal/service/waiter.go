package service

import (
	"context"

	"github.com/benbjohnson/clock"

	"github.com/verlane/ollamactl/internal/health"
)

// Waiter polls a health probe on a fixed interval until success or
// until one of two budgets is exhausted: the attempt count (primary) or
// the wall-clock timeout (safety net for slow probes). The two
// exhaustion kinds surface as distinct error types because they are
// different operational signals.
type Waiter struct {
	clk clock.Clock
}

func NewWaiter() *Waiter { return &Waiter{clk: clock.New()} }

// newWaiterWithClock injects a mock clock for tests.
func newWaiterWithClock(c clock.Clock) *Waiter { return &Waiter{clk: c} }

// Wait blocks until probe succeeds or the budget is exhausted. snapshot
// supplies the current status for error payloads. A canceled context
// aborts the wait with the context's error.
func (w *Waiter) Wait(ctx context.Context, probe health.Probe, cfg HealthCheckConfig, snapshot func() Status) error {
	maxAttempts := cfg.EffectiveMaxAttempts()
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	start := w.clk.Now()
	attempts := 0
	for attempts < maxAttempts {
		if probe.Check(ctx) {
			return nil
		}
		if w.clk.Since(start) >= cfg.Timeout {
			return &TimeoutError{Op: "wait for health", Timeout: cfg.Timeout}
		}
		attempts++
		t := w.clk.Timer(cfg.Interval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
	st := snapshot()
	return &HealthCheckError{State: st.State, Attempts: attempts}
}
