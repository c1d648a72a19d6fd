package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/verlane/ollamactl/internal/health"
	"github.com/verlane/ollamactl/internal/history"
	"github.com/verlane/ollamactl/internal/metrics"
	"github.com/verlane/ollamactl/internal/procctl"
	"github.com/verlane/ollamactl/internal/store"
)

// Post-stop confirmation budget: a process can exit before the port is
// released, so stop success is confirmed by probing, not by the stop
// command returning.
const (
	stopConfirmAttempts = 5
	stopConfirmInterval = time.Second
)

// Manager owns the lifecycle of one supervised service: it starts the
// service if absent, confirms liveness through the health probe, and
// tears it down on request. One Manager owns exactly one Status record
// and one Strategy; it is not designed for concurrent invocation of
// lifecycle operations from multiple call sites, but its status record
// is still lock-protected so Status stays safe to call at any time.
type Manager struct {
	mu     sync.Mutex
	status Status

	cfg      Config
	strategy *Strategy
	probe    health.Probe
	waiter   *Waiter
	clk      clock.Clock
	lg       *slog.Logger

	st    store.Store
	sinks []history.Sink
}

// NewManager builds a manager for the running operating system.
func NewManager(cfg Config, lg *slog.Logger) (*Manager, error) {
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lg == nil {
		lg = slog.Default()
	}
	ctrl := procctl.New(cfg.Log, lg)
	strat, err := NewStrategy("", cfg, ctrl, lg)
	if err != nil {
		return nil, err
	}
	return &Manager{
		status:   Status{Running: false, State: StateStopped},
		cfg:      cfg,
		strategy: strat,
		probe:    health.NewHTTPProbe(cfg.Port, cfg.HealthCheck.Endpoint),
		waiter:   NewWaiter(),
		clk:      clock.New(),
		lg:       lg,
	}, nil
}

// SetStore configures a persistence store recording state transitions.
func (m *Manager) SetStore(s store.Store) error {
	m.mu.Lock()
	m.st = s
	m.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.EnsureSchema(context.Background())
}

// SetHistorySinks configures external lifecycle-event sinks.
// Passing no sinks clears the list.
func (m *Manager) SetHistorySinks(sinks ...history.Sink) {
	m.mu.Lock()
	m.sinks = append([]history.Sink(nil), sinks...)
	m.mu.Unlock()
}

// Config returns a copy of the effective service configuration.
func (m *Manager) Config() Config { return m.cfg }

// CheckHealth performs one probe. It has no side effect on stored state.
func (m *Manager) CheckHealth(ctx context.Context) bool {
	ok := m.probe.Check(ctx)
	metrics.ObserveHealthCheck(ok)
	return ok
}

// Status refreshes running/state from a fresh probe and returns a copy;
// status is never served stale. An error state stays sticky until the
// probe sees the service healthy again.
func (m *Manager) Status(ctx context.Context) Status {
	healthy := m.CheckHealth(ctx)
	m.mu.Lock()
	if healthy {
		if m.status.State != StateRunning {
			m.applyTransitionLocked(StateRunning, "")
		}
		m.status.PID = m.strategy.FindPID(ctx)
	} else if m.status.State == StateRunning {
		m.applyTransitionLocked(StateStopped, "")
	}
	m.status.CheckedAt = m.clk.Now()
	st := m.status
	m.mu.Unlock()
	return st
}

// StartService ensures the service is up and healthy. Already healthy is
// a no-op. Otherwise it reconciles any stray process, spawns the command
// detached, and blocks until the health-wait budget resolves. Startup
// failure is never swallowed: the manager transitions to error, records
// LastError, and returns the typed error.
func (m *Manager) StartService(ctx context.Context) error {
	if m.CheckHealth(ctx) {
		m.lg.Debug("service already healthy, start is a no-op")
		m.transition(StateRunning, nil)
		return nil
	}
	m.transition(StateStarting, nil)
	m.lg.Info("starting service", "command", m.cfg.Command, "port", m.cfg.Port)

	if err := m.strategy.StartService(ctx, m.cfg); err != nil {
		return m.fail(err)
	}
	waitStart := m.clk.Now()
	err := m.waiter.Wait(ctx, m.probe, m.cfg.HealthCheck, m.snapshot)
	metrics.ObserveHealthWait(m.clk.Since(waitStart).Seconds())
	if err != nil {
		return m.fail(m.classify(err))
	}

	m.mu.Lock()
	m.applyTransitionLocked(StateRunning, "")
	m.status.PID = m.strategy.FindPID(ctx)
	m.mu.Unlock()
	m.lg.Info("service is healthy", "probe", m.probe.Describe())
	metrics.IncStart()
	return nil
}

// StopService tears the service down. Not healthy means already stopped
// (idempotent, no process operation). Otherwise it stops gracefully,
// escalates to a forced stop on refusal, and polls health until the
// service is confirmed down.
func (m *Manager) StopService(ctx context.Context) error {
	if !m.CheckHealth(ctx) {
		m.lg.Debug("service not responding, treating stop as complete")
		m.transition(StateStopped, nil)
		return nil
	}
	m.transition(StateStopping, nil)
	m.lg.Info("stopping service", "process", m.strategy.ProcessName())

	if err := m.strategy.StopService(ctx); err != nil {
		return m.fail(err)
	}
	for i := 0; i < stopConfirmAttempts; i++ {
		if !m.probe.Check(ctx) {
			m.transition(StateStopped, nil)
			m.lg.Info("service confirmed down")
			metrics.IncStop()
			return nil
		}
		t := m.clk.Timer(stopConfirmInterval)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return m.fail(m.classify(ctx.Err()))
		}
	}
	return m.fail(&ServiceError{
		State: StateStopping,
		Err:   errors.New("service still responding after stop"),
	})
}

// WaitForHealth blocks until the service answers its health probe or the
// configured budget is exhausted. It exists for callers that need to
// wait on an externally started process without full start semantics,
// so exhaustion does not move the manager to the error state.
func (m *Manager) WaitForHealth(ctx context.Context) error {
	if err := m.waiter.Wait(ctx, m.probe, m.cfg.HealthCheck, m.snapshot); err != nil {
		return m.classify(err)
	}
	m.transition(StateRunning, nil)
	return nil
}

func (m *Manager) snapshot() Status {
	m.mu.Lock()
	st := m.status
	m.mu.Unlock()
	return st
}

// classify folds non-taxonomy failures (typically context cancellation)
// into a ServiceError.
func (m *Manager) classify(err error) error {
	if err == nil || isTyped(err) {
		return err
	}
	return &ServiceError{State: m.snapshot().State, Err: err}
}

// fail records the error, transitions to the error state, and returns
// the error unchanged for the caller.
func (m *Manager) fail(err error) error {
	m.lg.Error("service operation failed", "error", err)
	m.transition(StateError, err)
	return err
}

func (m *Manager) transition(to State, cause error) {
	m.mu.Lock()
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	m.applyTransitionLocked(to, msg)
	m.mu.Unlock()
}

// applyTransitionLocked is the single mutation point for the status
// record. Callers hold m.mu.
func (m *Manager) applyTransitionLocked(to State, lastErr string) {
	from := m.status.State
	m.status.State = to
	m.status.Running = to == StateRunning
	if to != StateRunning {
		m.status.PID = 0
	}
	if lastErr != "" {
		m.status.LastError = lastErr
	} else if to == StateRunning {
		m.status.LastError = ""
	}
	if from == to {
		return
	}
	metrics.StateTransition(string(from), string(to))
	m.record(store.Record{
		State:      string(to),
		Running:    m.status.Running,
		PID:        m.status.PID,
		LastError:  m.status.LastError,
		OccurredAt: m.clk.Now().UTC(),
	})
}

// record persists the transition and fans it out to sinks, best-effort.
func (m *Manager) record(rec store.Record) {
	st := m.st
	sinks := m.sinks
	if st == nil && len(sinks) == 0 {
		return
	}
	ctx := context.Background()
	if st != nil {
		_ = st.RecordTransition(ctx, rec)
	}
	if len(sinks) > 0 {
		evt := history.Event{Type: history.EventTransition, OccurredAt: rec.OccurredAt, Record: rec}
		for _, s := range sinks {
			_ = s.Send(ctx, evt)
		}
	}
}
