package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/verlane/ollamactl/internal/procctl"
)

// Strategy carries the per-platform pieces of the start/stop algorithm:
// the process-name convention and the Controller issuing OS commands.
// The algorithm itself (stray-process reconciliation, detached spawn,
// graceful-then-forced escalation) is identical on every platform and
// lives here once.
type Strategy struct {
	platform string
	procName string
	ctrl     procctl.Controller
	lg       *slog.Logger
}

// Platform returns "unix" or "windows".
func (s *Strategy) Platform() string { return s.platform }

// ProcessName returns the platform-adjusted executable name.
func (s *Strategy) ProcessName() string { return s.procName }

// StartService reconciles any conflicting existing process, then spawns
// the configured command detached. It does not wait for health; the
// manager owns the wait.
func (s *Strategy) StartService(ctx context.Context, cfg Config) error {
	info, err := s.ctrl.FindProcess(ctx, s.procName)
	if err != nil {
		return s.wrap("start", &ProcessError{ProcessName: s.procName, Op: "find", Err: err})
	}
	if info != nil {
		s.lg.Warn("found stray service process, stopping it first",
			"name", s.procName, "pid", info.PID)
		if err := s.ctrl.StopProcess(ctx, s.procName); err != nil && !errors.Is(err, procctl.ErrProcessNotFound) {
			return s.wrap("start", &ProcessError{ProcessName: s.procName, Op: "stop", Err: err})
		}
	}
	if err := s.ctrl.StartProcess(ctx, s.procName, cfg.Command); err != nil {
		return s.wrap("start", &ProcessError{ProcessName: s.procName, Op: "start", Err: err})
	}
	return nil
}

// StopService attempts a graceful stop and escalates to a forced stop
// when the graceful attempt is refused. A missing process counts as
// success for both attempts.
func (s *Strategy) StopService(ctx context.Context) error {
	err := s.ctrl.StopProcess(ctx, s.procName)
	if err == nil || errors.Is(err, procctl.ErrProcessNotFound) {
		return nil
	}
	s.lg.Warn("graceful stop failed, escalating to forced stop",
		"name", s.procName, "error", err)
	ferr := s.ctrl.ForceStopProcess(ctx, s.procName)
	if ferr == nil || errors.Is(ferr, procctl.ErrProcessNotFound) {
		return nil
	}
	return s.wrap("stop", &ProcessError{ProcessName: s.procName, Op: "stop", Err: ferr})
}

// FindPID exposes process lookup for status reporting. Returns 0 when
// the process is absent.
func (s *Strategy) FindPID(ctx context.Context) int {
	info, err := s.ctrl.FindProcess(ctx, s.procName)
	if err != nil || info == nil {
		return 0
	}
	return int(info.PID)
}

// wrap folds unclassified failures into a PlatformError at the strategy
// boundary while re-throwing taxonomy errors unchanged.
func (s *Strategy) wrap(op string, err error) error {
	if err == nil || isTyped(err) {
		return err
	}
	return &PlatformError{Platform: s.platform, Op: op, Err: err}
}
