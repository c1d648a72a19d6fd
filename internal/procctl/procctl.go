// Package procctl provides the OS-level primitives the supervisor needs:
// locate a named process, spawn the service detached, and terminate it
// gracefully or forcefully. Platform divergence stays inside this
// package; callers only see the Controller interface.
package procctl

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"strings"

	gopsproc "github.com/shirou/gopsutil/v4/process"

	"github.com/verlane/ollamactl/internal/logger"
)

// ErrProcessNotFound is returned by stop operations when no process with
// the given name is running. Callers reconciling state treat it as
// success.
var ErrProcessNotFound = errors.New("process not found")

// ProcessInfo is a transient value describing a discovered process.
type ProcessInfo struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// Controller abstracts the four platform-specific process operations.
// Implementations must be safe for concurrent use.
type Controller interface {
	// FindProcess looks up a running process by executable name.
	// It returns nil (and no error) when no such process exists.
	FindProcess(ctx context.Context, name string) (*ProcessInfo, error)
	// StartProcess spawns command detached from the supervisor, with
	// stdout/stderr drained continuously to the configured log files.
	StartProcess(ctx context.Context, name, command string) error
	// StopProcess requests a graceful termination of the named process.
	// Returns ErrProcessNotFound when the process is not running.
	StopProcess(ctx context.Context, name string) error
	// ForceStopProcess terminates the named process unconditionally.
	// Returns ErrProcessNotFound when the process is not running.
	ForceStopProcess(ctx context.Context, name string) error
	// IsProcessRunning reports whether a process with the name exists.
	IsProcessRunning(ctx context.Context, name string) bool
}

// OSController implements Controller on top of gopsutil process listing
// and per-platform termination commands.
type OSController struct {
	logCfg logger.Config
	lg     *slog.Logger
}

func New(logCfg logger.Config, lg *slog.Logger) *OSController {
	if lg == nil {
		lg = slog.Default()
	}
	return &OSController{logCfg: logCfg, lg: lg}
}

// matchName compares a discovered process name against the wanted
// executable name. Windows matches case-insensitively and tolerates a
// missing/present .exe suffix, mirroring tasklist behavior.
func matchName(got, want string) bool {
	if runtime.GOOS == "windows" {
		got = strings.TrimSuffix(strings.ToLower(got), ".exe")
		want = strings.TrimSuffix(strings.ToLower(want), ".exe")
	}
	return got == want
}

func (c *OSController) FindProcess(ctx context.Context, name string) (*ProcessInfo, error) {
	procs, err := gopsproc.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range procs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		pn, err := p.NameWithContext(ctx)
		if err != nil || pn == "" {
			continue
		}
		if matchName(pn, name) {
			return &ProcessInfo{PID: p.Pid, Name: pn}, nil
		}
	}
	return nil, nil
}

func (c *OSController) IsProcessRunning(ctx context.Context, name string) bool {
	info, err := c.FindProcess(ctx, name)
	return err == nil && info != nil
}
