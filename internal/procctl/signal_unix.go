//go:build !windows

package procctl

import (
	"context"
	"fmt"
	"syscall"
)

// StopProcess sends SIGTERM to the discovered pid. The process keeps
// running until it handles the signal; liveness confirmation is the
// caller's job.
func (c *OSController) StopProcess(ctx context.Context, name string) error {
	return c.signalByName(ctx, name, syscall.SIGTERM)
}

// ForceStopProcess sends SIGKILL to the discovered pid.
func (c *OSController) ForceStopProcess(ctx context.Context, name string) error {
	return c.signalByName(ctx, name, syscall.SIGKILL)
}

func (c *OSController) signalByName(ctx context.Context, name string, sig syscall.Signal) error {
	info, err := c.FindProcess(ctx, name)
	if err != nil {
		return fmt.Errorf("find %s: %w", name, err)
	}
	if info == nil {
		return ErrProcessNotFound
	}
	if err := syscall.Kill(int(info.PID), sig); err != nil {
		if err == syscall.ESRCH {
			return ErrProcessNotFound
		}
		return fmt.Errorf("signal %v to pid %d: %w", sig, info.PID, err)
	}
	c.lg.Debug("signaled process", "name", name, "pid", info.PID, "signal", sig.String())
	return nil
}
