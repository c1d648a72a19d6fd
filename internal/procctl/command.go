package procctl

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// buildCommand constructs an *exec.Cmd for the given command string.
// It avoids invoking a shell when not necessary; when metacharacters are
// present the platform shell wraps the command.
func buildCommand(cmdStr string) *exec.Cmd {
	cmdStr = strings.TrimSpace(cmdStr)
	if cmdStr == "" {
		return getTrueCommand()
	}
	if strings.ContainsAny(cmdStr, "|&;<>*?`$\"'(){}[]~") {
		return getShellCommand(cmdStr)
	}
	parts := strings.Fields(cmdStr)
	name := parts[0]
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	// ok: intentional execution of the configured service command
	// #nosec G204
	return exec.Command(name, args...)
}

// StartProcess spawns the service command detached from the supervisor.
// Child output is drained into rotated log files so the service never
// blocks on unread pipes. A reaper goroutine waits on the child to avoid
// zombies and closes the writers once it exits.
func (c *OSController) StartProcess(ctx context.Context, name, command string) error {
	cmd := buildCommand(command)
	configureDetachedSysProcAttr(cmd)

	outW, errW, err := c.logCfg.Writers(name)
	if err != nil {
		return fmt.Errorf("prepare log writers for %s: %w", name, err)
	}
	if outW != nil {
		cmd.Stdout = outW
	}
	if errW != nil {
		cmd.Stderr = errW
	}

	if err := cmd.Start(); err != nil {
		if outW != nil {
			_ = outW.Close()
		}
		if errW != nil {
			_ = errW.Close()
		}
		return fmt.Errorf("spawn %q: %w", command, err)
	}
	c.lg.Info("spawned service process", "name", name, "pid", cmd.Process.Pid)

	go func() {
		_ = cmd.Wait()
		if outW != nil {
			_ = outW.Close()
		}
		if errW != nil {
			_ = errW.Close()
		}
	}()
	return nil
}
