//go:build !windows

package procctl

import (
	"os/exec"
	"syscall"
)

// configureDetachedSysProcAttr creates a new session (setsid) so the
// child is detached from the controlling terminal and survives parent
// exit cleanly.
func configureDetachedSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
