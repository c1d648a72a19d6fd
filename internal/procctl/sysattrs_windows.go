//go:build windows

package procctl

import (
	"os/exec"
	"syscall"
)

// Windows creation flags
const (
	createNewProcessGroup = 0x00000200
	detachedProcess       = 0x00000008
)

// configureDetachedSysProcAttr creates the child in a new process group
// with DETACHED_PROCESS so it does not inherit the parent's console and
// is fully detached.
func configureDetachedSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: createNewProcessGroup | detachedProcess,
	}
}
