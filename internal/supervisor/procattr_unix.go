//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the child in a new process group so the whole
// tree can be signalled together.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
