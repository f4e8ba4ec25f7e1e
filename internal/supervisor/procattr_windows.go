//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr gives the child its own process group so console
// interrupts aimed at the supervisor do not reach it directly.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
