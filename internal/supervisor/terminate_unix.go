//go:build !windows

package supervisor

import (
	"syscall"
)

// signalTerminator delivers POSIX signals. Terminate uses SIGTERM so
// services can shut down gracefully; Kill is reserved for escalation.
type signalTerminator struct{}

// NewTerminator returns the platform terminator
func NewTerminator() Terminator {
	return signalTerminator{}
}

func (signalTerminator) Terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

func (signalTerminator) TerminateGroup(pid int) error {
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		// Fall back to signalling just the process
		return syscall.Kill(pid, syscall.SIGTERM)
	}
	return nil
}

func (signalTerminator) Kill(pid int) error {
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		return syscall.Kill(pid, syscall.SIGKILL)
	}
	return nil
}
