//go:build windows

package supervisor

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// treeTerminator uses taskkill. A plain signal cannot reliably reach the
// children of the target, so every request ends the whole tree forcefully.
type treeTerminator struct{}

// NewTerminator returns the platform terminator
func NewTerminator() Terminator {
	return treeTerminator{}
}

func (treeTerminator) Terminate(pid int) error {
	return taskkill(pid)
}

func (treeTerminator) TerminateGroup(pid int) error {
	return taskkill(pid)
}

func (treeTerminator) Kill(pid int) error {
	return taskkill(pid)
}

func taskkill(pid int) error {
	out, err := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill %d: %w: %s", pid, err, strings.TrimSpace(string(out)))
	}
	return nil
}
