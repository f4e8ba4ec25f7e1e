//go:build windows

package supervisor

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// cimLister reads the process table through PowerShell's CIM cmdlets
type cimLister struct{}

// NewProcessLister returns the platform process lister
func NewProcessLister() ProcessLister {
	return cimLister{}
}

const cimScript = `Get-CimInstance Win32_Process | ForEach-Object { "$($_.ProcessId)` + "`t" + `$($_.CommandLine)" }`

func (cimLister) List(ctx context.Context) ([]ProcessInfo, error) {
	out, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", cimScript).Output()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}

	var procs []ProcessInfo
	for _, line := range strings.Split(string(out), "\n") {
		pidField, cmdline, ok := strings.Cut(strings.TrimRight(line, "\r"), "\t")
		if !ok {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimSpace(pidField))
		if err != nil || cmdline == "" {
			continue
		}
		procs = append(procs, ProcessInfo{PID: pid, Cmdline: cmdline})
	}
	return procs, nil
}
