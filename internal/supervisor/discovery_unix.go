//go:build !windows

package supervisor

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// psLister reads the process table through ps
type psLister struct{}

// NewProcessLister returns the platform process lister
func NewProcessLister() ProcessLister {
	return psLister{}
}

func (psLister) List(ctx context.Context) ([]ProcessInfo, error) {
	// -A works on both macOS and Linux; trailing = suppresses the header
	out, err := exec.CommandContext(ctx, "ps", "-A", "-o", "pid=", "-o", "args=").Output()
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	return parsePSOutput(string(out)), nil
}

// parsePSOutput parses "pid args..." lines, skipping anything unparsable
func parsePSOutput(out string) []ProcessInfo {
	var procs []ProcessInfo
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pidField, args, _ := strings.Cut(line, " ")
		pid, err := strconv.Atoi(pidField)
		if err != nil {
			continue
		}
		procs = append(procs, ProcessInfo{PID: pid, Cmdline: strings.TrimSpace(args)})
	}
	return procs
}
