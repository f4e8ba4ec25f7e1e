package supervisor

import (
	"context"
	"path/filepath"
	"strings"
)

// ProcessInfo is one row of the OS process table
type ProcessInfo struct {
	PID     int
	Cmdline string
}

// ProcessLister enumerates running processes
type ProcessLister interface {
	List(ctx context.Context) ([]ProcessInfo, error)
}

// ContainerState is what the container runtime reports for a named container
type ContainerState struct {
	Running bool
	PID     int
}

// ContainerRuntime inspects and stops named containers
type ContainerRuntime interface {
	Inspect(ctx context.Context, name string) (ContainerState, error)
	Stop(ctx context.Context, name string) error
}

// MatchByWorkingDir returns the first process whose command line contains
// dir, compared case-insensitively after normalizing separators. The
// supervisor's own pid is never matched.
//
// This is a heuristic. An unrelated process whose arguments mention the
// path matches too, and a service started through a wrapper that hides the
// path does not match at all.
func MatchByWorkingDir(procs []ProcessInfo, dir string, selfPID int) (ProcessInfo, bool) {
	needle := normalizePath(dir)
	if needle == "" {
		return ProcessInfo{}, false
	}
	for _, p := range procs {
		if p.PID == selfPID || p.PID <= 0 {
			continue
		}
		if strings.Contains(normalizePath(p.Cmdline), needle) {
			return p, true
		}
	}
	return ProcessInfo{}, false
}

// normalizePath lowercases and forward-slashes a path or command line
func normalizePath(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, " \t") {
		s = filepath.Clean(s)
	}
	s = strings.ReplaceAll(s, `\`, "/")
	return strings.ToLower(s)
}
