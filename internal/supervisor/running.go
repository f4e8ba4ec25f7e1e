package supervisor

import "time"

// RunningService is a live instance of a configured service. It is either
// *Managed (spawned and owned here) or External (discovered, pid only).
// The unexported method closes the set of implementations.
type RunningService interface {
	ServiceID() string
	PID() int
	isRunningService()
}

// Managed is a service this supervisor spawned. It owns the process handle;
// its output is captured by the controller.
type Managed struct {
	id        string
	pid       int
	startedAt time.Time
	proc      Process

	done      chan struct{}
	exitCode  int
	requested bool
}

func newManaged(id string, proc Process, startedAt time.Time) *Managed {
	return &Managed{
		id:        id,
		pid:       proc.PID(),
		startedAt: startedAt,
		proc:      proc,
		done:      make(chan struct{}),
	}
}

func (m *Managed) ServiceID() string { return m.id }
func (m *Managed) PID() int          { return m.pid }
func (*Managed) isRunningService()   {}

// StartedAt returns when the process was spawned
func (m *Managed) StartedAt() time.Time {
	return m.startedAt
}

// Done is closed once the process has exited and its output drained
func (m *Managed) Done() <-chan struct{} {
	return m.done
}

// ExitCode is the exit status once Done is closed. A process killed by a
// signal reports the negative signal number.
func (m *Managed) ExitCode() int {
	<-m.done
	return m.exitCode
}

// Requested reports, once Done is closed, whether the exit followed an
// explicit stop or shutdown
func (m *Managed) Requested() bool {
	<-m.done
	return m.requested
}

// ExitMessage describes the exit once Done is closed
func (m *Managed) ExitMessage() string {
	return describeExit(m.id, m.pid, m.ExitCode())
}

// Uptime is how long a managed service has been running at now. Adopted
// services report zero since their start time is unknown.
func Uptime(rs RunningService, now time.Time) time.Duration {
	m, ok := rs.(*Managed)
	if !ok || now.Before(m.StartedAt()) {
		return 0
	}
	return now.Sub(m.StartedAt())
}

// Source records how an external service was discovered
type Source string

const (
	SourceProcessTable Source = "process-table"
	SourceContainer    Source = "container"
)

// External is a service found already running. The supervisor does not own
// its lifetime and has no access to its output streams.
type External struct {
	ID        string
	ProcessID int
	Source    Source
	Container string // set for container-backed services
	Cmdline   string // matched command line for process-table discoveries
}

func (e External) ServiceID() string { return e.ID }
func (e External) PID() int          { return e.ProcessID }
func (External) isRunningService()   {}

// Kind describes a running service for display
func Kind(rs RunningService) string {
	switch rs.(type) {
	case *Managed:
		return "managed"
	case External:
		return "external"
	default:
		return "stopped"
	}
}
