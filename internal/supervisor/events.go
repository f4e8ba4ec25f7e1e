package supervisor

import "time"

// EventType defines the type of controller event
type EventType string

const (
	EventStarted EventType = "started"
	EventStopped EventType = "stopped"
	EventExited  EventType = "exited"
	EventAdopted EventType = "adopted"
)

// Event reports a change in the running set
type Event struct {
	Type      EventType
	Service   string
	PID       int
	ExitCode  int
	Requested bool // the exit followed an explicit stop or shutdown
	Message   string
	Timestamp time.Time
}
