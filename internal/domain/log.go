package domain

import "time"

// Stream represents the output stream type
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"
)

// String returns the string representation of Stream
func (s Stream) String() string {
	return string(s)
}

// Level is the severity derived for a persisted log line
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// String returns the string representation of Level
func (l Level) String() string {
	return string(l)
}

// LogEntry is a single sanitized line captured from a service stream.
// Entries are transient and live in memory until evicted.
type LogEntry struct {
	Timestamp     time.Time
	Service       string
	Stream        Stream
	Text          string
	RetentionDays int
}

// PersistedLogEntry is one JSON line in a per-service daily file.
// Field order matches the on-disk format.
type PersistedLogEntry struct {
	Timestamp string `json:"ts"`
	Service   string `json:"service"`
	Stream    Stream `json:"stream"`
	Level     Level  `json:"level"`
	Message   string `json:"msg"`
}

// LogFilter defines criteria for filtering log entries
type LogFilter struct {
	Services []string // Filter to specific service ids
}

// IsEmpty returns true if no filters are set
func (f LogFilter) IsEmpty() bool {
	return len(f.Services) == 0
}

// MatchesService returns true if the service id matches the filter
func (f LogFilter) MatchesService(id string) bool {
	if len(f.Services) == 0 {
		return true
	}
	for _, s := range f.Services {
		if s == id {
			return true
		}
	}
	return false
}
