package supervisor

import (
	"strings"

	"github.com/charliek/devcli/internal/domain"
)

// OutcomeStatus is the result of one service operation
type OutcomeStatus string

const (
	OutcomeOK      OutcomeStatus = "ok"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// Outcome describes what happened to one service
type Outcome struct {
	Service string
	Status  OutcomeStatus
	PID     int
	Message string
	Err     error

	// Process is the spawned instance for a successful start
	Process *Managed
}

// Result aggregates per-service outcomes in target order. Bulk operations
// attempt every service; one failure never stops the rest.
type Result struct {
	Action   string
	Target   string
	Outcomes []Outcome
}

// HasFailures returns true if any service operation failed
func (r Result) HasFailures() bool {
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			return true
		}
	}
	return false
}

// ExitCode is 1 when any outcome failed, else 0
func (r Result) ExitCode() int {
	if r.HasFailures() {
		return domain.ExitFailure
	}
	return domain.ExitOK
}

// Succeeded returns the ids whose operation succeeded
func (r Result) Succeeded() []string {
	var ids []string
	for _, o := range r.Outcomes {
		if o.Status == OutcomeOK {
			ids = append(ids, o.Service)
		}
	}
	return ids
}

// Failed returns the failed outcomes
func (r Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the outcome for id
func (r Result) Outcome(id string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Service == id {
			return o, true
		}
	}
	return Outcome{}, false
}

// Summary joins every outcome message, failures first
func (r Result) Summary() string {
	var failed, rest []string
	for _, o := range r.Outcomes {
		if o.Message == "" {
			continue
		}
		if o.Status == OutcomeFailed {
			failed = append(failed, o.Message)
		} else {
			rest = append(rest, o.Message)
		}
	}
	return strings.Join(append(failed, rest...), "; ")
}
