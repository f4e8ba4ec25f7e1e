// Package session holds the in-memory state of one interactive or one-shot
// session: the rolling log buffer, the current log view, per-service scroll
// cursors, split-pane focus and the command phase.
//
// State is owned by a single event loop. It is not safe for concurrent
// use; process events and input are applied on one loop. The log buffer it
// reads may be shared with the log manager, which writes it from capture
// goroutines; the buffer does its own locking.
package session

import (
	"fmt"
	"slices"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/logs"
	"github.com/charliek/devcli/internal/supervisor"
)

// View is the current log display mode: off, all, or a service id
type View string

const (
	ViewOff View = constants.TargetOff
	ViewAll View = constants.TargetAll
)

// IsService reports whether the view shows a single service
func (v View) IsService() bool {
	return v != ViewOff && v != ViewAll && v != ""
}

// Status is the single free-text status line
type Status struct {
	Text    string
	IsError bool
}

// Observer is told when state changes so it can re-render
type Observer interface {
	StateChanged()
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func()

// StateChanged calls f
func (f ObserverFunc) StateChanged() { f() }

// RunningSource exposes the live process registry
type RunningSource interface {
	Running() map[string]supervisor.RunningService
}

// Config holds the inputs for a new State
type Config struct {
	Services   []string // configured ids in declaration order
	AllGroup   []string // members of the "all" target; defaults to Services
	Running    RunningSource
	Buffer     *logs.RingBuffer // shared with the log manager; nil creates a private one
	BufferSize int              // capacity of a private buffer
}

// State is the session aggregate
type State struct {
	running  RunningSource
	buffer   *logs.RingBuffer
	order    []string
	allGroup []string

	view      View
	split     bool
	height    int
	offsets   map[string]int
	anchors   map[string]uint64
	focus     string
	maximized bool

	status Status

	phase       Phase
	suggestions []string
	suggestion  int

	observer Observer
}

// New creates a State with logs off and focus on the first service
func New(cfg Config) *State {
	if cfg.Buffer == nil {
		cfg.Buffer = logs.NewRingBuffer(cfg.BufferSize)
	}
	if cfg.AllGroup == nil {
		cfg.AllGroup = cfg.Services
	}
	s := &State{
		running:  cfg.Running,
		buffer:   cfg.Buffer,
		order:    append([]string(nil), cfg.Services...),
		allGroup: append([]string(nil), cfg.AllGroup...),
		view:     ViewOff,
		split:    true,
		offsets:  make(map[string]int),
		anchors:  make(map[string]uint64),
	}
	if len(s.order) > 0 {
		s.focus = s.order[0]
	}
	return s
}

// SetObserver registers the change notification target
func (s *State) SetObserver(o Observer) {
	s.observer = o
}

// changed notifies the observer, deferring while a command is executing
func (s *State) changed() {
	if s.phase == PhaseExecuting {
		return
	}
	if s.observer != nil {
		s.observer.StateChanged()
	}
}

// Services returns the configured ids in order
func (s *State) Services() []string {
	return s.order
}

// AllGroup returns the members of the "all" target
func (s *State) AllGroup() []string {
	return s.allGroup
}

// HasService reports whether id is configured
func (s *State) HasService(id string) bool {
	return slices.Contains(s.order, id)
}

// Running returns a snapshot of the running services
func (s *State) Running() map[string]supervisor.RunningService {
	if s.running == nil {
		return map[string]supervisor.RunningService{}
	}
	return s.running.Running()
}

// View returns the current log view
func (s *State) View() View {
	return s.view
}

// SetView switches the log view. A service view also moves focus there.
func (s *State) SetView(v View) error {
	switch {
	case v == ViewOff, v == ViewAll:
	case s.HasService(string(v)):
		s.focus = string(v)
	default:
		return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, v)
	}
	s.view = v
	s.changed()
	return nil
}

// SetSplit selects whether the all view renders as panes or one combined stream
func (s *State) SetSplit(split bool) {
	if s.split == split {
		return
	}
	s.split = split
	s.changed()
}

// Split reports whether the all view renders as panes
func (s *State) Split() bool {
	return s.split
}

// Status returns the status line
func (s *State) Status() Status {
	return s.status
}

// SetStatus replaces the status line
func (s *State) SetStatus(text string, isError bool) {
	s.status = Status{Text: text, IsError: isError}
	s.changed()
}

// AddLog writes an entry to the buffer and applies it. Callers whose
// buffer is written by the log manager use Refresh instead.
func (s *State) AddLog(entry domain.LogEntry) {
	s.buffer.Write(entry)
	s.Refresh()
}

// Refresh applies the lines written to the buffer since the last call. Any
// viewer scrolled back on a service or the combined stream keeps its window
// in place, and eviction can shrink any total, so every cursor is settled.
func (s *State) Refresh() {
	for key := range s.offsets {
		s.settle(key)
	}
	s.changed()
}

// ClearLogs drops every buffered entry and returns all cursors to the tail
func (s *State) ClearLogs() {
	s.buffer.Clear()
	clear(s.offsets)
	clear(s.anchors)
	s.changed()
}

// LogCount returns the number of buffered entries
func (s *State) LogCount() int {
	return s.buffer.Count()
}
