package session

import (
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/logs"
)

// allKey is the scroll cursor of the combined stream
const allKey = "\x00all"

// stream reads the entries behind key with the write counter that anchors
// its cursor
func (s *State) stream(key string) ([]domain.LogEntry, uint64) {
	if key == allKey {
		return s.buffer.Snapshot("")
	}
	return s.buffer.Snapshot(key)
}

// windowFor is the number of rows key renders into. Panes give one row to
// their title.
func (s *State) windowFor(key string) int {
	if key != allKey && s.view == ViewAll && s.split {
		return max(s.height-1, 1)
	}
	return s.height
}

// offsetFor is the cursor for key against the given buffer contents. A
// nonzero cursor moves back by every line written since it was anchored,
// so the window it shows stays in place.
func (s *State) offsetFor(key string, total int, written uint64) int {
	off := s.offsets[key]
	if off > 0 {
		off += int(written - s.anchors[key])
	}
	return logs.ClampOffset(off, total, s.windowFor(key))
}

// settle stores the current cursor for key and re-anchors it
func (s *State) settle(key string) {
	entries, written := s.stream(key)
	s.offsets[key] = s.offsetFor(key, len(entries), written)
	s.anchors[key] = written
}

// moveCursor sets the cursor for key to move(current, max), clamped
func (s *State) moveCursor(key string, move func(cur, maxOff int) int) {
	entries, written := s.stream(key)
	window := s.windowFor(key)
	cur := s.offsetFor(key, len(entries), written)
	s.offsets[key] = logs.ClampOffset(move(cur, logs.MaxOffset(len(entries), window)), len(entries), window)
	s.anchors[key] = written
	s.changed()
}

// SetWindow records how many rows the log area has. Pane cursors use one
// row less.
func (s *State) SetWindow(rows int) {
	rows = max(rows, 0)
	if rows == s.height {
		return
	}
	s.height = rows
	for key := range s.offsets {
		s.settle(key)
	}
	s.changed()
}

// ScrollKey is the cursor the scroll keys act on: the viewed service, the
// focused pane, or the combined stream when panes are disabled.
func (s *State) ScrollKey() string {
	switch {
	case s.view.IsService():
		return string(s.view)
	case s.view == ViewAll && s.split:
		return s.focus
	case s.view == ViewAll:
		return allKey
	default:
		return ""
	}
}

// window reads the visible slice for key without changing any cursor
func (s *State) window(key string) []domain.LogEntry {
	limit := s.windowFor(key)
	if key == "" || limit <= 0 {
		return nil
	}
	entries, written := s.stream(key)
	visible, _ := logs.Window(entries, limit, s.offsetFor(key, len(entries), written))
	return visible
}

// VisibleLogs returns the window for the single-service view or the
// combined stream. Offset 0 is the most recent lines.
func (s *State) VisibleLogs() []domain.LogEntry {
	switch {
	case s.view.IsService():
		return s.window(string(s.view))
	case s.view == ViewAll:
		return s.window(allKey)
	default:
		return nil
	}
}

// PaneLogs returns the window for one service pane
func (s *State) PaneLogs(service string) []domain.LogEntry {
	return s.window(service)
}

// Offset returns the cursor for a service id, or for the combined stream
// when service is empty
func (s *State) Offset(service string) int {
	if service == "" {
		service = allKey
	}
	entries, written := s.stream(service)
	return s.offsetFor(service, len(entries), written)
}

// MaxOffset returns the largest cursor the key currently allows
func (s *State) MaxOffset(service string) int {
	if service == "" {
		service = allKey
	}
	entries, _ := s.stream(service)
	return logs.MaxOffset(len(entries), s.windowFor(service))
}

// ScrollBy moves the active cursor back (positive) or forward (negative)
func (s *State) ScrollBy(delta int) {
	if key := s.ScrollKey(); key != "" {
		s.moveCursor(key, func(cur, _ int) int { return cur + delta })
	}
}

// ScrollHome jumps the active cursor to the oldest buffered line
func (s *State) ScrollHome() {
	if key := s.ScrollKey(); key != "" {
		s.moveCursor(key, func(_, maxOff int) int { return maxOff })
	}
}

// ScrollEnd returns the active cursor to the live tail
func (s *State) ScrollEnd() {
	if key := s.ScrollKey(); key != "" {
		s.moveCursor(key, func(int, int) int { return 0 })
	}
}

// Window returns the row count of the active cursor
func (s *State) Window() int {
	if key := s.ScrollKey(); key != "" {
		return s.windowFor(key)
	}
	return 0
}
