package session

import (
	"slices"

	"github.com/charliek/devcli/internal/constants"
)

// Focus returns the focused service id
func (s *State) Focus() string {
	return s.focus
}

// SetFocus moves focus to a configured service
func (s *State) SetFocus(id string) bool {
	if !s.HasService(id) {
		return false
	}
	s.focus = id
	s.changed()
	return true
}

// Maximized reports whether the focused pane fills the log area
func (s *State) Maximized() bool {
	return s.maximized
}

// ToggleMaximize flips between split panes and the focused pane alone
func (s *State) ToggleMaximize() {
	if s.focus == "" {
		return
	}
	s.maximized = !s.maximized
	s.changed()
}

func (s *State) focusIndex() int {
	return max(slices.Index(s.order, s.focus), 0)
}

// Page returns the zero-based page holding focus and the page count
func (s *State) Page() (current, total int) {
	n := len(s.order)
	if n == 0 {
		return 0, 0
	}
	total = (n + constants.PanePageSize - 1) / constants.PanePageSize
	return s.focusIndex() / constants.PanePageSize, total
}

// PaneServices returns the services rendered side by side: the focused
// service alone when maximized, else the page holding focus.
func (s *State) PaneServices() []string {
	if len(s.order) == 0 {
		return nil
	}
	if s.maximized {
		return []string{s.focus}
	}
	page, _ := s.Page()
	start := page * constants.PanePageSize
	end := min(start+constants.PanePageSize, len(s.order))
	return s.order[start:end]
}

// FocusNext advances focus. Maximized it steps one service; otherwise it
// moves a whole page and keeps the column where the next page has one.
func (s *State) FocusNext() {
	s.moveFocus(1)
}

// FocusPrev is the reverse of FocusNext
func (s *State) FocusPrev() {
	s.moveFocus(-1)
}

func (s *State) moveFocus(dir int) {
	n := len(s.order)
	if n == 0 {
		return
	}
	idx := s.focusIndex()
	if s.maximized {
		s.focus = s.order[(idx+dir+n)%n]
		s.changed()
		return
	}
	page, pages := s.Page()
	col := idx % constants.PanePageSize
	page = (page + dir + pages) % pages
	next := min(page*constants.PanePageSize+col, n-1)
	s.focus = s.order[next]
	s.changed()
}

// FocusColumn moves focus to a column on the current page
func (s *State) FocusColumn(col int) {
	panes := s.PaneServices()
	if s.maximized || col < 0 || col >= len(panes) {
		return
	}
	s.focus = panes[col]
	s.changed()
}
