package logs

import (
	"github.com/charliek/devcli/internal/domain"
)

// Filter applies a LogFilter to log entries
type Filter struct {
	filter domain.LogFilter
}

// NewFilter creates a new filter from a LogFilter
func NewFilter(filter domain.LogFilter) *Filter {
	return &Filter{filter: filter}
}

// Matches returns true if the entry matches the filter criteria
func (f *Filter) Matches(entry domain.LogEntry) bool {
	return f.filter.MatchesService(entry.Service)
}

// FilterEntries filters a slice of log entries
func FilterEntries(entries []domain.LogEntry, filter domain.LogFilter) []domain.LogEntry {
	if filter.IsEmpty() {
		return entries
	}

	f := NewFilter(filter)
	result := make([]domain.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if f.Matches(entry) {
			result = append(result, entry)
		}
	}
	return result
}

// MaxOffset is the largest scroll offset that still fills a window of limit
// lines from total entries.
func MaxOffset(total, limit int) int {
	if limit <= 0 || total <= limit {
		return 0
	}
	return total - limit
}

// ClampOffset bounds offset to [0, MaxOffset(total, limit)]
func ClampOffset(offset, total, limit int) int {
	if offset < 0 {
		return 0
	}
	if m := MaxOffset(total, limit); offset > m {
		return m
	}
	return offset
}

// Window returns up to limit entries ending offset entries before the tail.
// Offset 0 is the live tail. The offset actually applied is returned.
func Window(entries []domain.LogEntry, limit, offset int) ([]domain.LogEntry, int) {
	total := len(entries)
	if limit <= 0 || total == 0 {
		return nil, 0
	}
	offset = ClampOffset(offset, total, limit)
	end := total - offset
	start := end - limit
	if start < 0 {
		start = 0
	}
	return entries[start:end], offset
}
