package logs

import (
	"sync"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
)

// RingBuffer is a fixed-size circular buffer for log entries.
// Once full, each write evicts the oldest entry. Write counters only grow,
// so readers can tell how many lines arrived since they last looked.
type RingBuffer struct {
	mu       sync.RWMutex
	entries  []domain.LogEntry
	head     int // next write position
	count    int // current number of entries
	capacity int // max entries

	total   uint64
	written map[string]uint64
}

// NewRingBuffer creates a new ring buffer with the given capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = constants.DefaultLogBufferSize
	}
	return &RingBuffer{
		entries:  make([]domain.LogEntry, capacity),
		capacity: capacity,
		written:  make(map[string]uint64),
	}
}

// Write adds a new entry to the buffer
func (b *RingBuffer) Write(entry domain.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = entry
	b.head = (b.head + 1) % b.capacity

	if b.count < b.capacity {
		b.count++
	}
	b.total++
	b.written[entry.Service]++
}

// Read returns all entries in chronological order
func (b *RingBuffer) Read() []domain.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readLocked()
}

func (b *RingBuffer) readLocked() []domain.LogEntry {
	if b.count == 0 {
		return nil
	}

	result := make([]domain.LogEntry, b.count)

	// Calculate start position
	start := 0
	if b.count == b.capacity {
		start = b.head // oldest entry is at head when full
	}

	for i := 0; i < b.count; i++ {
		idx := (start + i) % b.capacity
		result[i] = b.entries[idx]
	}

	return result
}

// Snapshot returns the buffered entries of service, or every entry when
// service is empty, together with the number of lines ever written for it.
// Both are read under one lock so the count matches the entries.
func (b *RingBuffer) Snapshot(service string) ([]domain.LogEntry, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if service == "" {
		return b.readLocked(), b.total
	}
	return FilterEntries(b.readLocked(), domain.LogFilter{Services: []string{service}}), b.written[service]
}

// Count returns the current number of entries in the buffer
func (b *RingBuffer) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Clear removes all entries from the buffer. Write counters are kept.
func (b *RingBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head = 0
	b.count = 0
	clear(b.entries)
}
