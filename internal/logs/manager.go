package logs

import (
	"io"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charmbracelet/log"
)

// ManagerConfig holds configuration for the log manager
type ManagerConfig struct {
	Writer             Writer // nil disables persistence
	BufferSize         int    // Size of the in-memory ring buffer
	SubscriptionBuffer int    // Buffer size for subscription channels
	Logger             *log.Logger
}

// Manager stores captured lines in the in-memory ring buffer, hands them to
// the persistence writer and fans them out to live subscribers such as the
// shell or the foreground printer.
type Manager struct {
	buffer        *RingBuffer
	writer        Writer
	subscriptions *SubscriptionManager
}

// NewManager creates a new log manager
func NewManager(config ManagerConfig) *Manager {
	if config.SubscriptionBuffer <= 0 {
		config.SubscriptionBuffer = constants.DefaultSubscriptionBuffer
	}

	return &Manager{
		buffer:        NewRingBuffer(config.BufferSize),
		writer:        config.Writer,
		subscriptions: NewSubscriptionManager(config.SubscriptionBuffer, config.Logger),
	}
}

// Dispatch writes the entry to the ring buffer, persists it when persist
// is set, then hands it to every subscriber. The buffer write never drops;
// a full subscriber channel only loses its own copy. Entries from one
// stream keep their arrival order.
func (m *Manager) Dispatch(entry domain.LogEntry, persist bool) {
	m.buffer.Write(entry)
	if persist && m.writer != nil {
		m.writer.Append(entry)
	}
	m.subscriptions.Broadcast(entry)
}

// Buffer returns the ring buffer holding every dispatched line
func (m *Manager) Buffer() *RingBuffer {
	return m.buffer
}

// Subscribe creates a subscription for log entries matching the filter
func (m *Manager) Subscribe(filter domain.LogFilter) (string, <-chan domain.LogEntry) {
	return m.subscriptions.Subscribe(filter)
}

// Unsubscribe removes a subscription
func (m *Manager) Unsubscribe(id string) {
	m.subscriptions.Unsubscribe(id)
}

// Subscribers returns the number of live subscriptions
func (m *Manager) Subscribers() int {
	return m.subscriptions.Count()
}

// Close closes all subscriptions and the writer if it holds resources
func (m *Manager) Close() error {
	m.subscriptions.Close()
	if c, ok := m.writer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
