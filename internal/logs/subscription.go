package logs

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charmbracelet/log"
)

var subscriptionIDCounter uint64

// Subscription represents a live log consumer
type Subscription struct {
	id     string
	ch     chan domain.LogEntry
	filter *Filter
	logger *log.Logger
	closed atomic.Bool
}

func newSubscription(filter domain.LogFilter, bufferSize int, logger *log.Logger) *Subscription {
	id := atomic.AddUint64(&subscriptionIDCounter, 1)
	return &Subscription{
		id:     "sub-" + strconv.FormatUint(id, 10),
		ch:     make(chan domain.LogEntry, bufferSize),
		filter: NewFilter(filter),
		logger: logger,
	}
}

// ID returns the subscription ID
func (s *Subscription) ID() string {
	return s.id
}

// Channel returns the channel for receiving log entries
func (s *Subscription) Channel() <-chan domain.LogEntry {
	return s.ch
}

// Send attempts to send an entry to the subscriber
// Returns false if the channel is full or closed
func (s *Subscription) Send(entry domain.LogEntry) bool {
	if s.closed.Load() {
		return false
	}

	if !s.filter.Matches(entry) {
		return true // filtered out, but not a failure
	}

	select {
	case s.ch <- entry:
		return true
	default:
		s.logger.Debug("dropped log line, subscriber channel full", "subscription", s.id, "service", entry.Service)
		return false
	}
}

// Close closes the subscription
func (s *Subscription) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// SubscriptionManager manages multiple subscriptions
type SubscriptionManager struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	bufferSize    int
	logger        *log.Logger
}

// NewSubscriptionManager creates a new subscription manager
func NewSubscriptionManager(bufferSize int, logger *log.Logger) *SubscriptionManager {
	if bufferSize <= 0 {
		bufferSize = constants.DefaultSubscriptionBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SubscriptionManager{
		subscriptions: make(map[string]*Subscription),
		bufferSize:    bufferSize,
		logger:        logger,
	}
}

// Subscribe creates a new subscription
func (m *SubscriptionManager) Subscribe(filter domain.LogFilter) (string, <-chan domain.LogEntry) {
	sub := newSubscription(filter, m.bufferSize, m.logger)

	m.mu.Lock()
	m.subscriptions[sub.id] = sub
	m.mu.Unlock()

	return sub.id, sub.ch
}

// Unsubscribe removes a subscription
func (m *SubscriptionManager) Unsubscribe(id string) {
	m.mu.Lock()
	sub, ok := m.subscriptions[id]
	if ok {
		delete(m.subscriptions, id)
	}
	m.mu.Unlock()

	if ok {
		sub.Close()
	}
}

// Broadcast sends an entry to all subscribers
func (m *SubscriptionManager) Broadcast(entry domain.LogEntry) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscriptions {
		sub.Send(entry)
	}
}

// Count returns the number of active subscriptions
func (m *SubscriptionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close closes all subscriptions
func (m *SubscriptionManager) Close() {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.subscriptions = make(map[string]*Subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}
