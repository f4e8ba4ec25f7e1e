package logs

import (
	"sync"
	"testing"
	"time"

	"github.com/charliek/devcli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu      sync.Mutex
	entries []domain.LogEntry
}

func (w *recordingWriter) Append(entry domain.LogEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, entry)
}

func TestManager_Dispatch(t *testing.T) {
	w := &recordingWriter{}
	m := NewManager(ManagerConfig{Writer: w})
	defer m.Close()

	_, ch := m.Subscribe(domain.LogFilter{})

	m.Dispatch(makeEntry("api", "persisted"), true)
	m.Dispatch(makeEntry("worker", "display only"), false)

	assert.Equal(t, []string{"persisted"}, texts(w.entries))

	for _, want := range []string{"persisted", "display only"} {
		select {
		case e := <-ch:
			assert.Equal(t, want, e.Text)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %q", want)
		}
	}
}

func TestManager_NilWriter(t *testing.T) {
	m := NewManager(ManagerConfig{})
	assert.NotPanics(t, func() { m.Dispatch(makeEntry("api", "x"), true) })
	assert.NoError(t, m.Close())
}

func TestManager_FilteredSubscription(t *testing.T) {
	m := NewManager(ManagerConfig{})
	defer m.Close()

	id, ch := m.Subscribe(domain.LogFilter{Services: []string{"web"}})
	require.Equal(t, 1, m.Subscribers())

	m.Dispatch(makeEntry("api", "skip"), false)
	m.Dispatch(makeEntry("web", "keep"), false)

	e := <-ch
	assert.Equal(t, "keep", e.Text)

	m.Unsubscribe(id)
	assert.Equal(t, 0, m.Subscribers())
	_, open := <-ch
	assert.False(t, open)
}

func TestManager_BufferKeepsLinesSubscribersDrop(t *testing.T) {
	m := NewManager(ManagerConfig{BufferSize: 2000, SubscriptionBuffer: 10})
	defer m.Close()

	// Nobody reads the subscription, so its channel fills after ten lines
	_, ch := m.Subscribe(domain.LogFilter{})

	for i := 0; i < 1500; i++ {
		m.Dispatch(makeEntry("api", "line"), false)
	}

	assert.Len(t, ch, 10)
	assert.Equal(t, 1500, m.Buffer().Count())
	_, written := m.Buffer().Snapshot("api")
	assert.Equal(t, uint64(1500), written)
}
