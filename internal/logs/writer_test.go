package logs

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charliek/devcli/internal/domain"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

func newTestWriter(t *testing.T, root string) *FileWriter {
	t.Helper()
	w := NewFileWriter(WriterConfig{
		Root:       root,
		Classifier: NewClassifier(KeywordPredicate([]string{"error"})),
		Now:        func() time.Time { return fixedNow },
		Logger:     log.New(&bytes.Buffer{}),
		SessionID:  "test-session",
	})
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func readPersisted(t *testing.T, path string) []domain.PersistedLogEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []domain.PersistedLogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e domain.PersistedLogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		out = append(out, e)
	}
	require.NoError(t, scanner.Err())
	return out
}

func entryAt(service string, stream domain.Stream, text string, ts time.Time) domain.LogEntry {
	return domain.LogEntry{Timestamp: ts, Service: service, Stream: stream, Text: text, RetentionDays: 7}
}

func TestFileWriter_AppendDailyFile(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root)

	w.Append(entryAt("api", domain.StreamStdout, "boot", fixedNow))
	w.Append(entryAt("api", domain.StreamStderr, "oops", fixedNow))

	path := filepath.Join(root, "services", "api", "api-2026-03-15.txt")
	assert.Equal(t, path, w.DailyPath("api", fixedNow))

	got := readPersisted(t, path)
	require.Len(t, got, 2)
	assert.Equal(t, domain.PersistedLogEntry{
		Timestamp: "2026-03-15T12:30:00.000Z",
		Service:   "api",
		Stream:    domain.StreamStdout,
		Level:     domain.LevelInfo,
		Message:   "boot",
	}, got[0])
	assert.Equal(t, domain.LevelError, got[1].Level)
}

func TestFileWriter_JSONFieldOrder(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root)
	w.Append(entryAt("api", domain.StreamStdout, "hi", fixedNow))

	data, err := os.ReadFile(w.DailyPath("api", fixedNow))
	require.NoError(t, err)
	assert.Equal(t,
		`{"ts":"2026-03-15T12:30:00.000Z","service":"api","stream":"stdout","level":"info","msg":"hi"}`+"\n",
		string(data))
}

func TestFileWriter_PartitionsByUTCDate(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root)

	local := time.FixedZone("UTC-8", -8*3600)
	late := time.Date(2026, 3, 14, 20, 0, 0, 0, local) // 2026-03-15 04:00 UTC
	w.Append(entryAt("api", domain.StreamStdout, "late", late))

	_, err := os.Stat(filepath.Join(root, "services", "api", "api-2026-03-15.txt"))
	assert.NoError(t, err)
}

func TestFileWriter_LegacyFile(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root)

	w.Append(entryAt("api", domain.StreamStdout, "one", fixedNow))
	w.Append(entryAt("web", domain.StreamStderr, "two", fixedNow))

	data, err := os.ReadFile(filepath.Join(root, "dev-cli-services.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "=== dev-cli session test-session started "))
	assert.Equal(t, "[2026-03-15T12:30:00.000Z] [api] [stdout] one", lines[1])
	assert.Equal(t, "[2026-03-15T12:30:00.000Z] [web] [stderr] two", lines[2])
}

func TestFileWriter_RoundTripSanitized(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root)

	for _, raw := range []string{"\x1b[2Kready\r", ""} {
		w.Append(entryAt("api", domain.StreamStdout, Sanitize(raw), fixedNow))
	}

	got := readPersisted(t, w.DailyPath("api", fixedNow))
	require.Len(t, got, 2)
	assert.Equal(t, "ready", got[0].Message)
	assert.Equal(t, "<blank>", got[1].Message)
}

func touchDaily(t *testing.T, root, service string, daysAgo int) string {
	t.Helper()
	dir := filepath.Join(root, "services", service)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, service+"-"+fixedNow.AddDate(0, 0, -daysAgo).Format("2006-01-02")+".txt")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
	return path
}

func TestFileWriter_RetentionOnFirstWrite(t *testing.T) {
	root := t.TempDir()
	old := touchDaily(t, root, "api", 9)
	recent := touchDaily(t, root, "api", 5)
	other := touchDaily(t, root, "web", 30)

	w := newTestWriter(t, root)
	w.Append(entryAt("api", domain.StreamStdout, "boot", fixedNow))

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, other, "other services are pruned on their own first write")
}

func TestFileWriter_RetentionBoundary(t *testing.T) {
	root := t.TempDir()
	atLimit := touchDaily(t, root, "api", 7)
	inside := touchDaily(t, root, "api", 6)

	w := newTestWriter(t, root)
	removed := w.Prune("api", 7, fixedNow)

	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, atLimit)
	assert.FileExists(t, inside)
}

func TestFileWriter_PruneOncePerDay(t *testing.T) {
	root := t.TempDir()
	w := newTestWriter(t, root)
	w.Append(entryAt("api", domain.StreamStdout, "first", fixedNow))

	// A file that expires after the first write survives until tomorrow's pass
	stale := touchDaily(t, root, "api", 20)
	w.Append(entryAt("api", domain.StreamStdout, "second", fixedNow))
	assert.FileExists(t, stale)
}

func TestFileWriter_PruneSkipsUnparsable(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "services", "api")
	require.NoError(t, os.MkdirAll(dir, 0755))
	odd := filepath.Join(dir, "api-notes.txt")
	foreign := filepath.Join(dir, "web-2020-01-01.txt")
	require.NoError(t, os.WriteFile(odd, nil, 0644))
	require.NoError(t, os.WriteFile(foreign, nil, 0644))

	w := newTestWriter(t, root)
	assert.Equal(t, 0, w.Prune("api", 1, fixedNow))
	assert.FileExists(t, odd)
	assert.FileExists(t, foreign)

	assert.Equal(t, 0, w.Prune("missing", 1, fixedNow))
}

func TestFileWriter_RetentionClamped(t *testing.T) {
	root := t.TempDir()
	path := touchDaily(t, root, "api", 8)

	w := newTestWriter(t, root)
	// zero falls back to the seven day default
	assert.Equal(t, 1, w.Prune("api", 0, fixedNow))
	assert.NoFileExists(t, path)
}

func TestFileWriter_FailureLoggedOnce(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "services")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0644))

	var diag bytes.Buffer
	w := NewFileWriter(WriterConfig{
		Root:   root,
		Now:    func() time.Time { return fixedNow },
		Logger: log.New(&diag),
	})
	defer w.Close()

	assert.NotPanics(t, func() {
		w.Append(entryAt("api", domain.StreamStdout, "one", fixedNow))
		w.Append(entryAt("api", domain.StreamStdout, "two", fixedNow))
	})
	assert.Equal(t, 1, strings.Count(diag.String(), "log persistence failed"))

	// The legacy file is still written
	assert.FileExists(t, filepath.Join(root, "dev-cli-services.txt"))
}
