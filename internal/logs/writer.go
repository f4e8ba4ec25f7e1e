package logs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Writer persists log entries
type Writer interface {
	Append(entry domain.LogEntry)
}

// WriterConfig holds configuration for a FileWriter
type WriterConfig struct {
	Root       string           // log root; files live under services/ and the legacy file at the top
	Classifier *Classifier      // nil uses the default keywords
	Now        func() time.Time // clock used for retention; defaults to time.Now
	Logger     *log.Logger      // receives the first persistence failure
	SessionID  string           // written into the legacy banner; generated when empty
}

type pruneKey struct {
	service string
	date    string
}

// FileWriter appends entries to per-service daily JSON files and to the
// legacy consolidated file. It never returns errors: the first failure is
// logged and later ones are dropped silently.
type FileWriter struct {
	mu         sync.Mutex
	root       string
	classifier *Classifier
	now        func() time.Time
	logger     *log.Logger
	sessionID  string

	files    map[string]*os.File
	bannered map[string]bool
	pruned   map[pruneKey]bool
	failed   bool
}

// NewFileWriter creates a writer rooted at config.Root
func NewFileWriter(config WriterConfig) *FileWriter {
	if config.Classifier == nil {
		config.Classifier = NewClassifier(nil)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	if config.SessionID == "" {
		config.SessionID = uuid.NewString()
	}
	return &FileWriter{
		root:       config.Root,
		classifier: config.Classifier,
		now:        config.Now,
		logger:     config.Logger,
		sessionID:  config.SessionID,
		files:      make(map[string]*os.File),
		bannered:   make(map[string]bool),
		pruned:     make(map[pruneKey]bool),
	}
}

// Root returns the log root directory
func (w *FileWriter) Root() string {
	return w.root
}

// ServiceDir returns the directory holding a service's daily files
func (w *FileWriter) ServiceDir(service string) string {
	return filepath.Join(w.root, constants.ServicesLogDir, service)
}

// DailyPath returns the daily file for a service on the UTC date of t
func (w *FileWriter) DailyPath(service string, t time.Time) string {
	return filepath.Join(w.ServiceDir(service), dailyFileName(service, t.UTC().Format(constants.DateLayout)))
}

// LegacyPath returns the consolidated file shared by every service
func (w *FileWriter) LegacyPath() string {
	return filepath.Join(w.root, constants.LegacyLogFile)
}

func dailyFileName(service, date string) string {
	return service + "-" + date + constants.DailyFileExt
}

// Append classifies the entry and writes it to both files. The first write
// for a service on a given UTC day also prunes expired files.
func (w *FileWriter) Append(entry domain.LogEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	today := w.now().UTC()
	key := pruneKey{service: entry.Service, date: today.Format(constants.DateLayout)}
	if !w.pruned[key] {
		w.pruned[key] = true
		w.prune(entry.Service, domain.ClampRetention(entry.RetentionDays), today)
	}

	ts := entry.Timestamp.UTC().Format(constants.TimestampLayout)
	record := domain.PersistedLogEntry{
		Timestamp: ts,
		Service:   entry.Service,
		Stream:    entry.Stream,
		Level:     w.classifier.Level(entry.Stream, entry.Text),
		Message:   entry.Text,
	}
	data, err := json.MarshalWithOption(record, json.DisableHTMLEscape())
	if err != nil {
		w.report(fmt.Errorf("encoding log entry: %w", err))
		return
	}
	w.write(w.DailyPath(entry.Service, entry.Timestamp), append(data, '\n'))

	legacy := w.LegacyPath()
	if !w.bannered[legacy] {
		w.bannered[legacy] = true
		banner := fmt.Sprintf("=== dev-cli session %s started %s (pid %d) ===\n",
			w.sessionID, w.now().UTC().Format(constants.TimestampLayout), os.Getpid())
		w.write(legacy, []byte(banner))
	}
	line := fmt.Sprintf("[%s] [%s] [%s] %s\n", ts, entry.Service, entry.Stream, entry.Text)
	w.write(legacy, []byte(line))
}

// Prune deletes a service's daily files whose UTC date is at least
// retentionDays before now. It returns the number of files removed.
func (w *FileWriter) Prune(service string, retentionDays int, now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.prune(service, domain.ClampRetention(retentionDays), now.UTC())
}

func (w *FileWriter) prune(service string, retentionDays int, now time.Time) int {
	dir := w.ServiceDir(service)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	today := truncateDay(now)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		date, ok := parseDailyFileName(service, e.Name())
		if !ok {
			continue
		}
		age := int(today.Sub(date).Hours() / 24)
		if age < retentionDays {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if f, open := w.files[path]; open {
			_ = f.Close()
			delete(w.files, path)
		}
		if err := os.Remove(path); err != nil {
			w.logger.Debug("retention prune failed", "path", path, "err", err)
			continue
		}
		removed++
	}
	return removed
}

// parseDailyFileName extracts the date from <service>-YYYY-MM-DD.txt
func parseDailyFileName(service, name string) (time.Time, bool) {
	prefix := service + "-"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, constants.DailyFileExt) {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, prefix), constants.DailyFileExt)
	date, err := time.Parse(constants.DateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (w *FileWriter) write(path string, data []byte) {
	f, err := w.open(path)
	if err != nil {
		w.report(err)
		return
	}
	if _, err := f.Write(data); err != nil {
		w.report(fmt.Errorf("writing %s: %w", path, err))
	}
}

func (w *FileWriter) open(path string) (*os.File, error) {
	if f, ok := w.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	w.files[path] = f
	return f, nil
}

// report logs the first persistence failure of the run
func (w *FileWriter) report(err error) {
	if w.failed {
		return
	}
	w.failed = true
	w.logger.Error("log persistence failed; further errors suppressed", "err", err)
}

// Close closes every open log file
func (w *FileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error
	for path, f := range w.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(w.files, path)
	}
	return firstErr
}
