package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/charliek/devcli/internal/config"
	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/logs"
	"github.com/charliek/devcli/internal/supervisor"
)

// app is one invocation's wiring: settings, workspace, log pipeline and
// controller
type app struct {
	settings  *config.Settings
	workspace *config.Workspace
	logger    *log.Logger
	logRoot   string
	logs      *logs.Manager
	ctrl      *supervisor.Controller

	diagnostics io.Closer
}

func newLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "dev",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newApp loads settings and the workspace and builds the pipeline
func newApp(stderr io.Writer) (*app, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	logger := newLogger(stderr, debug || settings.Debug)

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	explicit := configPath
	if explicit == "" {
		explicit = settings.Config
	}
	ws, err := config.LoadWorkspace(cwd, explicit)
	if err != nil {
		return nil, err
	}
	logger.Debug("workspace loaded", "path", ws.Path, "services", len(ws.ServiceOrder))

	logRoot := settings.ResolveLogRoot(ws.Root)
	writer := logs.NewFileWriter(logs.WriterConfig{
		Root:       logRoot,
		Classifier: logs.NewClassifier(logs.KeywordPredicate(ws.ErrorKeywords)),
		Logger:     logger,
	})
	manager := logs.NewManager(logs.ManagerConfig{
		Writer:     writer,
		BufferSize: constants.DefaultLogBufferSize,
		Logger:     logger,
	})

	cfg := supervisor.DefaultControllerConfig()
	cfg.Containers = supervisor.NewCLIRuntime(settings.ContainerRuntime)
	cfg.ShutdownTimeout = settings.ShutdownTimeout
	cfg.StopContainersOnExit = ws.StopContainersOnExit
	cfg.Logger = logger

	return &app{
		settings:  settings,
		workspace: ws,
		logger:    logger,
		logRoot:   logRoot,
		logs:      manager,
		ctrl:      supervisor.New(ws, manager, cfg),
	}, nil
}

// logToFile moves diagnostics off the terminal. Falls back to the current
// output when the file cannot be opened.
func (a *app) logToFile() {
	path := filepath.Join(a.logRoot, constants.DiagnosticsLogFile)
	if err := os.MkdirAll(a.logRoot, 0o755); err != nil {
		a.logger.Warn("keeping diagnostics on stderr", "err", err)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		a.logger.Warn("keeping diagnostics on stderr", "err", err)
		return
	}
	a.logger.SetOutput(f)
	a.diagnostics = f
}

func (a *app) Close() {
	if err := a.logs.Close(); err != nil {
		a.logger.Error("closing log files", "err", err)
	}
	if a.diagnostics != nil {
		_ = a.diagnostics.Close()
	}
}

// isTerminal reports whether f is an interactive terminal
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorEnabled decides whether plain output may carry ANSI colors
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// defaultTargets returns args, or the all group when empty
func defaultTargets(args []string) []string {
	if len(args) == 0 {
		return []string{constants.TargetAll}
	}
	return args
}

// completeTargets returns service ids and group names for shell completion
func completeTargets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return targetNames(), cobra.ShellCompDirectiveNoFileComp
}

func targetNames() []string {
	cwd, err := os.Getwd()
	if err != nil {
		return nil
	}
	ws, err := config.LoadWorkspace(cwd, configPath)
	if err != nil {
		return nil
	}
	names := append([]string(nil), ws.ServiceOrder...)
	for _, g := range ws.GroupNames() {
		if _, isService := ws.Services[g]; !isService {
			names = append(names, g)
		}
	}
	return names
}
