package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/charliek/devcli/internal/commands"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/logs"
	"github.com/charliek/devcli/internal/session"
	"github.com/charliek/devcli/internal/supervisor"
)

// ShellController adds the event stream and shutdown used by the shell
type ShellController interface {
	Controller
	Subscribe() <-chan supervisor.Event
	Shutdown(ctx context.Context)
}

// Deps wires the shell to the rest of the session
type Deps struct {
	Controller ShellController
	LogManager *logs.Manager
	State      *session.State
	Dispatcher *commands.Dispatcher
	Logger     *log.Logger
}

// ErrInterrupted is returned when the shell ends because ctx was cancelled
var ErrInterrupted = errors.New("interrupted")

// Run starts the interactive shell and blocks until it exits. Every managed
// service is stopped before Run returns.
func Run(ctx context.Context, deps Deps) error {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	fwdCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(fwdCtx, deps.Controller, deps.State, deps.Dispatcher)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Subscribe before the program starts so no line is missed
	subID, ch := deps.LogManager.Subscribe(domain.LogFilter{})
	go forwardLogs(fwdCtx, p, ch)
	go forwardEvents(fwdCtx, p, deps.Controller.Subscribe())

	_, runErr := p.Run()

	cancel()
	deps.LogManager.Unsubscribe(subID)

	logger.Debug("shell exited, stopping services", "running", len(deps.Controller.Running()))
	deps.Controller.Shutdown(context.WithoutCancel(ctx))

	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ErrInterrupted
	}
	return runErr
}

// forwardLogs forwards log entries from the subscription channel to the TUI program.
// It exits when the context is cancelled or the channel is closed.
func forwardLogs(ctx context.Context, p *tea.Program, ch <-chan domain.LogEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			p.Send(LogEntryMsg(entry))
		}
	}
}

// forwardEvents forwards controller events to the TUI program
func forwardEvents(ctx context.Context, p *tea.Program, ch <-chan supervisor.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			p.Send(EventMsg(ev))
		}
	}
}
