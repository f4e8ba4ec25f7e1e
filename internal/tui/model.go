package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/devcli/internal/commands"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/session"
	"github.com/charliek/devcli/internal/supervisor"
)

// Controller is what the shell needs from the lifecycle controller
type Controller interface {
	commands.Controller
	Hydrate(ctx context.Context) []string
}

// minSplitWidth is the narrowest terminal that still renders side-by-side panes
const minSplitWidth = 80

// frame caches the last rendered screen. The session observer marks it
// dirty; View rebuilds only then.
type frame struct {
	dirty bool
	text  string
}

// Model is the bubbletea model for the interactive shell
type Model struct {
	ctx        context.Context
	ctrl       Controller
	state      *session.State
	dispatcher *commands.Dispatcher

	input textinput.Model
	frame *frame

	width    int
	height   int
	ready    bool
	help     bool
	quitting bool
}

// NewModel creates the shell model and registers it as the state observer
func NewModel(ctx context.Context, ctrl Controller, state *session.State, dispatcher *commands.Dispatcher) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type /help for commands"
	ti.CharLimit = 256
	ti.Focus()

	f := &frame{dirty: true}
	state.SetObserver(session.ObserverFunc(func() { f.dirty = true }))

	return Model{
		ctx:        ctx,
		ctrl:       ctrl,
		state:      state,
		dispatcher: dispatcher,
		input:      ti,
		frame:      f,
	}
}

// Init starts adoption of already running services
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, hydrate(m.ctx, m.ctrl))
}

// LogEntryMsg is sent when a new log entry arrives
type LogEntryMsg domain.LogEntry

// EventMsg carries a lifecycle event from the controller
type EventMsg supervisor.Event

// HydratedMsg reports the services adopted at startup
type HydratedMsg []string

// commandDoneMsg is sent when a command run with the terminal released returns
type commandDoneMsg struct {
	outcome commands.Outcome
	err     error
}

// statusClearMsg clears a status line if it still shows the same text
type statusClearMsg string

// statusClearDelay is how long a non-error status stays on screen
const statusClearDelay = 5 * time.Second

func statusClearCmd(text string) tea.Cmd {
	return tea.Tick(statusClearDelay, func(time.Time) tea.Msg {
		return statusClearMsg(text)
	})
}

// hydrate runs discovery off the event loop
func hydrate(ctx context.Context, ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return HydratedMsg(ctrl.Hydrate(ctx))
	}
}
