package tui

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charliek/devcli/internal/commands"
	"github.com/charliek/devcli/internal/config"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/logs"
	"github.com/charliek/devcli/internal/session"
	"github.com/charliek/devcli/internal/supervisor"
)

type fakeController struct {
	ws      *config.Workspace
	running map[string]supervisor.RunningService
	calls   []string
	adopted []string
	buffer  *logs.RingBuffer
}

func newFakeController(ids ...string) *fakeController {
	ws := config.Empty("/tmp/ws")
	for _, id := range ids {
		ws.ServiceOrder = append(ws.ServiceOrder, id)
		ws.Services[id] = domain.ServiceDefinition{ID: id, Command: "true"}
	}
	ws.Groups["all"] = ws.ServiceOrder
	return &fakeController{ws: ws, running: map[string]supervisor.RunningService{}, buffer: logs.NewRingBuffer(100)}
}

func (f *fakeController) Workspace() *config.Workspace                  { return f.ws }
func (f *fakeController) Running() map[string]supervisor.RunningService { return f.running }
func (f *fakeController) Hydrate(context.Context) []string              { return f.adopted }

func (f *fakeController) result(action, target string) supervisor.Result {
	f.calls = append(f.calls, action+" "+target)
	return supervisor.Result{Action: action, Target: target, Outcomes: []supervisor.Outcome{
		{Service: target, Status: supervisor.OutcomeOK, Message: target + " " + action + "ed"},
	}}
}

func (f *fakeController) Start(_ context.Context, t string) supervisor.Result {
	return f.result("start", t)
}

func (f *fakeController) Stop(_ context.Context, t string) supervisor.Result {
	return f.result("stop", t)
}

func (f *fakeController) Restart(_ context.Context, t string) supervisor.Result {
	return f.result("restart", t)
}

// newTestModel creates a Model with default test dependencies.
func newTestModel(t *testing.T, ids ...string) (Model, *fakeController) {
	t.Helper()
	ctrl := newFakeController(ids...)
	state := session.New(session.Config{Services: ids, Running: ctrl, Buffer: ctrl.buffer})
	d := commands.NewDispatcher(ctrl, state, log.New(io.Discard))
	m := NewModel(context.Background(), ctrl, state, d)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model), ctrl
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

// deliver writes a line to the shared buffer the way the log manager does,
// then sends the notification the shell receives
func deliver(m Model, ctrl *fakeController, service, text string) Model {
	entry := domain.LogEntry{Timestamp: time.Now(), Service: service, Stream: domain.StreamStdout, Text: text}
	ctrl.buffer.Write(entry)
	next, _ := m.Update(LogEntryMsg(entry))
	return next.(Model)
}

func TestNewModel(t *testing.T) {
	m, _ := newTestModel(t, "api")

	assert.True(t, m.ready)
	assert.Equal(t, session.ViewOff, m.state.View())
	assert.Equal(t, session.PhaseIdle, m.state.Phase())
	assert.True(t, m.state.Split())
}

func TestModel_NarrowTerminalDisablesSplit(t *testing.T) {
	m, _ := newTestModel(t, "api")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	assert.False(t, next.(Model).state.Split())
}

func TestModel_TypingSlashShowsSuggestions(t *testing.T) {
	m, _ := newTestModel(t, "api")

	m = typeText(m, "/st")
	list, idx := m.state.Suggestions()
	assert.Equal(t, session.PhaseSuggesting, m.state.Phase())
	assert.Equal(t, []string{"/start", "/status", "/stop"}, list)
	assert.Equal(t, 0, idx)

	m, _ = press(m, tea.KeyDown)
	_, idx = m.state.Suggestions()
	assert.Equal(t, 1, idx)

	m, _ = press(m, tea.KeyEsc)
	assert.Equal(t, session.PhaseIdle, m.state.Phase())
}

func TestModel_TabCompletesSuggestion(t *testing.T) {
	m, _ := newTestModel(t, "api", "web")

	m = typeText(m, "/lo")
	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, "/logs ", m.input.Value())

	// Argument completion follows on
	list, _ := m.state.Suggestions()
	assert.Contains(t, list, "/logs api")
}

func TestModel_ViewCommandRunsInline(t *testing.T) {
	m, _ := newTestModel(t, "api")
	m = typeText(m, "/logs api")

	m, cmd := press(m, tea.KeyEnter)

	assert.Equal(t, session.View("api"), m.state.View())
	assert.Equal(t, "showing logs for api", m.state.Status().Text)
	assert.Empty(t, m.input.Value())
	assert.NotNil(t, cmd) // status clear timer
}

func TestModel_LifecycleCommandEntersExecuting(t *testing.T) {
	m, ctrl := newTestModel(t, "api")
	m = typeText(m, "/start api")

	m, cmd := press(m, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.True(t, m.state.Executing())
	assert.Empty(t, ctrl.calls, "runs only once the terminal is released")

	// Input is frozen while executing
	m = typeText(m, "x")
	assert.Empty(t, m.input.Value())

	next, _ := m.Update(commandDoneMsg{outcome: commands.Outcome{Message: "api started"}})
	m = next.(Model)
	assert.Equal(t, session.PhaseIdle, m.state.Phase())
}

func TestExecCommand_Run(t *testing.T) {
	ctrl := newFakeController("api")
	state := session.New(session.Config{Services: []string{"api"}, Running: ctrl})
	d := commands.NewDispatcher(ctrl, state, log.New(io.Discard))
	cmd, err := commands.Parse("/stop api")
	require.NoError(t, err)

	var out bytes.Buffer
	e := newExecCommand(context.Background(), d, cmd)
	e.SetStdout(&out)
	require.NoError(t, e.Run())

	assert.Equal(t, []string{"stop api"}, ctrl.calls)
	assert.Equal(t, "api stoped", e.outcome.Message)
	assert.Equal(t, "/stop api\napi stoped\n", out.String())
}

func TestModel_UnknownCommand(t *testing.T) {
	m, _ := newTestModel(t, "api")
	m = typeText(m, "/bogus")

	m, _ = press(m, tea.KeyEnter)

	assert.True(t, m.state.Status().IsError)
	assert.Contains(t, m.state.Status().Text, "unknown command")
	assert.False(t, m.state.Executing())
}

func TestModel_ExitQuits(t *testing.T) {
	m, _ := newTestModel(t, "api")
	m = typeText(m, "/exit")

	m, cmd := press(m, tea.KeyEnter)

	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_CtrlCQuits(t *testing.T) {
	m, _ := newTestModel(t, "api")
	m, cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModel_LogEntryMsg(t *testing.T) {
	m, ctrl := newTestModel(t, "api")

	m = deliver(m, ctrl, "api", "hello")

	assert.Equal(t, 1, m.state.LogCount())
}

func TestModel_ScrollKeys(t *testing.T) {
	m, ctrl := newTestModel(t, "api")
	require.NoError(t, m.state.SetView("api"))
	for i := 0; i < 100; i++ {
		m = deliver(m, ctrl, "api", "line")
	}

	m, _ = press(m, tea.KeyUp)
	assert.Equal(t, 1, m.state.Offset("api"))

	m, _ = press(m, tea.KeyHome)
	assert.Equal(t, m.state.MaxOffset("api"), m.state.Offset("api"))

	m, _ = press(m, tea.KeyEnd)
	assert.Equal(t, 0, m.state.Offset("api"))

	m, _ = press(m, tea.KeyPgUp)
	assert.Equal(t, m.logHeight()-1, m.state.Offset("api"))
}

func TestModel_PaneNavigation(t *testing.T) {
	m, _ := newTestModel(t, "a", "b", "c")
	require.NoError(t, m.state.SetView(session.ViewAll))

	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, "c", m.state.Focus())

	m, _ = press(m, tea.KeyShiftTab)
	assert.Equal(t, "a", m.state.Focus())

	m, _ = press(m, tea.KeyCtrlF)
	assert.True(t, m.state.Maximized())
}

func TestModel_ExitEventSetsStatus(t *testing.T) {
	m, _ := newTestModel(t, "api")

	next, _ := m.Update(EventMsg(supervisor.Event{
		Type: supervisor.EventExited, Service: "api", ExitCode: 2, Message: "api (pid 9) exited with code 2",
	}))
	m = next.(Model)
	assert.Equal(t, session.Status{Text: "api (pid 9) exited with code 2", IsError: true}, m.state.Status())

	next, _ = m.Update(EventMsg(supervisor.Event{
		Type: supervisor.EventExited, Service: "api", ExitCode: -15, Requested: true, Message: "stopped",
	}))
	assert.False(t, next.(Model).state.Status().IsError)
}

func TestModel_HydratedMsg(t *testing.T) {
	m, _ := newTestModel(t, "api", "db")
	next, _ := m.Update(HydratedMsg{"db"})
	assert.Equal(t, "adopted running: db", next.(Model).state.Status().Text)
}

func TestModel_StatusClearOnlyMatchingText(t *testing.T) {
	m, _ := newTestModel(t, "api")
	m.state.SetStatus("newer", false)

	next, _ := m.Update(statusClearMsg("older"))
	assert.Equal(t, "newer", next.(Model).state.Status().Text)

	next, _ = m.Update(statusClearMsg("newer"))
	assert.Empty(t, next.(Model).state.Status().Text)
}

func TestView_Renders(t *testing.T) {
	m, ctrl := newTestModel(t, "api", "web")
	ctrl.running["api"] = supervisor.External{ID: "api", ProcessID: 4242}
	require.NoError(t, m.state.SetView(session.ViewAll))
	m = deliver(m, ctrl, "web", "listening on :8080")

	out := m.View()
	assert.Contains(t, out, "api:4242")
	assert.Contains(t, out, "listening on :8080")
	assert.Contains(t, out, "[all]")
}

func TestView_HelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, "api")
	m = typeText(m, "/help")
	m, _ = press(m, tea.KeyEnter)

	assert.Contains(t, m.View(), "/restart <id|group>")

	m = typeText(m, "x")
	assert.NotContains(t, m.View(), "/restart <id|group>")
}

func TestView_FrameCached(t *testing.T) {
	m, _ := newTestModel(t, "api")
	first := m.View()
	assert.False(t, m.frame.dirty)
	assert.Equal(t, first, m.View())

	m.state.SetStatus("changed", false)
	assert.True(t, m.frame.dirty)
	assert.NotEqual(t, first, m.View())
}

func TestModel_WindowFollowsLayout(t *testing.T) {
	m, _ := newTestModel(t, "api")
	require.NoError(t, m.state.SetView("api"))
	assert.Equal(t, 27, m.state.Window())

	m = typeText(m, "/st")
	assert.Equal(t, 26, m.state.Window())

	m, _ = press(m, tea.KeyEsc)
	assert.Equal(t, 27, m.state.Window())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 12})
	assert.Equal(t, 9, next.(Model).state.Window())
}

func TestView_RenderLeavesCursorsAlone(t *testing.T) {
	m, ctrl := newTestModel(t, "api")
	require.NoError(t, m.state.SetView("api"))
	for i := 0; i < 60; i++ {
		m = deliver(m, ctrl, "api", "line")
	}
	m, _ = press(m, tea.KeyPgUp)
	off := m.state.Offset("api")

	// More output arrives while the view is paused, then the frame renders
	for i := 0; i < 5; i++ {
		m = deliver(m, ctrl, "api", "late")
	}
	_ = m.View()
	_ = m.View()

	assert.Equal(t, off+5, m.state.Offset("api"))
}
