package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/devcli/internal/commands"
	"github.com/charliek/devcli/internal/session"
	"github.com/charliek/devcli/internal/supervisor"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.frame.dirty = true
		next, cmd := m.handleKey(msg)
		// Suggestions take a row from the log area
		m.state.SetWindow(m.logHeight())
		return next, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.input.Width = max(msg.Width-4, 10)
		m.state.SetSplit(msg.Width >= minSplitWidth)
		m.state.SetWindow(m.logHeight())
		m.frame.dirty = true

	case LogEntryMsg:
		// The entry is already in the shared buffer
		m.state.Refresh()
		return m, nil

	case EventMsg:
		return m, m.handleEvent(supervisor.Event(msg))

	case HydratedMsg:
		if len(msg) > 0 {
			return m, m.setStatus("adopted running: "+strings.Join(msg, ", "), false)
		}

	case commandDoneMsg:
		m.state.EndExecuting()
		m.state.Refresh()
		if msg.err != nil {
			return m, m.setStatus(msg.err.Error(), true)
		}
		return m, m.clearLater(msg.outcome)

	case statusClearMsg:
		if st := m.state.Status(); st.Text == string(msg) && !st.IsError {
			m.state.SetStatus("", false)
		}
		return m, nil
	}

	m.frame.dirty = true
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEvent turns lifecycle events into status messages. Exits the user
// did not ask for are shown as errors when the code is nonzero.
func (m Model) handleEvent(ev supervisor.Event) tea.Cmd {
	m.frame.dirty = true
	switch ev.Type {
	case supervisor.EventExited:
		return m.setStatus(ev.Message, !ev.Requested && ev.ExitCode != 0)
	case supervisor.EventAdopted:
		return m.setStatus(ev.Message, false)
	}
	return nil
}

func (m Model) setStatus(text string, isError bool) tea.Cmd {
	m.state.SetStatus(text, isError)
	if isError || text == "" {
		return nil
	}
	return statusClearCmd(text)
}

func (m Model) clearLater(out commands.Outcome) tea.Cmd {
	if out.IsError() || out.Message == "" {
		return nil
	}
	return statusClearCmd(out.Message)
}

// handleKey processes keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.state.Executing() {
		return m, nil
	}
	m.help = false

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "enter":
		return m.submit()
	}

	if m.state.Phase() == session.PhaseSuggesting {
		switch msg.String() {
		case "up":
			m.state.CycleSuggestion(-1)
			return m, nil
		case "down":
			m.state.CycleSuggestion(1)
			return m, nil
		case "tab":
			if s, ok := m.state.SelectedSuggestion(); ok {
				m.input.SetValue(s + " ")
				m.input.CursorEnd()
				m.suggest()
			}
			return m, nil
		case "esc":
			m.state.DismissSuggestions()
			return m, nil
		}
	}

	if m.handleNavigationKey(msg) {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.suggest()
	return m, cmd
}

// handleNavigationKey handles scroll, focus and pane keys.
// Returns true if the key was handled
func (m *Model) handleNavigationKey(msg tea.KeyMsg) bool {
	page := max(m.logHeight()-1, 1)
	empty := m.input.Value() == ""

	switch msg.String() {
	case "pgup":
		m.state.ScrollBy(page)
	case "pgdown":
		m.state.ScrollBy(-page)
	case "up":
		if !empty {
			return false
		}
		m.state.ScrollBy(1)
	case "down":
		if !empty {
			return false
		}
		m.state.ScrollBy(-1)
	case "home":
		if !empty {
			return false
		}
		m.state.ScrollHome()
	case "end":
		if !empty {
			return false
		}
		m.state.ScrollEnd()
	case "tab":
		m.state.FocusNext()
	case "shift+tab":
		m.state.FocusPrev()
	case "ctrl+f":
		m.state.ToggleMaximize()
	case "esc":
		m.input.SetValue("")
	default:
		return false
	}
	return true
}

// suggest refreshes suggestions from the current input
func (m Model) suggest() {
	value := m.input.Value()
	if !strings.HasPrefix(value, "/") {
		m.state.DismissSuggestions()
		return
	}
	m.state.ShowSuggestions(commands.Suggest(value, m.dispatcher.Completions()))
}

// submit runs the input line. Commands that spawn or signal processes run
// with the terminal released; view commands run inline.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.state.DismissSuggestions()
	if line == "" {
		return m, nil
	}

	cmd, err := commands.Parse(line)
	if err != nil {
		out := m.dispatcher.Execute(m.ctx, line)
		return m, m.clearLater(out)
	}

	if cmd.Definition.RequiresExec {
		m.state.BeginExecuting()
		return m, runExec(newExecCommand(m.ctx, m.dispatcher, cmd))
	}

	out := m.dispatcher.Run(m.ctx, cmd)
	m.help = cmd.Name() == commands.Help
	if m.help {
		m.state.SetStatus("press any key to close help", false)
	}
	if out.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, m.clearLater(out)
}

// logHeight is the number of rows available to log output
func (m Model) logHeight() int {
	rows := m.height - 3 // header, prompt, status
	if m.state.Phase() == session.PhaseSuggesting {
		rows--
	}
	return max(rows, 1)
}

// pageLabel formats the split-pane page indicator
func pageLabel(cur, total int) string {
	if total <= 1 {
		return ""
	}
	return fmt.Sprintf("page %d/%d", cur+1, total)
}
