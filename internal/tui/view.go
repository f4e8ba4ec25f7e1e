package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/charliek/devcli/internal/commands"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/session"
	"github.com/charliek/devcli/internal/supervisor"
)

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.frame.dirty || m.frame.text == "" {
		m.frame.text = m.render()
		m.frame.dirty = false
	}
	return m.frame.text
}

func (m Model) render() string {
	var sb strings.Builder
	sb.WriteString(m.servicePanel())
	sb.WriteString("\n")
	sb.WriteString(m.logArea())
	sb.WriteString("\n")
	if line := m.suggestionLine(); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(m.statusBar())
	return sb.String()
}

// servicePanel renders each configured service with its running state
func (m Model) servicePanel() string {
	running := m.state.Running()
	items := make([]string, 0, len(m.state.Services()))
	for _, id := range m.state.Services() {
		rs := running[id]
		kind := supervisor.Kind(rs)
		label := id
		if rs != nil {
			label = fmt.Sprintf("%s:%d", id, rs.PID())
		}
		if id == m.state.Focus() && m.state.View() == session.ViewAll {
			label = "[" + label + "]"
		}
		items = append(items, kindStyle(kind).Render(label))
	}
	if len(items) == 0 {
		items = append(items, dimStyle.Render("no services configured"))
	}
	return headerStyle.Width(m.width).Render(ansi.Truncate(strings.Join(items, "  "), max(m.width-2, 1), "…"))
}

// logArea renders the current log view into exactly logHeight rows
func (m Model) logArea() string {
	height := m.logHeight()
	view := m.state.View()

	switch {
	case m.help:
		return fill(commands.HelpText(), m.width, height)
	case view == session.ViewOff:
		return fill(dimStyle.Render("logs off: /logs <id|all> to show output"), m.width, height)
	case view.IsService():
		lines := make([]string, 0, height)
		for _, e := range m.state.VisibleLogs() {
			lines = append(lines, m.formatLogEntry(e, false))
		}
		return fill(strings.Join(lines, "\n"), m.width, height)
	case !m.state.Split():
		lines := make([]string, 0, height)
		for _, e := range m.state.VisibleLogs() {
			lines = append(lines, m.formatLogEntry(e, true))
		}
		return fill(strings.Join(lines, "\n"), m.width, height)
	default:
		return m.panes(height)
	}
}

// panes renders the current page side by side
func (m Model) panes(height int) string {
	services := m.state.PaneServices()
	if len(services) == 0 {
		return fill("", m.width, height)
	}
	width := m.width / len(services)
	cols := make([]string, 0, len(services))
	for i, id := range services {
		w := width
		if i == len(services)-1 {
			w = m.width - width*(len(services)-1)
		}
		cols = append(cols, m.pane(id, w, height))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) pane(id string, width, height int) string {
	title := id
	if off := m.state.Offset(id); off > 0 {
		title += fmt.Sprintf(" ↑%d", off)
	}
	style := paneTitleStyle
	if id == m.state.Focus() {
		style = focusedTitleStyle
	}

	lines := []string{style.Render(ansi.Truncate(title, width-1, "…"))}
	for _, e := range m.state.PaneLogs(id) {
		lines = append(lines, m.formatLogEntry(e, false))
	}
	return fill(strings.Join(lines, "\n"), width-1, height) + " "
}

// formatLogEntry formats a single log entry for display
func (m Model) formatLogEntry(entry domain.LogEntry, withService bool) string {
	ts := dimStyle.Render(entry.Timestamp.Format("15:04:05"))

	prefix := ""
	if withService {
		prefix = " " + serviceStyle(entry.Service, m.state.Services()).Render(fmt.Sprintf("%-10s", entry.Service))
	}

	streamIndicator := ""
	if entry.Stream == domain.StreamStderr {
		streamIndicator = " " + errorStyle.Render("ERR")
	}

	return fmt.Sprintf("%s%s%s %s", ts, prefix, streamIndicator, entry.Text)
}

// suggestionLine renders candidates with the selection highlighted
func (m Model) suggestionLine() string {
	list, selected := m.state.Suggestions()
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, len(list))
	for i, s := range list {
		if i == selected {
			parts[i] = selectedSuggestionStyle.Render(s)
		} else {
			parts[i] = suggestionStyle.Render(s)
		}
	}
	return ansi.Truncate(strings.Join(parts, "  "), m.width, "…")
}

// statusBar renders the bottom status bar
func (m Model) statusBar() string {
	status := m.state.Status()
	style := statusStyle
	if status.IsError {
		style = statusErrorStyle
	}

	var right []string
	right = append(right, "["+string(m.state.View())+"]")
	if m.state.View() == session.ViewAll && m.state.Split() {
		cur, total := m.state.Page()
		if label := pageLabel(cur, total); label != "" {
			right = append(right, label)
		}
		if m.state.Maximized() {
			right = append(right, "[MAX]")
		}
	}
	if key := m.state.ScrollKey(); key != "" {
		if off := m.state.Offset(key); off > 0 {
			right = append(right, fmt.Sprintf("[PAUSED +%d]", off))
		} else {
			right = append(right, "[FOLLOW]")
		}
	}
	rightText := strings.Join(right, " ")

	leftWidth := max(m.width-ansi.StringWidth(rightText)-4, 0)
	left := style.Width(leftWidth).Render(ansi.Truncate(firstLine(status.Text), max(leftWidth-2, 0), "…"))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", statusStyle.Render(rightText))
}

// fill truncates each line to width and pads to exactly height rows
func fill(content string, width, height int) string {
	lines := strings.Split(content, "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	for i, l := range lines {
		lines[i] = ansi.Truncate(l, max(width, 0), "…")
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().Width(max(width, 0)).Render(strings.Join(lines, "\n"))
}

func firstLine(s string) string {
	first, _, _ := strings.Cut(s, "\n")
	return first
}
