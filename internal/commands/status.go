package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charliek/devcli/internal/config"
	"github.com/charliek/devcli/internal/supervisor"
)

// ServiceStatus is one row of the status report
type ServiceStatus struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Category  string `json:"category,omitempty"`
	State     string `json:"state"`
	PID       int    `json:"pid,omitempty"`
	Source    string `json:"source,omitempty"`
	Container string `json:"container,omitempty"`

	Uptime time.Duration `json:"-"`
}

// Statuses reports every configured service in declaration order, with
// uptimes measured at now
func Statuses(ws *config.Workspace, running map[string]supervisor.RunningService, now time.Time) []ServiceStatus {
	rows := make([]ServiceStatus, 0, len(ws.ServiceOrder))
	for _, def := range ws.Definitions() {
		row := ServiceStatus{
			ID:        def.ID,
			Label:     def.DisplayName(),
			Category:  def.Category,
			State:     supervisor.Kind(nil), // stopped
			Container: def.Container,
		}
		if rs, ok := running[def.ID]; ok {
			row.State = supervisor.Kind(rs)
			row.PID = rs.PID()
			row.Uptime = supervisor.Uptime(rs, now)
			if ext, ok := rs.(supervisor.External); ok {
				row.Source = string(ext.Source)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatStatuses renders rows as one compact line
func FormatStatuses(rows []ServiceStatus) string {
	if len(rows) == 0 {
		return "no services configured"
	}
	parts := make([]string, 0, len(rows))
	for _, r := range rows {
		switch {
		case r.Uptime > 0:
			parts = append(parts, fmt.Sprintf("%s: %s (pid %d, up %s)", r.ID, r.State, r.PID, r.Uptime.Round(time.Second)))
		case r.PID > 0:
			parts = append(parts, fmt.Sprintf("%s: %s (pid %d)", r.ID, r.State, r.PID))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", r.ID, r.State))
		}
	}
	return strings.Join(parts, ", ")
}
