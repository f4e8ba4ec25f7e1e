package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/x/ansi"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
)

// LogPrinter handles consistent log formatting and color assignment
type LogPrinter struct {
	w          io.Writer
	color      bool
	colors     map[string]string
	colorIndex int
}

// NewLogPrinter creates a LogPrinter. Without color, service output is
// printed with its own escape codes removed.
func NewLogPrinter(w io.Writer, color bool) *LogPrinter {
	return &LogPrinter{
		w:      w,
		color:  color,
		colors: make(map[string]string),
	}
}

// PrintEntry prints a log entry with consistent color assignment
func (lp *LogPrinter) PrintEntry(entry domain.LogEntry) {
	ts := entry.Timestamp.Format("15:04:05")
	if !lp.color {
		fmt.Fprintf(lp.w, "%s %-8s | %s\n", ts, entry.Service, ansi.Strip(entry.Text))
		return
	}

	lineColor := ""
	if entry.Stream == domain.StreamStderr {
		lineColor = constants.ColorBrightRed
	}
	fmt.Fprintf(lp.w, "%s %s%-8s%s | %s%s%s\n",
		ts,
		lp.getColor(entry.Service), entry.Service, constants.ColorReset,
		lineColor, entry.Text, constants.ColorReset)
}

func (lp *LogPrinter) getColor(service string) string {
	color, ok := lp.colors[service]
	if !ok {
		color = constants.ServiceColors[lp.colorIndex%len(constants.ServiceColors)]
		lp.colors[service] = color
		lp.colorIndex++
	}
	return color
}
