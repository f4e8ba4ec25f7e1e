package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charliek/devcli/internal/commands"
)

// execCommand runs a process-affecting command while bubbletea has released
// the terminal. It satisfies tea.ExecCommand.
type execCommand struct {
	ctx        context.Context
	dispatcher *commands.Dispatcher
	cmd        commands.Command

	stdout  io.Writer
	outcome commands.Outcome
}

func newExecCommand(ctx context.Context, d *commands.Dispatcher, cmd commands.Command) *execCommand {
	return &execCommand{ctx: ctx, dispatcher: d, cmd: cmd, stdout: io.Discard}
}

func (e *execCommand) Run() error {
	fmt.Fprintf(e.stdout, "%s\n", e.cmd.Raw)
	e.outcome = e.dispatcher.Run(e.ctx, e.cmd)
	if e.outcome.Message != "" {
		fmt.Fprintf(e.stdout, "%s\n", e.outcome.Message)
	}
	return nil
}

func (e *execCommand) SetStdin(io.Reader) {}

func (e *execCommand) SetStdout(w io.Writer) {
	if w != nil {
		e.stdout = w
	}
}

func (e *execCommand) SetStderr(io.Writer) {}

// runExec releases the terminal for the duration of cmd
func runExec(e *execCommand) tea.Cmd {
	return tea.Exec(e, func(err error) tea.Msg {
		return commandDoneMsg{outcome: e.outcome, err: err}
	})
}
