package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/charliek/devcli/internal/commands"
	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/session"
	"github.com/charliek/devcli/internal/tui"
)

var errNoTerminal = errors.New("the interactive shell needs a terminal; use start, stop or status instead")

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive shell (default)",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, _ []string) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return withCode(domain.ExitFailure, errNoTerminal)
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()
	a.logToFile()

	ws := a.workspace
	state := session.New(session.Config{
		Services:   ws.ServiceOrder,
		AllGroup:   ws.Groups[constants.TargetAll],
		Running:    a.ctrl,
		Buffer:     a.logs.Buffer(),
	})
	dispatcher := commands.NewDispatcher(a.ctrl, state, a.logger)

	return tui.Run(cmd.Context(), tui.Deps{
		Controller: a.ctrl,
		LogManager: a.logs,
		State:      state,
		Dispatcher: dispatcher,
		Logger:     a.logger,
	})
}
