package cli

import (
	"github.com/spf13/cobra"

	"github.com/charliek/devcli/internal/domain"
)

var stopCmd = &cobra.Command{
	Use:   "stop [id|group...]",
	Short: "Stop services that are already running",
	Long: `Stop services started elsewhere. Running instances are discovered first;
an explicit service id is terminated by process id, while a group only stops
container-backed services and leaves other processes running.`,
	ValidArgsFunction: completeTargets,
	RunE:              runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	a.ctrl.Hydrate(ctx)

	code := domain.ExitOK
	for _, target := range defaultTargets(args) {
		res := a.ctrl.Stop(ctx, target)
		printResult(cmd.OutOrStdout(), res)
		code = max(code, res.ExitCode())
	}
	return withCode(code, nil)
}
