package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/supervisor"
)

var startCmd = &cobra.Command{
	Use:   "start [id|group...]",
	Short: "Start services in the foreground and stream their logs",
	Long: `Start services and print their output until interrupted or until every
started service has exited. With no arguments every service is started.`,
	ValidArgsFunction: completeTargets,
	RunE:              runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	printer := NewLogPrinter(out, colorEnabled(out))

	// Subscribe before starting so the first lines are not missed
	subID, entries := a.logs.Subscribe(domain.LogFilter{})
	defer a.logs.Unsubscribe(subID)

	waitCtx, cancelWait := context.WithCancel(context.Background())
	defer cancelWait()
	exits := make(chan *supervisor.Managed)

	code := domain.ExitOK
	pending := make(map[string]bool)
	for _, target := range defaultTargets(args) {
		res := a.ctrl.Start(ctx, target)
		printResult(errOut, res)
		code = max(code, res.ExitCode())
		for _, o := range res.Outcomes {
			if o.Process == nil || pending[o.Service] {
				continue
			}
			pending[o.Service] = true
			go awaitProcess(waitCtx, o.Process, exits)
		}
	}

	// Run until every started service has exited
	interrupted := false
loop:
	for len(pending) > 0 {
		select {
		case entry, ok := <-entries:
			if !ok {
				break loop
			}
			printer.PrintEntry(entry)
		case m := <-exits:
			delete(pending, m.ServiceID())
			// Lines captured before the exit print ahead of its status
			drain(entries, printer)
			fmt.Fprintln(errOut, m.ExitMessage())
			if !m.Requested() && m.ExitCode() != 0 {
				code = domain.ExitFailure
			}
		case <-ctx.Done():
			interrupted = true
			fmt.Fprintln(errOut, "\nInterrupted, stopping services...")
			break loop
		}
	}

	a.ctrl.Shutdown(context.WithoutCancel(ctx))
	drain(entries, printer)

	if interrupted {
		return withCode(domain.ExitInterrupt, nil)
	}
	return withCode(code, nil)
}

// awaitProcess hands m to exits once it has exited
func awaitProcess(ctx context.Context, m *supervisor.Managed, exits chan<- *supervisor.Managed) {
	select {
	case <-m.Done():
	case <-ctx.Done():
		return
	}
	select {
	case exits <- m:
	case <-ctx.Done():
	}
}

// drain prints entries already queued without waiting for more
func drain(entries <-chan domain.LogEntry, printer *LogPrinter) {
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return
			}
			printer.PrintEntry(entry)
		default:
			return
		}
	}
}

// printResult writes one line per outcome
func printResult(w io.Writer, res supervisor.Result) {
	for _, o := range res.Outcomes {
		if o.Message == "" {
			continue
		}
		fmt.Fprintln(w, o.Message)
	}
}
