package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/charliek/devcli/internal/config"
	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/session"
	"github.com/charliek/devcli/internal/supervisor"
)

// Controller is the lifecycle surface the dispatcher drives
type Controller interface {
	Workspace() *config.Workspace
	Running() map[string]supervisor.RunningService
	Start(ctx context.Context, target string) supervisor.Result
	Stop(ctx context.Context, target string) supervisor.Result
	Restart(ctx context.Context, target string) supervisor.Result
}

// Outcome is what one command produced. Message is also written to the
// status line of the session.
type Outcome struct {
	Message  string
	ExitCode int
	Quit     bool
	Result   *supervisor.Result
}

// IsError reports a nonzero exit
func (o Outcome) IsError() bool {
	return o.ExitCode != domain.ExitOK
}

func ok(msg string) Outcome {
	return Outcome{Message: msg, ExitCode: domain.ExitOK}
}

func fail(msg string) Outcome {
	return Outcome{Message: msg, ExitCode: domain.ExitFailure}
}

// Dispatcher executes parsed commands
type Dispatcher struct {
	ctrl   Controller
	state  *session.State
	logger *log.Logger
}

// NewDispatcher creates a dispatcher. state may be nil for one-shot use,
// in which case view commands fail.
func NewDispatcher(ctrl Controller, state *session.State, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{ctrl: ctrl, state: state, logger: logger}
}

// Completions returns the ids and group names for suggestions
func (d *Dispatcher) Completions() Completions {
	ws := d.ctrl.Workspace()
	return Completions{Services: ws.ServiceOrder, Groups: ws.GroupNames()}
}

// Execute parses and runs one input line. Unknown input becomes an error
// outcome, never a panic.
func (d *Dispatcher) Execute(ctx context.Context, input string) Outcome {
	cmd, err := Parse(input)
	if err != nil {
		out := fail(fmt.Sprintf("%v (try /help)", err))
		d.report(out)
		return out
	}
	return d.Run(ctx, cmd)
}

// Run executes a parsed command and records its message on the status line
func (d *Dispatcher) Run(ctx context.Context, cmd Command) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command panicked", "command", cmd.Raw, "panic", r)
			out = fail(fmt.Sprintf("/%s failed: %v", cmd.Name(), r))
		}
		d.report(out)
	}()

	switch cmd.Name() {
	case Start, Stop, Restart:
		return d.lifecycle(ctx, cmd)
	case Logs:
		return d.logs(cmd)
	case Status:
		return ok(FormatStatuses(Statuses(d.ctrl.Workspace(), d.ctrl.Running(), time.Now())))
	case Clear:
		if d.state == nil {
			return fail("/clear requires the interactive shell")
		}
		d.state.ClearLogs()
		return ok("")
	case Help:
		return ok(HelpText())
	case Exit:
		return Outcome{Message: "shutting down", Quit: true}
	default:
		return fail(fmt.Sprintf("%v: /%s", domain.ErrUnknownCommand, cmd.Name()))
	}
}

func (d *Dispatcher) report(out Outcome) {
	if d.state != nil {
		d.state.SetStatus(out.Message, out.IsError())
	}
}

func (d *Dispatcher) lifecycle(ctx context.Context, cmd Command) Outcome {
	target := cmd.Arg()
	if target == "" || len(cmd.Args) > 1 {
		return fail("usage: " + cmd.Definition.Usage)
	}

	var res supervisor.Result
	switch cmd.Name() {
	case Start:
		res = d.ctrl.Start(ctx, target)
	case Stop:
		res = d.ctrl.Stop(ctx, target)
	default:
		res = d.ctrl.Restart(ctx, target)
	}

	msg := res.Summary()
	if msg == "" {
		msg = fmt.Sprintf("%s %s: nothing to do", cmd.Name(), target)
	}
	return Outcome{Message: msg, ExitCode: res.ExitCode(), Result: &res}
}

func (d *Dispatcher) logs(cmd Command) Outcome {
	if d.state == nil {
		return fail("/logs requires the interactive shell")
	}
	arg := cmd.Arg()
	if arg == "" || len(cmd.Args) > 1 {
		return fail("usage: " + cmd.Definition.Usage)
	}

	switch arg {
	case constants.TargetClear:
		d.state.ClearLogs()
		return ok("logs cleared")
	case constants.TargetOff:
		_ = d.state.SetView(session.ViewOff)
		return ok("logs hidden")
	case constants.TargetAll:
		_ = d.state.SetView(session.ViewAll)
		return ok("showing all services")
	}

	if err := d.state.SetView(session.View(arg)); err != nil {
		return fail(err.Error())
	}
	return ok("showing logs for " + arg)
}
