// Package supervisor manages service lifecycle: starting, stopping, adopting
// already-running instances and capturing their output.
//
// # Security Model
//
// Services run the executable and argument vector from dev-cli.yaml
// directly, without a shell. The configuration file has the same trust
// level as a Makefile or Procfile: it can execute arbitrary code. Only use
// workspace files from trusted sources.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charliek/devcli/internal/domain"
)

// ProcessRunner creates and starts processes
type ProcessRunner interface {
	Start(ctx context.Context, def domain.ServiceDefinition, env map[string]string) (Process, error)
}

// Process represents a running process
type Process interface {
	PID() int
	Wait() error
	Stdout() io.Reader
	Stderr() io.Reader
	// Close releases the read side of the output pipes, unblocking readers
	Close() error
}

// ExecRunner implements ProcessRunner using os/exec
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Start spawns def in its working directory. The environment is the
// supervisor's own, overridden by env. The child is not bound to ctx: a
// service outlives the command that started it.
func (r *ExecRunner) Start(_ context.Context, def domain.ServiceDefinition, env map[string]string) (Process, error) {
	cmd := exec.Command(def.Command, def.Args...)
	cmd.Dir = def.Dir

	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	// Manual pipes rather than cmd.StdoutPipe: the read ends stay open until
	// every writer (including grandchildren) closes, and Wait never closes
	// them underneath an active reader.
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutR.Close()
		stdoutW.Close()
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	setSysProcAttr(cmd)

	startErr := cmd.Start()
	// The child holds its own copies of the write ends
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		stdoutR.Close()
		stderrR.Close()
		return nil, startErr
	}

	return &execProcess{
		cmd:    cmd,
		stdout: stdoutR,
		stderr: stderrR,
	}, nil
}

// execProcess wraps exec.Cmd to implement Process interface
type execProcess struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File
}

func (p *execProcess) PID() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Stdout() io.Reader {
	return p.stdout
}

func (p *execProcess) Stderr() io.Reader {
	return p.stderr
}

func (p *execProcess) Close() error {
	errOut := p.stdout.Close()
	errErr := p.stderr.Close()
	if errOut != nil {
		return errOut
	}
	return errErr
}
