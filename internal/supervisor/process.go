package supervisor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/logs"
)

// capture reads both output streams of m until EOF, then waits for exit.
// Once the process is gone the readers get drainTimeout to finish; a
// grandchild holding the pipes open past that is cut off.
func (c *Controller) capture(m *Managed, def domain.ServiceDefinition) {
	var outputWg sync.WaitGroup
	outputWg.Add(2)
	go func() {
		defer outputWg.Done()
		c.readOutput(m.proc.Stdout(), def, domain.StreamStdout)
	}()
	go func() {
		defer outputWg.Done()
		c.readOutput(m.proc.Stderr(), def, domain.StreamStderr)
	}()

	c.monitors.Add(1)
	go func() {
		defer c.monitors.Done()
		c.monitor(m, &outputWg)
	}()
}

// monitor watches for process exit
func (c *Controller) monitor(m *Managed, outputWg *sync.WaitGroup) {
	err := m.proc.Wait()

	outputDone := make(chan struct{})
	go func() {
		outputWg.Wait()
		close(outputDone)
	}()

	select {
	case <-outputDone:
		// Output readers finished normally
	case <-time.After(c.config.DrainTimeout):
		c.logger.Warn("output capture timed out, some logs may be missing", "service", m.id, "pid", m.pid)
	}
	_ = m.proc.Close()

	code := exitCode(err)
	m.exitCode = code

	// A failed RemoveIf means stop or a newer start already replaced us
	removed := c.registry.RemoveIf(m.id, m)
	m.requested = !removed
	close(m.done)

	c.emit(Event{
		Type:      EventExited,
		Service:   m.id,
		PID:       m.pid,
		ExitCode:  code,
		Requested: !removed,
		Message:   describeExit(m.id, m.pid, code),
		Timestamp: c.now(),
	})
}

// readOutput turns each line of r into a sanitized log entry
func (c *Controller) readOutput(r io.Reader, def domain.ServiceDefinition, stream domain.Stream) {
	if r == nil {
		return
	}

	scanner := bufio.NewScanner(r)
	// Increase buffer size for long lines
	scanner.Buffer(make([]byte, constants.ScannerBufferSize), constants.ScannerMaxBufferSize)

	for scanner.Scan() {
		c.logs.Dispatch(domain.LogEntry{
			Timestamp:     c.now(),
			Service:       def.ID,
			Stream:        stream,
			Text:          logs.Sanitize(scanner.Text()),
			RetentionDays: def.EffectiveRetention(),
		}, def.LogEnabled)
	}

	// Closing the pipe after a drain timeout surfaces as os.ErrClosed
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		c.logger.Debug("output reader error", "service", def.ID, "stream", stream, "err", err)
	}
}

// exitCode extracts the exit status from a Wait error.
// For signal termination, we use negative signal number (e.g., -15 for SIGTERM)
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return -int(status.Signal())
			}
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}
	return 1 // Generic error
}

// describeExit renders the status message for an exit code
func describeExit(id string, pid, code int) string {
	switch {
	case code == 0:
		return fmt.Sprintf("%s (pid %d) exited cleanly", id, pid)
	case code < 0:
		sig := syscall.Signal(-code)
		return fmt.Sprintf("%s (pid %d) terminated by signal %d (%s)", id, pid, -code, sig)
	default:
		return fmt.Sprintf("%s (pid %d) exited with code %d", id, pid, code)
	}
}
