package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/tui"
)

// exitError carries a specific exit code. A nil err means the command has
// already reported everything it needs to.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// withCode returns nil for a zero code so RunE reports success
func withCode(code int, err error) error {
	if code == domain.ExitOK && err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode reports err on stderr and maps it to a process exit code
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return domain.ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}

	if errors.Is(err, tui.ErrInterrupted) || errors.Is(err, context.Canceled) {
		return domain.ExitInterrupt
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return domain.ExitCode(err)
}
