package domain

import "errors"

// Domain errors
var (
	ErrServiceNotFound       = errors.New("unknown service")
	ErrServiceAlreadyRunning = errors.New("already running")
	ErrServiceNotRunning     = errors.New("is not running")
	ErrWorkingDirMissing     = errors.New("working directory not found")
	ErrUnknownCommand        = errors.New("unknown command")
	ErrConfigNotFound        = errors.New("config file not found")
	ErrInvalidConfig         = errors.New("invalid configuration")
)

// Process exit codes for one-shot invocations
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitTimeout   = 124
	ExitInterrupt = 130
)

// ExitCode maps an error from a one-shot operation to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	return ExitFailure
}
