package supervisor

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charliek/devcli/internal/constants"
)

// CLIRuntime drives a docker-compatible container CLI
type CLIRuntime struct {
	Binary string
}

// NewCLIRuntime creates a runtime for binary, defaulting to docker
func NewCLIRuntime(binary string) *CLIRuntime {
	if binary == "" {
		binary = constants.DefaultContainerRuntime
	}
	return &CLIRuntime{Binary: binary}
}

// Inspect reports whether the named container is running and its host pid
func (r *CLIRuntime) Inspect(ctx context.Context, name string) (ContainerState, error) {
	out, err := exec.CommandContext(ctx, r.Binary, "inspect", "--format", "{{.State.Running}} {{.State.Pid}}", name).Output()
	if err != nil {
		return ContainerState{}, fmt.Errorf("%s inspect %s: %w", r.Binary, name, err)
	}
	return parseInspect(string(out))
}

// Stop stops the named container
func (r *CLIRuntime) Stop(ctx context.Context, name string) error {
	out, err := exec.CommandContext(ctx, r.Binary, "stop", name).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s stop %s: %w: %s", r.Binary, name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func parseInspect(out string) (ContainerState, error) {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return ContainerState{}, fmt.Errorf("unexpected inspect output %q", strings.TrimSpace(out))
	}
	running, err := strconv.ParseBool(fields[0])
	if err != nil {
		return ContainerState{}, fmt.Errorf("parsing running flag: %w", err)
	}
	pid, err := strconv.Atoi(fields[1])
	if err != nil {
		return ContainerState{}, fmt.Errorf("parsing pid: %w", err)
	}
	return ContainerState{Running: running, PID: pid}, nil
}
