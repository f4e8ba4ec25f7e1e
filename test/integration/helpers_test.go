//go:build !windows

package integration

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// buildBinary builds the dev binary and returns its path
func buildBinary(t *testing.T) string {
	t.Helper()

	// Get project root (two directories up from test/integration)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	projectRoot := filepath.Join(wd, "..", "..")

	binary := filepath.Join(t.TempDir(), "dev")

	cmd := exec.Command("go", "build", "-o", binary, "./cmd/dev")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, output)
	}

	return binary
}

// workspace writes dev-cli.yaml into a fresh directory and returns the dir
func workspace(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	requireNoError(t, os.WriteFile(filepath.Join(dir, "dev-cli.yaml"), []byte(yaml), 0o644), "writing config")
	return dir
}

// result is a finished dev invocation
type result struct {
	code   int
	stdout string
	stderr string
}

// runDev runs the binary in dir and waits for it to exit
func runDev(t *testing.T, binary, dir string, timeout time.Duration, args ...string) result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "DEV_CLI_LOG_ROOT="+filepath.Join(dir, "logs"), "NO_COLOR=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		t.Fatalf("dev %v timed out\nstdout:\n%s\nstderr:\n%s", args, stdout.String(), stderr.String())
	}
	return result{code: exitCodeOf(t, err), stdout: stdout.String(), stderr: stderr.String()}
}

// startDev starts the binary in dir without waiting
func startDev(t *testing.T, binary, dir string, args ...string) (*exec.Cmd, *bytes.Buffer) {
	t.Helper()

	cmd := exec.Command(binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "DEV_CLI_LOG_ROOT="+filepath.Join(dir, "logs"), "NO_COLOR=1")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start dev: %v", err)
	}
	return cmd, &out
}

func exitCodeOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	t.Fatalf("running dev: %v", err)
	return -1
}

// killDev forcefully kills the dev process
func killDev(cmd *exec.Cmd) {
	if cmd != nil && cmd.Process != nil && cmd.ProcessState == nil {
		cmd.Process.Kill()
		cmd.Wait()
	}
}

// waitForFile waits until path exists and contains substr
func waitForFile(t *testing.T, path, substr string, timeout time.Duration) string {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && bytes.Contains(data, []byte(substr)) {
			return string(data)
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("%s did not contain %q within %v", path, substr, timeout)
	return ""
}

// requireNoError fails the test if err is not nil
func requireNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", msg, err)
	}
}

// skipShort skips the test if -short flag is provided
func skipShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
}

// processGone waits until pid no longer exists
func processGone(pid int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := syscall.Kill(pid, 0); errors.Is(err, syscall.ESRCH) {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return false
}
