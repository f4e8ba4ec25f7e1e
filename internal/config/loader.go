package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/joho/godotenv"
)

// LoadEnvFile reads a .env file and returns the variables as a map
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("env file not found: %s", path)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	return env, nil
}

// MergeEnv merges multiple environment maps in order, with later maps taking precedence
func MergeEnv(envMaps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, env := range envMaps {
		for k, v := range env {
			result[k] = v
		}
	}
	return result
}

// LoadProcessEnv loads and merges environment overrides for a service
// Priority (lowest to highest):
// 1. Workspace env_file
// 2. Service env_file
// 3. Service env variables
func LoadProcessEnv(globalEnvFile, processEnvFile string, processEnv map[string]string, configDir string) (map[string]string, error) {
	var globalEnv, procFileEnv map[string]string
	var err error

	// Load global env file
	if globalEnvFile != "" {
		envPath := resolvePath(globalEnvFile, configDir)
		globalEnv, err = LoadEnvFile(envPath)
		if err != nil {
			return nil, fmt.Errorf("loading workspace env file: %w", err)
		}
	}

	// Load process env file
	if processEnvFile != "" {
		envPath := resolvePath(processEnvFile, configDir)
		procFileEnv, err = LoadEnvFile(envPath)
		if err != nil {
			return nil, fmt.Errorf("loading service env file: %w", err)
		}
	}

	// Merge in order of priority
	return MergeEnv(globalEnv, procFileEnv, processEnv), nil
}

// resolvePath resolves a potentially relative path against a base directory
func resolvePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Discover locates the workspace config file. An explicit path or the
// DEV_CLI_CONFIG override must exist; otherwise the directories from cwd up
// to the filesystem root are searched. An empty path means nothing was found.
func Discover(cwd, explicit string) (string, error) {
	if explicit == "" {
		explicit = os.Getenv(constants.ConfigPathEnvVar)
	}
	if explicit != "" {
		path := resolvePath(explicit, cwd)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return path, nil
	}

	dir, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, constants.DefaultConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// CheckFilePermissions checks if a file has secure permissions.
// On Unix-like systems, it verifies the file is not world-writable.
// Returns an error if the file has insecure permissions.
func CheckFilePermissions(path string) error {
	// Skip permission check on Windows
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("checking file permissions: %w", err)
	}

	mode := info.Mode()

	// Check if file is world-writable (others have write permission)
	// Permission bits: rwxrwxrwx (owner, group, others)
	// World-writable = others have write (0002)
	if mode.Perm()&0002 != 0 {
		return fmt.Errorf("config file %s has insecure permissions: world-writable files can be modified by any user. Please run: chmod o-w %s", path, path)
	}

	return nil
}
