package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charliek/devcli/internal/constants"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Settings are process-wide runtime knobs. They never live in dev-cli.yaml;
// defaults are overridden by DEV_CLI_* environment variables.
type Settings struct {
	LogRoot          string        `koanf:"log_root"`
	Config           string        `koanf:"config"`
	ContainerRuntime string        `koanf:"container_runtime"`
	Debug            bool          `koanf:"debug"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

func defaultSettings() Settings {
	return Settings{
		ContainerRuntime: constants.DefaultContainerRuntime,
		ShutdownTimeout:  constants.DefaultShutdownTimeout,
	}
}

// LoadSettings layers the environment over built-in defaults:
//  1. Defaults
//  2. Environment variables (DEV_CLI_LOG_ROOT -> log_root)
func LoadSettings() (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultSettings(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading default settings: %w", err)
	}

	if err := k.Load(env.Provider(constants.EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("loading environment settings: %w", err)
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, fmt.Errorf("unmarshaling settings: %w", err)
	}
	if s.ShutdownTimeout <= 0 {
		s.ShutdownTimeout = constants.DefaultShutdownTimeout
	}
	if s.ContainerRuntime == "" {
		s.ContainerRuntime = constants.DefaultContainerRuntime
	}
	return s, nil
}

// envTransformFunc maps DEV_CLI_SHUTDOWN_TIMEOUT to shutdown_timeout
func envTransformFunc(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, constants.EnvPrefix))
}

// ResolveLogRoot returns the log root override, else <workspaceRoot>/logs
func (s *Settings) ResolveLogRoot(workspaceRoot string) string {
	if s.LogRoot != "" {
		return s.LogRoot
	}
	return resolvePath(constants.DefaultLogDir, workspaceRoot)
}
