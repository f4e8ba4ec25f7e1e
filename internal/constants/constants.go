// Package constants provides shared configuration values used across the dev CLI.
package constants

import "time"

// Configuration file defaults
const (
	// DefaultConfigFile is the workspace configuration filename searched upward from cwd
	DefaultConfigFile = "dev-cli.yaml"

	// ConfigPathEnvVar overrides the workspace configuration path
	ConfigPathEnvVar = "DEV_CLI_CONFIG"

	// LogRootEnvVar overrides the log root directory
	LogRootEnvVar = "DEV_CLI_LOG_ROOT"

	// EnvPrefix is the prefix for all runtime settings read from the environment
	EnvPrefix = "DEV_CLI_"

	// DefaultLogDir is the log root relative to the workspace root
	DefaultLogDir = "logs"

	// DefaultContainerRuntime is the CLI used to inspect and stop containers
	DefaultContainerRuntime = "docker"
)

// Log persistence
const (
	// ServicesLogDir is the per-service log directory under the log root
	ServicesLogDir = "services"

	// LegacyLogFile is the consolidated log file shared across all services
	LegacyLogFile = "dev-cli-services.txt"

	// DiagnosticsLogFile receives the supervisor's own diagnostics while the
	// interactive shell owns the terminal
	DiagnosticsLogFile = "dev-cli-diagnostics.txt"

	// DailyFileExt is the extension of per-service daily log files
	DailyFileExt = ".txt"

	// DateLayout is the UTC date embedded in daily file names
	DateLayout = "2006-01-02"

	// TimestampLayout is the ISO-8601 layout used for persisted timestamps
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

	// DefaultRetentionDays is used when a service does not configure retention
	DefaultRetentionDays = 7

	// MinRetentionDays and MaxRetentionDays bound retention_days
	MinRetentionDays = 1
	MaxRetentionDays = 365

	// BlankLinePlaceholder replaces lines that are empty after sanitizing
	BlankLinePlaceholder = "<blank>"
)

// Timeout and duration defaults
const (
	// DefaultShutdownTimeout is how long shutdown waits before force-killing
	DefaultShutdownTimeout = 10 * time.Second

	// OutputDrainTimeout bounds how long readers may drain after a process exits
	OutputDrainTimeout = 5 * time.Second

	// DiscoveryTimeout bounds process table and container runtime queries
	DiscoveryTimeout = 5 * time.Second
)

// Buffer sizes
const (
	// DefaultLogBufferSize is the size of the rolling in-memory log buffer
	DefaultLogBufferSize = 1000

	// DefaultSubscriptionBuffer is the default size for subscription buffers
	DefaultSubscriptionBuffer = 1000

	// DefaultEventBuffer is the buffer size for controller event subscribers
	DefaultEventBuffer = 100

	// ScannerBufferSize is the initial buffer size for log line scanning
	ScannerBufferSize = 64 * 1024 // 64KB

	// ScannerMaxBufferSize is the maximum buffer size for log line scanning
	ScannerMaxBufferSize = 1024 * 1024 // 1MB
)

// Display
const (
	// PanePageSize is the number of services shown side by side in split view
	PanePageSize = 2
)

// Target names with special meaning; service ids may not use them
const (
	TargetAll   = "all"
	TargetOff   = "off"
	TargetClear = "clear"
)

// ReservedIDs are names that can never be used as service ids or group names
var ReservedIDs = []string{TargetOff, TargetClear}

// DefaultErrorKeywords feed the error predicate when the workspace sets none
var DefaultErrorKeywords = []string{"error", "fatal", "panic", "exception", "traceback"}

// WarnKeywords mark stdout lines as warn level
var WarnKeywords = []string{"warn", "warning", "retry", "deprecated", "slow", "throttle"}

// ColorForceEnv is set on every child so tools emit ANSI colors into pipes
var ColorForceEnv = map[string]string{
	"FORCE_COLOR":    "1",
	"CLICOLOR_FORCE": "1",
	"COLORTERM":      "truecolor",
}

// ANSI color codes for plain terminal output
var (
	// ServiceColors are the colors used for service names in terminal output
	ServiceColors = []string{
		"\033[36m", // cyan
		"\033[33m", // yellow
		"\033[32m", // green
		"\033[35m", // magenta
		"\033[34m", // blue
		"\033[31m", // red
	}

	// ColorReset resets the terminal color
	ColorReset = "\033[0m"

	// ColorBrightRed is used for stderr output
	ColorBrightRed = "\033[91m"
)
