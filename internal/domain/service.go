package domain

import "github.com/charliek/devcli/internal/constants"

// ServiceDefinition is one configured long-running service.
// Definitions are immutable for the lifetime of the supervisor.
type ServiceDefinition struct {
	ID            string
	Label         string
	Category      string
	Dir           string
	Command       string
	Args          []string
	Env           map[string]string
	LogEnabled    bool
	RetentionDays int

	// Container names the container backing this service, if any.
	// Container-backed services are discovered through the container runtime.
	Container string
}

// IsContainerBacked reports whether the service runs inside a named container
func (d ServiceDefinition) IsContainerBacked() bool {
	return d.Container != ""
}

// DisplayName returns the label, falling back to the id
func (d ServiceDefinition) DisplayName() string {
	if d.Label != "" {
		return d.Label
	}
	return d.ID
}

// EffectiveRetention returns the retention window clamped to the valid range
func (d ServiceDefinition) EffectiveRetention() int {
	return ClampRetention(d.RetentionDays)
}

// ClampRetention applies the default and bounds to a retention-days value
func ClampRetention(days int) int {
	if days <= 0 {
		return constants.DefaultRetentionDays
	}
	if days < constants.MinRetentionDays {
		return constants.MinRetentionDays
	}
	if days > constants.MaxRetentionDays {
		return constants.MaxRetentionDays
	}
	return days
}
