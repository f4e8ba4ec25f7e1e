package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
)

var serviceIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the workspace for errors. Extra problems found while
// loading are reported alongside. Nothing is applied when any check fails.
func Validate(ws *Workspace, extra ...string) error {
	errs := append([]string(nil), extra...)

	seen := make(map[string]bool, len(ws.ServiceOrder))
	for _, id := range ws.ServiceOrder {
		if seen[id] {
			errs = append(errs, fmt.Sprintf("services.%s: duplicate service id", id))
			continue
		}
		seen[id] = true

		if err := ValidateServiceID(id); err != nil {
			errs = append(errs, fmt.Sprintf("services.%s", err))
			continue
		}

		def := ws.Services[id]
		if def.Command == "" && !def.IsContainerBacked() {
			errs = append(errs, fmt.Sprintf("services.%s.command: command is required", id))
		}
		if def.RetentionDays < constants.MinRetentionDays || def.RetentionDays > constants.MaxRetentionDays {
			errs = append(errs, fmt.Sprintf("services.%s.retention_days: must be between %d and %d, got %d",
				id, constants.MinRetentionDays, constants.MaxRetentionDays, def.RetentionDays))
		}
		if info, err := os.Stat(def.Dir); err != nil {
			errs = append(errs, fmt.Sprintf("services.%s.cwd: %v: %s", id, domain.ErrWorkingDirMissing, def.Dir))
		} else if !info.IsDir() {
			errs = append(errs, fmt.Sprintf("services.%s.cwd: not a directory: %s", id, def.Dir))
		}
	}

	for _, name := range ws.GroupOrder {
		if slices.Contains(constants.ReservedIDs, name) {
			errs = append(errs, fmt.Sprintf("groups.%s: name is reserved", name))
		}
		if _, clash := ws.Services[name]; clash {
			errs = append(errs, fmt.Sprintf("groups.%s: name collides with a service id", name))
		}
		for _, member := range ws.Groups[name] {
			if _, ok := ws.Services[member]; !ok {
				errs = append(errs, fmt.Sprintf("groups.%s: unknown service %q", name, member))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// ValidateServiceID checks if a service id is valid
func ValidateServiceID(id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "service id cannot be empty"}
	}
	if id == constants.TargetAll || slices.Contains(constants.ReservedIDs, id) {
		return &ValidationError{Field: id, Message: "service id is reserved"}
	}
	if !serviceIDPattern.MatchString(id) {
		return &ValidationError{Field: id, Message: "service id must match " + serviceIDPattern.String()}
	}
	return nil
}
