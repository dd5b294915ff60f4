package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "timeouts.stop_seconds")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Daemon.Name == "" || strings.ContainsAny(c.Daemon.Name, "/\\") {
		errs = append(errs, ValidationError{
			Field:   "daemon.name",
			Value:   c.Daemon.Name,
			Message: "must be a non-empty name without path separators",
		})
	}
	if c.Daemon.Command == "" {
		errs = append(errs, ValidationError{
			Field:   "daemon.command",
			Value:   c.Daemon.Command,
			Message: "must not be empty",
		})
	}

	positive := []struct {
		field string
		value int
	}{
		{"timeouts.stop_seconds", c.Timeouts.StopSeconds},
		{"timeouts.kill_seconds", c.Timeouts.KillSeconds},
		{"timeouts.poll_interval_ms", c.Timeouts.PollIntervalMs},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, ValidationError{Field: p.field, Value: p.value, Message: "must be positive"})
		}
	}

	nonNegative := []struct {
		field string
		value int
	}{
		{"timeouts.lock_wait_seconds", c.Timeouts.LockWaitSeconds},
		{"timeouts.settle_ms", c.Timeouts.SettleMs},
	}
	for _, n := range nonNegative {
		if n.value < 0 {
			errs = append(errs, ValidationError{Field: n.field, Value: n.value, Message: "must not be negative"})
		}
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errs
}
