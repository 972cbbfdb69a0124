// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrDashboardNotFound indicates a dashboard was not found by the given identifier.
	ErrDashboardNotFound = errors.New("dashboard not found")

	// ErrConfigNotFound indicates no configuration is stored for the given node.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrVersionNotFound indicates the requested configuration version is not in history.
	ErrVersionNotFound = errors.New("configuration version not found")
)

// DashboardError wraps dashboard storage errors with operation context.
type DashboardError struct {
	Op          string // Operation being performed (e.g. "GetByID", "Save", "Delete")
	DashboardID string
	Err         error
	Message     string
}

func (e *DashboardError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for dashboard %s: %s (%v)", e.Op, e.DashboardID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for dashboard %s: %v", e.Op, e.DashboardID, e.Err)
}

func (e *DashboardError) Unwrap() error {
	return e.Err
}

func (e *DashboardError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewDashboardError creates a dashboard error with context.
func NewDashboardError(op, dashboardID string, err error) *DashboardError {
	return &DashboardError{Op: op, DashboardID: dashboardID, Err: err}
}

// ConfigurationError wraps configuration storage errors with operation context.
type ConfigurationError struct {
	Op      string
	NodeID  string
	Version string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("%s operation failed for configuration %s@%s: %v", e.Op, e.NodeID, e.Version, e.Err)
	}

	return fmt.Sprintf("%s operation failed for configuration %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewConfigurationError creates a configuration error with context.
func NewConfigurationError(op, nodeID, version string, err error) *ConfigurationError {
	return &ConfigurationError{Op: op, NodeID: nodeID, Version: version, Err: err}
}

// IsDashboardNotFound checks if an error indicates a missing dashboard.
func IsDashboardNotFound(err error) bool {
	return errors.Is(err, ErrDashboardNotFound)
}

// IsConfigNotFound checks if an error indicates a missing configuration.
func IsConfigNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}
