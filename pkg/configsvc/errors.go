// Package configsvc validates, versions and persists per-node widget
// configuration.
package configsvc

import (
	"errors"
	"fmt"
	"strings"
)

// Standard configuration service error types.
var (
	// ErrConfigNotFound indicates no configuration is stored for the node.
	ErrConfigNotFound = errors.New("configuration not found")

	// ErrUnknownWidgetType indicates the owning widget type is not in the catalog.
	ErrUnknownWidgetType = errors.New("unknown widget type")

	// ErrMigrationGap indicates no migration path connects the stored version
	// to the current one.
	ErrMigrationGap = errors.New("migration chain has a gap")

	// ErrInvalidVersion indicates a version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// ErrDuplicateMigration indicates a migration step for the same version
	// pair was already registered.
	ErrDuplicateMigration = errors.New("migration step already registered")
)

// FieldViolation names one schema violation inside a configuration payload,
// detailed enough for the editor to highlight the offending form field.
type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// SchemaValidationError reports a payload that failed the widget's declared
// schema.
type SchemaValidationError struct {
	NodeID     string
	WidgetType string
	Violations []FieldViolation
}

func (e *SchemaValidationError) Error() string {
	details := make([]string, 0, len(e.Violations))

	for _, v := range e.Violations {
		details = append(details, fmt.Sprintf("%s: %s", v.Field, v.Description))
	}

	return fmt.Sprintf("configuration for node %q failed %s schema: %s",
		e.NodeID, e.WidgetType, strings.Join(details, "; "))
}

// IsSchemaValidationError checks if an error is a schema validation failure.
func IsSchemaValidationError(err error) bool {
	var target *SchemaValidationError

	return errors.As(err, &target)
}

// SaveFailure names one configuration that could not be persisted during
// SaveAll.
type SaveFailure struct {
	NodeID string
	Err    error
}

func (f SaveFailure) Error() string {
	return fmt.Sprintf("failed to save configuration for node %q: %v", f.NodeID, f.Err)
}
