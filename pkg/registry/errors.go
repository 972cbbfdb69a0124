// Package registry provides the widget definition catalog and its capability indices.
package registry

import (
	"errors"
	"fmt"
)

// Standard registry error types.
var (
	// ErrDuplicateID indicates a definition with the same type id is already registered.
	ErrDuplicateID = errors.New("widget type already registered")

	// ErrMalformedDefinition indicates a definition is missing required metadata.
	ErrMalformedDefinition = errors.New("malformed widget definition")

	// ErrDefinitionNotFound indicates no definition exists for the given type id.
	ErrDefinitionNotFound = errors.New("widget definition not found")
)

// RegistrationError wraps registration failures with the offending type id.
type RegistrationError struct {
	Op         string // Operation being performed (e.g. "Register", "AutoRegister")
	WidgetType string // Widget type id if known
	Module     string // Module path for discovery failures
	Err        error  // Underlying error
}

func (e *RegistrationError) Error() string {
	target := e.WidgetType
	if target == "" {
		target = e.Module
	}

	return fmt.Sprintf("%s failed for widget %q: %v", e.Op, target, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

func (e *RegistrationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsDuplicateID checks if an error indicates a type id collision.
func IsDuplicateID(err error) bool {
	return errors.Is(err, ErrDuplicateID)
}

// IsMalformedDefinition checks if an error indicates missing required metadata.
func IsMalformedDefinition(err error) bool {
	return errors.Is(err, ErrMalformedDefinition)
}
