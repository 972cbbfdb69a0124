// Package dataflow provides the single mutation funnel for the editor store.
package dataflow

import (
	"errors"
	"fmt"
)

// Standard dispatch error types.
var (
	// ErrInvalidAction indicates an action failed validation before reaching the store.
	ErrInvalidAction = errors.New("invalid user action")

	// ErrUnknownActionType indicates an action type the manager does not dispatch.
	ErrUnknownActionType = errors.New("unknown action type")
)

// SideEffectError reports a side-effect handler that failed or panicked. It
// is delivered to the error observers and never rolls back the primary
// mutation.
type SideEffectError struct {
	Handler string
	Err     error
}

func (e *SideEffectError) Error() string {
	return fmt.Sprintf("side effect %q failed: %v", e.Handler, e.Err)
}

func (e *SideEffectError) Unwrap() error {
	return e.Err
}

// IsInvalidAction checks if an error indicates action validation failure.
func IsInvalidAction(err error) bool {
	return errors.Is(err, ErrInvalidAction) || errors.Is(err, ErrUnknownActionType)
}
