// Package canvas provides the in-memory editor store for a dashboard's node graph.
package canvas

import (
	"errors"
	"fmt"
)

// Standard store error types.
var (
	// ErrDuplicateNodeID indicates a node with the same id is already placed.
	ErrDuplicateNodeID = errors.New("node id already exists")

	// ErrNodeNotFound indicates no node exists for the given id.
	ErrNodeNotFound = errors.New("node not found")

	// ErrUnknownWidgetType indicates the node references a widget type the
	// registry does not expose.
	ErrUnknownWidgetType = errors.New("unknown widget type")

	// ErrLayoutOutOfBounds indicates a layout rectangle violates the widget's
	// declared min/max footprint.
	ErrLayoutOutOfBounds = errors.New("layout violates widget size bounds")
)

// NodeError wraps node-level store failures with the node id.
type NodeError struct {
	Op     string
	NodeID string
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s failed for node %q: %v", e.Op, e.NodeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func (e *NodeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsNodeNotFound checks if an error indicates a missing node.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsDuplicateNodeID checks if an error indicates a node id collision.
func IsDuplicateNodeID(err error) bool {
	return errors.Is(err, ErrDuplicateNodeID)
}
