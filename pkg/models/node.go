// Package models defines canvas node models for the dashboard editor.
package models

import (
	"time"
)

// Rect is a placed node's layout rectangle in grid units.
type Rect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// FitsLayout reports whether the rectangle respects the widget's declared
// min/max footprint. Unset bounds (zero) are not enforced.
func (r Rect) FitsLayout(layout Layout) bool {
	if layout.MinW > 0 && r.W < layout.MinW {
		return false
	}

	if layout.MinH > 0 && r.H < layout.MinH {
		return false
	}

	if layout.MaxW > 0 && r.W > layout.MaxW {
		return false
	}

	if layout.MaxH > 0 && r.H > layout.MaxH {
		return false
	}

	return true
}

// CanvasNode represents a placed widget instance on a dashboard canvas.
// It references its WidgetDefinition by type id; the registry owns the
// definition, the node only looks it up.
type CanvasNode struct {
	ID         string         `json:"id"          validate:"required"`
	WidgetType string         `json:"widget_type" validate:"required"`
	Name       string         `json:"name"`
	Layout     Rect           `json:"layout"`
	Config     map[string]any `json:"config,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// NodePatch carries the mergeable fields of an update-node action. Nil fields
// are left untouched.
type NodePatch struct {
	Name   *string        `json:"name,omitempty"`
	Layout *Rect          `json:"layout,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}
