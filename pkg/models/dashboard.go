package models

import "time"

// Dashboard is the persisted form of a canvas: the placed widget instances,
// their selection state and bookkeeping timestamps. The editor store loads a
// dashboard into memory and snapshots back into one on save.
type Dashboard struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Nodes       []*CanvasNode  `json:"nodes"`
	Selection   []string       `json:"selection,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Owner       string         `json:"owner"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
