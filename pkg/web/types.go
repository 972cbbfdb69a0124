// Package web provides HTTP request and response types for the dashboard API.
package web

import "github.com/panelkit/panelkit/pkg/models"

// CreateDashboardRequest represents the request body for creating a dashboard.
type CreateDashboardRequest struct {
	Name        string         `json:"name"               validate:"required,min=3"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Owner       string         `json:"owner"              validate:"required"`
}

// UpdateDashboardRequest represents the request body for updating a dashboard.
// All fields are optional to support partial updates.
type UpdateDashboardRequest struct {
	Name        *string        `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ActionRequest represents one user action dispatched through the data-flow
// manager.
type ActionRequest struct {
	Type     string             `json:"type"      validate:"required,oneof=add-node update-node remove-node update-configuration select-nodes"`
	TargetID string             `json:"target_id,omitempty"`
	Node     *models.CanvasNode `json:"node,omitempty"`
	Patch    *models.NodePatch  `json:"patch,omitempty"`
	Config   map[string]any     `json:"config,omitempty"`
	NodeIDs  []string           `json:"node_ids,omitempty"`
}

// ActionResponse reports the terminal state of one dispatched action.
type ActionResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// SetConfigurationRequest represents the request body for replacing a node's
// configuration.
type SetConfigurationRequest struct {
	Config map[string]any `json:"config" validate:"required"`
}

// WidgetSummary is the catalog listing entry for one widget definition.
type WidgetSummary struct {
	Type         string              `json:"type"`
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	Version      string              `json:"version"`
	Category     string              `json:"category"`
	Capabilities []models.Capability `json:"capabilities"`
}

func widgetSummary(definition *models.WidgetDefinition) WidgetSummary {
	return WidgetSummary{
		Type:         definition.Type,
		Name:         definition.Name,
		Description:  definition.Description,
		Version:      definition.Version,
		Category:     definition.Category,
		Capabilities: definition.Capabilities.List(),
	}
}
