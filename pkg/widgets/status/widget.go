// Package status provides the built-in device status indicator widget.
package status

import (
	"github.com/panelkit/panelkit/pkg/models"
)

// WidgetType is the registry type id of the status widget.
const WidgetType = "device-status"

// Interaction events the status widget can emit and receive.
const (
	EventClick      = "click"
	EventFlash      = "flash"
	EventVisibility = "visibility-toggle"
	EventNavigate   = "navigate"
)

// Definition returns the status indicator descriptor. The widget is the main
// entry point of the cross-widget interaction system: a click on it can drive
// navigation, color flash or visibility chains on other nodes.
func Definition() *models.WidgetDefinition {
	return &models.WidgetDefinition{
		Type:        WidgetType,
		Name:        "Device Status",
		Description: "Online/offline indicator with interaction chains",
		Version:     "2.1.0",
		Category:    models.CategoryControl,
		Keywords:    []string{"online", "offline", "indicator", "interaction"},
		Capabilities: models.Capabilities{
			DataDriven:   true,
			Interactive:  true,
			Configurable: true,
		},
		DefaultConfig: map[string]any{
			"device_id":     "",
			"online_color":  "#52c41a",
			"offline_color": "#f5222d",
		},
		DefaultLayout: models.Layout{W: 2, H: 2, MinW: 1, MinH: 1, MaxW: 4, MaxH: 4},
		Schema: &models.JSONSchema{
			Type:  "object",
			Title: "Device Status Configuration",
			Properties: map[string]*models.Property{
				"device_id": {
					Type:        "string",
					Description: "Device whose connectivity is shown",
				},
				"online_color": {
					Type:    "string",
					Pattern: "^#[0-9a-fA-F]{6}$",
					Default: "#52c41a",
				},
				"offline_color": {
					Type:    "string",
					Pattern: "^#[0-9a-fA-F]{6}$",
					Default: "#f5222d",
				},
			},
			Required: []string{"device_id"},
		},
		DataSources: []models.DataSource{
			{Name: "connectivity", Kind: "attribute", Description: "Device online flag"},
		},
		SupportedEvents:     []string{EventClick, EventFlash, EventVisibility, EventNavigate},
		WatchableProperties: []string{"online", "last_seen"},
	}
}
