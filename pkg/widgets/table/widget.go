// Package table provides the built-in device table widget definition.
package table

import (
	"github.com/panelkit/panelkit/pkg/models"
)

// WidgetType is the registry type id of the device table widget.
const WidgetType = "device-table"

// Definition returns the device table descriptor.
func Definition() *models.WidgetDefinition {
	minimum := float64(1)
	maximum := float64(200)

	return &models.WidgetDefinition{
		Type:        WidgetType,
		Name:        "Device Table",
		Description: "Paginated table of devices with attribute columns",
		Version:     "2.2.0",
		Category:    models.CategoryData,
		Keywords:    []string{"devices", "list", "grid"},
		Capabilities: models.Capabilities{
			DataDriven:   true,
			Interactive:  true,
			Configurable: true,
		},
		DefaultConfig: map[string]any{
			"page_size": 20,
			"columns":   []any{"name", "status", "last_seen"},
		},
		DefaultLayout: models.Layout{W: 8, H: 5, MinW: 4, MinH: 3, MaxW: 12, MaxH: 10},
		Schema: &models.JSONSchema{
			Type:  "object",
			Title: "Device Table Configuration",
			Properties: map[string]*models.Property{
				"page_size": {
					Type:        "number",
					Description: "Rows per page",
					Minimum:     &minimum,
					Maximum:     &maximum,
					Default:     20,
				},
				"columns": {
					Type:        "array",
					Description: "Device attributes shown as columns",
					Items:       &models.Property{Type: "string"},
				},
				"filter": {
					Type:        "string",
					Description: "Attribute filter expression",
				},
			},
			Required: []string{"columns"},
		},
		DataSources: []models.DataSource{
			{Name: "devices", Kind: "attribute", Description: "Device attribute listing"},
		},
		SupportedEvents:     []string{"row-click"},
		WatchableProperties: []string{"selected_device"},
		Permission:          "device:read",
	}
}
