// Package gauge provides the built-in gauge widget definition.
package gauge

import (
	"github.com/panelkit/panelkit/pkg/models"
)

// WidgetType is the registry type id of the gauge widget.
const WidgetType = "gauge"

// Definition returns the gauge widget descriptor.
func Definition() *models.WidgetDefinition {
	minimum := float64(0)

	return &models.WidgetDefinition{
		Type:        WidgetType,
		Name:        "Gauge",
		Description: "Radial gauge for a single numeric metric",
		Version:     "2.0.1",
		Category:    models.CategoryChart,
		Keywords:    []string{"dial", "meter", "metric"},
		Capabilities: models.Capabilities{
			DataDriven:   true,
			Configurable: true,
		},
		DefaultConfig: map[string]any{
			"min":  0,
			"max":  100,
			"unit": "",
		},
		DefaultLayout: models.Layout{W: 3, H: 3, MinW: 2, MinH: 2, MaxW: 6, MaxH: 6},
		Schema: &models.JSONSchema{
			Type:  "object",
			Title: "Gauge Configuration",
			Properties: map[string]*models.Property{
				"min": {
					Type:        "number",
					Description: "Lower bound of the gauge scale",
					Default:     0,
				},
				"max": {
					Type:        "number",
					Description: "Upper bound of the gauge scale",
					Default:     100,
				},
				"unit": {
					Type:        "string",
					Description: "Unit label shown under the value",
				},
				"thresholds": {
					Type:        "array",
					Description: "Color band boundaries in ascending order",
					Items:       &models.Property{Type: "number", Minimum: &minimum},
				},
			},
			Required: []string{"min", "max"},
		},
		DataSources: []models.DataSource{
			{Name: "value", Kind: "telemetry", Description: "Metric feeding the gauge"},
		},
	}
}
