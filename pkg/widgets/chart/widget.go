// Package chart provides the built-in time-series chart widget definition.
package chart

import (
	"github.com/panelkit/panelkit/pkg/models"
)

// WidgetType is the registry type id of the chart widget.
const WidgetType = "chart"

// Definition returns the chart widget descriptor.
func Definition() *models.WidgetDefinition {
	return &models.WidgetDefinition{
		Type:        WidgetType,
		Name:        "Time-Series Chart",
		Description: "Line or bar chart over device telemetry series",
		Version:     "2.1.0",
		Category:    models.CategoryChart,
		Keywords:    []string{"line", "bar", "telemetry", "history"},
		Capabilities: models.Capabilities{
			DataDriven:   true,
			Configurable: true,
		},
		DefaultConfig: map[string]any{
			"chart_type":    "line",
			"time_range":    "1h",
			"aggregation":   "avg",
			"show_legend":   true,
			"smooth_curves": false,
		},
		DefaultLayout: models.Layout{W: 6, H: 4, MinW: 3, MinH: 2, MaxW: 12, MaxH: 8},
		Schema:        GetSchema(),
		DataSources: []models.DataSource{
			{Name: "series", Kind: "telemetry", Description: "Telemetry series to plot"},
		},
	}
}

// GetSchema returns the JSON schema for the chart widget configuration.
func GetSchema() *models.JSONSchema {
	return &models.JSONSchema{
		Type:  "object",
		Title: "Time-Series Chart Configuration",
		Properties: map[string]*models.Property{
			"chart_type": {
				Type:        "string",
				Description: "Rendering style for the series",
				Enum:        []any{"line", "bar", "area"},
				Default:     "line",
			},
			"time_range": {
				Type:        "string",
				Description: "Window of history to plot",
				Enum:        []any{"15m", "1h", "6h", "24h", "7d"},
				Default:     "1h",
			},
			"aggregation": {
				Type:        "string",
				Description: "Downsampling function applied per bucket",
				Enum:        []any{"avg", "min", "max", "sum", "last"},
				Default:     "avg",
			},
			"show_legend": {
				Type:    "boolean",
				Default: true,
			},
			"smooth_curves": {
				Type:    "boolean",
				Default: false,
			},
		},
		Required: []string{"chart_type", "time_range"},
	}
}
