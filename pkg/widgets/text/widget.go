// Package text provides the built-in static text card widget definition.
package text

import (
	"github.com/panelkit/panelkit/pkg/models"
)

// WidgetType is the registry type id of the text widget.
const WidgetType = "text"

// Definition returns the text card descriptor.
func Definition() *models.WidgetDefinition {
	maxLength := 4096

	return &models.WidgetDefinition{
		Type:        WidgetType,
		Name:        "Text Card",
		Description: "Static markdown or plain-text information card",
		Version:     "1.3.0",
		Category:    models.CategorySystem,
		Keywords:    []string{"markdown", "label", "note"},
		Capabilities: models.Capabilities{
			Configurable: true,
		},
		DefaultConfig: map[string]any{
			"content": "",
			"format":  "markdown",
			"align":   "left",
		},
		DefaultLayout: models.Layout{W: 4, H: 2, MinW: 1, MinH: 1},
		Schema: &models.JSONSchema{
			Type:  "object",
			Title: "Text Card Configuration",
			Properties: map[string]*models.Property{
				"content": {
					Type:        "string",
					Description: "Card body",
					MaxLength:   &maxLength,
				},
				"format": {
					Type:    "string",
					Enum:    []any{"markdown", "plain"},
					Default: "markdown",
				},
				"align": {
					Type:    "string",
					Enum:    []any{"left", "center", "right"},
					Default: "left",
				},
			},
			Required: []string{"content"},
		},
	}
}
