// Package registry provides built-in widget registration for the catalog.
package registry

import (
	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/widgets/chart"
	"github.com/panelkit/panelkit/pkg/widgets/gauge"
	"github.com/panelkit/panelkit/pkg/widgets/status"
	"github.com/panelkit/panelkit/pkg/widgets/table"
	"github.com/panelkit/panelkit/pkg/widgets/text"
)

// RegisterDefaultWidgets registers all built-in widget definitions with the
// registry. Registration failures are logged and skipped so one bad built-in
// never blocks the rest.
func (r *Registry) RegisterDefaultWidgets() {
	builtins := []*models.WidgetDefinition{
		chart.Definition(),
		gauge.Definition(),
		text.Definition(),
		table.Definition(),
		status.Definition(),
	}

	for _, definition := range builtins {
		if err := r.Register(definition); err != nil {
			r.logger.Warn("Failed to register built-in widget", "widget_type", definition.Type, "error", err)
		}
	}
}
