// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/panelkit/panelkit/pkg/auth"
	"github.com/panelkit/panelkit/pkg/canvas"
	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/dataflow"
	"github.com/panelkit/panelkit/pkg/eventbus"
	"github.com/panelkit/panelkit/pkg/persistence"
	"github.com/panelkit/panelkit/pkg/registry"
	"github.com/panelkit/panelkit/pkg/system"
)

// ConfigVersion is the schema version stamped on newly saved widget
// configurations.
const ConfigVersion = "2.0.0"

// NewSystem assembles the widget engine: registry, loader, canvas store,
// configuration service and data-flow manager. widgetsPath, when non-empty,
// is walked for widget module manifests layered over the built-ins.
func NewSystem(
	logger *slog.Logger,
	roles auth.RoleProvider,
	p persistence.Persistence,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	widgetsPath string,
) (*system.System, error) {
	reg := registry.NewRegistry(logger, roles)
	loader := registry.NewLoader(logger, reg)
	store := canvas.NewStore(reg)

	configs, err := configsvc.NewService(logger, reg, p.ConfigurationRepository(), ConfigVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to create configuration service: %w", err)
	}

	if err := registerConfigMigrations(configs); err != nil {
		return nil, fmt.Errorf("failed to register configuration migrations: %w", err)
	}

	manager := dataflow.NewManager(logger, store, configs, bus, tracer)

	var widgetsFS fs.FS
	if widgetsPath != "" {
		widgetsFS = os.DirFS(widgetsPath)
	}

	return system.New(logger, reg, loader, store, configs, manager, bus, widgetsFS), nil
}

// registerConfigMigrations wires the built-in configuration schema upgrades.
func registerConfigMigrations(configs *configsvc.Service) error {
	// 1.0.0 stored refresh intervals in seconds, 1.1.0 and later in
	// milliseconds.
	if err := configs.RegisterMigration("1.0.0", "1.1.0", func(payload map[string]any) (map[string]any, error) {
		if seconds, ok := payload["refreshInterval"].(float64); ok {
			payload["refreshInterval"] = seconds * 1000
		}

		return payload, nil
	}); err != nil {
		return err
	}

	// 2.0.0 renamed the flat "datasource" string to a structured "source"
	// object.
	return configs.RegisterMigration("1.1.0", "2.0.0", func(payload map[string]any) (map[string]any, error) {
		if name, ok := payload["datasource"].(string); ok {
			payload["source"] = map[string]any{"name": name}
			delete(payload, "datasource")
		}

		return payload, nil
	})
}
