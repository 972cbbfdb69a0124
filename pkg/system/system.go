// Package system wires the widget engine together and owns its
// initialization lifecycle.
package system

import (
	"context"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/panelkit/panelkit/pkg/auth"
	"github.com/panelkit/panelkit/pkg/canvas"
	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/dataflow"
	"github.com/panelkit/panelkit/pkg/eventbus"
	"github.com/panelkit/panelkit/pkg/events"
	"github.com/panelkit/panelkit/pkg/registry"
)

// System is the explicit application context holding the engine's parts. It
// replaces module-level singletons: construct one at startup and inject it
// into consumers, which also makes multi-canvas setups possible.
type System struct {
	logger   *slog.Logger
	registry *registry.Registry
	loader   *registry.Loader
	store    *canvas.Store
	configs  *configsvc.Service
	manager  *dataflow.Manager
	bus      eventbus.EventBus

	// WidgetsFS, when set, is walked for widget module manifests layered over
	// the built-ins.
	widgetsFS fs.FS

	mu      sync.Mutex
	once    *sync.Once
	initErr error
}

// New creates an uninitialized system over the given collaborators.
func New(
	logger *slog.Logger,
	reg *registry.Registry,
	loader *registry.Loader,
	store *canvas.Store,
	configs *configsvc.Service,
	manager *dataflow.Manager,
	bus eventbus.EventBus,
	widgetsFS fs.FS,
) *System {
	return &System{
		logger:    logger,
		registry:  reg,
		loader:    loader,
		store:     store,
		configs:   configs,
		manager:   manager,
		bus:       bus,
		widgetsFS: widgetsFS,
		once:      new(sync.Once),
	}
}

func (s *System) Registry() *registry.Registry { return s.registry }

func (s *System) Store() *canvas.Store { return s.store }

func (s *System) Configurations() *configsvc.Service { return s.configs }

func (s *System) Manager() *dataflow.Manager { return s.manager }

// Initialize populates the widget catalog and validates the migration chain.
// It is idempotent and memoizes the in-flight run: concurrent callers block
// on the same initialization and share its result.
func (s *System) Initialize(ctx context.Context) error {
	s.mu.Lock()
	once := s.once
	s.mu.Unlock()

	once.Do(func() {
		s.initErr = s.initialize(ctx)
	})

	return s.initErr
}

// ResetInitialization clears the memoized result so the next Initialize call
// runs again, e.g. after a permission change.
func (s *System) ResetInitialization() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.once = new(sync.Once)
	s.initErr = nil
}

// ReapplyPermissionFilter swaps the role provider and performs a full
// clear-and-reload of the catalog under the new role. Incremental patching is
// deliberately avoided so a partially filtered catalog is never visible.
func (s *System) ReapplyPermissionFilter(ctx context.Context, roles auth.RoleProvider) error {
	s.registry.SetRoleProvider(roles)
	s.ResetInitialization()

	if err := s.Initialize(ctx); err != nil {
		return err
	}

	s.publishReloaded(ctx, roles)

	return nil
}

func (s *System) initialize(ctx context.Context) error {
	s.registry.Clear()
	s.registry.RegisterDefaultWidgets()

	if s.widgetsFS != nil {
		modules, err := s.loader.Discover(s.widgetsFS)
		if err != nil {
			return err
		}

		result := s.loader.RegisterModules(modules)
		s.logger.Info("Discovered widget modules",
			"registered", result.Registered,
			"skipped", len(result.Skipped),
			"failed", len(result.Errors),
		)
	}

	if err := s.configs.ValidateChain(); err != nil {
		return err
	}

	s.logger.Info("Widget engine initialized", "widgets", s.registry.Count())

	return nil
}

func (s *System) publishReloaded(ctx context.Context, roles auth.RoleProvider) {
	if s.bus == nil {
		return
	}

	event := events.RegistryReloaded{
		BaseEvent: events.BaseEvent{
			ID:        s.bus.GenerateID(),
			Type:      events.RegistryReloadedEvent,
			Timestamp: time.Now().UTC(),
		},
		Registered: s.registry.Count(),
		Role:       roles.Role(),
	}

	if err := s.bus.Publish(ctx, "registry", event); err != nil {
		s.logger.Warn("Failed to publish registry reload event", "error", err)
	}
}
