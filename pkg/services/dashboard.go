// Package services provides dashboard management over the persistence layer.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/panelkit/panelkit/pkg/canvas"
	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/eventbus"
	"github.com/panelkit/panelkit/pkg/events"
	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence"
)

var (
	// ErrDashboardNotFound is returned when a dashboard is not found.
	ErrDashboardNotFound = persistence.ErrDashboardNotFound
)

// Dashboard handles dashboard CRUD and the canvas save/open cycle.
type Dashboard struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	store       *canvas.Store
	configs     *configsvc.Service
	bus         eventbus.EventBus
}

// NewDashboard creates a new dashboard service.
func NewDashboard(
	logger *slog.Logger,
	p persistence.Persistence,
	store *canvas.Store,
	configs *configsvc.Service,
	bus eventbus.EventBus,
) *Dashboard {
	return &Dashboard{
		logger:      logger,
		persistence: p,
		store:       store,
		configs:     configs,
		bus:         bus,
	}
}

// HealthCheck checks the health of the persistence layer.
func (d *Dashboard) HealthCheck(ctx context.Context) (string, bool) {
	if d.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := d.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// ListDashboardsRequest contains options for listing dashboards.
type ListDashboardsRequest struct {
	Limit  int `validate:"min=0,max=100"`
	Offset int `validate:"min=0"`
	Owner  string
}

// List retrieves dashboards with pagination and owner filtering.
func (d *Dashboard) List(ctx context.Context, req ListDashboardsRequest) ([]*models.Dashboard, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	dashboards, err := d.persistence.DashboardRepository().List(ctx, persistence.ListDashboardsOptions{
		Limit:  req.Limit,
		Offset: req.Offset,
		Owner:  req.Owner,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards: %w", err)
	}

	return dashboards, nil
}

// FetchByID retrieves a dashboard by its ID.
func (d *Dashboard) FetchByID(ctx context.Context, id string) (*models.Dashboard, error) {
	dashboard, err := d.persistence.DashboardRepository().GetByID(ctx, id)
	if err != nil {
		if persistence.IsDashboardNotFound(err) {
			return nil, ErrDashboardNotFound
		}

		return nil, err
	}

	return dashboard, nil
}

// Create adds a new dashboard.
func (d *Dashboard) Create(ctx context.Context, dashboard *models.Dashboard) (*models.Dashboard, error) {
	if dashboard == nil {
		return nil, ErrDashboardNil
	}

	if strings.TrimSpace(dashboard.Name) == "" {
		return nil, NewValidationError("Create", "NAME_REQUIRED", "dashboard name is required", ErrNameRequired)
	}

	now := time.Now().UTC()
	dashboard.ID = uuid.New().String()
	dashboard.CreatedAt = now
	dashboard.UpdatedAt = now

	if dashboard.Nodes == nil {
		dashboard.Nodes = make([]*models.CanvasNode, 0)
	}

	if err := d.persistence.DashboardRepository().Save(ctx, dashboard); err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}

	return dashboard, nil
}

// Update modifies an existing dashboard's metadata.
func (d *Dashboard) Update(ctx context.Context, dashboardID string, dashboard *models.Dashboard) (*models.Dashboard, error) {
	existing, err := d.FetchByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	dashboard.ID = dashboardID
	dashboard.CreatedAt = existing.CreatedAt
	dashboard.UpdatedAt = time.Now().UTC()

	if err := d.persistence.DashboardRepository().Save(ctx, dashboard); err != nil {
		return nil, fmt.Errorf("failed to update dashboard: %w", err)
	}

	return dashboard, nil
}

// Delete removes a dashboard by its ID.
func (d *Dashboard) Delete(ctx context.Context, dashboardID string) error {
	if _, err := d.FetchByID(ctx, dashboardID); err != nil {
		return err
	}

	if err := d.persistence.DashboardRepository().Delete(ctx, dashboardID); err != nil {
		return fmt.Errorf("failed to delete dashboard: %w", err)
	}

	return nil
}

// Open loads a dashboard into the editor store. Selection entries pointing at
// unknown nodes are dropped on load.
func (d *Dashboard) Open(ctx context.Context, dashboardID string) (*models.Dashboard, error) {
	dashboard, err := d.FetchByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	d.store.Load(dashboard)

	return dashboard, nil
}

// SaveCanvasResult reports the outcome of one canvas save.
type SaveCanvasResult struct {
	Dashboard      *models.Dashboard       `json:"dashboard"`
	ConfigFailures []configsvc.SaveFailure `json:"config_failures,omitempty"`
}

// SaveCanvas snapshots the editor store into the dashboard, persists it and
// flushes dirty configurations. A failing configuration save does not abort
// the dashboard save; failures come back in the result.
func (d *Dashboard) SaveCanvas(ctx context.Context, dashboardID string) (*SaveCanvasResult, error) {
	dashboard, err := d.FetchByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}

	d.store.Snapshot(dashboard)
	dashboard.UpdatedAt = time.Now().UTC()

	if err := d.persistence.DashboardRepository().Save(ctx, dashboard); err != nil {
		return nil, fmt.Errorf("failed to save dashboard: %w", err)
	}

	failures := d.configs.SaveAll(ctx)
	d.store.MarkSaved()

	d.publishSaved(ctx, dashboard, len(failures))

	return &SaveCanvasResult{Dashboard: dashboard, ConfigFailures: failures}, nil
}

func (d *Dashboard) publishSaved(ctx context.Context, dashboard *models.Dashboard, configFailures int) {
	if d.bus == nil {
		return
	}

	event := events.DashboardSaved{
		BaseEvent: events.BaseEvent{
			ID:          d.bus.GenerateID(),
			Type:        events.DashboardSavedEvent,
			Timestamp:   time.Now().UTC(),
			DashboardID: dashboard.ID,
		},
		NodeCount:      len(dashboard.Nodes),
		ConfigFailures: configFailures,
	}

	if err := d.bus.Publish(ctx, dashboard.ID, event); err != nil {
		d.logger.Warn("Failed to publish dashboard saved event", "dashboard_id", dashboard.ID, "error", err)
	}
}
