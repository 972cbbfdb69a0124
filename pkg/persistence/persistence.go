// Package persistence provides the storage abstraction for dashboards and
// widget configurations.
package persistence

import (
	"context"

	"github.com/panelkit/panelkit/pkg/models"
)

// ListDashboardsOptions controls pagination for dashboard listings.
type ListDashboardsOptions struct {
	Limit  int
	Offset int
	Owner  string
}

// DashboardRepository stores canvas aggregates.
type DashboardRepository interface {
	Save(ctx context.Context, dashboard *models.Dashboard) error
	GetByID(ctx context.Context, id string) (*models.Dashboard, error)
	List(ctx context.Context, opts ListDashboardsOptions) ([]*models.Dashboard, error)
	Delete(ctx context.Context, id string) error
}

// ConfigurationRepository stores versioned widget configuration blobs keyed by
// node id. Save supersedes the current entry and appends to the node's
// history; Load with an empty version returns the current entry.
type ConfigurationRepository interface {
	Save(ctx context.Context, config *models.Configuration) error
	Load(ctx context.Context, nodeID, version string) (*models.Configuration, error)
	Delete(ctx context.Context, nodeID, version string) error
	History(ctx context.Context, nodeID string) ([]*models.Configuration, error)
}

// Persistence is the storage collaborator injected into the engine.
type Persistence interface {
	DashboardRepository() DashboardRepository
	ConfigurationRepository() ConfigurationRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
