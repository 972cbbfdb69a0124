package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence"
)

// DashboardRepository stores one JSON file per dashboard under
// <root>/dashboards.
type DashboardRepository struct {
	root string
}

// NewDashboardRepository creates a dashboard repository rooted at the given
// directory.
func NewDashboardRepository(root string) *DashboardRepository {
	return &DashboardRepository{root: root}
}

// Save writes the dashboard as an indented JSON file.
func (r *DashboardRepository) Save(_ context.Context, dashboard *models.Dashboard) error {
	dir := filepath.Join(r.root, "dashboards")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistence.NewDashboardError("Save", dashboard.ID, err)
	}

	data, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		return persistence.NewDashboardError("Save", dashboard.ID, err)
	}

	path := filepath.Join(dir, dashboard.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return persistence.NewDashboardError("Save", dashboard.ID, err)
	}

	return nil
}

// GetByID loads a dashboard, returning ErrDashboardNotFound when the file is
// absent.
func (r *DashboardRepository) GetByID(_ context.Context, id string) (*models.Dashboard, error) {
	path := filepath.Join(r.root, "dashboards", id+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewDashboardError("GetByID", id, persistence.ErrDashboardNotFound)
		}

		return nil, persistence.NewDashboardError("GetByID", id, err)
	}

	dashboard := &models.Dashboard{}
	if err := json.Unmarshal(data, dashboard); err != nil {
		return nil, persistence.NewDashboardError("GetByID", id, err)
	}

	return dashboard, nil
}

// List returns dashboards sorted by creation time, newest first, with
// in-memory owner filtering and offset/limit pagination.
func (r *DashboardRepository) List(ctx context.Context, opts persistence.ListDashboardsOptions) ([]*models.Dashboard, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	dir := os.DirFS(filepath.Join(r.root, "dashboards"))

	jsonFiles, err := fs.Glob(dir, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboard files: %w", err)
	}

	dashboards := make([]*models.Dashboard, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		id := file[:len(file)-5] // strip .json

		dashboard, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if opts.Owner != "" && dashboard.Owner != opts.Owner {
			continue
		}

		dashboards = append(dashboards, dashboard)
	}

	sort.Slice(dashboards, func(i, j int) bool {
		return dashboards[i].CreatedAt.After(dashboards[j].CreatedAt)
	})

	if opts.Offset >= len(dashboards) {
		return []*models.Dashboard{}, nil
	}

	end := opts.Offset + opts.Limit
	if end > len(dashboards) {
		end = len(dashboards)
	}

	return dashboards[opts.Offset:end], nil
}

// Delete removes the dashboard file. Deleting an absent dashboard returns
// ErrDashboardNotFound.
func (r *DashboardRepository) Delete(_ context.Context, id string) error {
	path := filepath.Join(r.root, "dashboards", id+".json")

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewDashboardError("Delete", id, persistence.ErrDashboardNotFound)
		}

		return persistence.NewDashboardError("Delete", id, err)
	}

	return nil
}
