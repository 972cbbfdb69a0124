// Package file provides file-based persistence for dashboards and widget
// configurations. Everything is stored as JSON under a root directory, the
// same shape the hosted product keeps in browser local storage.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/panelkit/panelkit/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface on the file system.
type Persistence struct {
	root          string
	dashboardRepo *DashboardRepository
	configRepo    *ConfigurationRepository
}

// NewPersistence creates a file persistence rooted at the given directory.
// A "file://" prefix on the path is accepted and stripped.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:          cleanRoot,
		dashboardRepo: NewDashboardRepository(cleanRoot),
		configRepo:    NewConfigurationRepository(cleanRoot),
	}
}

// DashboardRepository returns the dashboard repository implementation.
func (p *Persistence) DashboardRepository() persistence.DashboardRepository {
	return p.dashboardRepo
}

// ConfigurationRepository returns the configuration repository implementation.
func (p *Persistence) ConfigurationRepository() persistence.ConfigurationRepository {
	return p.configRepo
}

// HealthCheck verifies the root directory exists.
func (p *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(p.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to do for files.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
