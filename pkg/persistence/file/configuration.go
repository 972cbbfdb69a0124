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

const currentFileName = "current.json"

// ConfigurationRepository stores widget configurations under
// <root>/configurations/<node-id>/. The current entry lives in current.json;
// every save also appends a timestamped history copy, so older entries are
// superseded rather than deleted.
type ConfigurationRepository struct {
	root string
}

// NewConfigurationRepository creates a configuration repository rooted at the
// given directory.
func NewConfigurationRepository(root string) *ConfigurationRepository {
	return &ConfigurationRepository{root: root}
}

// Save writes the configuration as the node's current entry and appends it to
// the node's history.
func (r *ConfigurationRepository) Save(_ context.Context, config *models.Configuration) error {
	dir := r.nodeDir(config.NodeID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return persistence.NewConfigurationError("Save", config.NodeID, config.Version, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return persistence.NewConfigurationError("Save", config.NodeID, config.Version, err)
	}

	if err := os.WriteFile(filepath.Join(dir, currentFileName), data, 0o644); err != nil {
		return persistence.NewConfigurationError("Save", config.NodeID, config.Version, err)
	}

	historyName := fmt.Sprintf("%020d.json", config.UpdatedAt.UnixNano())
	if err := os.WriteFile(filepath.Join(dir, historyName), data, 0o644); err != nil {
		return persistence.NewConfigurationError("Save", config.NodeID, config.Version, err)
	}

	return nil
}

// Load returns the node's current configuration, or, when version is
// non-empty, the newest history entry stored under that version.
func (r *ConfigurationRepository) Load(ctx context.Context, nodeID, version string) (*models.Configuration, error) {
	if version == "" {
		config, err := r.readEntry(filepath.Join(r.nodeDir(nodeID), currentFileName))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, persistence.NewConfigurationError("Load", nodeID, "", persistence.ErrConfigNotFound)
			}

			return nil, persistence.NewConfigurationError("Load", nodeID, "", err)
		}

		return config, nil
	}

	history, err := r.History(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Version == version {
			return history[i], nil
		}
	}

	return nil, persistence.NewConfigurationError("Load", nodeID, version, persistence.ErrVersionNotFound)
}

// Delete removes the node's configuration directory, or only the history
// entries stored under the given version when one is supplied.
func (r *ConfigurationRepository) Delete(ctx context.Context, nodeID, version string) error {
	dir := r.nodeDir(nodeID)

	if version == "" {
		if err := os.RemoveAll(dir); err != nil {
			return persistence.NewConfigurationError("Delete", nodeID, "", err)
		}

		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewConfigurationError("Delete", nodeID, version, persistence.ErrConfigNotFound)
		}

		return persistence.NewConfigurationError("Delete", nodeID, version, err)
	}

	for _, entry := range entries {
		config, err := r.readEntry(filepath.Join(dir, entry.Name()))
		if err != nil || config.Version != version {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return persistence.NewConfigurationError("Delete", nodeID, version, err)
		}
	}

	return nil
}

// History returns the node's configuration entries oldest first. A node with
// no stored configuration yields an empty slice.
func (r *ConfigurationRepository) History(_ context.Context, nodeID string) ([]*models.Configuration, error) {
	dir := os.DirFS(r.nodeDir(nodeID))

	jsonFiles, err := fs.Glob(dir, "*.json")
	if err != nil {
		return nil, persistence.NewConfigurationError("History", nodeID, "", err)
	}

	sort.Strings(jsonFiles)

	history := make([]*models.Configuration, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		if file == currentFileName {
			continue
		}

		config, err := r.readEntry(filepath.Join(r.nodeDir(nodeID), file))
		if err != nil {
			return nil, persistence.NewConfigurationError("History", nodeID, "", err)
		}

		history = append(history, config)
	}

	return history, nil
}

func (r *ConfigurationRepository) nodeDir(nodeID string) string {
	return filepath.Join(r.root, "configurations", nodeID)
}

func (r *ConfigurationRepository) readEntry(path string) (*models.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := &models.Configuration{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}
