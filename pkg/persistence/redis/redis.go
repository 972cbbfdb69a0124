// Package redis provides redis-backed persistence for dashboards and widget
// configurations, for deployments where the engine state is shared between
// API replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence"
)

const (
	dashboardsKey     = "panelkit:dashboards"
	configurationsKey = "panelkit:configurations"
	historyKeyPrefix  = "panelkit:configurations:history:"
)

// Persistence implements the persistence.Persistence interface on redis.
type Persistence struct {
	client        *goredis.Client
	dashboardRepo *DashboardRepository
	configRepo    *ConfigurationRepository
}

// NewPersistence creates a redis persistence from a redis:// URL.
func NewPersistence(url string) (*Persistence, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := goredis.NewClient(opts)

	return &Persistence{
		client:        client,
		dashboardRepo: &DashboardRepository{client: client},
		configRepo:    &ConfigurationRepository{client: client},
	}, nil
}

func (p *Persistence) DashboardRepository() persistence.DashboardRepository {
	return p.dashboardRepo
}

func (p *Persistence) ConfigurationRepository() persistence.ConfigurationRepository {
	return p.configRepo
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close releases the client connection pool.
func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}

// DashboardRepository stores dashboards as JSON fields of one hash.
type DashboardRepository struct {
	client *goredis.Client
}

func (r *DashboardRepository) Save(ctx context.Context, dashboard *models.Dashboard) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return persistence.NewDashboardError("Save", dashboard.ID, err)
	}

	if err := r.client.HSet(ctx, dashboardsKey, dashboard.ID, data).Err(); err != nil {
		return persistence.NewDashboardError("Save", dashboard.ID, err)
	}

	return nil
}

func (r *DashboardRepository) GetByID(ctx context.Context, id string) (*models.Dashboard, error) {
	data, err := r.client.HGet(ctx, dashboardsKey, id).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, persistence.NewDashboardError("GetByID", id, persistence.ErrDashboardNotFound)
		}

		return nil, persistence.NewDashboardError("GetByID", id, err)
	}

	dashboard := &models.Dashboard{}
	if err := json.Unmarshal([]byte(data), dashboard); err != nil {
		return nil, persistence.NewDashboardError("GetByID", id, err)
	}

	return dashboard, nil
}

func (r *DashboardRepository) List(ctx context.Context, opts persistence.ListDashboardsOptions) ([]*models.Dashboard, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	entries, err := r.client.HGetAll(ctx, dashboardsKey).Result()
	if err != nil {
		return nil, persistence.NewDashboardError("List", "", err)
	}

	dashboards := make([]*models.Dashboard, 0, len(entries))

	for id, data := range entries {
		dashboard := &models.Dashboard{}
		if err := json.Unmarshal([]byte(data), dashboard); err != nil {
			return nil, persistence.NewDashboardError("List", id, err)
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

func (r *DashboardRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.HDel(ctx, dashboardsKey, id).Result()
	if err != nil {
		return persistence.NewDashboardError("Delete", id, err)
	}

	if removed == 0 {
		return persistence.NewDashboardError("Delete", id, persistence.ErrDashboardNotFound)
	}

	return nil
}

// ConfigurationRepository stores the current entry per node in one hash and
// the per-node history in a list, newest entry last.
type ConfigurationRepository struct {
	client *goredis.Client
}

func (r *ConfigurationRepository) Save(ctx context.Context, config *models.Configuration) error {
	data, err := json.Marshal(config)
	if err != nil {
		return persistence.NewConfigurationError("Save", config.NodeID, config.Version, err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, configurationsKey, config.NodeID, data)
	pipe.RPush(ctx, historyKeyPrefix+config.NodeID, data)

	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.NewConfigurationError("Save", config.NodeID, config.Version, err)
	}

	return nil
}

func (r *ConfigurationRepository) Load(ctx context.Context, nodeID, version string) (*models.Configuration, error) {
	if version == "" {
		data, err := r.client.HGet(ctx, configurationsKey, nodeID).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return nil, persistence.NewConfigurationError("Load", nodeID, "", persistence.ErrConfigNotFound)
			}

			return nil, persistence.NewConfigurationError("Load", nodeID, "", err)
		}

		config := &models.Configuration{}
		if err := json.Unmarshal([]byte(data), config); err != nil {
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

func (r *ConfigurationRepository) Delete(ctx context.Context, nodeID, version string) error {
	if version == "" {
		pipe := r.client.TxPipeline()
		pipe.HDel(ctx, configurationsKey, nodeID)
		pipe.Del(ctx, historyKeyPrefix+nodeID)

		if _, err := pipe.Exec(ctx); err != nil {
			return persistence.NewConfigurationError("Delete", nodeID, "", err)
		}

		return nil
	}

	history, err := r.History(ctx, nodeID)
	if err != nil {
		return err
	}

	for _, entry := range history {
		if entry.Version != version {
			continue
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return persistence.NewConfigurationError("Delete", nodeID, version, err)
		}

		if err := r.client.LRem(ctx, historyKeyPrefix+nodeID, 0, data).Err(); err != nil {
			return persistence.NewConfigurationError("Delete", nodeID, version, err)
		}
	}

	return nil
}

func (r *ConfigurationRepository) History(ctx context.Context, nodeID string) ([]*models.Configuration, error) {
	entries, err := r.client.LRange(ctx, historyKeyPrefix+nodeID, 0, -1).Result()
	if err != nil {
		return nil, persistence.NewConfigurationError("History", nodeID, "", err)
	}

	history := make([]*models.Configuration, 0, len(entries))

	for _, data := range entries {
		config := &models.Configuration{}
		if err := json.Unmarshal([]byte(data), config); err != nil {
			return nil, persistence.NewConfigurationError("History", nodeID, "", err)
		}

		history = append(history, config)
	}

	return history, nil
}
