package configsvc

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence"
)

type fakeSchemaSource struct {
	definitions map[string]*models.WidgetDefinition
}

func (f *fakeSchemaSource) Definition(widgetType string) *models.WidgetDefinition {
	return f.definitions[widgetType]
}

// fakeConfigRepo is an in-memory configuration repository. Node ids listed in
// failSaves make Save fail.
type fakeConfigRepo struct {
	stored    map[string]*models.Configuration
	failSaves map[string]bool
	saveCalls []string
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{
		stored:    make(map[string]*models.Configuration),
		failSaves: make(map[string]bool),
	}
}

func (f *fakeConfigRepo) Save(_ context.Context, config *models.Configuration) error {
	f.saveCalls = append(f.saveCalls, config.NodeID)

	if f.failSaves[config.NodeID] {
		return errors.New("storage unavailable")
	}

	f.stored[config.NodeID] = config

	return nil
}

func (f *fakeConfigRepo) Load(_ context.Context, nodeID, _ string) (*models.Configuration, error) {
	config, ok := f.stored[nodeID]
	if !ok {
		return nil, persistence.ErrConfigNotFound
	}

	return config, nil
}

func (f *fakeConfigRepo) Delete(_ context.Context, nodeID, _ string) error {
	if _, ok := f.stored[nodeID]; !ok {
		return persistence.ErrConfigNotFound
	}

	delete(f.stored, nodeID)

	return nil
}

func (f *fakeConfigRepo) History(_ context.Context, _ string) ([]*models.Configuration, error) {
	return nil, nil
}

func chartSchemas() *fakeSchemaSource {
	maxPoints := 500.0

	return &fakeSchemaSource{definitions: map[string]*models.WidgetDefinition{
		"chart": {
			Type:         "chart",
			Name:         "Chart",
			Category:     models.CategoryChart,
			Capabilities: models.Capabilities{DataDriven: true, Configurable: true},
			Schema: &models.JSONSchema{
				Type: "object",
				Properties: map[string]*models.Property{
					"title":      {Type: "string"},
					"max_points": {Type: "number", Maximum: &maxPoints},
				},
				Required: []string{"title"},
			},
		},
		"schemaless": {
			Type:         "schemaless",
			Name:         "Schemaless",
			Category:     models.CategoryData,
			Capabilities: models.Capabilities{Configurable: true},
		},
	}}
}

func newTestService(t *testing.T, repo persistence.ConfigurationRepository, version string) *Service {
	t.Helper()

	service, err := NewService(slog.Default(), chartSchemas(), repo, version)
	require.NoError(t, err)

	return service
}

func TestNewService_InvalidVersion(t *testing.T) {
	_, err := NewService(slog.Default(), chartSchemas(), newFakeConfigRepo(), "not-a-version")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestService_SetGetRoundTrip(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	payload := map[string]any{"title": "Temperature", "max_points": 100.0}

	saved, err := service.Set(t.Context(), "node-1", "chart", payload)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", saved.Version)
	assert.True(t, service.HasUnsavedChanges())

	got, err := service.Get(t.Context(), "node-1")
	require.NoError(t, err)
	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, "2.0.0", got.Version)
}

func TestService_Set_SchemaViolations(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	_, err := service.Set(t.Context(), "node-1", "chart", map[string]any{
		"max_points": 10000.0,
	})
	require.Error(t, err)
	require.True(t, IsSchemaValidationError(err))

	var validationErr *SchemaValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "node-1", validationErr.NodeID)
	assert.Equal(t, "chart", validationErr.WidgetType)
	// Missing required title plus max_points over the maximum.
	assert.Len(t, validationErr.Violations, 2)

	// A rejected payload must not displace a previously accepted one.
	assert.False(t, service.HasUnsavedChanges())
	_, err = service.Get(t.Context(), "node-1")
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestService_Set_PreviousConfigSurvivesRejection(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	_, err := service.Set(t.Context(), "node-1", "chart", map[string]any{"title": "Good"})
	require.NoError(t, err)

	_, err = service.Set(t.Context(), "node-1", "chart", map[string]any{"max_points": 10000.0})
	require.Error(t, err)

	got, err := service.Get(t.Context(), "node-1")
	require.NoError(t, err)
	assert.Equal(t, "Good", got.Payload["title"])
}

func TestService_Set_UnknownWidgetType(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	_, err := service.Set(t.Context(), "node-1", "hologram", map[string]any{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownWidgetType)
}

func TestService_Set_NoSchemaAcceptsAnything(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	_, err := service.Set(t.Context(), "node-1", "schemaless", map[string]any{"anything": 1})
	assert.NoError(t, err)
}

func TestService_Get_NotFound(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	_, err := service.Get(t.Context(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestService_Get_MigratesStoredVersion(t *testing.T) {
	repo := newFakeConfigRepo()
	repo.stored["node-1"] = &models.Configuration{
		NodeID:     "node-1",
		WidgetType: "chart",
		Version:    "1.0.0",
		Payload:    map[string]any{"title": "Old", "refreshInterval": 5.0},
	}

	service := newTestService(t, repo, "2.0.0")

	require.NoError(t, service.RegisterMigration("1.0.0", "1.1.0", func(payload map[string]any) (map[string]any, error) {
		if seconds, ok := payload["refreshInterval"].(float64); ok {
			payload["refreshInterval"] = seconds * 1000
		}

		return payload, nil
	}))
	require.NoError(t, service.RegisterMigration("1.1.0", "2.0.0", func(payload map[string]any) (map[string]any, error) {
		payload["migrated"] = true

		return payload, nil
	}))

	got, err := service.Get(t.Context(), "node-1")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", got.Version)
	assert.Equal(t, 5000.0, got.Payload["refreshInterval"])
	assert.Equal(t, true, got.Payload["migrated"])

	// Migration marks the configuration dirty so the upgrade persists.
	assert.True(t, service.HasUnsavedChanges())

	// The stored copy was never mutated in place.
	assert.Equal(t, 5.0, repo.stored["node-1"].Payload["refreshInterval"])
}

func TestService_Get_LatestVersionPassesThroughUnchanged(t *testing.T) {
	repo := newFakeConfigRepo()
	repo.stored["node-1"] = &models.Configuration{
		NodeID:     "node-1",
		WidgetType: "chart",
		Version:    "2.0.0",
		Payload:    map[string]any{"title": "Current"},
	}

	service := newTestService(t, repo, "2.0.0")

	require.NoError(t, service.RegisterMigration("1.0.0", "2.0.0", func(payload map[string]any) (map[string]any, error) {
		payload["touched"] = true

		return payload, nil
	}))

	got, err := service.Get(t.Context(), "node-1")
	require.NoError(t, err)
	assert.NotContains(t, got.Payload, "touched")
	assert.False(t, service.HasUnsavedChanges())
}

func TestService_Get_MigrationGap(t *testing.T) {
	repo := newFakeConfigRepo()
	repo.stored["node-1"] = &models.Configuration{
		NodeID:     "node-1",
		WidgetType: "chart",
		Version:    "1.0.0",
		Payload:    map[string]any{"title": "Old"},
	}

	service := newTestService(t, repo, "2.0.0")

	// Only 1.1.0 -> 2.0.0 is registered; 1.0.0 has no way forward.
	require.NoError(t, service.RegisterMigration("1.1.0", "2.0.0", func(payload map[string]any) (map[string]any, error) {
		return payload, nil
	}))

	_, err := service.Get(t.Context(), "node-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationGap)
}

func TestService_RegisterMigration_Invalid(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	noop := func(payload map[string]any) (map[string]any, error) { return payload, nil }

	err := service.RegisterMigration("1.1.0", "1.0.0", noop)
	assert.ErrorIs(t, err, ErrInvalidVersion)

	err = service.RegisterMigration("bogus", "2.0.0", noop)
	assert.ErrorIs(t, err, ErrInvalidVersion)

	require.NoError(t, service.RegisterMigration("1.0.0", "2.0.0", noop))
	err = service.RegisterMigration("1.0.0", "2.0.0", noop)
	assert.ErrorIs(t, err, ErrDuplicateMigration)
}

func TestService_ValidateChain(t *testing.T) {
	service := newTestService(t, newFakeConfigRepo(), "2.0.0")

	noop := func(payload map[string]any) (map[string]any, error) { return payload, nil }

	require.NoError(t, service.RegisterMigration("1.0.0", "1.1.0", noop))

	// 1.1.0 cannot reach 2.0.0 yet.
	err := service.ValidateChain()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMigrationGap)

	require.NoError(t, service.RegisterMigration("1.1.0", "2.0.0", noop))
	assert.NoError(t, service.ValidateChain())
}

func TestService_SaveAll_PartialFailure(t *testing.T) {
	repo := newFakeConfigRepo()
	repo.failSaves["node-b"] = true

	service := newTestService(t, repo, "2.0.0")

	for _, nodeID := range []string{"node-a", "node-b", "node-c"} {
		_, err := service.Set(t.Context(), nodeID, "chart", map[string]any{"title": nodeID})
		require.NoError(t, err)
	}

	failures := service.SaveAll(t.Context())

	require.Len(t, failures, 1)
	assert.Equal(t, "node-b", failures[0].NodeID)

	// The failing node never blocked its siblings.
	assert.Contains(t, repo.stored, "node-a")
	assert.Contains(t, repo.stored, "node-c")

	// Only the failed node stays dirty for a retry.
	assert.True(t, service.HasUnsavedChanges())

	repo.failSaves = map[string]bool{}
	failures = service.SaveAll(t.Context())
	assert.Empty(t, failures)
	assert.False(t, service.HasUnsavedChanges())
	assert.Contains(t, repo.stored, "node-b")
}

func TestService_Forget(t *testing.T) {
	repo := newFakeConfigRepo()
	service := newTestService(t, repo, "2.0.0")

	_, err := service.Set(t.Context(), "node-1", "chart", map[string]any{"title": "Doomed"})
	require.NoError(t, err)
	require.Empty(t, service.SaveAll(t.Context()))

	require.NoError(t, service.Forget(t.Context(), "node-1"))

	_, err = service.Get(t.Context(), "node-1")
	assert.ErrorIs(t, err, ErrConfigNotFound)
	assert.NotContains(t, repo.stored, "node-1")

	// Forgetting an unknown node is not an error.
	assert.NoError(t, service.Forget(t.Context(), "ghost"))
}
