package services

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/pkg/canvas"
	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence/file"
	"github.com/panelkit/panelkit/pkg/registry"
)

func newTestService(t *testing.T) (*Dashboard, *canvas.Store) {
	t.Helper()

	logger := slog.Default()
	reg := registry.NewRegistry(logger, nil)
	reg.RegisterDefaultWidgets()

	store := canvas.NewStore(reg)
	p := file.NewPersistence(t.TempDir())

	configs, err := configsvc.NewService(logger, reg, p.ConfigurationRepository(), "1.0.0")
	require.NoError(t, err)

	return NewDashboard(logger, p, store, configs, nil), store
}

func TestDashboard_CreateAndFetch(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(t.Context(), &models.Dashboard{Name: "Plant Overview"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NotNil(t, created.Nodes)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plant Overview", fetched.Name)
}

func TestDashboard_Create_Validation(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Create(t.Context(), nil)
	assert.ErrorIs(t, err, ErrDashboardNil)

	_, err = service.Create(t.Context(), &models.Dashboard{Name: "   "})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestDashboard_FetchByID_NotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.FetchByID(t.Context(), "ghost")
	assert.ErrorIs(t, err, ErrDashboardNotFound)
}

func TestDashboard_Update(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(t.Context(), &models.Dashboard{Name: "Before"})
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), created.ID, &models.Dashboard{Name: "After"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestDashboard_Delete(t *testing.T) {
	service, _ := newTestService(t)

	created, err := service.Create(t.Context(), &models.Dashboard{Name: "Doomed"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.ErrorIs(t, err, ErrDashboardNotFound)

	assert.ErrorIs(t, service.Delete(t.Context(), created.ID), ErrDashboardNotFound)
}

func TestDashboard_List(t *testing.T) {
	service, _ := newTestService(t)

	for _, name := range []string{"One", "Two", "Three"} {
		_, err := service.Create(t.Context(), &models.Dashboard{Name: name, Owner: "alice"})
		require.NoError(t, err)
	}

	all, err := service.List(t.Context(), ListDashboardsRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := service.List(t.Context(), ListDashboardsRequest{Owner: "bob"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDashboard_SaveCanvasAndOpen(t *testing.T) {
	service, store := newTestService(t)

	created, err := service.Create(t.Context(), &models.Dashboard{Name: "Canvas"})
	require.NoError(t, err)

	require.NoError(t, store.AddNode(&models.CanvasNode{
		ID:         "node-1",
		WidgetType: "chart",
		Layout:     models.Rect{W: 4, H: 3},
	}))
	store.SelectNodes([]string{"node-1"})
	require.True(t, store.HasUnsavedChanges())

	result, err := service.SaveCanvas(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, result.ConfigFailures)
	assert.Len(t, result.Dashboard.Nodes, 1)
	assert.False(t, store.HasUnsavedChanges())

	// A fresh open round-trips the persisted canvas.
	store.Clear()

	opened, err := service.Open(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Len(t, opened.Nodes, 1)
	assert.Equal(t, []string{"node-1"}, store.Selection())
	assert.NotNil(t, store.Node("node-1"))
}

func TestDashboard_HealthCheck(t *testing.T) {
	service, _ := newTestService(t)

	message, healthy := service.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.NotEmpty(t, message)
}
