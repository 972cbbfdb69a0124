package file

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence"
)

func TestNewPersistence(t *testing.T) {
	p := NewPersistence("/tmp/panelkit-test")
	assert.Equal(t, "/tmp/panelkit-test", p.root)

	p = NewPersistence("file:///tmp/panelkit-test")
	assert.Equal(t, "/tmp/panelkit-test", p.root)
}

func TestPersistence_Close(t *testing.T) {
	p := NewPersistence(t.TempDir())
	assert.NoError(t, p.Close(t.Context()))
}

func TestDashboardRepository_SaveAndGet(t *testing.T) {
	testDir := t.TempDir()
	repo := NewDashboardRepository(testDir)

	dashboard := &models.Dashboard{
		ID:   "dash-1",
		Name: "Plant Overview",
		Nodes: []*models.CanvasNode{
			{
				ID:         "node-1",
				WidgetType: "chart",
				Layout:     models.Rect{W: 4, H: 3},
				Config:     map[string]any{"title": "Temperature"},
			},
		},
		Selection: []string{"node-1"},
		CreatedAt: time.Now().UTC(),
	}

	require.NoError(t, repo.Save(t.Context(), dashboard))
	assert.FileExists(t, filepath.Join(testDir, "dashboards", "dash-1.json"))

	loaded, err := repo.GetByID(t.Context(), "dash-1")
	require.NoError(t, err)
	assert.Equal(t, "Plant Overview", loaded.Name)
	require.Len(t, loaded.Nodes, 1)
	assert.Equal(t, "chart", loaded.Nodes[0].WidgetType)
	assert.Equal(t, []string{"node-1"}, loaded.Selection)
}

func TestDashboardRepository_GetByID_NotFound(t *testing.T) {
	repo := NewDashboardRepository(t.TempDir())

	_, err := repo.GetByID(t.Context(), "ghost")
	require.Error(t, err)
	assert.True(t, persistence.IsDashboardNotFound(err))
}

func TestDashboardRepository_List(t *testing.T) {
	repo := NewDashboardRepository(t.TempDir())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"dash-a", "dash-b", "dash-c"} {
		require.NoError(t, repo.Save(t.Context(), &models.Dashboard{
			ID:        id,
			Name:      id,
			Owner:     "alice",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	require.NoError(t, repo.Save(t.Context(), &models.Dashboard{
		ID:        "dash-d",
		Name:      "dash-d",
		Owner:     "bob",
		CreatedAt: base.Add(3 * time.Hour),
	}))

	// Newest first.
	all, err := repo.List(t.Context(), persistence.ListDashboardsOptions{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "dash-d", all[0].ID)
	assert.Equal(t, "dash-a", all[3].ID)

	// Owner filter.
	alices, err := repo.List(t.Context(), persistence.ListDashboardsOptions{Owner: "alice"})
	require.NoError(t, err)
	assert.Len(t, alices, 3)

	// Pagination.
	page, err := repo.List(t.Context(), persistence.ListDashboardsOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "dash-c", page[0].ID)
	assert.Equal(t, "dash-b", page[1].ID)

	// Offset past the end.
	empty, err := repo.List(t.Context(), persistence.ListDashboardsOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDashboardRepository_List_EmptyDir(t *testing.T) {
	repo := NewDashboardRepository(t.TempDir())

	dashboards, err := repo.List(t.Context(), persistence.ListDashboardsOptions{})
	require.NoError(t, err)
	assert.Empty(t, dashboards)
}

func TestDashboardRepository_Delete(t *testing.T) {
	repo := NewDashboardRepository(t.TempDir())

	require.NoError(t, repo.Save(t.Context(), &models.Dashboard{ID: "dash-1", Name: "Doomed"}))
	require.NoError(t, repo.Delete(t.Context(), "dash-1"))

	_, err := repo.GetByID(t.Context(), "dash-1")
	assert.True(t, persistence.IsDashboardNotFound(err))

	err = repo.Delete(t.Context(), "dash-1")
	require.Error(t, err)
	assert.True(t, persistence.IsDashboardNotFound(err))
}
