package dataflow

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panelkit/panelkit/pkg/canvas"
	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence"
)

type staticSchemas struct{}

func (staticSchemas) Definition(widgetType string) *models.WidgetDefinition {
	if widgetType != "chart" {
		return nil
	}

	return &models.WidgetDefinition{
		Type:         "chart",
		Name:         "Chart",
		Category:     models.CategoryChart,
		Capabilities: models.Capabilities{DataDriven: true, Configurable: true},
	}
}

type memConfigRepo struct {
	stored map[string]*models.Configuration
}

func (m *memConfigRepo) Save(_ context.Context, config *models.Configuration) error {
	m.stored[config.NodeID] = config

	return nil
}

func (m *memConfigRepo) Load(_ context.Context, nodeID, _ string) (*models.Configuration, error) {
	config, ok := m.stored[nodeID]
	if !ok {
		return nil, persistence.ErrConfigNotFound
	}

	return config, nil
}

func (m *memConfigRepo) Delete(_ context.Context, nodeID, _ string) error {
	delete(m.stored, nodeID)

	return nil
}

func (m *memConfigRepo) History(_ context.Context, _ string) ([]*models.Configuration, error) {
	return nil, nil
}

func newTestManager(t *testing.T) (*Manager, *canvas.Store, *configsvc.Service) {
	t.Helper()

	store := canvas.NewStore(nil)

	configs, err := configsvc.NewService(
		slog.Default(),
		staticSchemas{},
		&memConfigRepo{stored: make(map[string]*models.Configuration)},
		"1.0.0",
	)
	require.NoError(t, err)

	return NewManager(slog.Default(), store, configs, nil, nil), store, configs
}

func chartNode(id string) *models.CanvasNode {
	return &models.CanvasNode{
		ID:         id,
		WidgetType: "chart",
		Layout:     models.Rect{W: 4, H: 3},
	}
}

func TestManager_HandleUserAction_AddNode(t *testing.T) {
	manager, store, _ := newTestManager(t)

	result := manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	})

	assert.True(t, result.OK())
	assert.Equal(t, models.ActionStateCompleted, result.State)
	assert.NotNil(t, store.Node("node-1"))
}

func TestManager_HandleUserAction_ValidationShortCircuits(t *testing.T) {
	manager, store, _ := newTestManager(t)

	tests := []struct {
		name   string
		action models.UserAction
	}{
		{name: "add without node", action: models.UserAction{Type: models.ActionAddNode}},
		{name: "update without patch", action: models.UserAction{Type: models.ActionUpdateNode, TargetID: "x"}},
		{name: "remove without target", action: models.UserAction{Type: models.ActionRemoveNode}},
		{name: "configure without payload", action: models.UserAction{Type: models.ActionUpdateConfiguration, TargetID: "x"}},
		{name: "unknown type", action: models.UserAction{Type: "explode"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := manager.HandleUserAction(t.Context(), tt.action)

			assert.Equal(t, models.ActionStateFailed, result.State)
			assert.Error(t, result.Err)
			assert.False(t, result.OK())
		})
	}

	assert.Empty(t, store.Nodes())
}

func TestManager_HandleUserAction_ApplyFailureReturnsResult(t *testing.T) {
	manager, store, _ := newTestManager(t)

	require.True(t, manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	}).OK())

	result := manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	})

	assert.Equal(t, models.ActionStateFailed, result.State)
	assert.True(t, canvas.IsDuplicateNodeID(result.Err))
	assert.Len(t, store.Nodes(), 1)
}

func TestManager_HandleUserAction_UpdateConfiguration(t *testing.T) {
	manager, store, configs := newTestManager(t)

	require.True(t, manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	}).OK())

	result := manager.HandleUserAction(t.Context(), models.UserAction{
		Type:     models.ActionUpdateConfiguration,
		TargetID: "node-1",
		Config:   map[string]any{"title": "CPU"},
	})
	require.True(t, result.OK())

	config, err := configs.Get(t.Context(), "node-1")
	require.NoError(t, err)
	assert.Equal(t, "CPU", config.Payload["title"])

	// The node carries the applied config for snapshotting.
	assert.Equal(t, "CPU", store.Node("node-1").Config["title"])
}

func TestManager_HandleUserAction_ConfigureMissingNode(t *testing.T) {
	manager, _, _ := newTestManager(t)

	result := manager.HandleUserAction(t.Context(), models.UserAction{
		Type:     models.ActionUpdateConfiguration,
		TargetID: "ghost",
		Config:   map[string]any{"title": "CPU"},
	})

	assert.Equal(t, models.ActionStateFailed, result.State)
	assert.True(t, canvas.IsNodeNotFound(result.Err))
}

func TestManager_HandleUserAction_RemoveNodeDropsConfiguration(t *testing.T) {
	manager, store, configs := newTestManager(t)

	require.True(t, manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	}).OK())
	require.True(t, manager.HandleUserAction(t.Context(), models.UserAction{
		Type:     models.ActionUpdateConfiguration,
		TargetID: "node-1",
		Config:   map[string]any{"title": "CPU"},
	}).OK())

	result := manager.HandleUserAction(t.Context(), models.UserAction{
		Type:     models.ActionRemoveNode,
		TargetID: "node-1",
	})
	require.True(t, result.OK())

	assert.Nil(t, store.Node("node-1"))

	_, err := configs.Get(t.Context(), "node-1")
	assert.ErrorIs(t, err, configsvc.ErrConfigNotFound)
}

func TestManager_HandleUserAction_SelectNodes(t *testing.T) {
	manager, store, _ := newTestManager(t)

	for _, id := range []string{"node-1", "node-2"} {
		require.True(t, manager.HandleUserAction(t.Context(), models.UserAction{
			Type: models.ActionAddNode,
			Node: chartNode(id),
		}).OK())
	}

	result := manager.HandleUserAction(t.Context(), models.UserAction{
		Type:    models.ActionSelectNodes,
		NodeIDs: []string{"node-2", "ghost"},
	})
	require.True(t, result.OK())
	assert.Equal(t, []string{"node-2"}, store.Selection())

	// Clearing the selection is a valid action.
	result = manager.HandleUserAction(t.Context(), models.UserAction{Type: models.ActionSelectNodes})
	require.True(t, result.OK())
	assert.Empty(t, store.Selection())
}

func TestManager_SideEffects_RunAfterMutation(t *testing.T) {
	manager, _, _ := newTestManager(t)

	var fired []string

	manager.RegisterSideEffect(SideEffect{
		Name:      "audit",
		Condition: func(action models.UserAction) bool { return action.Type == models.ActionAddNode },
		Execute: func(_ context.Context, action models.UserAction) error {
			fired = append(fired, action.Node.ID)

			return nil
		},
	})

	require.True(t, manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	}).OK())
	require.True(t, manager.HandleUserAction(t.Context(), models.UserAction{
		Type:     models.ActionRemoveNode,
		TargetID: "node-1",
	}).OK())

	// The condition gated the remove action out.
	assert.Equal(t, []string{"node-1"}, fired)
}

func TestManager_SideEffects_SkippedOnFailedAction(t *testing.T) {
	manager, _, _ := newTestManager(t)

	fired := false

	manager.RegisterSideEffect(SideEffect{
		Name:    "audit",
		Execute: func(context.Context, models.UserAction) error { fired = true; return nil },
	})

	result := manager.HandleUserAction(t.Context(), models.UserAction{Type: models.ActionAddNode})

	assert.Equal(t, models.ActionStateFailed, result.State)
	assert.False(t, fired)
}

func TestManager_SideEffectFailureNeverBlocksDispatch(t *testing.T) {
	manager, store, _ := newTestManager(t)

	var reported []error

	manager.OnError(func(err error) { reported = append(reported, err) })

	manager.RegisterSideEffect(SideEffect{
		Name:    "broken",
		Execute: func(context.Context, models.UserAction) error { return errors.New("boom") },
	})
	manager.RegisterSideEffect(SideEffect{
		Name:    "panicky",
		Execute: func(context.Context, models.UserAction) error { panic("much worse") },
	})

	survived := false

	manager.RegisterSideEffect(SideEffect{
		Name:    "survivor",
		Execute: func(context.Context, models.UserAction) error { survived = true; return nil },
	})

	result := manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	})

	// The mutation committed and the action completed despite both failures.
	assert.True(t, result.OK())
	assert.NotNil(t, store.Node("node-1"))
	assert.True(t, survived)

	require.Len(t, reported, 2)

	var sideEffectErr *SideEffectError
	require.ErrorAs(t, reported[0], &sideEffectErr)
	assert.Equal(t, "broken", sideEffectErr.Handler)

	require.ErrorAs(t, reported[1], &sideEffectErr)
	assert.Equal(t, "panicky", sideEffectErr.Handler)
	assert.Contains(t, sideEffectErr.Error(), "panic")
}

func TestManager_OnUpdate_SeesTerminalResults(t *testing.T) {
	manager, _, _ := newTestManager(t)

	var states []models.ActionState

	manager.OnUpdate(func(result models.ActionResult) { states = append(states, result.State) })

	manager.HandleUserAction(t.Context(), models.UserAction{
		Type: models.ActionAddNode,
		Node: chartNode("node-1"),
	})
	manager.HandleUserAction(t.Context(), models.UserAction{Type: "explode"})

	assert.Equal(t, []models.ActionState{
		models.ActionStateCompleted,
		models.ActionStateFailed,
	}, states)
}
