package dataflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/panelkit/panelkit/pkg/canvas"
	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/eventbus"
	"github.com/panelkit/panelkit/pkg/events"
	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/otelhelper"
)

// SideEffect is a named best-effort handler run after a primary mutation
// commits. Condition gates which actions it fires for; Execute failures are
// reported through the error observers and never roll the mutation back.
type SideEffect struct {
	Name      string
	Condition func(action models.UserAction) bool
	Execute   func(ctx context.Context, action models.UserAction) error
}

// ErrorHandler observes side-effect and observer failures.
type ErrorHandler func(err error)

// UpdateHandler observes every terminal action result.
type UpdateHandler func(result models.ActionResult)

// Manager is the single funnel for all store mutations. Actions are applied
// in submission order: the mutex holds each action to completion, including
// its side effects, before the next one is accepted.
type Manager struct {
	logger      *slog.Logger
	store       *canvas.Store
	configs     *configsvc.Service
	bus         eventbus.EventBus
	tracer      trace.Tracer
	dashboardID string

	dispatchMu sync.Mutex

	mu             sync.RWMutex
	sideEffects    []SideEffect
	errorHandlers  []ErrorHandler
	updateHandlers []UpdateHandler
}

// NewManager creates a manager over the given store and configuration
// service. The event bus and tracer are optional.
func NewManager(
	logger *slog.Logger,
	store *canvas.Store,
	configs *configsvc.Service,
	bus eventbus.EventBus,
	tracer trace.Tracer,
) *Manager {
	return &Manager{
		logger:  logger,
		store:   store,
		configs: configs,
		bus:     bus,
		tracer:  tracer,
	}
}

// SetDashboardID sets the dashboard id stamped on published events.
func (m *Manager) SetDashboardID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dashboardID = id
}

// RegisterSideEffect adds a handler; handlers run in registration order.
func (m *Manager) RegisterSideEffect(effect SideEffect) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sideEffects = append(m.sideEffects, effect)
}

// OnError registers a synchronous observer for side-effect failures.
func (m *Manager) OnError(handler ErrorHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errorHandlers = append(m.errorHandlers, handler)
}

// OnUpdate registers a synchronous observer invoked with every terminal
// action result.
func (m *Manager) OnUpdate(handler UpdateHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateHandlers = append(m.updateHandlers, handler)
}

// HandleUserAction dispatches one action through the pipeline:
// received -> validated -> applied -> side-effects-run -> completed. A
// validation failure short-circuits to failed without touching the store;
// apply failures leave the store unchanged and come back in the result
// rather than being thrown.
func (m *Manager) HandleUserAction(ctx context.Context, action models.UserAction) models.ActionResult {
	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	if m.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, m.tracer, "dataflow.handle_user_action",
			attribute.String(otelhelper.ActionTypeKey, string(action.Type)),
			attribute.String(otelhelper.TargetIDKey, action.TargetID),
		)
		defer span.End()
	}

	result := models.ActionResult{Action: action, State: models.ActionStateReceived}

	if err := validateAction(action); err != nil {
		return m.fail(ctx, result, err)
	}

	result.State = models.ActionStateValidated

	if err := m.apply(ctx, action); err != nil {
		return m.fail(ctx, result, err)
	}

	result.State = models.ActionStateApplied

	m.runSideEffects(ctx, action)
	result.State = models.ActionStateSideEffectsRun

	m.publishEvent(ctx, action)

	result.State = models.ActionStateCompleted
	m.notifyUpdate(result)

	return result
}

func (m *Manager) fail(ctx context.Context, result models.ActionResult, err error) models.ActionResult {
	result.State = models.ActionStateFailed
	result.Err = err

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		otelhelper.SetError(span, err)
	}

	m.logger.Warn("User action failed",
		"action_type", string(result.Action.Type),
		"target_id", result.Action.TargetID,
		"state", string(result.State),
		"error", err,
	)
	m.notifyUpdate(result)

	return result
}

func (m *Manager) apply(ctx context.Context, action models.UserAction) error {
	switch action.Type {
	case models.ActionAddNode:
		return m.store.AddNode(action.Node)

	case models.ActionUpdateNode:
		return m.store.UpdateNode(action.TargetID, *action.Patch)

	case models.ActionRemoveNode:
		m.store.RemoveNode(action.TargetID)

		// Stored configuration follows its node. A failing delete is logged,
		// not surfaced; the node removal already committed.
		if err := m.configs.Forget(ctx, action.TargetID); err != nil {
			m.logger.Warn("Failed to drop configuration for removed node",
				"node_id", action.TargetID, "error", err)
		}

		return nil

	case models.ActionUpdateConfiguration:
		node := m.store.Node(action.TargetID)
		if node == nil {
			return &canvas.NodeError{Op: "UpdateConfiguration", NodeID: action.TargetID, Err: canvas.ErrNodeNotFound}
		}

		if _, err := m.configs.Set(ctx, action.TargetID, node.WidgetType, action.Config); err != nil {
			return err
		}

		return m.store.UpdateNode(action.TargetID, models.NodePatch{Config: action.Config})

	case models.ActionSelectNodes:
		m.store.SelectNodes(action.NodeIDs)

		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionType, action.Type)
	}
}

func (m *Manager) runSideEffects(ctx context.Context, action models.UserAction) {
	m.mu.RLock()
	sideEffects := m.sideEffects
	m.mu.RUnlock()

	for _, effect := range sideEffects {
		if effect.Condition != nil && !effect.Condition(action) {
			continue
		}

		if err := m.runSideEffect(ctx, effect, action); err != nil {
			m.notifyError(&SideEffectError{Handler: effect.Name, Err: err})
		}
	}
}

// runSideEffect isolates one handler invocation so a panic inside it cannot
// escape the dispatcher.
func (m *Manager) runSideEffect(ctx context.Context, effect SideEffect, action models.UserAction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return effect.Execute(ctx, action)
}

func (m *Manager) notifyError(err error) {
	m.logger.Warn("Side effect failed", "error", err)

	m.mu.RLock()
	handlers := m.errorHandlers
	m.mu.RUnlock()

	for _, handler := range handlers {
		handler(err)
	}
}

func (m *Manager) notifyUpdate(result models.ActionResult) {
	m.mu.RLock()
	handlers := m.updateHandlers
	m.mu.RUnlock()

	for _, handler := range handlers {
		handler(result)
	}
}

func (m *Manager) publishEvent(ctx context.Context, action models.UserAction) {
	if m.bus == nil {
		return
	}

	m.mu.RLock()
	dashboardID := m.dashboardID
	m.mu.RUnlock()

	event := m.buildEvent(action)
	if event == nil {
		return
	}

	if err := m.bus.Publish(ctx, dashboardID, event); err != nil {
		m.logger.Warn("Failed to publish dataflow event",
			"event_type", string(event.GetType()), "error", err)
	}
}

func (m *Manager) buildEvent(action models.UserAction) eventbus.Event {
	m.mu.RLock()
	dashboardID := m.dashboardID
	m.mu.RUnlock()

	base := events.BaseEvent{
		ID:          m.bus.GenerateID(),
		Timestamp:   time.Now().UTC(),
		DashboardID: dashboardID,
	}

	switch action.Type {
	case models.ActionAddNode:
		base.Type = events.NodeAddedEvent

		return events.NodeAdded{
			BaseEvent:  base,
			NodeID:     action.Node.ID,
			WidgetType: action.Node.WidgetType,
			Layout:     action.Node.Layout,
		}
	case models.ActionUpdateNode:
		base.Type = events.NodeUpdatedEvent

		return events.NodeUpdated{BaseEvent: base, NodeID: action.TargetID, Patch: action.Patch}
	case models.ActionRemoveNode:
		base.Type = events.NodeRemovedEvent

		return events.NodeRemoved{BaseEvent: base, NodeID: action.TargetID}
	case models.ActionUpdateConfiguration:
		base.Type = events.ConfigurationUpdatedEvent

		node := m.store.Node(action.TargetID)
		widgetType := ""

		if node != nil {
			widgetType = node.WidgetType
		}

		return events.ConfigurationUpdated{BaseEvent: base, NodeID: action.TargetID, WidgetType: widgetType}
	case models.ActionSelectNodes:
		base.Type = events.SelectionChangedEvent

		return events.SelectionChanged{BaseEvent: base, Selected: m.store.Selection()}
	default:
		return nil
	}
}

func validateAction(action models.UserAction) error {
	switch action.Type {
	case models.ActionAddNode:
		if action.Node == nil || action.Node.ID == "" || action.Node.WidgetType == "" {
			return fmt.Errorf("%w: add-node requires a node with id and widget type", ErrInvalidAction)
		}
	case models.ActionUpdateNode:
		if action.TargetID == "" || action.Patch == nil {
			return fmt.Errorf("%w: update-node requires a target id and a patch", ErrInvalidAction)
		}
	case models.ActionRemoveNode:
		if action.TargetID == "" {
			return fmt.Errorf("%w: remove-node requires a target id", ErrInvalidAction)
		}
	case models.ActionUpdateConfiguration:
		if action.TargetID == "" || action.Config == nil {
			return fmt.Errorf("%w: update-configuration requires a target id and a payload", ErrInvalidAction)
		}
	case models.ActionSelectNodes:
		// An empty id list is a valid "clear selection".
	default:
		return fmt.Errorf("%w: %q", ErrUnknownActionType, action.Type)
	}

	return nil
}
