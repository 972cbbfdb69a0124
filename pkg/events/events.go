// Package events defines event types for editor lifecycle notifications.
package events

import (
	"time"

	"github.com/panelkit/panelkit/pkg/models"
)

type EventType string

// Topic carries all editor lifecycle events.
const Topic = "panelkit.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Canvas mutation events.
	NodeAddedEvent        EventType = "node.added"
	NodeUpdatedEvent      EventType = "node.updated"
	NodeRemovedEvent      EventType = "node.removed"
	SelectionChangedEvent EventType = "selection.changed"

	// Configuration events.
	ConfigurationUpdatedEvent EventType = "configuration.updated"

	// Catalog and persistence lifecycle events.
	RegistryReloadedEvent EventType = "registry.reloaded"
	DashboardSavedEvent   EventType = "dashboard.saved"
)

type BaseEvent struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	DashboardID string         `json:"dashboard_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type NodeAdded struct {
	BaseEvent

	NodeID     string      `json:"node_id"`
	WidgetType string      `json:"widget_type"`
	Layout     models.Rect `json:"layout"`
}

func (e NodeAdded) GetType() EventType {
	return NodeAddedEvent
}

type NodeUpdated struct {
	BaseEvent

	NodeID string            `json:"node_id"`
	Patch  *models.NodePatch `json:"patch,omitempty"`
}

func (e NodeUpdated) GetType() EventType {
	return NodeUpdatedEvent
}

type NodeRemoved struct {
	BaseEvent

	NodeID string `json:"node_id"`
}

func (e NodeRemoved) GetType() EventType {
	return NodeRemovedEvent
}

type SelectionChanged struct {
	BaseEvent

	Selected []string `json:"selected"`
}

func (e SelectionChanged) GetType() EventType {
	return SelectionChangedEvent
}

type ConfigurationUpdated struct {
	BaseEvent

	NodeID     string `json:"node_id"`
	WidgetType string `json:"widget_type"`
	Version    string `json:"version"`
}

func (e ConfigurationUpdated) GetType() EventType {
	return ConfigurationUpdatedEvent
}

// RegistryReloaded fires after a full clear-and-reload of the widget catalog,
// for example when the permission filter is reapplied.
type RegistryReloaded struct {
	BaseEvent

	Registered int    `json:"registered"`
	Role       string `json:"role,omitempty"`
}

func (e RegistryReloaded) GetType() EventType {
	return RegistryReloadedEvent
}

type DashboardSaved struct {
	BaseEvent

	NodeCount      int `json:"node_count"`
	ConfigFailures int `json:"config_failures"`
}

func (e DashboardSaved) GetType() EventType {
	return DashboardSavedEvent
}
