package models

// Manifest is the parsed manifest.json of a discoverable widget module. It is
// the loose on-disk contract; the loader converts it into a WidgetDefinition
// and skips manifests with no usable type.
type Manifest struct {
	Type                string         `json:"type"`
	Name                string         `json:"name"`
	Description         string         `json:"description,omitempty"`
	Version             string         `json:"version"`
	Category            string         `json:"category"`
	Keywords            []string       `json:"keywords,omitempty"`
	Capabilities        Capabilities   `json:"capabilities"`
	DefaultConfig       map[string]any `json:"default_config,omitempty"`
	DefaultLayout       Layout         `json:"default_layout"`
	Schema              *JSONSchema    `json:"schema,omitempty"`
	DataSources         []DataSource   `json:"data_sources,omitempty"`
	SupportedEvents     []string       `json:"supported_events,omitempty"`
	WatchableProperties []string       `json:"watchable_properties,omitempty"`
	Permission          string         `json:"permission,omitempty"`
}

// Definition converts the manifest into a widget definition.
func (m *Manifest) Definition() *WidgetDefinition {
	return &WidgetDefinition{
		Type:                m.Type,
		Name:                m.Name,
		Description:         m.Description,
		Version:             m.Version,
		Category:            m.Category,
		Keywords:            m.Keywords,
		Capabilities:        m.Capabilities,
		DefaultConfig:       m.DefaultConfig,
		DefaultLayout:       m.DefaultLayout,
		Schema:              m.Schema,
		DataSources:         m.DataSources,
		SupportedEvents:     m.SupportedEvents,
		WatchableProperties: m.WatchableProperties,
		Permission:          m.Permission,
	}
}
