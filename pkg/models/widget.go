// Package models defines the core domain models for the dashboard widget engine.
package models

// Built-in widget categories.
const (
	CategoryChart   = "chart"
	CategoryData    = "data"
	CategoryControl = "control"
	CategorySystem  = "system"
)

// Capability identifies a renderer capability a widget may declare.
type Capability string

const (
	CapabilityDataDriven   Capability = "data-driven"   // Widget pulls data from a data source
	CapabilityInteractive  Capability = "interactive"   // Widget participates in cross-widget interactions
	CapabilityConfigurable Capability = "configurable"  // Widget exposes a configuration form
)

// Capabilities declares what a widget can do, checked explicitly instead of
// probing for optional fields.
type Capabilities struct {
	DataDriven   bool `json:"data_driven"`
	Interactive  bool `json:"interactive"`
	Configurable bool `json:"configurable"`
}

// Has reports whether the given capability is declared.
func (c Capabilities) Has(capability Capability) bool {
	switch capability {
	case CapabilityDataDriven:
		return c.DataDriven
	case CapabilityInteractive:
		return c.Interactive
	case CapabilityConfigurable:
		return c.Configurable
	default:
		return false
	}
}

// List returns the declared capabilities.
func (c Capabilities) List() []Capability {
	capabilities := make([]Capability, 0, 3)

	if c.DataDriven {
		capabilities = append(capabilities, CapabilityDataDriven)
	}

	if c.Interactive {
		capabilities = append(capabilities, CapabilityInteractive)
	}

	if c.Configurable {
		capabilities = append(capabilities, CapabilityConfigurable)
	}

	return capabilities
}

// Layout declares a widget's default and permitted grid footprint.
type Layout struct {
	W    int `json:"w"`
	H    int `json:"h"`
	MinW int `json:"min_w,omitempty"`
	MinH int `json:"min_h,omitempty"`
	MaxW int `json:"max_w,omitempty"`
	MaxH int `json:"max_h,omitempty"`
}

// DataSource declares a named data binding a data-driven widget consumes.
type DataSource struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Kind is the transport the binding uses: "telemetry", "attribute" or "http".
	Kind string `json:"kind"`
}

// WidgetDefinition is the immutable descriptor of a registered widget type.
// Definitions are created at discovery time and never mutated; a permission
// re-filter replaces the whole catalog rather than patching entries.
type WidgetDefinition struct {
	Type               string         `json:"type"                          validate:"required"`
	Name               string         `json:"name"                          validate:"required"`
	Description        string         `json:"description,omitempty"`
	Version            string         `json:"version"                       validate:"required"`
	Category           string         `json:"category"                      validate:"required"`
	Keywords           []string       `json:"keywords,omitempty"`
	Capabilities       Capabilities   `json:"capabilities"`
	DefaultConfig      map[string]any `json:"default_config,omitempty"`
	DefaultLayout      Layout         `json:"default_layout"`
	Schema             *JSONSchema    `json:"schema,omitempty"`
	DataSources        []DataSource   `json:"data_sources,omitempty"`
	SupportedEvents    []string       `json:"supported_events,omitempty"`
	WatchableProperties []string      `json:"watchable_properties,omitempty"`
	Permission         string         `json:"permission,omitempty"`
}
