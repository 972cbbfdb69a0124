package registry

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/panelkit/panelkit/pkg/auth"
	"github.com/panelkit/panelkit/pkg/models"
)

// Registry is the authoritative catalog of widget definitions. The primary map
// and the category/capability indices are updated together under one lock, so
// no partial-index state is ever observable. Reads are filtered through the
// injected role provider; definitions carrying a permission tag the current
// role does not hold are invisible to queries.
type Registry struct {
	logger *slog.Logger
	roles  auth.RoleProvider

	mu           sync.RWMutex
	definitions  map[string]*models.WidgetDefinition
	order        []string
	byCategory   map[string][]string
	byCapability map[models.Capability][]string
}

// NewRegistry creates an empty registry. A nil role provider means no
// permission filtering.
func NewRegistry(logger *slog.Logger, roles auth.RoleProvider) *Registry {
	if roles == nil {
		roles = auth.AllowAll{}
	}

	return &Registry{
		logger:       logger,
		roles:        roles,
		definitions:  make(map[string]*models.WidgetDefinition),
		order:        make([]string, 0),
		byCategory:   make(map[string][]string),
		byCapability: make(map[models.Capability][]string),
	}
}

// SetRoleProvider swaps the permission signal. Callers must follow up with a
// full clear-and-reload so no partially filtered catalog is ever observable.
func (r *Registry) SetRoleProvider(roles auth.RoleProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if roles == nil {
		roles = auth.AllowAll{}
	}

	r.roles = roles
}

// Register adds a widget definition to the catalog. It fails with
// ErrDuplicateID if the type id already exists and with ErrMalformedDefinition
// if required metadata or every capability is missing; the already registered
// definition is never overwritten.
func (r *Registry) Register(definition *models.WidgetDefinition) error {
	if err := validateDefinition(definition); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[definition.Type]; exists {
		return &RegistrationError{Op: "Register", WidgetType: definition.Type, Err: ErrDuplicateID}
	}

	r.definitions[definition.Type] = definition
	r.order = append(r.order, definition.Type)
	r.byCategory[definition.Category] = append(r.byCategory[definition.Category], definition.Type)

	for _, capability := range definition.Capabilities.List() {
		r.byCapability[capability] = append(r.byCapability[capability], definition.Type)
	}

	return nil
}

// Unregister removes a definition and all its index entries. A missing id is
// logged and ignored.
func (r *Registry) Unregister(widgetType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	definition, exists := r.definitions[widgetType]
	if !exists {
		r.logger.Warn("Unregister of unknown widget type", "widget_type", widgetType)

		return
	}

	delete(r.definitions, widgetType)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == widgetType })

	r.byCategory[definition.Category] = slices.DeleteFunc(
		r.byCategory[definition.Category],
		func(id string) bool { return id == widgetType },
	)

	for _, capability := range definition.Capabilities.List() {
		r.byCapability[capability] = slices.DeleteFunc(
			r.byCapability[capability],
			func(id string) bool { return id == widgetType },
		)
	}
}

// Clear drops every definition and index entry. Permission re-filtering is a
// full clear-and-reload rather than an incremental patch.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.definitions = make(map[string]*models.WidgetDefinition)
	r.order = r.order[:0]
	r.byCategory = make(map[string][]string)
	r.byCapability = make(map[models.Capability][]string)
}

// Definition returns the definition for the given type id, or nil when the id
// is unknown or hidden from the current role.
func (r *Registry) Definition(widgetType string) *models.WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	definition, exists := r.definitions[widgetType]
	if !exists || !r.visible(definition) {
		return nil
	}

	return definition
}

// AllDefinitions returns the visible definitions in registration order.
func (r *Registry) AllDefinitions() []*models.WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.order)
}

// ByCategory returns the visible definitions registered under the given
// category, in registration order. Unknown categories yield an empty slice.
func (r *Registry) ByCategory(category string) []*models.WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.byCategory[category])
}

// ByCapability returns the visible definitions declaring the given renderer
// capability, in registration order.
func (r *Registry) ByCapability(capability models.Capability) []*models.WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(r.byCapability[capability])
}

// Search filters definitions by case-insensitive substring over name,
// description and keywords, or by exact category match. Matches come back in
// registration order; there is no ranking.
func (r *Registry) Search(query string) []*models.WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return r.collect(r.order)
	}

	matches := make([]*models.WidgetDefinition, 0)

	for _, id := range r.order {
		definition := r.definitions[id]
		if !r.visible(definition) {
			continue
		}

		if definitionMatches(definition, needle) {
			matches = append(matches, definition)
		}
	}

	return matches
}

// Count returns the number of registered definitions, ignoring permission
// filtering.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.definitions)
}

func (r *Registry) collect(ids []string) []*models.WidgetDefinition {
	definitions := make([]*models.WidgetDefinition, 0, len(ids))

	for _, id := range ids {
		if definition, exists := r.definitions[id]; exists && r.visible(definition) {
			definitions = append(definitions, definition)
		}
	}

	return definitions
}

func (r *Registry) visible(definition *models.WidgetDefinition) bool {
	if definition.Permission == "" {
		return true
	}

	return r.roles.HasPermission(definition.Permission)
}

func definitionMatches(definition *models.WidgetDefinition, needle string) bool {
	if strings.Contains(strings.ToLower(definition.Name), needle) {
		return true
	}

	if strings.Contains(strings.ToLower(definition.Description), needle) {
		return true
	}

	if strings.EqualFold(definition.Category, needle) {
		return true
	}

	for _, keyword := range definition.Keywords {
		if strings.Contains(strings.ToLower(keyword), needle) {
			return true
		}
	}

	return false
}

func validateDefinition(definition *models.WidgetDefinition) error {
	if definition == nil {
		return &RegistrationError{Op: "Register", Err: ErrMalformedDefinition}
	}

	if definition.Type == "" || definition.Name == "" || definition.Category == "" {
		return &RegistrationError{Op: "Register", WidgetType: definition.Type, Err: ErrMalformedDefinition}
	}

	// A definition with no declared capability has no renderable surface.
	if len(definition.Capabilities.List()) == 0 {
		return &RegistrationError{Op: "Register", WidgetType: definition.Type, Err: ErrMalformedDefinition}
	}

	return nil
}
