package configsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/mod/semver"

	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/persistence"
)

// SchemaSource supplies the declared configuration schema for a widget type.
// The registry satisfies this.
type SchemaSource interface {
	Definition(widgetType string) *models.WidgetDefinition
}

// Service validates payloads against the owning widget's schema, stamps the
// current schema version and keeps a write-back cache of dirty configurations
// until SaveAll persists them through the storage collaborator.
type Service struct {
	logger         *slog.Logger
	schemas        SchemaSource
	repo           persistence.ConfigurationRepository
	migrations     *migrationChain
	currentVersion string

	mu    sync.Mutex
	cache map[string]*models.Configuration
	dirty map[string]struct{}
}

// NewService creates a configuration service. currentVersion is the schema
// version new configurations are stamped with and migrations target.
func NewService(
	logger *slog.Logger,
	schemas SchemaSource,
	repo persistence.ConfigurationRepository,
	currentVersion string,
) (*Service, error) {
	if canonicalVersion(currentVersion) == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVersion, currentVersion)
	}

	return &Service{
		logger:         logger,
		schemas:        schemas,
		repo:           repo,
		migrations:     newMigrationChain(),
		currentVersion: currentVersion,
		cache:          make(map[string]*models.Configuration),
		dirty:          make(map[string]struct{}),
	}, nil
}

// RegisterMigration adds a version-to-version step to the migration chain.
// Steps must move forward in semver order; duplicate pairs are rejected.
func (s *Service) RegisterMigration(from, to string, migrate MigrateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.migrations.register(from, to, migrate)
}

// ValidateChain checks eagerly that every registered from-version can reach
// the current version, surfacing chain gaps at startup instead of on first
// load.
func (s *Service) ValidateChain() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.migrations.validate(s.currentVersion)
}

// Set validates the payload against the widget's declared schema and stores
// it stamped with the current version. Validation failures come back as a
// *SchemaValidationError carrying field-level violations; the previous
// configuration stays untouched.
func (s *Service) Set(ctx context.Context, nodeID, widgetType string, payload map[string]any) (*models.Configuration, error) {
	definition := s.schemas.Definition(widgetType)
	if definition == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWidgetType, widgetType)
	}

	if err := s.validatePayload(nodeID, definition, payload); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	config := &models.Configuration{
		NodeID:     nodeID,
		WidgetType: widgetType,
		Payload:    payload,
		Version:    s.currentVersion,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if existing, ok := s.cache[nodeID]; ok {
		config.CreatedAt = existing.CreatedAt
	}

	s.cache[nodeID] = config
	s.dirty[nodeID] = struct{}{}

	return config, nil
}

// Get returns the node's configuration. A stored version older than the
// current one is migrated through the chain in ascending order before the
// payload is returned; a payload already at the latest version passes through
// unchanged. Missing configurations yield ErrConfigNotFound.
func (s *Service) Get(ctx context.Context, nodeID string) (*models.Configuration, error) {
	s.mu.Lock()
	config, cached := s.cache[nodeID]
	s.mu.Unlock()

	if !cached {
		stored, err := s.repo.Load(ctx, nodeID, "")
		if err != nil {
			if persistence.IsConfigNotFound(err) {
				return nil, fmt.Errorf("%w: node %q", ErrConfigNotFound, nodeID)
			}

			return nil, err
		}

		config = stored
	}

	migrated, changed, err := s.migrate(config)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[nodeID] = migrated

	if changed {
		s.dirty[nodeID] = struct{}{}
	}
	s.mu.Unlock()

	return migrated, nil
}

// Forget drops the node's configuration from the cache and from storage.
// Used when the owning node is removed from the canvas.
func (s *Service) Forget(ctx context.Context, nodeID string) error {
	s.mu.Lock()
	delete(s.cache, nodeID)
	delete(s.dirty, nodeID)
	s.mu.Unlock()

	err := s.repo.Delete(ctx, nodeID, "")
	if err != nil && !persistence.IsConfigNotFound(err) {
		return err
	}

	return nil
}

// SaveAll persists every dirty configuration. One failing save never blocks
// the others; the failures come back as a list naming each node.
func (s *Service) SaveAll(ctx context.Context) []SaveFailure {
	s.mu.Lock()

	pending := make([]*models.Configuration, 0, len(s.dirty))

	for nodeID := range s.dirty {
		if config, ok := s.cache[nodeID]; ok {
			pending = append(pending, config)
		}
	}
	s.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i].NodeID < pending[j].NodeID })

	var failures []SaveFailure

	for _, config := range pending {
		if err := s.repo.Save(ctx, config); err != nil {
			s.logger.Warn("Failed to persist configuration", "node_id", config.NodeID, "error", err)
			failures = append(failures, SaveFailure{NodeID: config.NodeID, Err: err})

			continue
		}

		s.mu.Lock()
		delete(s.dirty, config.NodeID)
		s.mu.Unlock()
	}

	return failures
}

// HasUnsavedChanges reports whether any configuration is pending persistence.
func (s *Service) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.dirty) > 0
}

func (s *Service) migrate(config *models.Configuration) (*models.Configuration, bool, error) {
	storedV := canonicalVersion(config.Version)
	currentV := canonicalVersion(s.currentVersion)

	if storedV == "" {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidVersion, config.Version)
	}

	// Stored versions never move backwards; anything at or past the current
	// version is returned as-is.
	if semver.Compare(storedV, currentV) >= 0 {
		return config, false, nil
	}

	s.mu.Lock()
	steps, err := s.migrations.path(config.Version, s.currentVersion)
	s.mu.Unlock()

	if err != nil {
		return nil, false, err
	}

	migrated := config.Clone()

	for _, step := range steps {
		payload, err := step.migrate(migrated.Payload)
		if err != nil {
			return nil, false, fmt.Errorf("migration %s -> %s failed for node %q: %w",
				step.from, step.to, config.NodeID, err)
		}

		migrated.Payload = payload
		migrated.Version = step.to
	}

	migrated.Version = s.currentVersion
	migrated.UpdatedAt = time.Now().UTC()

	s.logger.Info("Migrated configuration",
		"node_id", config.NodeID,
		"from_version", config.Version,
		"to_version", s.currentVersion,
	)

	return migrated, true, nil
}

func (s *Service) validatePayload(nodeID string, definition *models.WidgetDefinition, payload map[string]any) error {
	if definition.Schema == nil {
		return nil
	}

	schemaJSON, err := json.Marshal(definition.Schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema for widget %q: %w", definition.Type, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return fmt.Errorf("schema validation failed for widget %q: %w", definition.Type, err)
	}

	if result.Valid() {
		return nil
	}

	violations := make([]FieldViolation, 0, len(result.Errors()))

	for _, resultError := range result.Errors() {
		violations = append(violations, FieldViolation{
			Field:       resultError.Field(),
			Description: resultError.Description(),
		})
	}

	return &SchemaValidationError{
		NodeID:     nodeID,
		WidgetType: definition.Type,
		Violations: violations,
	}
}
