package registry

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"path"

	"github.com/panelkit/panelkit/pkg/models"
)

// ManifestFileName is the descriptor file a widget module must carry to be
// discoverable.
const ManifestFileName = "manifest.json"

// DiscoveryResult reports the outcome of one auto-registration pass.
type DiscoveryResult struct {
	Registered int
	Skipped    []string // module paths skipped for missing a usable type
	Errors     []error  // per-module registration failures
}

// Loader discovers widget modules and registers their definitions.
type Loader struct {
	logger   *slog.Logger
	registry *Registry
}

// NewLoader creates a loader bound to the given registry.
func NewLoader(logger *slog.Logger, registry *Registry) *Loader {
	return &Loader{logger: logger, registry: registry}
}

// Discover walks fsys for manifest.json files and parses them into a module
// map keyed by manifest path. A malformed manifest is logged and skipped; it
// never aborts discovery of the remaining modules.
func (l *Loader) Discover(fsys fs.FS) (map[string]*models.Manifest, error) {
	modules := make(map[string]*models.Manifest)

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || path.Base(p) != ManifestFileName {
			return nil
		}

		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			l.logger.Warn("Failed to read widget manifest", "module", p, "error", err)

			return nil
		}

		manifest := &models.Manifest{}
		if err := json.Unmarshal(raw, manifest); err != nil {
			l.logger.Warn("Failed to parse widget manifest", "module", p, "error", err)

			return nil
		}

		modules[p] = manifest

		return nil
	})
	if err != nil {
		return nil, err
	}

	return modules, nil
}

// AutoRegister clears the registry and registers every module in the map.
// Re-running against the same module set is therefore idempotent: the pass
// always starts from an empty catalog (clear-then-reload, not upsert).
// Modules missing a usable type are skipped with a warning; a failing module
// does not abort the rest of the batch.
func (l *Loader) AutoRegister(modules map[string]*models.Manifest) DiscoveryResult {
	l.registry.Clear()

	return l.registerModules(modules)
}

// RegisterModules registers modules into the current catalog without clearing
// it first. Used to layer manifest-discovered widgets over the built-ins.
func (l *Loader) RegisterModules(modules map[string]*models.Manifest) DiscoveryResult {
	return l.registerModules(modules)
}

func (l *Loader) registerModules(modules map[string]*models.Manifest) DiscoveryResult {
	result := DiscoveryResult{}

	for modulePath, manifest := range modules {
		if manifest == nil || manifest.Type == "" {
			l.logger.Warn("Skipping widget module without a usable type", "module", modulePath)
			result.Skipped = append(result.Skipped, modulePath)

			continue
		}

		if err := l.registry.Register(manifest.Definition()); err != nil {
			l.logger.Warn("Failed to register widget module",
				"module", modulePath,
				"widget_type", manifest.Type,
				"error", err,
			)
			result.Errors = append(result.Errors, &RegistrationError{
				Op:         "AutoRegister",
				WidgetType: manifest.Type,
				Module:     modulePath,
				Err:        err,
			})

			continue
		}

		result.Registered++
	}

	return result
}
