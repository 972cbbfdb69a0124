package configsvc

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// MigrateFunc transforms a configuration payload from one schema version to
// the next. It receives its own copy of the payload and returns the
// transformed one.
type MigrateFunc func(payload map[string]any) (map[string]any, error)

type migrationStep struct {
	from    string
	to      string
	migrate MigrateFunc
}

// migrationChain holds registered migration steps as an explicit edge list
// and resolves stored-to-current paths by breadth-first search, so a gap in
// the chain is an unreachable target rather than a silent skip.
type migrationChain struct {
	steps map[string][]migrationStep // keyed by canonical from-version
}

func newMigrationChain() *migrationChain {
	return &migrationChain{steps: make(map[string][]migrationStep)}
}

// canonicalVersion normalizes a version string to the "vX.Y.Z" form semver
// comparison needs. Returns "" for versions that do not parse.
func canonicalVersion(version string) string {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	if !semver.IsValid(v) {
		return ""
	}

	return v
}

func (c *migrationChain) register(from, to string, migrate MigrateFunc) error {
	fromV := canonicalVersion(from)
	toV := canonicalVersion(to)

	if fromV == "" || toV == "" {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidVersion, from, to)
	}

	if semver.Compare(fromV, toV) >= 0 {
		return fmt.Errorf("%w: %q must precede %q", ErrInvalidVersion, from, to)
	}

	for _, step := range c.steps[fromV] {
		if step.to == toV {
			return fmt.Errorf("%w: %q -> %q", ErrDuplicateMigration, from, to)
		}
	}

	c.steps[fromV] = append(c.steps[fromV], migrationStep{from: fromV, to: toV, migrate: migrate})

	return nil
}

// path returns the shortest migration sequence from one version to another.
// Equal versions yield an empty path. An unreachable target is a gap.
func (c *migrationChain) path(from, to string) ([]migrationStep, error) {
	fromV := canonicalVersion(from)
	toV := canonicalVersion(to)

	if fromV == "" || toV == "" {
		return nil, fmt.Errorf("%w: %q -> %q", ErrInvalidVersion, from, to)
	}

	if semver.Compare(fromV, toV) == 0 {
		return nil, nil
	}

	type queued struct {
		version string
		trail   []migrationStep
	}

	visited := map[string]bool{fromV: true}
	queue := []queued{{version: fromV}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, step := range c.steps[current.version] {
			if visited[step.to] {
				continue
			}

			trail := make([]migrationStep, len(current.trail), len(current.trail)+1)
			copy(trail, current.trail)
			trail = append(trail, step)

			if step.to == toV {
				return trail, nil
			}

			visited[step.to] = true
			queue = append(queue, queued{version: step.to, trail: trail})
		}
	}

	return nil, fmt.Errorf("%w: no path from %q to %q", ErrMigrationGap, from, to)
}

// validate checks that every registered from-version can reach the target.
func (c *migrationChain) validate(target string) error {
	for from := range c.steps {
		if _, err := c.path(from, target); err != nil {
			return err
		}
	}

	return nil
}
