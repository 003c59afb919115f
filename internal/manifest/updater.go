package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Updater rewrites dependents after a package is published.
type Updater struct {
	log zerolog.Logger
	// OnUpdate is called after each manifest write.
	OnUpdate func(pkg *Package, dependency string)
}

func NewUpdater(logger zerolog.Logger) *Updater {
	return &Updater{log: logger}
}

// Apply pins every other package that still declares a path dependency on
// published to version. Each changed manifest is written before the next is
// considered; nothing is rolled back on failure. It returns the directories
// whose manifests were rewritten.
func (u *Updater) Apply(idx *Index, published, version string) ([]string, error) {
	var updated []string
	for _, pkg := range idx.packages {
		if pkg.Name() == published {
			continue
		}
		next, changed, err := pkg.Doc.PinDependency(published, version)
		if err != nil {
			return updated, fmt.Errorf("update %s in %s: %w", published, pkg.Dir, err)
		}
		if !changed {
			continue
		}

		u.log.Info().
			Str("dependency", published).
			Str("package", pkg.Name()).
			Str("version", version).
			Msgf("Updating dependency '%s' in %s's manifest", published, pkg.Name())
		if err := writeManifest(pkg.ManifestPath, next.Bytes()); err != nil {
			return updated, fmt.Errorf("%w: %s for %s: %w", ErrManifestWrite, pkg.ManifestPath, pkg.Dir, err)
		}
		pkg.Doc = next
		updated = append(updated, pkg.Dir)
		if u.OnUpdate != nil {
			u.OnUpdate(pkg, published)
		}
	}
	return updated, nil
}

func writeManifest(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		if !info.Mode().IsRegular() {
			return errors.New("not a regular file")
		}
		perm = info.Mode().Perm()
	}
	return os.WriteFile(path, data, perm)
}
