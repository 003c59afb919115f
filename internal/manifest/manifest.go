package manifest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the semantic view of a package manifest.
type Manifest struct {
	Name         string
	Version      string
	Dependencies map[string]Dependency
}

// Dependency is one entry of the [dependencies] table.
type Dependency struct {
	Name    string
	Path    string
	Version string
	// Local is set when the declaration carries a path.
	Local bool
}

// LocalDependencies returns the names of path-declared dependencies, sorted.
func (m Manifest) LocalDependencies() []string {
	out := make([]string, 0, len(m.Dependencies))
	for name, dep := range m.Dependencies {
		if dep.Local {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

type rawManifest struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
	Dependencies map[string]any `toml:"dependencies"`
}

// Decode parses manifest text. A missing project name is not an error here;
// the index enforces it with directory context.
func Decode(data []byte) (Manifest, error) {
	var raw rawManifest
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return Manifest{}, err
	}

	m := Manifest{
		Name:         strings.TrimSpace(raw.Project.Name),
		Version:      strings.TrimSpace(raw.Project.Version),
		Dependencies: make(map[string]Dependency, len(raw.Dependencies)),
	}
	for name, value := range raw.Dependencies {
		dep, err := decodeDependency(name, value)
		if err != nil {
			return Manifest{}, err
		}
		m.Dependencies[name] = dep
	}
	return m, nil
}

func decodeDependency(name string, value any) (Dependency, error) {
	dep := Dependency{Name: name}
	switch v := value.(type) {
	case string:
		dep.Version = v
	case map[string]any:
		if path, ok := v["path"]; ok {
			s, ok := path.(string)
			if !ok {
				return Dependency{}, fmt.Errorf("dependency %q: path must be a string", name)
			}
			dep.Path = s
			dep.Local = true
		}
		if version, ok := v["version"]; ok {
			s, ok := version.(string)
			if !ok {
				return Dependency{}, fmt.Errorf("dependency %q: version must be a string", name)
			}
			dep.Version = s
		}
	default:
		return Dependency{}, fmt.Errorf("dependency %q: unsupported value %T", name, value)
	}
	return dep, nil
}
