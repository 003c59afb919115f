package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Options selects package directories under a release root.
type Options struct {
	// DirPrefix filters immediate subdirectories by name; empty matches all.
	DirPrefix string
	// ManifestName is the manifest file expected in every package directory.
	ManifestName string
}

// Package is one discovered package. Disk operations use Dir; the graph
// uses the declared name.
type Package struct {
	Dir          string
	Path         string
	ManifestPath string
	Doc          *Document
}

func (p *Package) Name() string    { return p.Doc.Manifest().Name }
func (p *Package) Version() string { return p.Doc.Manifest().Version }

// Index maps directory names and declared names to packages.
type Index struct {
	packages []*Package
	byDir    map[string]*Package
	byName   map[string]*Package
}

// LoadIndex discovers and parses every package under root. Any candidate
// directory without a readable, parseable, named manifest fails the load.
func LoadIndex(root string, opts Options) (*Index, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read package root %s: %w", root, err)
	}

	idx := &Index{
		byDir:  make(map[string]*Package),
		byName: make(map[string]*Package),
	}
	for _, entry := range entries {
		dir := entry.Name()
		if !strings.HasPrefix(dir, opts.DirPrefix) {
			continue
		}
		path := filepath.Join(root, dir)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}

		pkg, err := loadPackage(dir, path, opts.ManifestName)
		if err != nil {
			return nil, err
		}
		if prev, ok := idx.byName[pkg.Name()]; ok {
			return nil, fmt.Errorf("%w: %q declared by %s and %s", ErrDuplicateName, pkg.Name(), prev.Dir, dir)
		}
		idx.packages = append(idx.packages, pkg)
		idx.byDir[dir] = pkg
		idx.byName[pkg.Name()] = pkg
	}
	return idx, nil
}

func loadPackage(dir, path, manifestName string) (*Package, error) {
	manifestPath := filepath.Join(path, manifestName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s for %s: %w", ErrManifestMissing, manifestName, dir, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s for %s: %w", ErrManifestInvalid, manifestName, dir, err)
	}
	if doc.Manifest().Name == "" {
		return nil, fmt.Errorf("%w: %s for %s", ErrMissingName, manifestName, dir)
	}
	return &Package{
		Dir:          dir,
		Path:         path,
		ManifestPath: manifestPath,
		Doc:          doc,
	}, nil
}

// Packages returns packages in directory order.
func (i *Index) Packages() []*Package {
	out := make([]*Package, len(i.packages))
	copy(out, i.packages)
	return out
}

func (i *Index) Len() int { return len(i.packages) }

func (i *Index) ByDir(dir string) (*Package, bool) {
	p, ok := i.byDir[dir]
	return p, ok
}

// Lookup resolves a declared package name.
func (i *Index) Lookup(name string) (*Package, bool) {
	p, ok := i.byName[name]
	return p, ok
}
