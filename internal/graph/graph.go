package graph

import (
	"sort"
	"strings"
)

// Node is one package as seen by the graph builder.
type Node struct {
	Name string
	// LocalDeps lists path-declared dependency names. Names that are not
	// nodes of the graph are ignored.
	LocalDeps []string
}

// Graph is an immutable dependency graph. Edges point from a dependency to
// the package that depends on it.
type Graph struct {
	names   []string       // by index, sorted ascending
	index   map[string]int // name -> index
	out     [][]int        // dependents, sorted ascending
	indeg   []int
	ignored map[string][]string
}

// New builds the graph. Empty and duplicate names are rejected.
func New(nodes []Node) (*Graph, error) {
	names := make([]string, 0, len(nodes))
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		name := strings.TrimSpace(n.Name)
		if name == "" {
			return nil, invalidf("package name is required")
		}
		if _, ok := seen[name]; ok {
			return nil, invalidf("duplicate package name: %q", name)
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}

	g := &Graph{
		names:   names,
		index:   index,
		out:     make([][]int, len(names)),
		indeg:   make([]int, len(names)),
		ignored: make(map[string][]string),
	}

	type edge struct{ from, to int }
	edges := make(map[edge]struct{})
	for _, n := range nodes {
		to := index[strings.TrimSpace(n.Name)]
		for _, dep := range n.LocalDeps {
			from, ok := index[dep]
			if !ok {
				g.ignored[names[to]] = append(g.ignored[names[to]], dep)
				continue
			}
			e := edge{from: from, to: to}
			if _, dup := edges[e]; dup {
				continue
			}
			edges[e] = struct{}{}
			g.out[from] = append(g.out[from], to)
			g.indeg[to]++
		}
	}
	for i := range g.out {
		sort.Ints(g.out[i])
	}
	return g, nil
}

// Len returns the number of packages.
func (g *Graph) Len() int { return len(g.names) }

// Names returns package names in index order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Has reports whether name is a node.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Dependents returns the direct dependents of name.
func (g *Graph) Dependents(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.out[i]))
	for _, j := range g.out[i] {
		out = append(out, g.names[j])
	}
	return out
}

// Ignored returns, per package, local dependency names that matched no node.
func (g *Graph) Ignored() map[string][]string {
	out := make(map[string][]string, len(g.ignored))
	for k, v := range g.ignored {
		out[k] = append([]string(nil), v...)
	}
	return out
}
