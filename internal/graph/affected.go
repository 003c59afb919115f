package graph

import (
	"sort"
	"strings"
)

// Set is a set of package names.
type Set map[string]struct{}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Affected returns every package reachable from the seeds along
// dependency -> dependent edges, seeds included. Seeds that are not nodes
// are returned separately and otherwise ignored.
func (g *Graph) Affected(seeds []string) (Set, []string) {
	affected := make(Set)
	var unknown []string
	visited := make([]bool, len(g.names))
	requested := make(map[string]struct{}, len(seeds))

	for _, raw := range seeds {
		seed := strings.TrimSpace(raw)
		if seed == "" {
			continue
		}
		if _, dup := requested[seed]; dup {
			continue
		}
		requested[seed] = struct{}{}

		start, ok := g.index[seed]
		if !ok {
			unknown = append(unknown, seed)
			continue
		}
		stack := []int{start}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[n] {
				continue
			}
			visited[n] = true
			affected[g.names[n]] = struct{}{}
			for _, m := range g.out[n] {
				if !visited[m] {
					stack = append(stack, m)
				}
			}
		}
	}
	return affected, unknown
}
