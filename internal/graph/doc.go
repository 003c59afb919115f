// Package graph owns the package dependency graph.
//
// Ownership boundary:
// - integer-indexed nodes and dependency -> dependent edges
// - forward reachability from seed packages
// - whole-graph topological ordering and cycle witnesses
package graph
