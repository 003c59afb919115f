// Package release owns the end-to-end release run.
//
// Ownership boundary:
// - planning: index, graph, affected set, publish order
// - the sequential publish / manifest update loop
//
// All configuration and graph errors surface from Plan, before any publish
// side effect. Run never rolls back: packages already published and
// manifests already rewritten stay as they are when a later step fails.
package release
