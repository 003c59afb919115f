// Package manifest owns package manifests on disk.
//
// Ownership boundary:
// - package discovery under a release root
// - semantic manifest decoding (project identity, dependency declarations)
// - format-preserving dependency rewrites and write-through persistence
package manifest
