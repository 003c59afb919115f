// Package tools provides reusable runtime helpers shared by release modules.
//
// Ownership boundary:
// - command execution helpers
//
// - subprocess working directory and environment wiring
package tools
