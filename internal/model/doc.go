// Package model defines the entities produced by contract analysis:
// business processes extracted from contract text, the dependency graph
// between them, and the per-process automatons assembled into a Contract.
//
// Entities here are plain data. Validation rules live in internal/validate
// as free functions so each rule can be tested independently; nothing in
// this package reaches out to collaborators.
package model
