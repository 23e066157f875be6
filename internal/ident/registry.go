package ident

import "fmt"

// Registry tracks identifiers minted within one scope and disambiguates
// collisions with positional numeric suffixes.
//
// Duplicate step labels inside a single process would otherwise sanitize to
// the same state id and silently collapse two states into one. The registry
// keeps the first occurrence unsuffixed and appends "-2", "-3", … to later
// ones, so transition sources and targets stay resolvable.
//
// A Registry is scoped to one automaton synthesis; it is not safe for
// concurrent use and is never shared across invocations.
type Registry struct {
	sanitizer *Sanitizer
	used      map[string]bool
}

// NewRegistry returns an empty registry minting ids through sanitizer.
func NewRegistry(sanitizer *Sanitizer) *Registry {
	return &Registry{
		sanitizer: sanitizer,
		used:      make(map[string]bool),
	}
}

// Mint sanitizes text and returns a unique identifier within this registry,
// suffixing repeats. The first caller for a given base gets the base itself.
func (r *Registry) Mint(text string) string {
	base := r.sanitizer.Sanitize(text)
	id := base
	for n := 2; r.used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	r.used[id] = true
	return id
}

// MintStep is Mint for step labels (underscores treated as spaces).
func (r *Registry) MintStep(step string) string {
	base := r.sanitizer.SanitizeStep(step)
	id := base
	for n := 2; r.used[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	r.used[id] = true
	return id
}

// Reserve marks an identifier as taken without minting it.
// Returns false if it was already in use.
func (r *Registry) Reserve(id string) bool {
	if r.used[id] {
		return false
	}
	r.used[id] = true
	return true
}
