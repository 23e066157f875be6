// Package ident provides the deterministic text-to-identifier transform
// used everywhere an identifier crosses a component boundary (process ids,
// step labels, automaton ids).
//
// The transform is pure: the same input and length bound always yield the
// same identifier, so identifiers computed independently from the same
// source text are always equal. That equality is what keeps dependency
// references valid after sanitization.
package ident

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxLength bounds generated identifiers when no explicit limit is
// configured.
const DefaultMaxLength = 50

// Fallback is returned when sanitization leaves nothing usable. It is a
// valid identifier itself, so downstream code never sees an empty id.
const Fallback = "sanitized-id"

// nonIdent matches every maximal run of characters outside [a-z0-9].
var nonIdent = regexp.MustCompile(`[^a-z0-9]+`)

// stripMarks decomposes accented characters and drops the combining marks,
// turning "é" into "e". NFC recomposition keeps any surviving runes in
// their canonical form before the ASCII filter runs.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitizer turns arbitrary text into identifiers bounded to MaxLength.
// The zero value is not usable; construct with New.
type Sanitizer struct {
	maxLength int
}

// New returns a Sanitizer with the given length bound.
// Non-positive bounds fall back to DefaultMaxLength.
func New(maxLength int) *Sanitizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Sanitizer{maxLength: maxLength}
}

// Sanitize converts text into a clean identifier:
// decompose accents and drop marks, lowercase, replace runs of characters
// outside [a-z0-9] with single hyphens, trim boundary hyphens, truncate to
// the length bound (re-trimming a trailing hyphen), and fall back to
// Fallback if nothing remains.
//
// Sanitize is idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func (s *Sanitizer) Sanitize(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Malformed UTF-8 only; the ASCII filter below drops whatever
		// the transform could not handle.
		stripped = text
	}

	id := strings.ToLower(stripped)
	id = nonIdent.ReplaceAllString(id, "-")
	id = strings.Trim(id, "-")

	if len(id) > s.maxLength {
		id = strings.TrimRight(id[:s.maxLength], "-")
	}

	if id == "" {
		return Fallback
	}
	return id
}

// SanitizeStep sanitizes a step label for use as part of a state id.
// Underscores in step labels are word separators, not identifier text, so
// they are normalized to spaces first. The result is identical to Sanitize
// for any input because underscores sit outside [a-z0-9] anyway; the
// explicit replacement documents the intent.
func (s *Sanitizer) SanitizeStep(step string) string {
	return s.Sanitize(strings.ReplaceAll(step, "_", " "))
}

// MaxLength returns the configured length bound.
func (s *Sanitizer) MaxLength() int {
	return s.maxLength
}
