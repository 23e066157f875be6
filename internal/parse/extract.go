// Package parse extracts structured spans from free-text reasoning-service
// output. Responses arrive as prose wrapped around a JSON array or object;
// the parser finds the first balanced bracket span and leaves decoding to
// the caller.
//
// Known limitation: the matcher is purely lexical. It does not track
// string-literal context, so a bracket character inside a quoted string is
// indistinguishable from a structural bracket. In practice reasoning
// services emit well-formed JSON payloads and the subsequent decode catches
// the rare mismatch.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Span kinds accepted by Extract.
const (
	ArraySpan  = '['
	ObjectSpan = '{'
)

// ErrNoSpan indicates no balanced bracket span was found: either no opening
// bracket exists, or depth never returned to zero before the text ended.
var ErrNoSpan = errors.New("no balanced span found")

// DecodeError reports that a span was found but failed structural decoding.
// It is a distinct failure from ErrNoSpan so callers can tell "the service
// said nothing usable" apart from "the service said something malformed".
type DecodeError struct {
	Span string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding extracted span: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Extract returns the substring of text spanning the first balanced
// occurrence of the given bracket kind (ArraySpan or ObjectSpan).
//
// The scan starts at the first opening bracket, increments a depth counter
// on each opening bracket of that kind and decrements on each closing one,
// and returns the span once depth reaches zero. Returns ErrNoSpan when no
// opening bracket exists or the text ends while still nested.
func Extract(text string, kind rune) (string, error) {
	opener, closer := byte(kind), closingFor(kind)

	start := strings.IndexByte(text, opener)
	if start < 0 {
		return "", ErrNoSpan
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", ErrNoSpan
}

// ExtractArray finds the first balanced [...] span in text and decodes it
// into v. A missing span yields ErrNoSpan; a span that is not valid JSON
// yields a *DecodeError.
func ExtractArray(text string, v any) error {
	return extractInto(text, ArraySpan, v)
}

// ExtractObject is ExtractArray for {...} spans.
func ExtractObject(text string, v any) error {
	return extractInto(text, ObjectSpan, v)
}

func extractInto(text string, kind rune, v any) error {
	span, err := Extract(text, kind)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return &DecodeError{Span: span, Err: err}
	}
	return nil
}

func closingFor(kind rune) byte {
	if kind == ObjectSpan {
		return '}'
	}
	return ']'
}
