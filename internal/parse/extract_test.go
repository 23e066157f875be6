package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Array(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"bare array", `[1,2,3]`, `[1,2,3]`},
		{"surrounded by prose", `Here are the processes: [{"id":"01"}] hope that helps!`, `[{"id":"01"}]`},
		{"nested arrays", `noise [[1],[2,[3]]] trailing`, `[[1],[2,[3]]]`},
		{"first balanced span wins", `[1] and later [2]`, `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.text, ArraySpan)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Object(t *testing.T) {
	got, err := Extract(`The dependency map is {"01":[],"02":["01"]} as requested.`, ObjectSpan)
	require.NoError(t, err)
	assert.Equal(t, `{"01":[],"02":["01"]}`, got)
}

func TestExtract_NoSpan(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind rune
	}{
		{"no opening bracket", "nothing structured here", ArraySpan},
		{"never closes", "unterminated [1, 2", ArraySpan},
		{"wrong kind present", `{"only":"object"}`, ArraySpan},
		{"nested never closes", "start {\"a\": {\"b\": 1}", ObjectSpan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.text, tt.kind)
			assert.ErrorIs(t, err, ErrNoSpan)
		})
	}
}

// TestExtract_BracketInsideString documents the lexical-matcher limitation:
// brackets inside quoted strings count toward depth.
func TestExtract_BracketInsideString(t *testing.T) {
	got, err := Extract(`["a]b", "c"]`, ArraySpan)
	require.NoError(t, err)
	// Depth returns to zero at the bracket inside the string literal.
	assert.Equal(t, `["a]`, got)
}

func TestExtractArray_Decode(t *testing.T) {
	var items []map[string]any
	err := ExtractArray(`result: [{"id":"01","name":"Reception"}]`, &items)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "01", items[0]["id"])
}

// TestExtractArray_DecodeError tests that a balanced but malformed span is
// reported as a DecodeError, distinct from ErrNoSpan.
func TestExtractArray_DecodeError(t *testing.T) {
	var items []any
	err := ExtractArray(`[1, 2, unquoted]`, &items)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, `[1, 2, unquoted]`, decodeErr.Span)
	assert.False(t, errors.Is(err, ErrNoSpan))
}

func TestExtractObject_Decode(t *testing.T) {
	var deps map[string][]string
	err := ExtractObject(`Dependencies: {"01":[],"02":["01"]} done.`, &deps)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"01": {}, "02": {"01"}}, deps)
}
