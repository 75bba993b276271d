package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{name: "identical", a: "acme", b: "acme", expected: 0},
		{name: "empty to word", a: "", b: "acme", expected: 4},
		{name: "word to empty", a: "acme", b: "", expected: 4},
		{name: "single substitution", a: "acme", b: "acne", expected: 1},
		{name: "single insertion", a: "acme", b: "acmes", expected: 1},
		{name: "single deletion", a: "acme", b: "ace", expected: 1},
		{name: "classic kitten sitting", a: "kitten", b: "sitting", expected: 3},
		{name: "symmetric", a: "sitting", b: "kitten", expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, levenshtein(tt.a, tt.b))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("acme", "acme"))
	assert.Equal(t, 1.0, similarity("", ""))
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
	assert.InDelta(t, 0.75, similarity("acme", "acne"), 0.001)
}
