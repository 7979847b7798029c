package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosestExactMatch(t *testing.T) {
	got, ok := Closest("Nemo", []string{"Flames", "Nemo", "Northern Lights"})
	assert.True(t, ok)
	assert.Equal(t, "Nemo", got)
}

func TestClosestCorrectsTypos(t *testing.T) {
	candidates := []string{"Flames", "Forest", "Northern Lights", "Snowfall"}

	got, ok := Closest("nothern lihgts", candidates)
	assert.True(t, ok)
	assert.Equal(t, "Northern Lights", got)

	got, ok = Closest("FLAMES", candidates)
	assert.True(t, ok)
	assert.Equal(t, "Flames", got, "matching is case-insensitive")
}

func TestClosestTieBreaksLexically(t *testing.T) {
	// Both candidates are one edit away from the query; the lexically
	// smaller one wins so the pick is stable.
	got, ok := Closest("colr", []string{"colz", "cola"})
	assert.True(t, ok)
	assert.Equal(t, "cola", got)
}

func TestClosestEmptyCandidates(t *testing.T) {
	_, ok := Closest("anything", nil)
	assert.False(t, ok)
}

func TestClosestAlwaysPicksSomething(t *testing.T) {
	// Like the original cutoff-free matching: even a hopeless query gets
	// the nearest effect.
	got, ok := Closest("zzzzzzzzzz", []string{"Flames"})
	assert.True(t, ok)
	assert.Equal(t, "Flames", got)
}
