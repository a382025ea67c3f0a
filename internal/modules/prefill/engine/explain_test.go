package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildExplanationsOrderAndDedupe(t *testing.T) {
	rules := []string{"Algo: VWAP (notes benchmark)", "Aggression: High (urgency)"}
	pattern := []string{"Client historically prefers VWAP (4 matches, size bucket=medium, vol=Low)"}
	selection := []string{"Order size is 18% of ADV", "Algo: VWAP (rule override)"}
	params := []string{"Order type: Market", "Aggression: High (urgency)"}

	got := BuildExplanations(rules, pattern, selection, params)

	assert.Equal(t, []string{
		"Algo: VWAP (notes benchmark)",
		"Aggression: High (urgency)",
		"Client historically prefers VWAP (4 matches, size bucket=medium, vol=Low)",
		"Order size is 18% of ADV",
		"Algo: VWAP (rule override)",
		"Order type: Market",
	}, got)
}

func TestBuildExplanationsIdempotent(t *testing.T) {
	first := BuildExplanations([]string{"a", "b"}, nil, []string{"b", "c"}, []string{"c", "d"})
	second := BuildExplanations(first, nil, nil, nil)
	assert.Equal(t, first, second)
}

func TestBuildExplanationsEmptyGroups(t *testing.T) {
	assert.Empty(t, BuildExplanations(nil, nil, nil, nil))
}
