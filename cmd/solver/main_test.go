package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplorationLevelMapping(t *testing.T) {
	cases := []struct {
		level      int
		nbSearches int
		depth      int
	}{
		{0, 4, 0},
		{1, 8, 1},
		{2, 12, 2},
		{3, 16, 3},
		{4, 24, 4},
		{5, 32, 5},
	}
	for _, c := range cases {
		nbSearches, depth := explorationLevel(c.level)
		assert.Equal(t, c.nbSearches, nbSearches, "level %d", c.level)
		assert.Equal(t, c.depth, depth, "level %d", c.level)
	}
}

func TestExplorationLevelClampsOutOfRange(t *testing.T) {
	nbSearches, depth := explorationLevel(-3)
	assert.Equal(t, 4, nbSearches)
	assert.Equal(t, 0, depth)

	nbSearches, depth = explorationLevel(99)
	assert.Equal(t, 32, nbSearches)
	assert.Equal(t, 5, depth)
}
