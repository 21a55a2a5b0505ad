// internal/game/deck_test.go
package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"crazypuzzle/internal/models"
)

func TestNewDeckPairsEveryValue(t *testing.T) {
	for _, d := range []models.Difficulty{
		models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard,
	} {
		deck := NewDeck(d)
		size := d.GridSize()
		assert.Len(t, deck, size*size)

		counts := make(map[int]int)
		for _, v := range deck {
			counts[v] = counts[v] + 1
		}
		assert.Len(t, counts, size*size/2)
		for v, n := range counts {
			assert.Equalf(t, 2, n, "value %d should appear exactly twice", v)
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, size*size/2)
		}
	}
}

func TestResolvePair(t *testing.T) {
	tiles := []int{1, 2, 2, 1}

	assert.Equal(t, Match, ResolvePair(tiles, []int{0, 3}))
	assert.Equal(t, Match, ResolvePair(tiles, []int{3, 0}), "order must not matter")
	assert.Equal(t, NoMatch, ResolvePair(tiles, []int{0, 1}))
	assert.Equal(t, NoMatch, ResolvePair(tiles, []int{0}))
	assert.Equal(t, NoMatch, ResolvePair(tiles, []int{0, 0}))
	assert.Equal(t, NoMatch, ResolvePair(tiles, []int{0, 17}))
}
