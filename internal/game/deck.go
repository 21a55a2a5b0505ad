// internal/game/deck.go
package game

import (
	"math/rand"

	"crazypuzzle/internal/models"
)

// NewDeck builds a shuffled board for the difficulty: every value from 1 to
// half the tile count appears exactly twice. An odd tile count (which no
// current difficulty produces) loses its last slot rather than leaving an
// unmatchable singleton.
func NewDeck(d models.Difficulty) []int {
	size := d.GridSize()
	total := size * size
	pairs := total / 2

	deck := make([]int, 0, pairs*2)
	for v := 1; v <= pairs; v++ {
		deck = append(deck, v, v)
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}
