// internal/database/score_test.go
package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crazypuzzle/internal/models"
)

func TestSortTopScoresMatchesIndexedOrder(t *testing.T) {
	unordered := []models.Score{
		{UserName: "carol", Score: 640},
		{UserName: "alice", Score: 980},
		{UserName: "dave", Score: 100},
		{UserName: "bob", Score: 880},
	}

	got := sortTopScores(unordered, 10)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"alice", "bob", "carol", "dave"},
		[]string{got[0].UserName, got[1].UserName, got[2].UserName, got[3].UserName})
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestSortTopScoresTruncatesToLimit(t *testing.T) {
	var scores []models.Score
	for s := 100; s <= 1000; s += 100 {
		scores = append(scores, models.Score{Score: s})
	}

	got := sortTopScores(scores, 3)
	require.Len(t, got, 3)
	assert.Equal(t, 1000, got[0].Score)
	assert.Equal(t, 900, got[1].Score)
	assert.Equal(t, 800, got[2].Score)
}

func TestSortTopScoresIsStableForTies(t *testing.T) {
	scores := []models.Score{
		{UserName: "first", Score: 500},
		{UserName: "second", Score: 500},
	}

	got := sortTopScores(scores, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].UserName, "equal scores keep their fetch order")
	assert.Equal(t, "second", got[1].UserName)
}
