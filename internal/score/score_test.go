// internal/score/score_test.go
package score

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeScore(t *testing.T) {
	assert.Equal(t, 1000, ComputeScore(0, 0))
	assert.Equal(t, 880, ComputeScore(10, 20))
	assert.Equal(t, 100, ComputeScore(200, 0), "floor applies")
	assert.Equal(t, 100, ComputeScore(0, 5000), "floor applies to slow games too")

	// Monotone non-increasing in both arguments.
	assert.GreaterOrEqual(t, ComputeScore(10, 30), ComputeScore(11, 30))
	assert.GreaterOrEqual(t, ComputeScore(10, 30), ComputeScore(10, 31))
}

// recordingStats counts increments and can fail for one chosen user.
type recordingStats struct {
	points   map[string]int64
	wins     map[string]int64
	games    map[string]int64
	failUser string
}

func newRecordingStats() *recordingStats {
	return &recordingStats{
		points: make(map[string]int64),
		wins:   make(map[string]int64),
		games:  make(map[string]int64),
	}
}

func (r *recordingStats) IncrementPoints(ctx context.Context, userID string, delta int64) error {
	if userID == r.failUser {
		return errors.New("stats backend unavailable")
	}
	r.points[userID] += delta
	return nil
}

func (r *recordingStats) IncrementWins(ctx context.Context, userID string, delta int64) error {
	if userID == r.failUser {
		return errors.New("stats backend unavailable")
	}
	r.wins[userID] += delta
	return nil
}

func (r *recordingStats) IncrementGamesPlayed(ctx context.Context, userID string, delta int64) error {
	if userID == r.failUser {
		return errors.New("stats backend unavailable")
	}
	r.games[userID] += delta
	return nil
}

func TestAwardFinalScoresCreditsEveryone(t *testing.T) {
	rs := newRecordingStats()
	agg := NewAggregator(rs)

	agg.AwardFinalScores(context.Background(), map[string]int{
		"alice": 30,
		"bob":   10,
	})

	assert.Equal(t, int64(30), rs.points["alice"])
	assert.Equal(t, int64(10), rs.points["bob"])
	assert.Equal(t, int64(1), rs.wins["alice"])
	assert.Zero(t, rs.wins["bob"])
	assert.Equal(t, int64(1), rs.games["alice"])
	assert.Equal(t, int64(1), rs.games["bob"])
}

func TestAwardFinalScoresTieBreaksOnID(t *testing.T) {
	rs := newRecordingStats()
	agg := NewAggregator(rs)

	agg.AwardFinalScores(context.Background(), map[string]int{
		"carol": 20,
		"bob":   20,
	})

	assert.Equal(t, int64(1), rs.wins["bob"], "lowest id wins ties")
	assert.Zero(t, rs.wins["carol"])
}

func TestAwardFinalScoresSurvivesPartialFailure(t *testing.T) {
	rs := newRecordingStats()
	rs.failUser = "alice"
	agg := NewAggregator(rs)

	agg.AwardFinalScores(context.Background(), map[string]int{
		"alice": 30,
		"bob":   10,
	})

	// Alice's credits fail but bob is still credited.
	assert.Zero(t, rs.points["alice"])
	assert.Equal(t, int64(10), rs.points["bob"])
	assert.Equal(t, int64(1), rs.games["bob"])
}
