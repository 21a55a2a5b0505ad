// internal/score/score.go
package score

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// StatsStore is the durable per-user stats sink. IncrementPoints must be an
// atomic read-modify-write (retried by the backing store until it commits),
// so concurrent finishers from different rooms both land.
type StatsStore interface {
	IncrementPoints(ctx context.Context, userID string, delta int64) error
	IncrementWins(ctx context.Context, userID string, delta int64) error
	IncrementGamesPlayed(ctx context.Context, userID string, delta int64) error
}

// ComputeScore is the single-player score: a 1000-point budget minus 10 per
// move and 1 per elapsed second, floored at 100. Monotone non-increasing in
// both arguments.
func ComputeScore(moves, elapsedSeconds int) int {
	s := 1000 - moves*10 - elapsedSeconds
	if s < 100 {
		return 100
	}
	return s
}

// Aggregator folds finished-game results into durable user stats.
type Aggregator struct {
	Stats StatsStore
}

// NewAggregator returns an Aggregator writing to the given stats store.
func NewAggregator(stats StatsStore) *Aggregator {
	return &Aggregator{Stats: stats}
}

// AwardFinalScores credits every player's multiplayerPoints with their final
// in-room score via the atomic increment, bumps gamesPlayed for everyone,
// and bumps wins for the top scorer. Per-player failures are logged and do
// not stop the remaining players from being credited; awarding is
// best-effort once the room has already been marked finished.
func (a *Aggregator) AwardFinalScores(ctx context.Context, finalScores map[string]int) {
	winner := ""
	best := -1
	for userID, sc := range finalScores {
		if sc > best || (sc == best && (winner == "" || userID < winner)) {
			winner = userID
			best = sc
		}
	}

	for userID, sc := range finalScores {
		if err := a.Stats.IncrementPoints(ctx, userID, int64(sc)); err != nil {
			log.Warnf("failed to credit %d points to user %s: %v", sc, userID, err)
		}
		if err := a.Stats.IncrementGamesPlayed(ctx, userID, 1); err != nil {
			log.Warnf("failed to bump games played for user %s: %v", userID, err)
		}
	}
	if winner != "" {
		if err := a.Stats.IncrementWins(ctx, winner, 1); err != nil {
			log.Warnf("failed to bump wins for user %s: %v", winner, err)
		}
	}
}
