// internal/stats/stats.go
package stats

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"crazypuzzle/internal/models"
)

const (
	fieldPoints      = "multiplayerPoints"
	fieldWins        = "multiplayerWins"
	fieldGamesPlayed = "multiplayerGamesPlayed"
	fieldDisplayName = "displayName"

	// leaderboardKey is a sorted set scored by multiplayer points, kept in
	// lockstep with the per-user hashes so top-N reads are one command.
	leaderboardKey = "mp:leaderboard"
)

func userKey(userID string) string { return "userstats:" + userID }

// RedisStatsStore keeps per-user multiplayer stats in Redis hashes. HINCRBY
// is the atomic read-modify-write primitive, so concurrent finishers from
// different rooms never lose an increment.
type RedisStatsStore struct {
	Client *redis.Client
}

// NewRedisStatsStore wraps an already-connected client.
func NewRedisStatsStore(client *redis.Client) *RedisStatsStore {
	return &RedisStatsStore{Client: client}
}

// IncrementPoints atomically adds delta to the user's multiplayer points and
// mirrors it into the leaderboard sorted set.
func (s *RedisStatsStore) IncrementPoints(ctx context.Context, userID string, delta int64) error {
	if err := s.Client.HIncrBy(ctx, userKey(userID), fieldPoints, delta).Err(); err != nil {
		return fmt.Errorf("failed to increment points for %s: %w", userID, err)
	}
	if err := s.Client.ZIncrBy(ctx, leaderboardKey, float64(delta), userID).Err(); err != nil {
		return fmt.Errorf("failed to update leaderboard for %s: %w", userID, err)
	}
	return nil
}

// IncrementWins atomically bumps the user's win count.
func (s *RedisStatsStore) IncrementWins(ctx context.Context, userID string, delta int64) error {
	return s.Client.HIncrBy(ctx, userKey(userID), fieldWins, delta).Err()
}

// IncrementGamesPlayed atomically bumps the user's games-played count.
func (s *RedisStatsStore) IncrementGamesPlayed(ctx context.Context, userID string, delta int64) error {
	return s.Client.HIncrBy(ctx, userKey(userID), fieldGamesPlayed, delta).Err()
}

// SetDisplayName records the name shown next to the user on leaderboards.
func (s *RedisStatsStore) SetDisplayName(ctx context.Context, userID, name string) error {
	return s.Client.HSet(ctx, userKey(userID), fieldDisplayName, name).Err()
}

// Get reads one user's stats; a user with no recorded games returns zeroes.
func (s *RedisStatsStore) Get(ctx context.Context, userID string) (models.UserStats, error) {
	vals, err := s.Client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return models.UserStats{}, fmt.Errorf("failed to read stats for %s: %w", userID, err)
	}
	us := models.UserStats{UserID: userID, DisplayName: vals[fieldDisplayName]}
	us.MultiplayerPoints = parseInt64(vals[fieldPoints])
	us.MultiplayerWins = parseInt64(vals[fieldWins])
	us.MultiplayerGames = parseInt64(vals[fieldGamesPlayed])
	return us, nil
}

// TopPoints returns up to limit users ordered by multiplayer points,
// highest first, with display names filled in where known.
func (s *RedisStatsStore) TopPoints(ctx context.Context, limit int) ([]models.UserStats, error) {
	if limit <= 0 {
		limit = 10
	}
	members, err := s.Client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	out := make([]models.UserStats, 0, len(members))
	for _, m := range members {
		userID, _ := m.Member.(string)
		name, _ := s.Client.HGet(ctx, userKey(userID), fieldDisplayName).Result()
		out = append(out, models.UserStats{
			UserID:            userID,
			DisplayName:       name,
			MultiplayerPoints: int64(m.Score),
		})
	}
	return out, nil
}

func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
