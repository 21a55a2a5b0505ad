// internal/handlers/server.go
package handlers

import (
	"context"

	"crazypuzzle/internal/database"
	"crazypuzzle/internal/models"
	"crazypuzzle/internal/score"
	"crazypuzzle/internal/stats"
	"crazypuzzle/internal/store"
)

// StatsBackend is what the handlers need from the stats store. Narrowed to
// an interface so tests can substitute an in-memory fake for Redis.
type StatsBackend interface {
	SetDisplayName(ctx context.Context, userID, name string) error
	Get(ctx context.Context, userID string) (models.UserStats, error)
	TopPoints(ctx context.Context, limit int) ([]models.UserStats, error)
}

// Server bundles the shared backends every handler needs: the live room
// store, the durable multiplayer stats, and the aggregator that folds
// finished games into them. CreateUser is the user-persistence seam; it
// defaults to the database layer and is overridden in tests.
type Server struct {
	Rooms  store.RoomStore
	Stats  StatsBackend
	Scores *score.Aggregator

	CreateUser func(ctx context.Context, user *models.User) error
}

// NewServer wires a Server around the given room store and stats store.
func NewServer(rooms store.RoomStore, st *stats.RedisStatsStore) *Server {
	return &Server{
		Rooms:      rooms,
		Stats:      st,
		Scores:     score.NewAggregator(st),
		CreateUser: database.CreateUser,
	}
}
