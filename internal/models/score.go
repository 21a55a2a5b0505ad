package models

import (
	"time"

	"github.com/google/uuid"
)

// Score is one finished single-player game. Rows are append-only; nothing
// ever mutates a score after insert.
type Score struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	UserName    string     `json:"userName"`
	Score       int        `json:"score"`
	TimeSeconds int        `json:"time"`
	Difficulty  Difficulty `json:"difficulty"`
	Layout      Layout     `json:"layout"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// UserStats is the durable multiplayer record for one user. Points grow
// monotonically via the store's atomic increment; they are never overwritten.
type UserStats struct {
	UserID            string `json:"userId"`
	DisplayName       string `json:"displayName,omitempty"`
	MultiplayerPoints int64  `json:"multiplayerPoints"`
	MultiplayerWins   int64  `json:"multiplayerWins"`
	MultiplayerGames  int64  `json:"multiplayerGamesPlayed"`
}
