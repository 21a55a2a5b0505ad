// internal/database/score.go
package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"crazypuzzle/internal/models"
)

// InsertScore appends one finished single-player result. Scores are never
// updated or deleted afterwards.
func InsertScore(ctx context.Context, sc *models.Score) error {
	if sc.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate score id: %w", err)
		}
		sc.ID = id
	}
	if sc.CreatedAt.IsZero() {
		sc.CreatedAt = time.Now()
	}

	q := `INSERT INTO scores (id, user_id, user_name, score, time_seconds, difficulty, layout, created_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			sc.ID, sc.UserID, sc.UserName, sc.Score, sc.TimeSeconds,
			string(sc.Difficulty), string(sc.Layout.OrGrid()), sc.CreatedAt,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// TopScores returns up to limit scores for one (difficulty, layout) board,
// best first. If the ordered query fails (for example a missing index on a
// fresh database), it degrades to an unordered fetch sorted here, so the
// leaderboard still renders.
func TopScores(ctx context.Context, difficulty models.Difficulty, layout models.Layout, limit int) ([]models.Score, error) {
	if limit <= 0 {
		limit = 10
	}

	ordered := `
	SELECT id, user_id, user_name, score, time_seconds, difficulty, layout, created_at
	FROM scores
	WHERE difficulty=$1 AND layout=$2
	ORDER BY score DESC
	LIMIT $3
	`
	rows, err := DB.Query(ctx, ordered, string(difficulty), string(layout.OrGrid()), limit)
	if err == nil {
		out, scanErr := scanScores(rows)
		if scanErr == nil {
			return out, nil
		}
		err = scanErr
	}
	log.Warnf("ordered leaderboard query failed, falling back to in-process sort: %v", err)

	unordered := `
	SELECT id, user_id, user_name, score, time_seconds, difficulty, layout, created_at
	FROM scores
	WHERE difficulty=$1 AND layout=$2
	`
	rows, err = DB.Query(ctx, unordered, string(difficulty), string(layout.OrGrid()))
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	out, err := scanScores(rows)
	if err != nil {
		return nil, err
	}
	return sortTopScores(out, limit), nil
}

// sortTopScores orders scores best first and truncates to limit, matching
// what the indexed ORDER BY ... LIMIT query would have returned.
func sortTopScores(scores []models.Score, limit int) []models.Score {
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

func scanScores(rows pgx.Rows) ([]models.Score, error) {
	defer rows.Close()
	var out []models.Score
	for rows.Next() {
		var sc models.Score
		var difficulty, layout string
		err := rows.Scan(
			&sc.ID, &sc.UserID, &sc.UserName, &sc.Score, &sc.TimeSeconds,
			&difficulty, &layout, &sc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		sc.Difficulty = models.Difficulty(difficulty)
		sc.Layout = models.Layout(layout)
		out = append(out, sc)
	}
	return out, rows.Err()
}
