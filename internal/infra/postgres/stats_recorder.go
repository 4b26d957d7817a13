package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-session-service/internal/domain"
)

// StatsRecorder persists completion reports into the game_stats table.
type StatsRecorder struct {
	pool *pgxpool.Pool
}

func NewStatsRecorder(pool *pgxpool.Pool) *StatsRecorder {
	return &StatsRecorder{pool: pool}
}

func (r *StatsRecorder) RecordGameStats(ctx context.Context, stats domain.GameStats) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO game_stats (quiz_id, code, player_ids, winner_ids) VALUES ($1, $2, $3, $4)`,
		stats.QuizID, stats.Code, stats.PlayerIDs, stats.WinnerIDs,
	)
	if err != nil {
		return fmt.Errorf("record game stats: %w", err)
	}
	return nil
}
