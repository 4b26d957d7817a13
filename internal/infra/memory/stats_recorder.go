package memory

import (
	"context"
	"sync"

	"trivia-session-service/internal/domain"
)

// StatsRecorder keeps completion reports in memory. Used when no database is
// configured, and by tests asserting on what was recorded.
type StatsRecorder struct {
	mu       sync.Mutex
	recorded []domain.GameStats
}

func NewStatsRecorder() *StatsRecorder {
	return &StatsRecorder{}
}

func (r *StatsRecorder) RecordGameStats(_ context.Context, stats domain.GameStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, stats)
	return nil
}

// Recorded returns a copy of everything recorded so far.
func (r *StatsRecorder) Recorded() []domain.GameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.GameStats(nil), r.recorded...)
}
