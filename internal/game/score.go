package game

import (
	"math"
	"time"
)

// ScoreResult is the outcome of scoring a single answer. It is computed once
// per submission and never mutated afterwards.
type ScoreResult struct {
	Correct   bool    `json:"correct"`
	Points    int     `json:"points"`
	Remaining float64 `json:"remaining"`
	ElapsedMs int64   `json:"elapsedMs"`
}

// Score converts answer timing and correctness into points. A correct answer
// at the instant the question opens is worth 1000 points, decaying linearly
// to 0 at the deadline. Elapsed time is clamped to [0, total] so clock skew
// or late-arriving messages never produce negative or out-of-range values.
func Score(correct bool, answeredAt, start, end time.Time) ScoreResult {
	total := end.Sub(start)
	elapsed := answeredAt.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}

	remaining := 0.0
	if total > 0 {
		remaining = 1 - float64(elapsed)/float64(total)
		if remaining < 0 {
			remaining = 0
		}
	}

	result := ScoreResult{
		Correct:   correct,
		Remaining: remaining,
		ElapsedMs: elapsed.Milliseconds(),
	}
	if correct {
		result.Points = int(math.Round(1000 * remaining))
	}
	return result
}
