package game

import (
	"testing"
	"time"
)

func TestScoreInstantAnswerIsMax(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	result := Score(true, start, start, end)
	if result.Points != 1000 {
		t.Fatalf("expected 1000 points at elapsed=0, got %d", result.Points)
	}
	if result.ElapsedMs != 0 {
		t.Fatalf("expected 0 elapsed ms, got %d", result.ElapsedMs)
	}
}

func TestScoreAtDeadlineIsZero(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	result := Score(true, end, start, end)
	if result.Points != 0 {
		t.Fatalf("expected 0 points at the deadline, got %d", result.Points)
	}
}

func TestScoreDecaysLinearly(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	result := Score(true, start.Add(2*time.Second), start, end)
	if result.Points != 800 {
		t.Fatalf("expected 800 points at 2s of 10s, got %d", result.Points)
	}
	if result.ElapsedMs != 2000 {
		t.Fatalf("expected 2000 elapsed ms, got %d", result.ElapsedMs)
	}
}

func TestScoreMonotonicNonIncreasing(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Second)

	prev := 1001
	for elapsed := 0; elapsed <= 30; elapsed++ {
		result := Score(true, start.Add(time.Duration(elapsed)*time.Second), start, end)
		if result.Points > prev {
			t.Fatalf("points increased from %d to %d at elapsed=%ds", prev, result.Points, elapsed)
		}
		prev = result.Points
	}
}

func TestScoreIncorrectIsAlwaysZero(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	for _, at := range []time.Time{start, start.Add(5 * time.Second), end} {
		if result := Score(false, at, start, end); result.Points != 0 {
			t.Fatalf("expected 0 points for incorrect answer, got %d", result.Points)
		}
	}
}

func TestScoreClampsOutOfRangeTimes(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Second)

	early := Score(true, start.Add(-5*time.Second), start, end)
	if early.Points != 1000 || early.ElapsedMs != 0 {
		t.Fatalf("expected clamp to elapsed=0, got points=%d elapsedMs=%d", early.Points, early.ElapsedMs)
	}

	late := Score(true, end.Add(5*time.Second), start, end)
	if late.Points != 0 || late.ElapsedMs != 10000 {
		t.Fatalf("expected clamp to the deadline, got points=%d elapsedMs=%d", late.Points, late.ElapsedMs)
	}
}

func TestScoreZeroDuration(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	result := Score(true, at, at, at)
	if result.Points != 0 {
		t.Fatalf("expected 0 points when the question has zero duration, got %d", result.Points)
	}
	if result.Remaining != 0 {
		t.Fatalf("expected remaining ratio 0, got %f", result.Remaining)
	}
}
