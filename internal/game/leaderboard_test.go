package game

import (
	"reflect"
	"testing"

	"trivia-session-service/internal/domain"
)

func testSession(players ...*Participant) *Session {
	s := NewSession("ABCDEF", "host", "quiz-1", nil)
	for _, p := range players {
		s.participants[p.ConnID] = p
	}
	return s
}

func TestLeaderboardOrdersByScoreThenName(t *testing.T) {
	s := testSession(
		&Participant{ConnID: "c1", DisplayName: "bob", Score: 500},
		&Participant{ConnID: "c2", DisplayName: "Alice", Score: 500},
		&Participant{ConnID: "c3", DisplayName: "carol", Score: 900},
		&Participant{ConnID: "c4", DisplayName: "dave", Score: 0},
		&Participant{ConnID: "c5", DisplayName: "the host", IsHost: true},
	)

	got := s.leaderboardLocked()
	want := []domain.LeaderboardEntry{
		{DisplayName: "carol", Score: 900},
		{DisplayName: "Alice", Score: 500},
		{DisplayName: "bob", Score: 500},
		{DisplayName: "dave", Score: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected order: got %+v want %+v", got, want)
	}
}

func TestLeaderboardTotalOrderWithDuplicateNames(t *testing.T) {
	s := testSession(
		&Participant{ConnID: "c2", DisplayName: "Sam", Score: 100},
		&Participant{ConnID: "c1", DisplayName: "sam", Score: 100},
	)

	first := s.leaderboardLocked()
	second := s.leaderboardLocked()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ordering is not deterministic: %+v vs %+v", first, second)
	}
	// Case-insensitive equal names fall back to connection ID: c1 wins.
	if first[0].DisplayName != "sam" {
		t.Fatalf("expected connection-ID tiebreak, got %+v", first)
	}
}

func TestLeaderboardSortIsIdempotent(t *testing.T) {
	s := testSession(
		&Participant{ConnID: "c1", DisplayName: "Alice", Score: 300},
		&Participant{ConnID: "c2", DisplayName: "bob", Score: 300},
		&Participant{ConnID: "c3", DisplayName: "Carol", Score: 700},
	)

	once := s.leaderboardLocked()
	twice := s.leaderboardLocked()
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("re-sorting changed the order: %+v vs %+v", once, twice)
	}
}

func TestWinnersIncludeAllRankOneTies(t *testing.T) {
	s := testSession(
		&Participant{ConnID: "c1", DisplayName: "Alice", UserID: "u-alice", Score: 800},
		&Participant{ConnID: "c2", DisplayName: "Bob", UserID: "u-bob", Score: 800},
		&Participant{ConnID: "c3", DisplayName: "Carol", UserID: "u-carol", Score: 200},
		&Participant{ConnID: "c4", DisplayName: "guest", UserID: "", Score: 800}, // anonymous, excluded
	)

	got := s.winnersLocked()
	want := []string{"u-alice", "u-bob"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected winners: got %v want %v", got, want)
	}
}
