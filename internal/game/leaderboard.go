package game

import (
	"sort"
	"strings"

	"trivia-session-service/internal/domain"
)

// leaderboardLocked ranks the session's players: score descending, then
// display name ascending case-insensitively, then connection ID. The final
// tiebreak keeps the order total so identical input always produces identical
// output, even with duplicate names.
func (s *Session) leaderboardLocked() []domain.LeaderboardEntry {
	players := s.playersLocked()
	sort.Slice(players, func(i, j int) bool {
		return playerLess(players[i], players[j])
	})

	entries := make([]domain.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, domain.LeaderboardEntry{
			DisplayName: p.DisplayName,
			Score:       p.Score,
		})
	}
	return entries
}

func playerLess(a, b *Participant) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	an, bn := strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)
	if an != bn {
		return an < bn
	}
	return a.ConnID < b.ConnID
}

// winnersLocked returns the user identities of every rank-1 player; ties at
// the top all count. Anonymous guests have no user identity and are skipped.
func (s *Session) winnersLocked() []string {
	players := s.playersLocked()
	if len(players) == 0 {
		return nil
	}
	top := players[0].Score
	for _, p := range players[1:] {
		if p.Score > top {
			top = p.Score
		}
	}
	var winners []string
	for _, p := range players {
		if p.Score == top && p.UserID != "" {
			winners = append(winners, p.UserID)
		}
	}
	sort.Strings(winners)
	return winners
}

// sortResults orders per-question results like the leaderboard so the
// payload is deterministic for identical input.
func sortResults(results []ParticipantResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Points != results[j].Points {
			return results[i].Points > results[j].Points
		}
		return strings.ToLower(results[i].DisplayName) < strings.ToLower(results[j].DisplayName)
	})
}

func sortRoster(roster []RosterEntry) {
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].IsHost != roster[j].IsHost {
			return roster[i].IsHost
		}
		return strings.ToLower(roster[i].DisplayName) < strings.ToLower(roster[j].DisplayName)
	})
}
