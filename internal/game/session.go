package game

import (
	"sync"
	"time"

	"trivia-session-service/internal/domain"
)

// Participant is one connected player or host, tracked per transport
// connection rather than per user so anonymous guests work without a stable
// identity. The per-question fields are reset every time a question opens.
type Participant struct {
	ConnID      string
	UserID      string // empty for anonymous guests
	DisplayName string
	IsHost      bool
	Score       int

	// per-question transient state
	Answered   bool
	Selection  int
	AnsweredAt time.Time
	Awarded    int
}

// Session is the in-memory state of one running game. All mutation goes
// through GameService, which holds mu around every transition; the phase and
// timer handle in particular must only change together under the lock.
type Session struct {
	code      string
	hostID    string
	quizID    string
	questions []domain.Question

	mu            sync.Mutex
	phase         domain.Phase
	questionIdx   int
	questionStart time.Time
	questionEnd   time.Time
	timerGen      uint64
	timerCancel   chan struct{}
	statsRecorded bool
	participants  map[string]*Participant
	subscribers   map[chan Event]struct{}
}

// NewSession builds a lobby-phase session. The question list is copied so
// later edits to the source quiz cannot reach a running game.
func NewSession(code, hostID, quizID string, questions []domain.Question) *Session {
	return &Session{
		code:         code,
		hostID:       hostID,
		quizID:       quizID,
		questions:    append([]domain.Question(nil), questions...),
		phase:        domain.PhaseLobby,
		questionIdx:  -1,
		participants: make(map[string]*Participant),
		subscribers:  make(map[chan Event]struct{}),
	}
}

// Code returns the immutable join code.
func (s *Session) Code() string { return s.code }

// QuizID returns the quiz this session was created from.
func (s *Session) QuizID() string { return s.quizID }

// Phase returns the current phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// HasConnection reports whether connID belongs to this session.
func (s *Session) HasConnection(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.participants[connID]
	return ok
}

// Leave removes the participant owning connID and returns a copy of it.
// Broadcasting the updated roster is the controller's job.
func (s *Session) Leave(connID string) (Participant, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[connID]
	if !ok {
		return Participant{}, false
	}
	delete(s.participants, connID)
	return *p, true
}

// Subscribe registers a push-event channel for one connection. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcastLocked fans an event out to every subscriber. Slow consumers have
// their oldest pending event dropped rather than blocking the session.
func (s *Session) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

// players returns the non-host participants, callers hold mu.
func (s *Session) playersLocked() []*Participant {
	out := make([]*Participant, 0, len(s.participants))
	for _, p := range s.participants {
		if !p.IsHost {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) rosterLocked() []RosterEntry {
	roster := make([]RosterEntry, 0, len(s.participants))
	for _, p := range s.participants {
		roster = append(roster, RosterEntry{DisplayName: p.DisplayName, IsHost: p.IsHost})
	}
	sortRoster(roster)
	return roster
}

// cancelTimerLocked stops any live question timer. Bumping the generation
// makes an already-fired timer a guaranteed no-op even if its goroutine is
// past the cancel channel select.
func (s *Session) cancelTimerLocked() {
	s.timerGen++
	if s.timerCancel != nil {
		close(s.timerCancel)
		s.timerCancel = nil
	}
}
