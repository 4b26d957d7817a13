package memory

import (
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/game"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength  = 6
	// maxCodeAttempts guards against spinning forever if the code space ever
	// nears exhaustion; at realistic session counts collisions are rare.
	maxCodeAttempts = 1000
)

// ErrCodeSpaceExhausted is returned when no free join code could be drawn.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique session code")

// SessionStore is the in-memory implementation of game.SessionStore: the
// process-wide registry mapping join codes to live sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	rnd      *rand.Rand
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*game.Session),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create draws a fresh code and registers a new lobby-phase session under it.
func (s *SessionStore) Create(hostID, quizID string, questions []domain.Question) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.freeCodeLocked()
	if err != nil {
		return nil, err
	}
	session := game.NewSession(code, hostID, quizID, questions)
	s.sessions[code] = session
	return session, nil
}

// Lookup is a case-insensitive exact lookup; absence is not an error.
func (s *SessionStore) Lookup(code string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.ToUpper(code)]
	return session, ok
}

// Remove drops a session from the registry. Removing an unknown code is a no-op.
func (s *SessionStore) Remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, strings.ToUpper(code))
}

// RemoveByConnection scans live sessions for the one holding connID, removes
// that participant, and returns the owning session. Used for disconnect
// cleanup, where only a connection identity is known.
func (s *SessionStore) RemoveByConnection(connID string) (*game.Session, game.Participant, bool) {
	s.mu.RLock()
	var owner *game.Session
	for _, session := range s.sessions {
		if session.HasConnection(connID) {
			owner = session
			break
		}
	}
	s.mu.RUnlock()

	if owner == nil {
		return nil, game.Participant{}, false
	}
	participant, ok := owner.Leave(connID)
	if !ok {
		return nil, game.Participant{}, false
	}
	return owner, participant, true
}

func (s *SessionStore) freeCodeLocked() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := s.randomCodeLocked()
		if _, taken := s.sessions[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

func (s *SessionStore) randomCodeLocked() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeLetters[s.rnd.Intn(len(codeLetters))])
	}
	return b.String()
}
