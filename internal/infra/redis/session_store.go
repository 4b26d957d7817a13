package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/game"
	"trivia-session-service/internal/infra/memory"
)

// SessionStore decorates the in-memory registry with Redis liveness markers.
// Sessions themselves stay in-process: the broadcast logic needs direct
// references. Redis only marks which codes are live, so a thin edge or a
// sibling instance can answer code-exists probes without reaching this
// process.
type SessionStore struct {
	inner  *memory.SessionStore
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(inner *memory.SessionStore, client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{inner: inner, client: client, ttl: ttl}
}

func (s *SessionStore) Create(hostID, quizID string, questions []domain.Question) (*game.Session, error) {
	session, err := s.inner.Create(hostID, quizID, questions)
	if err != nil {
		return nil, err
	}
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.Code()), "1", s.ttl).Err()
	return session, nil
}

func (s *SessionStore) Lookup(code string) (*game.Session, bool) {
	return s.inner.Lookup(code)
}

func (s *SessionStore) Remove(code string) {
	s.inner.Remove(code)
	_ = s.client.Del(context.Background(), s.key(code)).Err()
}

func (s *SessionStore) RemoveByConnection(connID string) (*game.Session, game.Participant, bool) {
	return s.inner.RemoveByConnection(connID)
}

func (s *SessionStore) key(code string) string {
	return "session:live:" + strings.ToUpper(code)
}
