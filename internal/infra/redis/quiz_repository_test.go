package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		inner: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(client, loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Correct != 1 {
		t.Fatalf("unexpected quiz content: %+v", quiz)
	}

	// Second call should be served from Redis, loader not incremented.
	again, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if again.OwnerID != quiz.OwnerID || len(again.Questions) != len(quiz.Questions) {
		t.Fatalf("cached quiz differs: %+v vs %+v", again, quiz)
	}
}

type countingLoader struct {
	inner memory.QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.inner.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:      "quiz-1",
		OwnerID: "host-user",
		Questions: []domain.Question{
			{
				Prompt:    "What is 2 + 2?",
				Options:   []string{"3", "4", "5"},
				Correct:   1,
				TimeLimit: 10,
			},
		},
	}
}
