package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"trivia-session-service/internal/config"
	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/game"
	"trivia-session-service/internal/infra/memory"
	pginfra "trivia-session-service/internal/infra/postgres"
	redisinfra "trivia-session-service/internal/infra/redis"
	transport "trivia-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pginfra.NewQuizLoader(pool)
	}

	quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo game.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	clock := clockwork.NewRealClock()
	var store game.SessionStore = memory.NewSessionStore()
	if redisClient != nil {
		store = redisinfra.NewSessionStore(memory.NewSessionStore(), redisClient, redisTTL)
	}

	var stats game.StatsRecorder = memory.NewStatsRecorder()
	if pool != nil {
		stats = pginfra.NewStatsRecorder(pool)
	}

	questionLimit := config.Duration(cfg.Game.DefaultTimeLimit, 20*time.Second)
	service := game.NewGameService(store, quizRepo, stats, clock, questionLimit, logger)
	wsHandler := transport.NewWSHandler(service, logger)
	apiHandler := transport.NewAPIHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.HandleFunc("POST /api/sessions", apiHandler.CreateSession)
	mux.HandleFunc("GET /api/sessions/{code}", apiHandler.CodeStatus)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("port", finalPort).Msg("starting session service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info().Msg("shutting down server")
	case <-ctx.Done():
		logger.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides minimal demo content when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID: "quiz-1",
			Questions: []domain.Question{
				{
					Prompt:    "What is 2 + 2?",
					Options:   []string{"3", "4", "5"},
					Correct:   1,
					TimeLimit: 10,
				},
				{
					Prompt:    "Which planet is closest to the sun?",
					Options:   []string{"Venus", "Earth", "Mercury"},
					Correct:   2,
					TimeLimit: 10,
				},
			},
		},
	}
}
