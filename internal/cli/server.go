package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-tournament-service/internal/app"
	"quiz-tournament-service/internal/config"
	"quiz-tournament-service/internal/domain"
	"quiz-tournament-service/internal/infra/memory"
	pgstore "quiz-tournament-service/internal/infra/postgres"
	redisstore "quiz-tournament-service/internal/infra/redis"
	transport "quiz-tournament-service/internal/transport/http"
	"quiz-tournament-service/internal/trivia"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz tournament server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	fetcher := trivia.NewClient(cfg.OpenTDB.BaseURL, config.TTLDuration(cfg.OpenTDB.Timeout, 10*time.Second))

	var cache app.QuestionCache
	if redisClient != nil {
		cache = redisstore.NewQuestionCache(redisClient, fetcher, config.TTLDuration(cfg.Quiz.BatchTTL, 0))
	} else {
		cache = memory.NewQuestionCache(fetcher)
	}

	var sessions app.SessionStore
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		sessions = memory.NewSessionStoreWithIdleTTL(config.TTLDuration(cfg.Quiz.SessionTTL, 0))
	}

	var tournaments app.TournamentStore = memory.NewStaticTournamentStore(sampleTournaments())
	var results app.ResultStore = memory.NewResultStore()
	if pool != nil {
		tournaments = pgstore.NewTournamentStore(pool)
		results = pgstore.NewResultStore(pool)
	}

	service := app.NewQuizService(sessions, cache, tournaments, results, cfg.Quiz.QuestionCount)
	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws/session", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz tournament service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleTournaments seeds a no-Postgres run with an always-open tournament.
func sampleTournaments() map[int64]domain.Tournament {
	now := time.Now()
	return map[int64]domain.Tournament{
		1: {
			ID:              1,
			Name:            "Science Quiz",
			Category:        "science",
			Difficulty:      domain.DifficultyEasy,
			MinPassingScore: 60,
			StartDate:       now.AddDate(0, 0, -1),
			EndDate:         now.AddDate(0, 0, 30),
		},
	}
}
