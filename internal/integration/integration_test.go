package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-tournament-service/internal/app"
	"quiz-tournament-service/internal/domain"
	pgstore "quiz-tournament-service/internal/infra/postgres"
	"quiz-tournament-service/internal/infra/postgres/migrations"
	infraredis "quiz-tournament-service/internal/infra/redis"
)

type fixedFetcher struct{}

func (fixedFetcher) FetchQuestions(_ context.Context, category string, difficulty domain.Difficulty, amount int) []domain.Question {
	questions := make([]domain.Question, 0, amount)
	for i := 1; i <= amount; i++ {
		questions = append(questions, domain.Question{
			Category:         category,
			Type:             domain.TypeMultipleChoice,
			Difficulty:       difficulty,
			Prompt:           fmt.Sprintf("Question %d", i),
			CorrectAnswer:    fmt.Sprintf("correct-%d", i),
			IncorrectAnswers: []string{"wrong-a", "wrong-b", "wrong-c"},
		})
	}
	return questions
}

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedTournament(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	service := app.NewQuizService(
		infraredis.NewSessionStore(redisClient, 5*time.Minute),
		infraredis.NewQuestionCache(redisClient, fixedFetcher{}, 5*time.Minute),
		pgstore.NewTournamentStore(pool),
		pgstore.NewResultStore(pool),
		10,
	)

	questions, err := service.StartQuiz(ctx, 101, 1)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(questions))
	}

	// 7 correct, 3 wrong: 70% passes the 60% threshold.
	for i := 1; i <= 10; i++ {
		answer := "wrong-a"
		if i <= 7 {
			answer = fmt.Sprintf("correct-%d", i)
		}
		if _, err := service.SubmitAnswer(ctx, 101, 1, i, answer); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	completion, err := service.CompleteQuiz(ctx, 101, 1)
	if err != nil {
		t.Fatalf("complete quiz: %v", err)
	}
	if completion.CorrectAnswers != 7 || completion.Percentage != 70.0 || !completion.Passed {
		t.Fatalf("unexpected completion: %+v", completion)
	}

	// Result persisted in Postgres and readable back through the store.
	result, found, err := service.ExistingResult(ctx, 101, 1)
	if err != nil {
		t.Fatalf("existing result: %v", err)
	}
	if !found {
		t.Fatal("expected a persisted result")
	}
	if result.Score != 7 || !result.Passed {
		t.Fatalf("unexpected persisted result: %+v", result)
	}

	// Legacy mirror row holds the score out of 10.
	var legacyScore int
	var legacyPassed bool
	err = pool.QueryRow(ctx,
		`SELECT score, passed FROM tournament_scores WHERE user_id=$1 AND tournament_id=$2`, 101, 1).
		Scan(&legacyScore, &legacyPassed)
	if err != nil {
		t.Fatalf("read legacy score: %v", err)
	}
	if legacyScore != 7 || !legacyPassed {
		t.Fatalf("expected legacy score 7 passed, got score=%d passed=%v", legacyScore, legacyPassed)
	}

	// Batch stayed cached in Redis for the next participant.
	keys, err := redisClient.Keys(ctx, "tournament:*:questions").Result()
	if err != nil {
		t.Fatalf("redis keys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 cached batch, got %v", keys)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedTournament(t *testing.T, ctx context.Context, dsn string) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	now := time.Now()
	_, err := db.ExecContext(ctx,
		`INSERT INTO tournaments (id, name, category, difficulty, min_passing_score, start_date, end_date)
		 VALUES (1, 'Science Quiz', 'science', 'easy', 60, ?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		now.AddDate(0, 0, -1), now.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("insert tournament: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
