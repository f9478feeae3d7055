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

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
	pgstore "party-quiz-service/internal/infra/postgres"
	pgmigrations "party-quiz-service/internal/infra/postgres/migrations"
	infraredis "party-quiz-service/internal/infra/redis"
)

const sampleQuiz = `
name: friday
startTitle: Friday Quiz
blocks:
  - startTitle: Warmup
    questions:
      - title: What is 2 + 2?
        renderer: base
        answers:
          - text: "3"
          - text: "4"
            correct: true
          - text: "5"
`

func TestGameRoundEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pgstore.NewQuizStore(pool)
	seedQuiz(t, ctx, store, "quiz-1", sampleQuiz)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	quizRepo := infraredis.NewQuizRepository(redisClient, store, 5*time.Minute)
	directory, err := infraredis.NewGameDirectory(redisClient, 5*time.Minute)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	service := app.NewGameService(directory, quizRepo, nil)

	game, password, err := service.CreateGame(ctx, "quiz-1", "", "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.Key() != "friday" {
		t.Fatalf("expected key from quiz name, got %q", game.Key())
	}
	other, err := infraredis.NewGameDirectory(redisClient, 5*time.Minute)
	if err != nil {
		t.Fatalf("second directory: %v", err)
	}
	if err := other.Add(ctx, app.NewGame(game.Quiz(), "friday", "pw", nil)); err == nil {
		t.Fatal("expected second instance to be refused the key")
	}

	if err := game.JoinGamemaster(password, &domain.Gamemaster{Token: "gm"}); err != nil {
		t.Fatalf("join gamemaster: %v", err)
	}
	alice := domain.NewTeam("10.0.0.1", "Alice", "alice")
	bob := domain.NewTeam("10.0.0.2", "Bob", "bob")
	for _, team := range []*domain.Team{alice, bob} {
		if err := game.JoinTeam(team); err != nil {
			t.Fatalf("join %s: %v", team.Name, err)
		}
	}

	if err := game.StartGame(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := game.AskNextQuestion(); err != nil {
		t.Fatalf("ask: %v", err)
	}
	game.SubmitAnswer(alice, domain.StringValue("0"))
	game.SubmitAnswer(bob, domain.StringValue("1"))
	if err := game.ScoreAnswer(); err != nil {
		t.Fatalf("score: %v", err)
	}
	if err := game.ShowAnswer(nil); err != nil {
		t.Fatalf("show answer: %v", err)
	}
	if alice.CurrentScore != 0 || bob.CurrentScore != 1 {
		t.Fatalf("expected bob to score, got alice=%d bob=%d", alice.CurrentScore, bob.CurrentScore)
	}

	if err := directory.Close(ctx); err != nil {
		t.Fatalf("close directory: %v", err)
	}
	if err := other.Add(ctx, app.NewGame(game.Quiz(), "friday", "pw", nil)); err != nil {
		t.Fatalf("expected released key to be claimable: %v", err)
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

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func seedQuiz(t *testing.T, ctx context.Context, store *pgstore.QuizStore, id, source string) {
	t.Helper()
	quiz, err := domain.ParseQuiz([]byte(source))
	if err != nil {
		t.Fatalf("parse quiz: %v", err)
	}
	doc, err := quiz.MarshalDefinition()
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if err := store.SaveDefinition(ctx, id, doc); err != nil {
		t.Fatalf("save quiz: %v", err)
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
