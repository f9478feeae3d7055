package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/config"
	"party-quiz-service/internal/infra/memory"
	pgstore "party-quiz-service/internal/infra/postgres"
	redisinfra "party-quiz-service/internal/infra/redis"
	transport "party-quiz-service/internal/transport/http"
)

// bootstrapFlags describe one game created at startup from the command line.
type bootstrapFlags struct {
	quiz     string
	name     string
	password string
}

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	var boot bootstrapFlags
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, boot)
		},
	}
	cmd.Flags().StringVarP(&boot.quiz, "quiz", "q", "", "quiz to host right away (id, file name or path)")
	cmd.Flags().StringVarP(&boot.name, "name", "n", "", "game key of the bootstrapped quiz (default: quiz name)")
	cmd.Flags().StringVarP(&boot.password, "password", "P", "", "gamemaster password (default: generated)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string, boot bootstrapFlags) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
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
		redisClient = newRedisClient(cfg.Redis)
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.DefinitionLoader = memory.FileLoader{Dir: cfg.Quiz.Dir}
	if pool != nil {
		loader = pgstore.NewQuizStore(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var (
		directory      app.GameDirectory = memory.NewGameDirectory()
		redisDirectory *redisinfra.GameDirectory
	)
	if redisClient != nil {
		redisDirectory, err = redisinfra.NewGameDirectory(redisClient, redisTTL)
		if err != nil {
			return err
		}
		directory = redisDirectory
	}
	service := app.NewGameService(directory, quizRepo, logger)

	games := cfg.Games
	if boot.quiz != "" {
		games = append(games, config.Game{Key: boot.name, Quiz: boot.quiz, Password: boot.password})
	}
	for _, g := range games {
		game, password, err := service.CreateGame(ctx, g.Quiz, g.Key, g.Password)
		if err != nil {
			return err
		}
		fields := []zap.Field{zap.String("game", game.Key()), zap.String("quiz", g.Quiz)}
		if g.Password == "" {
			fields = append(fields, zap.String("password", password))
		}
		logger.Info("hosting game", fields...)
	}

	handler := transport.NewHandler(service, logger, cfg.Server.PublicURL)
	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, finalPort),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting quiz service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if redisDirectory != nil {
		g.Go(func() error {
			return keepGamesClaimed(gctx, redisDirectory, redisTTL, logger)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if redisDirectory != nil {
			if cerr := redisDirectory.Close(shutdownCtx); cerr != nil {
				logger.Warn("release game markers", zap.Error(cerr))
			}
		}
		return err
	})
	return g.Wait()
}

func newRedisClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// keepGamesClaimed refreshes the Redis markers of hosted games until ctx ends.
func keepGamesClaimed(ctx context.Context, dir *redisinfra.GameDirectory, ttl time.Duration, logger *zap.Logger) error {
	if ttl <= 0 {
		return nil
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := dir.Refresh(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("refresh game markers", zap.Error(err))
			}
		}
	}
}
