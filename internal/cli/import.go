package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"party-quiz-service/internal/config"
	"party-quiz-service/internal/domain"
	"party-quiz-service/internal/infra/postgres"
	redisinfra "party-quiz-service/internal/infra/redis"
)

// NewImportCmd stores a quiz definition file in Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Validate a quiz definition (JSON or YAML) and store it in Postgres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), *configPath, args[0], id)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "quiz id (default: file name without extension)")
	return cmd
}

func runImport(ctx context.Context, configPath, file, id string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	quiz, err := domain.ParseQuiz(data)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	document, err := quiz.MarshalDefinition()
	if err != nil {
		return err
	}
	if id == "" {
		id = quizIDFromPath(file)
	}

	if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.NewQuizStore(pool).SaveDefinition(ctx, id, document); err != nil {
		return err
	}
	if cfg.Redis.Addr != "" {
		if err := invalidateCachedQuiz(ctx, cfg.Redis, id); err != nil {
			return fmt.Errorf("quiz %q stored but cache not cleared: %w", id, err)
		}
	}
	logger.Info("quiz imported", zap.String("quiz", id), zap.String("name", quiz.Name), zap.Int("questions", quiz.Len()))
	return nil
}

// invalidateCachedQuiz drops the Redis copy of quizID so running servers load
// the imported definition on their next game.
func invalidateCachedQuiz(ctx context.Context, cfg config.Redis, quizID string) error {
	client := newRedisClient(cfg)
	defer client.Close()
	return redisinfra.NewQuizRepository(client, nil, 0).Invalidate(ctx, quizID)
}

func quizIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
