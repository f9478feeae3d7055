package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"party-quiz-service/internal/domain"
)

// QuizStore keeps quiz definition documents in Postgres. The column is JSON
// rather than JSONB so answer fields keep their order.
type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

// LoadDefinition returns the stored JSON document of quizID.
func (s *QuizStore) LoadDefinition(ctx context.Context, quizID string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", domain.ErrQuizNotFound, quizID)
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	return raw, nil
}

// SaveDefinition inserts or replaces the JSON document of quizID.
func (s *QuizStore) SaveDefinition(ctx context.Context, quizID string, document []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quizzes (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		quizID, document)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}
