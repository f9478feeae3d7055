package redis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"party-quiz-service/internal/domain"
)

// DefinitionLoader fetches a raw quiz definition from a backing store (e.g., Postgres).
type DefinitionLoader interface {
	LoadDefinition(ctx context.Context, quizID string) ([]byte, error)
}

// QuizRepository caches quiz definitions in Redis and falls back to a loader on cache miss.
// Definitions are stored as: SET quiz:{quizID}:definition {document} EX ttl
// The cache is best effort: Redis errors fall through to the loader.
type QuizRepository struct {
	client *redis.Client
	loader DefinitionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader DefinitionLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	data, err := r.definition(ctx, quizID)
	if err != nil {
		return nil, err
	}
	quiz, err := domain.ParseQuiz(data)
	if err != nil {
		return nil, fmt.Errorf("quiz %q: %w", quizID, err)
	}
	return quiz, nil
}

// Invalidate drops the cached definition so the next GetQuiz reloads it.
func (r *QuizRepository) Invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, r.definitionKey(quizID)).Err()
}

func (r *QuizRepository) definition(ctx context.Context, quizID string) ([]byte, error) {
	key := r.definitionKey(quizID)
	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		return data, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		data, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			return data, nil
		}

		data, err = r.loader.LoadDefinition(ctx, quizID)
		if err != nil {
			return nil, err
		}
		// Only cache documents that parse, so a broken row is retried once fixed.
		if _, err := domain.ParseQuiz(data); err != nil {
			return nil, fmt.Errorf("quiz %q: %w", quizID, err)
		}
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (r *QuizRepository) definitionKey(quizID string) string {
	return "quiz:" + quizID + ":definition"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
