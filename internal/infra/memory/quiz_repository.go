package memory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"party-quiz-service/internal/domain"
)

// DefinitionLoader fetches a raw quiz definition document (JSON or YAML).
type DefinitionLoader interface {
	LoadDefinition(ctx context.Context, quizID string) ([]byte, error)
}

// QuizRepository caches parsed quizzes with TTL to avoid repeated loads.
type QuizRepository struct {
	loader DefinitionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      *domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader DefinitionLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	if quiz, ok := r.cached(quizID); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		if quiz, ok := r.cached(quizID); ok {
			return quiz, nil
		}

		data, err := r.loader.LoadDefinition(ctx, quizID)
		if err != nil {
			return nil, err
		}
		quiz, err := domain.ParseQuiz(data)
		if err != nil {
			return nil, fmt.Errorf("quiz %q: %w", quizID, err)
		}

		r.mu.Lock()
		r.cache[quizID] = cachedQuiz{
			quiz:      quiz,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Quiz), nil
}

func (r *QuizRepository) cached(quizID string) (*domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticLoader serves definitions from memory (useful for tests/demos).
type StaticLoader map[string][]byte

func (l StaticLoader) LoadDefinition(_ context.Context, quizID string) ([]byte, error) {
	if data, ok := l[quizID]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrQuizNotFound, quizID)
}

// FileLoader reads definitions from disk. The quiz ID is either a path or a
// file name below Dir, with or without a .json, .yaml or .yml extension.
type FileLoader struct {
	Dir string
}

var definitionExtensions = []string{"", ".json", ".yaml", ".yml"}

func (l FileLoader) LoadDefinition(_ context.Context, quizID string) ([]byte, error) {
	candidates := []string{quizID}
	if l.Dir != "" && !filepath.IsAbs(quizID) {
		for _, ext := range definitionExtensions {
			candidates = append(candidates, filepath.Join(l.Dir, quizID+ext))
		}
	}
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read quiz %q: %w", path, err)
		}
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrQuizNotFound, quizID)
}
