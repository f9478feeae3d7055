package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"party-quiz-service/internal/domain"
)

// GameDirectory abstracts where running games are registered (in-memory, Redis-aware).
type GameDirectory interface {
	Add(ctx context.Context, game *Game) error
	Get(key string) (*Game, error)
	List() []*Game
	ListActive() []*Game
}

// QuizRepository loads parsed quiz definitions (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error)
}

// GameService creates games from stored quizzes and looks them up for the transport.
type GameService struct {
	games   GameDirectory
	quizzes QuizRepository
	logger  *zap.Logger
}

func NewGameService(games GameDirectory, quizzes QuizRepository, logger *zap.Logger) *GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameService{games: games, quizzes: quizzes, logger: logger}
}

// CreateGame starts a game for quizID under key. An empty key falls back to the
// quiz name and an empty password is generated; the password in use is returned.
func (s *GameService) CreateGame(ctx context.Context, quizID, key, password string) (*Game, string, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, "", fmt.Errorf("load quiz %q: %w", quizID, err)
	}
	if key == "" {
		key = quiz.Name
	}
	if password == "" {
		if password, err = NewPassword(); err != nil {
			return nil, "", err
		}
	}

	game := NewGame(quiz, key, password, s.logger)
	if err := s.games.Add(ctx, game); err != nil {
		return nil, "", err
	}
	s.logger.Info("game created",
		zap.String("game", key),
		zap.String("quiz", quizID),
		zap.Int("questions", quiz.Len()),
	)
	return game, password, nil
}

func (s *GameService) Game(key string) (*Game, error) {
	return s.games.Get(key)
}

// Summaries lists all games, or only the active ones.
func (s *GameService) Summaries(activeOnly bool) []Summary {
	games := s.games.List()
	if activeOnly {
		games = s.games.ListActive()
	}
	out := make([]Summary, len(games))
	for i, g := range games {
		out[i] = g.Summary()
	}
	return out
}
