package app

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"party-quiz-service/internal/domain"
	"party-quiz-service/internal/scoring"
)

// Game is one running quiz session. Every exported method holds the game
// lock for its whole duration, so operations on one game never interleave.
type Game struct {
	quiz     *domain.Quiz
	key      string
	password string
	scorer   *scoring.Scorer
	logger   *zap.Logger

	mu            sync.Mutex
	gameState     domain.GameState
	questionState domain.QuestionState
	screenState   domain.ScreenState
	current       *domain.Index
	teams         []*domain.Team
	gamemasters   []*domain.Gamemaster
	screens       []*domain.Screen
	subscribers   map[chan GameView]struct{}
}

func NewGame(quiz *domain.Quiz, key, gamemasterPassword string, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		quiz:        quiz,
		key:         key,
		password:    gamemasterPassword,
		scorer:      scoring.NewScorer(),
		logger:      logger.With(zap.String("game", key)),
		gameState:   domain.GameInit,
		screenState: domain.ScreenSetup,
		subscribers: make(map[chan GameView]struct{}),
	}
}

func (g *Game) Key() string        { return g.key }
func (g *Game) Quiz() *domain.Quiz { return g.quiz }

func (g *Game) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gameState != domain.GameEnd
}

func (g *Game) StartGame() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gameState == domain.GameEnd {
		return domain.ErrGameEnded
	}
	g.gameState = domain.GamePlay
	g.broadcastLocked()
	return nil
}

func (g *Game) EndGame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gameState = domain.GameEnd
	g.broadcastLocked()
}

// AskNextQuestion moves to the next question of the quiz and opens it for answers.
func (g *Game) AskNextQuestion() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next, err := g.quiz.NextIndex(g.current)
	if err != nil {
		return err
	}
	g.askLocked(next)
	return nil
}

// ShowQuestion jumps to any question of the quiz and opens it for answers.
func (g *Game) ShowQuestion(idx domain.Index) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.quiz.Question(idx); err != nil {
		return err
	}
	g.askLocked(idx)
	return nil
}

func (g *Game) askLocked(idx domain.Index) {
	g.current = &idx
	g.questionState = domain.QuestionAsk
	for _, team := range g.teams {
		team.ResetAnswer()
	}
	g.logger.Debug("question asked", zap.Stringer("index", idx))
	g.broadcastLocked()
}

// ScoreAnswer closes the current question and computes the round scores.
func (g *Game) ScoreAnswer() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	question := g.currentQuestionLocked()
	if question == nil {
		return domain.ErrNoQuestionAsked
	}
	if g.questionState != domain.QuestionAsk {
		return fmt.Errorf("%w: cannot score in %s", domain.ErrWrongQuestionState, g.questionState)
	}
	if err := g.scorer.Score(question, g.teams); err != nil {
		return fmt.Errorf("score %s: %w", question, err)
	}
	g.questionState = domain.QuestionScore
	g.broadcastLocked()
	return nil
}

// ShowAnswer reveals the answer and adds the round scores to the totals. With
// a nil scores map every team is rewarded its own round score; otherwise each
// team gets scores[name], zero when absent.
func (g *Game) ShowAnswer(scores map[string]int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.currentQuestionLocked() == nil {
		return domain.ErrNoQuestionAsked
	}

	rewards := make([]int, len(g.teams))
	for i, team := range g.teams {
		if scores != nil {
			rewards[i] = scores[team.Name]
			continue
		}
		if team.CurrentAnswerScore == nil {
			return fmt.Errorf("%w: %s", domain.ErrTeamNotScored, team)
		}
		rewards[i] = *team.CurrentAnswerScore
	}

	g.questionState = domain.QuestionAnswer
	for i, team := range g.teams {
		g.logger.Debug("team rewarded", zap.String("team", team.Name), zap.Int("points", rewards[i]))
		team.Reward(rewards[i])
	}
	g.broadcastLocked()
	return nil
}

// SetScreenState changes what the screen displays. No other state is touched.
func (g *Game) SetScreenState(state domain.ScreenState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.screenState = state
	g.broadcastLocked()
}

func (g *Game) currentQuestionLocked() *domain.Question {
	if g.current == nil {
		return nil
	}
	q, err := g.quiz.Question(*g.current)
	if err != nil {
		// current is validated whenever it is set and the quiz never changes.
		panic(fmt.Sprintf("game %s: current question %s: %v", g.key, g.current, err))
	}
	return q
}
