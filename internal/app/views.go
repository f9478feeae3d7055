package app

import (
	"encoding/json"
	"fmt"

	"party-quiz-service/internal/domain"
)

// Summary is one entry of the game listing.
type Summary struct {
	Active    bool             `json:"active"`
	Key       string           `json:"key"`
	TeamCount int              `json:"team_count"`
	GameState domain.GameState `json:"game_state"`
}

// GameView is the public state of a game as shown to screens and teams.
type GameView struct {
	Key                  string                     `json:"key"`
	Active               bool                       `json:"active"`
	TeamCount            int                        `json:"team_count"`
	GameState            domain.GameState           `json:"game_state"`
	Title                string                     `json:"title"`
	Name                 string                     `json:"name"`
	QuestionCount        int                        `json:"question_count"`
	CurrentQuestionIndex *domain.Index              `json:"current_question_index"`
	QuestionState        domain.QuestionState       `json:"question_state"`
	ScreenState          domain.ScreenState         `json:"screen_state"`
	QuestionData         *domain.QuestionView       `json:"question_data"`
	GuessData            map[string]*domain.Value   `json:"guess_data"`
	EmotionData          map[string]json.RawMessage `json:"emotion_data"`
	ScoreData            map[string]int             `json:"score_data"`
}

type TeamData struct {
	Active         bool            `json:"active"`
	Name           string          `json:"name"`
	CurrentAnswer  *domain.Value   `json:"current_answer"`
	CurrentEmotion json.RawMessage `json:"current_emotion"`
}

type TeamView struct {
	GameView
	TeamData TeamData `json:"team_data"`
}

// GamemasterView shows the ground truth: every answer of the quiz and every
// guess, whatever the phase.
type GamemasterView struct {
	GameView
	GuessData              map[string]*domain.Value `json:"guess_data"`
	CurrentAnswerScoreData map[string]*int          `json:"current_answer_score_data"`
	Questions              domain.QuizView          `json:"questions"`
}

func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Summary{
		Active:    g.gameState != domain.GameEnd,
		Key:       g.key,
		TeamCount: len(g.teams),
		GameState: g.gameState,
	}
}

func (g *Game) View() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewLocked()
}

func (g *Game) TeamView(team *domain.Team) TeamView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return TeamView{
		GameView: g.viewLocked(),
		TeamData: TeamData{
			Active:         team.Active,
			Name:           team.Name,
			CurrentAnswer:  copyValue(team.CurrentAnswer),
			CurrentEmotion: team.CurrentEmotion,
		},
	}
}

func (g *Game) GamemasterView() GamemasterView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GamemasterView{
		GameView:               g.viewLocked(),
		GuessData:              g.guessesLocked(),
		CurrentAnswerScoreData: g.roundScoresLocked(),
		Questions:              g.quiz.AnswerView(),
	}
}

func (g *Game) viewLocked() GameView {
	view := GameView{
		Key:           g.key,
		Active:        g.gameState != domain.GameEnd,
		TeamCount:     len(g.teams),
		GameState:     g.gameState,
		Title:         g.quiz.Title,
		Name:          g.quiz.Name,
		QuestionCount: g.quiz.Len(),
		QuestionState: g.questionState,
		ScreenState:   g.screenState,
		EmotionData:   make(map[string]json.RawMessage, len(g.teams)),
		ScoreData:     make(map[string]int, len(g.teams)),
	}
	for _, team := range g.teams {
		view.EmotionData[team.Name] = team.CurrentEmotion
		view.ScoreData[team.Name] = team.CurrentScore
	}

	question := g.currentQuestionLocked()
	if question == nil {
		return view
	}
	idx := *g.current
	view.CurrentQuestionIndex = &idx

	var data domain.QuestionView
	switch g.questionState {
	case domain.QuestionAsk, domain.QuestionScore:
		data = question.View()
	case domain.QuestionAnswer:
		data = question.AnswerView()
		view.GuessData = g.guessesLocked()
	default:
		panic(fmt.Sprintf("game %s: unknown question state %q", g.key, g.questionState))
	}
	view.QuestionData = &data
	return view
}

func (g *Game) guessesLocked() map[string]*domain.Value {
	out := make(map[string]*domain.Value, len(g.teams))
	for _, team := range g.teams {
		out[team.Name] = copyValue(team.CurrentAnswer)
	}
	return out
}

// roundScoresLocked is only populated while the round is being scored.
func (g *Game) roundScoresLocked() map[string]*int {
	if g.questionState != domain.QuestionScore {
		return nil
	}
	out := make(map[string]*int, len(g.teams))
	for _, team := range g.teams {
		if team.CurrentAnswerScore != nil {
			score := *team.CurrentAnswerScore
			out[team.Name] = &score
		} else {
			out[team.Name] = nil
		}
	}
	return out
}

func copyValue(v *domain.Value) *domain.Value {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
