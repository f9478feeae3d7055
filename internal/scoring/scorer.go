// Package scoring turns the answers of one round into per-team round scores.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"party-quiz-service/internal/domain"
)

// MaxGuessScore is awarded to the closest estimate; every following rank gets
// one point less and only MaxGuessScore-1 teams score at all.
const MaxGuessScore = 4

type Scorer struct {
	maxGuessScore int
}

func NewScorer() *Scorer {
	return &Scorer{maxGuessScore: MaxGuessScore}
}

// InitScore resets the cumulative score of freshly joined teams.
func (s *Scorer) InitScore(teams []*domain.Team) {
	for _, team := range teams {
		team.CurrentScore = 0
	}
}

type award struct {
	team   *domain.Team
	points int
}

// Score sets CurrentAnswerScore on the teams that earned points for question.
// Teams are only touched once every answer has been interpreted.
func (s *Scorer) Score(question *domain.Question, teams []*domain.Team) error {
	var (
		awards []award
		err    error
	)
	switch question.Renderer {
	case domain.RendererBase:
		awards, err = scoreChoice(question, teams)
	case domain.RendererGuess:
		awards, err = s.scoreGuess(question, teams)
	case domain.RendererImage, domain.RendererSilentVideo:
		err = fmt.Errorf("%w: %s", domain.ErrRendererNotImplemented, question.Renderer)
	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnknownRenderer, question.Renderer)
	}
	if err != nil {
		return err
	}

	for _, a := range awards {
		points := a.points
		a.team.CurrentAnswerScore = &points
	}
	return nil
}

// scoreChoice reads each answer as an index into the question's answers.
func scoreChoice(question *domain.Question, teams []*domain.Team) ([]award, error) {
	awards := make([]award, 0, len(teams))
	for _, team := range teams {
		if team.CurrentAnswer == nil {
			continue
		}
		i, err := team.CurrentAnswer.Int()
		if err != nil {
			return nil, fmt.Errorf("%w: team %q: %v", domain.ErrInvalidAnswer, team.Name, err)
		}
		if i < 0 || i >= len(question.Answers) {
			return nil, fmt.Errorf("%w: team %q: answer %d out of range", domain.ErrInvalidAnswer, team.Name, i)
		}
		points := 0
		if correct, ok := question.Answers[i].Get("correct"); ok && correct.Truthy() {
			points = 1
		}
		awards = append(awards, award{team: team, points: points})
	}
	return awards, nil
}

type estimate struct {
	team     *domain.Team
	distance float64
}

// scoreGuess ranks numeric estimates by their distance to the first answer's text.
func (s *Scorer) scoreGuess(question *domain.Question, teams []*domain.Team) ([]award, error) {
	if len(question.Answers) == 0 {
		return nil, fmt.Errorf("%w: %s has no reference answer", domain.ErrMalformedQuestion, question)
	}
	text, ok := question.Answers[0].Get("text")
	if !ok {
		return nil, fmt.Errorf("%w: %s reference answer has no text", domain.ErrMalformedQuestion, question)
	}
	reference, err := text.Float()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedQuestion, question, err)
	}

	estimates := make([]estimate, 0, len(teams))
	for _, team := range teams {
		if team.CurrentAnswer == nil {
			continue
		}
		guess, err := team.CurrentAnswer.Float()
		if err != nil {
			return nil, fmt.Errorf("%w: team %q: %v", domain.ErrInvalidAnswer, team.Name, err)
		}
		if math.IsNaN(guess) || math.IsInf(guess, 0) {
			return nil, fmt.Errorf("%w: team %q: %v is not a finite number", domain.ErrInvalidAnswer, team.Name, guess)
		}
		estimates = append(estimates, estimate{team: team, distance: math.Abs(reference - guess)})
	}

	sort.SliceStable(estimates, func(i, j int) bool {
		return estimates[i].distance < estimates[j].distance
	})
	if limit := s.maxGuessScore - 1; len(estimates) > limit {
		estimates = estimates[:limit]
	}

	awards := make([]award, len(estimates))
	for rank, e := range estimates {
		awards[rank] = award{team: e.team, points: s.maxGuessScore - rank}
	}
	return awards, nil
}
