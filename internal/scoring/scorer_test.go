package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party-quiz-service/internal/domain"
)

func team(name string, answer *domain.Value) *domain.Team {
	t := domain.NewTeam("127.0.0.1", name, "token-"+name)
	if answer != nil {
		t.Guess(*answer)
	}
	return t
}

func str(s string) *domain.Value {
	v := domain.StringValue(s)
	return &v
}

func num(f float64) *domain.Value {
	v := domain.NumberValue(f)
	return &v
}

func choiceQuestion() *domain.Question {
	return &domain.Question{
		Title:    "Pick",
		Renderer: domain.RendererBase,
		Answers: []domain.Answer{
			domain.NewAnswer(
				domain.Field{Name: "text", Value: domain.StringValue("A")},
				domain.Field{Name: "correct", Value: domain.BoolValue(true)},
			),
			domain.NewAnswer(domain.Field{Name: "text", Value: domain.StringValue("B")}),
		},
	}
}

func guessQuestion(reference string) *domain.Question {
	return &domain.Question{
		Title:    "Estimate",
		Renderer: domain.RendererGuess,
		Answers:  []domain.Answer{domain.NewAnswer(domain.Field{Name: "text", Value: domain.StringValue(reference)})},
	}
}

func scoreOf(t *testing.T, team *domain.Team) any {
	t.Helper()
	if team.CurrentAnswerScore == nil {
		return nil
	}
	return *team.CurrentAnswerScore
}

func TestScoreChoice(t *testing.T) {
	right := team("right", str("0"))
	wrong := team("wrong", str("1"))
	silent := team("silent", nil)

	require.NoError(t, NewScorer().Score(choiceQuestion(), []*domain.Team{right, wrong, silent}))

	assert.Equal(t, 1, scoreOf(t, right))
	assert.Equal(t, 0, scoreOf(t, wrong))
	assert.Nil(t, scoreOf(t, silent))
}

func TestScoreChoiceAcceptsNumericIndex(t *testing.T) {
	right := team("right", num(0))
	require.NoError(t, NewScorer().Score(choiceQuestion(), []*domain.Team{right}))
	assert.Equal(t, 1, scoreOf(t, right))
}

func TestScoreChoiceRejectsBadAnswersWithoutScoring(t *testing.T) {
	cases := []struct {
		name   string
		answer *domain.Value
	}{
		{name: "not a number", answer: str("A")},
		{name: "fraction", answer: num(0.5)},
		{name: "out of range", answer: str("2")},
		{name: "negative", answer: str("-1")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := team("first", str("0"))
			bad := team("bad", tc.answer)

			err := NewScorer().Score(choiceQuestion(), []*domain.Team{first, bad})
			require.ErrorIs(t, err, domain.ErrInvalidAnswer)
			assert.Nil(t, scoreOf(t, first), "no team may be scored when one answer is invalid")
		})
	}
}

func TestScoreGuessRanksByDistance(t *testing.T) {
	t45 := team("t45", str("45"))
	t60 := team("t60", str("60"))
	t48 := team("t48", num(48))
	t100 := team("t100", str("100"))
	none := team("none", nil)

	err := NewScorer().Score(guessQuestion("50"), []*domain.Team{t45, t60, t48, t100, none})
	require.NoError(t, err)

	assert.Equal(t, 4, scoreOf(t, t48))
	assert.Equal(t, 3, scoreOf(t, t45))
	assert.Equal(t, 2, scoreOf(t, t60))
	assert.Nil(t, scoreOf(t, t100))
	assert.Nil(t, scoreOf(t, none))
}

func TestScoreGuessTiesKeepJoinOrder(t *testing.T) {
	first := team("first", str("40"))
	second := team("second", str("60"))
	third := team("third", str("50"))

	require.NoError(t, NewScorer().Score(guessQuestion("50"), []*domain.Team{first, second, third}))

	assert.Equal(t, 4, scoreOf(t, third))
	assert.Equal(t, 3, scoreOf(t, first))
	assert.Equal(t, 2, scoreOf(t, second))
}

func TestScoreGuessErrors(t *testing.T) {
	err := NewScorer().Score(guessQuestion("fifty"), []*domain.Team{team("a", str("1"))})
	assert.ErrorIs(t, err, domain.ErrMalformedQuestion)

	empty := &domain.Question{Title: "Empty", Renderer: domain.RendererGuess}
	assert.ErrorIs(t, NewScorer().Score(empty, nil), domain.ErrMalformedQuestion)

	ok := team("ok", str("10"))
	err = NewScorer().Score(guessQuestion("50"), []*domain.Team{ok, team("bad", str("lots"))})
	assert.ErrorIs(t, err, domain.ErrInvalidAnswer)
	assert.Nil(t, scoreOf(t, ok))

	err = NewScorer().Score(guessQuestion("50"), []*domain.Team{team("nan", str("NaN"))})
	assert.ErrorIs(t, err, domain.ErrInvalidAnswer)
}

func TestScoreRendererWithoutAutomaticScoring(t *testing.T) {
	for _, r := range []domain.Renderer{domain.RendererImage, domain.RendererSilentVideo} {
		q := &domain.Question{Title: "Manual", Renderer: r}
		assert.ErrorIs(t, NewScorer().Score(q, nil), domain.ErrRendererNotImplemented, r.String())
	}
	q := &domain.Question{Title: "Broken"}
	assert.ErrorIs(t, NewScorer().Score(q, nil), domain.ErrUnknownRenderer)
}

func TestInitScore(t *testing.T) {
	a, b := team("a", nil), team("b", nil)
	a.CurrentScore, b.CurrentScore = 7, 3

	NewScorer().InitScore([]*domain.Team{a, b})
	assert.Zero(t, a.CurrentScore)
	assert.Zero(t, b.CurrentScore)
}
