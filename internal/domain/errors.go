package domain

import "errors"

var (
	// ErrGameNotFound is returned when no game is registered under a key.
	ErrGameNotFound = errors.New("game not found")
	// ErrGameExists is returned when a game key is already taken.
	ErrGameExists = errors.New("game already exists")
	// ErrParticipantNotFound is returned when a session token matches no team, gamemaster or screen.
	ErrParticipantNotFound = errors.New("participant not found in game")
	// ErrTeamExists is returned when a team name is already used in a game.
	ErrTeamExists = errors.New("team already exists")
	// ErrWrongPassword is returned when a gamemaster presents the wrong password.
	ErrWrongPassword = errors.New("wrong password for gamemaster")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates an index that points outside the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrNoMoreQuestions marks the end of the question sequence.
	ErrNoMoreQuestions = errors.New("no more questions")
	// ErrNoQuestionAsked is returned by round operations before any question was asked.
	ErrNoQuestionAsked = errors.New("no question asked")
	// ErrWrongQuestionState is returned when a round operation runs out of order.
	ErrWrongQuestionState = errors.New("wrong question state")
	// ErrTeamNotScored is returned when answers are revealed for a team that has no round score.
	ErrTeamNotScored = errors.New("team has no score for this round")
	// ErrGameEnded is returned when an ended game is started again.
	ErrGameEnded = errors.New("game has ended")
	// ErrUnknownScreenState indicates a screen state name that does not exist.
	ErrUnknownScreenState = errors.New("unknown screen state")
	// ErrMalformedQuiz indicates a quiz definition that cannot be loaded.
	ErrMalformedQuiz = errors.New("malformed quiz definition")
	// ErrUnknownRenderer indicates a renderer tag that is not supported.
	ErrUnknownRenderer = errors.New("unknown renderer")
	// ErrRendererNotImplemented is returned when a renderer has no automatic scoring.
	ErrRendererNotImplemented = errors.New("renderer not implemented")
	// ErrMalformedQuestion indicates question content the scorer cannot work with.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrInvalidAnswer indicates a submitted answer the renderer cannot interpret.
	ErrInvalidAnswer = errors.New("invalid answer")
)
