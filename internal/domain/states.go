package domain

import "fmt"

// GameState is the overall lifecycle of a game: INIT -> PLAY -> END.
type GameState string

const (
	GameInit GameState = "INIT"
	GamePlay GameState = "PLAY"
	GameEnd  GameState = "END"
)

// QuestionState is the phase of the current round. The zero value means no
// question has been asked yet and is serialized as null.
type QuestionState string

const (
	QuestionUnset  QuestionState = ""
	QuestionAsk    QuestionState = "ASK"
	QuestionScore  QuestionState = "SCORE"
	QuestionAnswer QuestionState = "ANSWER"
)

func (s QuestionState) MarshalJSON() ([]byte, error) {
	if s == QuestionUnset {
		return []byte("null"), nil
	}
	return []byte(`"` + string(s) + `"`), nil
}

// ScreenState is chosen by the gamemaster and only drives what the screen shows.
type ScreenState string

const (
	ScreenSetup    ScreenState = "SETUP"
	ScreenLobby    ScreenState = "LOBBY"
	ScreenQuestion ScreenState = "QUESTION"
	ScreenAnswer   ScreenState = "ANSWER"
	ScreenScore    ScreenState = "SCORE"
	ScreenFinal    ScreenState = "FINAL"
)

func ParseScreenState(name string) (ScreenState, error) {
	switch s := ScreenState(name); s {
	case ScreenSetup, ScreenLobby, ScreenQuestion, ScreenAnswer, ScreenScore, ScreenFinal:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScreenState, name)
}
