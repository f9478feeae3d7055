package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"party-quiz-service/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// writeDomainError maps core errors to a status and a stable code.
func writeDomainError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, code := classify(err)
	msg := err.Error()
	switch {
	case status == http.StatusUnauthorized && code == "unauthorized":
		msg = "not authenticated"
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		return http.StatusNotFound, "game_not_found"
	case errors.Is(err, domain.ErrParticipantNotFound):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrWrongPassword):
		return http.StatusUnauthorized, "wrong_password"
	case errors.Is(err, domain.ErrTeamExists), errors.Is(err, domain.ErrGameExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrNoMoreQuestions):
		return http.StatusConflict, "no_more_questions"
	case errors.Is(err, domain.ErrNoQuestionAsked),
		errors.Is(err, domain.ErrWrongQuestionState),
		errors.Is(err, domain.ErrTeamNotScored),
		errors.Is(err, domain.ErrGameEnded):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrUnknownScreenState):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrMalformedQuestion),
		errors.Is(err, domain.ErrRendererNotImplemented),
		errors.Is(err, domain.ErrUnknownRenderer),
		errors.Is(err, domain.ErrMalformedQuiz):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, domain.ErrQuizNotFound):
		return http.StatusNotFound, "quiz_not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
