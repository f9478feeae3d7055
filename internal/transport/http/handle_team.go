package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
)

type joinTeamRequest struct {
	Name string `json:"name"`
}

type guessResponse struct {
	Accepted bool `json:"accepted"`
}

func (h *Handler) handleJoinTeam(w http.ResponseWriter, r *http.Request) {
	var req joinTeamRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	if strings.TrimSpace(req.Name) != req.Name {
		writeError(w, http.StatusBadRequest, "bad_request", "name must not start or end with spaces")
		return
	}

	token, err := app.NewToken()
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	game := gameFrom(r)
	if err := game.JoinTeam(domain.NewTeam(r.RemoteAddr, req.Name, token)); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	setSessionCookie(w, teamCookie, token)
	writeJSON(w, http.StatusOK, token)
}

func (h *Handler) handleShowTeam(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gameFrom(r).TeamView(teamFrom(r)))
}

func (h *Handler) handleLeaveTeam(w http.ResponseWriter, r *http.Request) {
	if err := gameFrom(r).LeaveTeam(teamFrom(r)); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) handleGuess(w http.ResponseWriter, r *http.Request) {
	var answer domain.Value
	if err := readJSON(r, &answer); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "answer must be a JSON scalar")
		return
	}
	game, team := gameFrom(r), teamFrom(r)
	accepted := game.SubmitAnswer(team, answer)
	h.logger.Debug("team guessed",
		zap.String("game", game.Key()),
		zap.String("team", team.Name),
		zap.Stringer("answer", answer),
		zap.Bool("accepted", accepted),
	)
	writeJSON(w, http.StatusOK, guessResponse{Accepted: accepted})
}

func (h *Handler) handleShowEmotion(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	emotion, err := io.ReadAll(io.LimitReader(r.Body, 64<<10))
	if err != nil || !json.Valid(emotion) {
		writeError(w, http.StatusBadRequest, "bad_request", "emotion must be JSON")
		return
	}
	gameFrom(r).SetEmotion(teamFrom(r), emotion)
	writeJSON(w, http.StatusOK, struct{}{})
}
