package http

import (
	"net/http"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
)

type screenResponse struct {
	Address string `json:"address"`
}

func (h *Handler) handleJoinScreen(w http.ResponseWriter, r *http.Request) {
	token, err := app.NewToken()
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	gameFrom(r).JoinScreen(&domain.Screen{Address: r.RemoteAddr, Token: token})

	setSessionCookie(w, screenCookie, token)
	writeJSON(w, http.StatusOK, token)
}

func (h *Handler) handleShowScreen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, screenResponse{Address: screenFrom(r).Address})
}

func (h *Handler) handleLeaveScreen(w http.ResponseWriter, r *http.Request) {
	if err := gameFrom(r).LeaveScreen(screenFrom(r)); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
