package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
)

func (h *Handler) handleJoinGamemaster(w http.ResponseWriter, r *http.Request) {
	var password string
	if err := readJSON(r, &password); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "password must be a JSON string")
		return
	}

	token, err := app.NewToken()
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if err := gameFrom(r).JoinGamemaster(password, &domain.Gamemaster{Address: r.RemoteAddr, Token: token}); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	setSessionCookie(w, gamemasterCookie, token)
	writeJSON(w, http.StatusOK, token)
}

func (h *Handler) handleShowGamemaster(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gameFrom(r).GamemasterView())
}

func (h *Handler) handleLeaveGamemaster(w http.ResponseWriter, r *http.Request) {
	if err := gameFrom(r).LeaveGamemaster(gamemasterFrom(r)); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// handleGameAction runs one state machine operation. The body carries the
// action's argument, if any, as JSON.
func (h *Handler) handleGameAction(w http.ResponseWriter, r *http.Request) {
	game := gameFrom(r)
	action := chi.URLParam(r, "action")

	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "unreadable body")
		return
	}
	body = bytes.TrimSpace(body)

	switch action {
	case "end_game":
		game.EndGame()
	case "start_game":
		err = game.StartGame()
	case "show_question":
		var idx domain.Index
		if err := json.Unmarshal(body, &idx); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "question index must be [block, question]")
			return
		}
		err = game.ShowQuestion(idx)
	case "score_answer":
		err = game.ScoreAnswer()
	case "show_answer":
		var scores map[string]int
		if len(body) > 0 {
			if err := json.Unmarshal(body, &scores); err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", "scores must map team names to points")
				return
			}
		}
		err = game.ShowAnswer(scores)
	case "ask_next_question":
		err = game.AskNextQuestion()
	case "set_screen_state":
		var name string
		if err := json.Unmarshal(body, &name); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "screen state must be a JSON string")
			return
		}
		var state domain.ScreenState
		if state, err = domain.ParseScreenState(name); err == nil {
			game.SetScreenState(state)
		}
	default:
		h.logger.Warn("unknown gamemaster action", zap.String("game", game.Key()), zap.String("action", action))
		writeError(w, http.StatusNotFound, "unknown_action", "unknown action "+action)
		return
	}
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	h.logger.Debug("gamemaster action",
		zap.String("game", game.Key()),
		zap.String("action", action),
		zap.ByteString("params", body),
	)
	writeJSON(w, http.StatusOK, struct{}{})
}
