package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"party-quiz-service/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS streams the game view to any client. A socket opened with a team
// token (cookie or bearer) receives the team view and may send
// {"type":"guess"} and {"type":"show_emotion"} messages.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	game := gameFrom(r)
	// Without a valid team token the socket is a read-only viewer.
	team, _ := game.TeamByToken(requestToken(r, teamCookie))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := game.Subscribe()
	defer cancel()

	logger := h.logger.With(zap.String("game", game.Key()), zap.String("remote", r.RemoteAddr))
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only this goroutine writes to conn.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg := outboundMessage[any]{Type: "game", Payload: update}
				if team != nil {
					msg = outboundMessage[any]{Type: "team", Payload: game.TeamView(team)}
				}
				select {
				case send <- msg:
				case <-writerDone:
					return
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// reply gives up once the writer has stopped.
	reply := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if team == nil {
			reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "not authenticated"}})
			continue
		}
		switch inbound.Type {
		case "guess":
			var answer domain.Value
			if err := json.Unmarshal(inbound.Payload, &answer); err != nil {
				reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid guess payload"}})
				continue
			}
			accepted := game.SubmitAnswer(team, answer)
			reply(outboundMessage[any]{Type: "guessResult", Payload: guessResponse{Accepted: accepted}})
		case "show_emotion":
			if len(inbound.Payload) == 0 {
				reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "missing emotion payload"}})
				continue
			}
			game.SetEmotion(team, inbound.Payload)
		default:
			reply(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
