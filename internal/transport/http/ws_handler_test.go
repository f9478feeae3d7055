package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/infra/memory"
)

const testQuiz = `{
	"name": "pub-night",
	"startTitle": "Pub Night",
	"blocks": [{"startTitle": "One", "questions": [
		{"title": "Capital of France?", "renderer": "base",
		 "answers": [{"text": "Paris", "correct": true}, {"text": "Lyon"}]},
		{"title": "How tall?", "renderer": "guess", "answers": [{"text": "50"}]}
	]}]
}`

func newTestServer(t *testing.T) (*httptest.Server, *app.Game) {
	t.Helper()
	quizzes := memory.NewQuizRepository(memory.StaticLoader{"pub-night": []byte(testQuiz)}, time.Minute)
	service := app.NewGameService(memory.NewGameDirectory(), quizzes, nil)
	game, _, err := service.CreateGame(context.Background(), "pub-night", "pub", "secret")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	server := httptest.NewServer(NewHandler(service, nil, "").Routes())
	t.Cleanup(server.Close)
	return server, game
}

func TestWebSocketGuessFlow(t *testing.T) {
	server, game := newTestServer(t)

	token := joinTeamHTTP(t, server, "Owls")
	if err := game.AskNextQuestion(); err != nil {
		t.Fatalf("ask: %v", err)
	}

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/pub/ws"
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(u, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the current team view first.
	msgType, payload := readNext(conn, t, "team")
	if payload["question_state"] != "ASK" {
		t.Fatalf("expected ASK, got %v", payload["question_state"])
	}
	if msgType != "team" {
		t.Fatalf("expected team, got %s", msgType)
	}

	if err := conn.WriteJSON(map[string]any{"type": "guess", "payload": "0"}); err != nil {
		t.Fatalf("write guess: %v", err)
	}

	// Expect guessResult and a team view carrying the guess.
	resultSeen := false
	guessSeen := false
	for i := 0; i < 4 && !(resultSeen && guessSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "guessResult":
			resultSeen = payload["accepted"] == true
		case "team":
			teamData, _ := payload["team_data"].(map[string]any)
			guessSeen = teamData["current_answer"] == "0"
		}
	}
	if !resultSeen || !guessSeen {
		t.Fatalf("expected accepted guessResult and updated view, got result=%v view=%v", resultSeen, guessSeen)
	}
}

func TestWebSocketViewerIsReadOnly(t *testing.T) {
	server, game := newTestServer(t)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/pub/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, payload := readNext(conn, t, "game")
	if payload["key"] != "pub" {
		t.Fatalf("unexpected view %v", payload)
	}

	game.SetScreenState("LOBBY")
	_, payload = readNext(conn, t, "game")
	if payload["screen_state"] != "LOBBY" {
		t.Fatalf("expected pushed screen state, got %v", payload["screen_state"])
	}

	if err := conn.WriteJSON(map[string]any{"type": "guess", "payload": "0"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(conn, t, "error")
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
