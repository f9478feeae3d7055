package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
	"party-quiz-service/internal/infra/memory"
)

func newTestService() *app.GameService {
	quizzes := memory.NewQuizRepository(memory.StaticLoader{
		"pub-night": []byte(testQuiz),
	}, 5*time.Minute)
	return app.NewGameService(memory.NewGameDirectory(), quizzes, nil)
}

func TestCreateGameDefaults(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	game, password, err := service.CreateGame(ctx, "pub-night", "", "")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.Key() != "pub-night" {
		t.Fatalf("expected key from quiz name, got %q", game.Key())
	}
	if password == "" {
		t.Fatal("expected generated password")
	}
	if err := game.JoinGamemaster(password, &domain.Gamemaster{Token: "gm"}); err != nil {
		t.Fatalf("generated password must admit gamemaster: %v", err)
	}

	got, err := service.Game("pub-night")
	if err != nil || got != game {
		t.Fatalf("expected registered game, got %v (%v)", got, err)
	}
}

func TestCreateGameErrors(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	if _, _, err := service.CreateGame(ctx, "missing", "", ""); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, _, err := service.CreateGame(ctx, "pub-night", "friday", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := service.CreateGame(ctx, "pub-night", "friday", "pw"); !errors.Is(err, domain.ErrGameExists) {
		t.Fatalf("expected game exists, got %v", err)
	}
	if _, err := service.Game("saturday"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}
}

func TestSummaries(t *testing.T) {
	ctx := context.Background()
	service := newTestService()

	for _, key := range []string{"a", "b"} {
		if _, _, err := service.CreateGame(ctx, "pub-night", key, "pw"); err != nil {
			t.Fatalf("create %s: %v", key, err)
		}
	}
	b, _ := service.Game("b")
	b.EndGame()

	all := service.Summaries(false)
	if len(all) != 2 || all[0].Key != "a" || all[1].Active {
		t.Fatalf("unexpected summaries %+v", all)
	}
	active := service.Summaries(true)
	if len(active) != 1 || active[0].Key != "a" || active[0].GameState != domain.GameInit {
		t.Fatalf("unexpected active summaries %+v", active)
	}
}

func TestNewTokenIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := app.NewToken()
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = true
	}
}
