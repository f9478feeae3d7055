package memory

import (
	"context"
	"fmt"
	"sync"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
)

// GameDirectory is an in-memory implementation of app.GameDirectory.
// Games are listed in the order they were added.
type GameDirectory struct {
	mu    sync.RWMutex
	games map[string]*app.Game
	order []string
}

func NewGameDirectory() *GameDirectory {
	return &GameDirectory{
		games: make(map[string]*app.Game),
	}
}

func (d *GameDirectory) Add(_ context.Context, game *app.Game) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.games[game.Key()]; ok {
		return fmt.Errorf("%w: %q", domain.ErrGameExists, game.Key())
	}
	d.games[game.Key()] = game
	d.order = append(d.order, game.Key())
	return nil
}

func (d *GameDirectory) Get(key string) (*app.Game, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	game, ok := d.games[key]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return game, nil
}

func (d *GameDirectory) List() []*app.Game {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*app.Game, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.games[key])
	}
	return out
}

func (d *GameDirectory) ListActive() []*app.Game {
	all := d.List()
	out := all[:0]
	for _, game := range all {
		if game.Active() {
			out = append(out, game)
		}
	}
	return out
}
