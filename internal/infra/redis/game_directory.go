package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
	"party-quiz-service/internal/infra/memory"
)

// GameDirectory is a Redis-aware implementation of app.GameDirectory.
// Notes:
//   - Games live in a local in-memory directory; their state never leaves the process.
//   - Redis holds a liveness marker per game key (SET NX with TTL), so two
//     processes sharing a Redis cannot host the same key at once.
//   - Each marker holds the owner token of the directory that claimed it.
//     Refresh and Close only touch markers still holding that token.
//   - Markers expire unless Refresh is called periodically.
type GameDirectory struct {
	client *redis.Client
	ttl    time.Duration
	owner  string

	mu    sync.Mutex
	local *memory.GameDirectory
}

// refreshScript extends every marker in KEYS that still holds ARGV[1].
var refreshScript = redis.NewScript(`
local n = 0
for _, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		n = n + redis.call("PEXPIRE", key, ARGV[2])
	end
end
return n
`)

// releaseScript deletes every marker in KEYS that still holds ARGV[1].
var releaseScript = redis.NewScript(`
local n = 0
for _, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		n = n + redis.call("DEL", key)
	end
end
return n
`)

func NewGameDirectory(client *redis.Client, ttl time.Duration) (*GameDirectory, error) {
	owner, err := app.NewToken()
	if err != nil {
		return nil, fmt.Errorf("game directory owner: %w", err)
	}
	return &GameDirectory{
		client: client,
		ttl:    ttl,
		owner:  owner,
		local:  memory.NewGameDirectory(),
	}, nil
}

func (d *GameDirectory) Add(ctx context.Context, game *app.Game) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.local.Get(game.Key()); err == nil {
		return fmt.Errorf("%w: %q", domain.ErrGameExists, game.Key())
	}
	claimed, err := d.client.SetNX(ctx, d.key(game.Key()), d.owner, d.ttl).Result()
	if err != nil {
		return fmt.Errorf("claim game %q: %w", game.Key(), err)
	}
	if !claimed {
		return fmt.Errorf("%w: %q is hosted elsewhere", domain.ErrGameExists, game.Key())
	}
	return d.local.Add(ctx, game)
}

func (d *GameDirectory) Get(key string) (*app.Game, error) {
	return d.local.Get(key)
}

func (d *GameDirectory) List() []*app.Game {
	return d.local.List()
}

func (d *GameDirectory) ListActive() []*app.Game {
	return d.local.ListActive()
}

// Refresh extends the liveness markers this directory still owns. A marker
// that expired and was claimed by another process is left alone.
func (d *GameDirectory) Refresh(ctx context.Context) error {
	keys := d.markerKeys()
	if len(keys) == 0 || d.ttl <= 0 {
		return nil
	}
	return refreshScript.Run(ctx, d.client, keys, d.owner, d.ttl.Milliseconds()).Err()
}

// Close releases the owned markers so the keys can be hosted again right away.
func (d *GameDirectory) Close(ctx context.Context) error {
	keys := d.markerKeys()
	if len(keys) == 0 {
		return nil
	}
	return releaseScript.Run(ctx, d.client, keys, d.owner).Err()
}

func (d *GameDirectory) markerKeys() []string {
	games := d.local.List()
	keys := make([]string, len(games))
	for i, game := range games {
		keys[i] = d.key(game.Key())
	}
	return keys
}

func (d *GameDirectory) key(gameKey string) string {
	return "quiz:game:" + gameKey
}
