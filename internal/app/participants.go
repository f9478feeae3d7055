package app

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"party-quiz-service/internal/domain"
)

// JoinTeam adds a team whose name is not taken yet and starts its score at zero.
func (g *Game) JoinTeam(team *domain.Team) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, t := range g.teams {
		if t.Name == team.Name {
			return fmt.Errorf("%w: %q", domain.ErrTeamExists, team.Name)
		}
	}
	g.scorer.InitScore([]*domain.Team{team})
	g.teams = append(g.teams, team)
	g.logger.Info("team joined", zap.String("team", team.Name), zap.String("address", team.Address))
	g.broadcastLocked()
	return nil
}

func (g *Game) LeaveTeam(team *domain.Team) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ok bool
	if g.teams, ok = without(g.teams, team); !ok {
		return domain.ErrParticipantNotFound
	}
	g.logger.Info("team left", zap.String("team", team.Name))
	g.broadcastLocked()
	return nil
}

func (g *Game) TeamByToken(token string) (*domain.Team, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return byToken(g.teams, token, func(t *domain.Team) string { return t.Token })
}

// SubmitAnswer stores a team's guess. Guesses only count while the question is
// being asked; outside of that the call reports false and changes nothing.
func (g *Game) SubmitAnswer(team *domain.Team, answer domain.Value) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.questionState != domain.QuestionAsk {
		return false
	}
	team.Guess(answer)
	g.broadcastLocked()
	return true
}

func (g *Game) SetEmotion(team *domain.Team, emotion json.RawMessage) {
	g.mu.Lock()
	defer g.mu.Unlock()
	team.ShowEmotion(emotion)
	g.broadcastLocked()
}

// JoinGamemaster admits any number of gamemasters that know the password.
func (g *Game) JoinGamemaster(password string, gm *domain.Gamemaster) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) != 1 {
		g.logger.Warn("gamemaster rejected", zap.String("address", gm.Address))
		return domain.ErrWrongPassword
	}
	g.gamemasters = append(g.gamemasters, gm)
	g.logger.Info("gamemaster joined", zap.String("address", gm.Address))
	return nil
}

func (g *Game) LeaveGamemaster(gm *domain.Gamemaster) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ok bool
	if g.gamemasters, ok = without(g.gamemasters, gm); !ok {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (g *Game) GamemasterByToken(token string) (*domain.Gamemaster, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return byToken(g.gamemasters, token, func(gm *domain.Gamemaster) string { return gm.Token })
}

func (g *Game) JoinScreen(screen *domain.Screen) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.screens = append(g.screens, screen)
}

func (g *Game) LeaveScreen(screen *domain.Screen) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ok bool
	if g.screens, ok = without(g.screens, screen); !ok {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (g *Game) ScreenByToken(token string) (*domain.Screen, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return byToken(g.screens, token, func(s *domain.Screen) string { return s.Token })
}

func byToken[T any](items []*T, token string, tokenOf func(*T) string) (*T, error) {
	if token == "" {
		return nil, domain.ErrParticipantNotFound
	}
	for _, item := range items {
		if tokenOf(item) == token {
			return item, nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

// without removes item by identity and reports whether it was present.
func without[T any](items []*T, item *T) ([]*T, bool) {
	for i, it := range items {
		if it == item {
			return append(items[:i:i], items[i+1:]...), true
		}
	}
	return items, false
}
