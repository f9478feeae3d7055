package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"party-quiz-service/internal/app"
	"party-quiz-service/internal/domain"
)

type ctxKey int

const (
	ctxKeyGame ctxKey = iota
	ctxKeyTeam
	ctxKeyGamemaster
	ctxKeyScreen
)

// Cookie names carrying the session token of each role.
const (
	teamCookie       = "team"
	gamemasterCookie = "gamemaster"
	screenCookie     = "screen"
)

func (h *Handler) gameMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		game, err := h.service.Game(chi.URLParam(r, "game"))
		if err != nil {
			writeDomainError(w, h.logger, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyGame, game)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// participantMiddleware resolves the caller's token to a participant of the
// current game and stores it under key.
func participantMiddleware[T any](h *Handler, key ctxKey, cookie string, lookup func(*app.Game, string) (*T, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			participant, err := lookup(gameFrom(r), requestToken(r, cookie))
			if err != nil {
				h.logger.Debug("invalid session token", zap.String("role", cookie), zap.String("remote", r.RemoteAddr))
				writeDomainError(w, h.logger, err)
				return
			}
			ctx := context.WithValue(r.Context(), key, participant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestToken reads the session token from the role cookie, falling back to
// an Authorization: Bearer header.
func requestToken(r *http.Request, cookie string) string {
	if c, err := r.Cookie(cookie); err == nil && c.Value != "" {
		return c.Value
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func setSessionCookie(w http.ResponseWriter, name, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func gameFrom(r *http.Request) *app.Game {
	return r.Context().Value(ctxKeyGame).(*app.Game)
}

func teamFrom(r *http.Request) *domain.Team {
	return r.Context().Value(ctxKeyTeam).(*domain.Team)
}

func gamemasterFrom(r *http.Request) *domain.Gamemaster {
	return r.Context().Value(ctxKeyGamemaster).(*domain.Gamemaster)
}

func screenFrom(r *http.Request) *domain.Screen {
	return r.Context().Value(ctxKeyScreen).(*domain.Screen)
}

func newRequestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
