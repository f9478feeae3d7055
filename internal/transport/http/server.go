package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"party-quiz-service/internal/app"
)

// Handler exposes the game service over HTTP and WebSocket.
type Handler struct {
	service   *app.GameService
	logger    *zap.Logger
	publicURL string
	upgrader  websocket.Upgrader
}

// NewHandler builds the API. publicURL is the externally reachable base URL
// encoded in join QR codes; when empty it is derived from each request.
func NewHandler(service *app.GameService, logger *zap.Logger, publicURL string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:   service,
		logger:    logger,
		publicURL: publicURL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newRequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/", h.handleListGames)

	r.Route("/api/{game}", func(r chi.Router) {
		r.Use(h.gameMiddleware)

		r.Get("/", h.handleGame)
		r.Get("/ws", h.ServeWS)
		r.Get("/join.png", h.handleJoinQR)

		r.Put("/join_team", h.handleJoinTeam)
		r.Group(func(r chi.Router) {
			r.Use(participantMiddleware(h, ctxKeyTeam, teamCookie, (*app.Game).TeamByToken))
			r.Get("/team", h.handleShowTeam)
			r.Delete("/team", h.handleLeaveTeam)
			r.Put("/team/guess", h.handleGuess)
			r.Put("/team/show_emotion", h.handleShowEmotion)
		})

		r.Put("/join_gamemaster", h.handleJoinGamemaster)
		r.Group(func(r chi.Router) {
			r.Use(participantMiddleware(h, ctxKeyGamemaster, gamemasterCookie, (*app.Game).GamemasterByToken))
			r.Get("/gamemaster", h.handleShowGamemaster)
			r.Delete("/gamemaster", h.handleLeaveGamemaster)
			r.Put("/gamemaster/{action}", h.handleGameAction)
		})

		r.Put("/join_screen", h.handleJoinScreen)
		r.Group(func(r chi.Router) {
			r.Use(participantMiddleware(h, ctxKeyScreen, screenCookie, (*app.Game).ScreenByToken))
			r.Get("/screen", h.handleShowScreen)
			r.Delete("/screen", h.handleLeaveScreen)
		})
	})
	return r
}
