package http

import (
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"party-quiz-service/internal/app"
)

const qrSize = 320

type listResponse struct {
	Games []app.Summary `json:"games"`
}

func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listResponse{Games: h.service.Summaries(false)})
}

func (h *Handler) handleGame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gameFrom(r).View())
}

// handleJoinQR renders a PNG QR code pointing players at the game.
func (h *Handler) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	url := h.joinURL(r, gameFrom(r).Key())
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("qr generation failed", zap.String("url", url), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "qr generation failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *Handler) joinURL(r *http.Request, key string) string {
	base := strings.TrimSuffix(h.publicURL, "/")
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/" + key + "/"
}
