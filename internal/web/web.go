package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const serviceName = "strelka-bot-web-stub"

// Handlers serves the liveness endpoints. It shares nothing with the bot
// besides the process.
type Handlers struct{}

func New() *Handlers {
	return &Handlers{}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	return r
}

func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, map[string]string{
		"status": "healthy",
	})
}

func respondWithJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("failed to write response", zap.Error(err))
	}
}
