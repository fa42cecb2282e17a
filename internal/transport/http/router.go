package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"interview-session-service/internal/app"
	"interview-session-service/internal/domain"
)

// NewRouter wires the JSON read endpoints, metrics and the websocket
// command channel.
func NewRouter(service *app.InterviewService, allowedOrigins []string, logger *zap.Logger) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	ws := NewWSHandler(service, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/session", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, service.Snapshot())
		})
		r.Get("/candidates", func(w http.ResponseWriter, r *http.Request) {
			q := app.CandidateQuery{
				Search: r.URL.Query().Get("search"),
				SortBy: r.URL.Query().Get("sort"),
			}
			writeJSON(w, http.StatusOK, service.Candidates(q))
		})
		r.Get("/candidates/{id}", func(w http.ResponseWriter, r *http.Request) {
			c, err := service.Candidate(chi.URLParam(r, "id"))
			if errors.Is(err, domain.ErrCandidateNotFound) {
				writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, c)
		})
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
