package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fastprodman/guildledger/internal/infra/logging"
)

// NewRouter registers every endpoint on a chi router.
func NewRouter(l Ledger, b Board) http.Handler {
	h := NewHandler(l, b)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/guilds/{guildId}", func(r chi.Router) {
		r.Post("/transfers", h.TransferHandler)
		r.Post("/wealth-tax", h.WealthTaxHandler)
		r.Get("/events", h.EventsHandler)
		r.Get("/audit", h.AuditHandler)
		r.Get("/leaderboard", h.LeaderboardHandler)
		r.Post("/activity", h.ActivityHandler)

		r.Get("/users/active", h.ActiveUsersHandler)
		r.Get("/users/inactive", h.InactiveUsersHandler)

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/balance", h.GetBalanceHandler)
			r.Put("/balance", h.SetBalanceHandler)
			r.Post("/mint", h.MintHandler)
			r.Post("/burn", h.BurnHandler)
			r.Get("/stats/{stat}", h.GetStatHandler)
			r.Post("/stats/{stat}", h.AdjustStatHandler)
		})
	})

	return r
}

// requestLogger attaches a request-scoped logger and logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := slog.Default().With(slog.String("request_id", middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logging.WithLogger(r.Context(), log)))

		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)))
	})
}
