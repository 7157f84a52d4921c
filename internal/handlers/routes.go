package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger) // Custom conditional HTTP logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
		r.Handle("/metrics", h.Metrics.Handler())
	}

	r.Get("/healthz", h.handleHealth)

	// WebSocket (outside the timeout group, connections are long lived)
	r.Get("/ws/tournaments/{id}", h.handleTournamentEvents)

	r.Group(func(r chi.Router) {
		// Pool builds page through the catalog, give them room
		r.Use(middleware.Timeout(60 * time.Second))

		// Catalog
		r.Get("/api/genres", h.handleGetGenres)
		r.Get("/api/bracket-sizes", h.handleGetBracketSizes)

		// Tournaments
		r.Post("/api/tournaments", h.handleStartTournament)
		r.Get("/api/tournaments/{id}", h.handleGetTournament)
		r.Delete("/api/tournaments/{id}", h.handleAbandonTournament)
		r.Post("/api/tournaments/{id}/select", h.handleSelectWinner)
		r.Get("/api/tournaments/{id}/winner", h.handleGetWinner)
		r.Put("/api/tournaments/{id}/rating", h.handleRateWinner)
		r.Get("/api/tournaments/{id}/share", h.handleGetShareURL)
		r.Get("/api/tournaments/{id}/qr", h.handleGetShareQR)

		// Ratings
		r.Get("/api/ratings", h.handleGetRatings)

		// Auth routes (public)
		r.Post("/api/admin/login", h.handleLogin)
		r.Post("/api/admin/logout", h.handleLogout)

		// Admin API (protected)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuthAPI)

			r.Get("/api/admin/stats", h.handleGetStats)
			r.Get("/api/admin/results", h.handleGetResults)
			r.Get("/api/admin/settings", h.handleGetSettings)
			r.Put("/api/admin/settings", h.handleUpdateSettings)
			r.Post("/api/admin/genres/refresh", h.handleRefreshGenres)
			r.Post("/api/admin/reset-database", h.handleResetDatabase)
		})
	})

	return r
}
