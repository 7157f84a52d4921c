package handlers

import (
	"context"

	"github.com/abrezinsky/moviecup/internal/auth"
	"github.com/abrezinsky/moviecup/internal/metrics"
	"github.com/abrezinsky/moviecup/internal/services"
	"github.com/abrezinsky/moviecup/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Genre      services.GenreServicer
	Tournament services.TournamentServicer
	Rating     services.RatingServicer
	Settings   services.SettingsServicer
	Stats      services.StatsServicer
	Auth       *auth.Auth
	Hub        *websocket.Hub
	Metrics    *metrics.Metrics
	Health     HealthChecker
	Log        HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Services groups the service layer dependencies of the handlers
type Services struct {
	Genre      services.GenreServicer
	Tournament services.TournamentServicer
	Rating     services.RatingServicer
	Settings   services.SettingsServicer
	Stats      services.StatsServicer
}

// New creates a new Handlers instance with all dependencies
func New(
	svc Services,
	adminAuth *auth.Auth,
	hub *websocket.Hub,
	m *metrics.Metrics,
	health HealthChecker,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Genre:      svc.Genre,
		Tournament: svc.Tournament,
		Rating:     svc.Rating,
		Settings:   svc.Settings,
		Stats:      svc.Stats,
		Auth:       adminAuth,
		Hub:        hub,
		Metrics:    m,
		Health:     health,
		Log:        log,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// NewForTesting creates a Handlers instance with a known admin password
// ("test-password") and no metrics or health checker
func NewForTesting(svc Services, hub *websocket.Hub) *Handlers {
	return New(svc, auth.New("test-password"), hub, nil, nil, NoopHTTPLogger{})
}
