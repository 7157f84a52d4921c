package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/moviecup/internal/auth"
	"github.com/abrezinsky/moviecup/internal/config"
	"github.com/abrezinsky/moviecup/internal/handlers"
	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/metrics"
	"github.com/abrezinsky/moviecup/internal/pool"
	"github.com/abrezinsky/moviecup/internal/repository"
	"github.com/abrezinsky/moviecup/internal/services"
	"github.com/abrezinsky/moviecup/internal/websocket"
	"github.com/abrezinsky/moviecup/pkg/tmdb"
)

const (
	housekeepingInterval = time.Minute
	shutdownTimeout      = 5 * time.Second
)

// App holds all application dependencies
type App struct {
	log         logger.Logger
	cfg         *config.Config
	handlers    *handlers.Handlers
	repo        *repository.Repository
	tournaments *services.TournamentService
	auth        *auth.Auth
	metrics     *metrics.Metrics

	cancelBackground context.CancelFunc
	background       sync.WaitGroup

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// NewCatalog creates the TMDB client described by cfg
func NewCatalog(cfg *config.Config, log logger.Logger) *tmdb.HTTPClient {
	return tmdb.NewHTTPClient(tmdb.Options{
		APIKey:       cfg.TMDBAPIKey,
		BaseURL:      cfg.TMDBBaseURL,
		ImageBaseURL: cfg.TMDBImageBaseURL,
		Language:     cfg.TMDBLanguage,
		Region:       cfg.TMDBRegion,
		Timeout:      cfg.TMDBTimeout,
		RateLimit:    cfg.TMDBRateLimit,
		Burst:        cfg.TMDBBurst,
	}, log.With("component", "tmdb"))
}

// New creates and initializes a new application instance
func New(cfg *config.Config, log logger.Logger, catalog tmdb.Client, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DBPath, err)
	}

	m := metrics.New()
	builder := pool.NewBuilder(log.With("component", "pool"), catalog, pool.WithRecorder(m))

	// Initialize services
	settingsService := services.NewSettingsService(log, repo)
	genreService := services.NewGenreService(log, catalog)
	tournamentService := services.NewTournamentService(log, repo, catalog, builder, settingsService, cfg.SessionTTL)
	tournamentService.SetRecorder(m)
	ratingService := services.NewRatingService(log, repo, tournamentService)
	statsService := services.NewStatsService(log, repo, tournamentService)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log.With("component", "websocket"), tournamentService)
	hub.Start()
	tournamentService.SetBroadcaster(hub)

	h := handlers.New(handlers.Services{
		Genre:      genreService,
		Tournament: tournamentService,
		Rating:     ratingService,
		Settings:   settingsService,
		Stats:      statsService,
	}, adminAuth, hub, m, repo, log)

	a := &App{
		log:         log,
		cfg:         cfg,
		handlers:    h,
		repo:        repo,
		tournaments: tournamentService,
		auth:        adminAuth,
		metrics:     m,
	}

	// Housekeeping with context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelBackground = cancel
	a.background.Add(2)
	go func() {
		defer a.background.Done()
		tournamentService.ReapIdle(ctx, housekeepingInterval)
	}()
	go func() {
		defer a.background.Done()
		a.sweepSessions(ctx, housekeepingInterval)
	}()

	return a, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// ActiveTournaments returns the number of tournaments held in memory
func (a *App) ActiveTournaments() int {
	return a.tournaments.ActiveCount()
}

// Close stops background work, shuts the server down and closes the database.
// It is safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	server := a.server
	a.mu.Unlock()

	a.cancelBackground()
	a.background.Wait()

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.log.Warn("Server shutdown incomplete", "error", err)
		}
	}

	if err := a.repo.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
}

// Run starts the HTTP server and blocks until it stops. It returns nil
// after Close.
func (a *App) Run(addr string) error {
	baseURL := a.configureBaseURL(addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.server = server
	a.mu.Unlock()

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("Admin API", "url", baseURL+"/api/admin")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// configureBaseURL applies the configured base URL, or falls back to the
// detected LAN address, and returns the URL in effect
func (a *App) configureBaseURL(addr string) string {
	if a.cfg.BaseURL != "" {
		if err := a.repo.SetSetting(context.Background(), "base_url", strings.TrimSuffix(a.cfg.BaseURL, "/")); err != nil {
			a.log.Warn("Failed to store base_url", "error", err)
		}
		return strings.TrimSuffix(a.cfg.BaseURL, "/")
	}

	baseURL := fmt.Sprintf("http://%s:%s", getPreferredIP(realNetworkProvider{}), listenPort(addr))
	a.setDefaultBaseURL(baseURL)
	return baseURL
}

// setDefaultBaseURL sets the base URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultBaseURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, "base_url")

	// Set default if empty or if current value uses localhost
	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, "base_url", baseURL); err != nil {
			a.log.Warn("Failed to set default base_url", "error", err)
		} else {
			a.log.Info("Default base URL set", "url", baseURL)
		}
	}
}

// sweepSessions drops expired admin sessions every interval until ctx is done
func (a *App) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.auth.Sweep(); n > 0 {
				a.log.Debug("Expired admin sessions removed", "count", n)
			}
		}
	}
}

// listenPort returns the port part of a listen address, "80" when absent
func listenPort(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return "80"
	}
	return port
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down and loopback interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		if ip.IsPrivate() {
			return ip.String()
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}
