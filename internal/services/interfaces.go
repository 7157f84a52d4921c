package services

import (
	"context"

	"github.com/abrezinsky/moviecup/internal/metrics"
	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/internal/pool"
)

// GenreServicer defines the interface for genre operations
type GenreServicer interface {
	ListGenres(ctx context.Context) ([]models.Genre, error)
	Invalidate()
}

// TournamentServicer defines the interface for tournament operations
type TournamentServicer interface {
	BracketSizes() []int
	Start(ctx context.Context, genres []int, size int) (*TournamentView, error)
	Get(ctx context.Context, id string) (*TournamentView, error)
	Select(ctx context.Context, id string, movieID int) (*TournamentView, error)
	Abandon(ctx context.Context, id string) error
	Winner(ctx context.Context, id string) (models.Movie, error)
	WinnerDetails(ctx context.Context, id string) (*MovieView, error)
	ShareURL(ctx context.Context, id string) (string, error)
	ShareQR(ctx context.Context, id string) ([]byte, error)
	ActiveCount() int
	SetBroadcaster(b Broadcaster)
}

// RatingServicer defines the interface for rating operations
type RatingServicer interface {
	List(ctx context.Context) ([]models.RatingRecord, error)
	RateWinner(ctx context.Context, tournamentID string, rating int) (*models.RatingRecord, error)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
}

// StatsServicer defines the interface for admin statistics
type StatsServicer interface {
	GetStats(ctx context.Context) (*Stats, error)
	RecentResults(ctx context.Context, limit int) ([]models.TournamentResult, error)
}

// Ensure concrete types implement interfaces
var (
	_ GenreServicer      = (*GenreService)(nil)
	_ TournamentServicer = (*TournamentService)(nil)
	_ RatingServicer     = (*RatingService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
	_ StatsServicer      = (*StatsService)(nil)
	_ WinnerSource       = (*TournamentService)(nil)
	_ ActiveCounter      = (*TournamentService)(nil)
	_ PoolBuilder        = (*pool.Builder)(nil)
	_ TournamentRecorder = (*metrics.Metrics)(nil)
)
