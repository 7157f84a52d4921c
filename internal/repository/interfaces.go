package repository

import (
	"context"

	"github.com/abrezinsky/moviecup/internal/models"
)

// RatingRepository defines rating data operations
type RatingRepository interface {
	ListRatings(ctx context.Context) ([]models.RatingRecord, error)
	GetRating(ctx context.Context, movieID int) (*models.RatingRecord, error)
	UpsertRating(ctx context.Context, record models.RatingRecord) error
	CountRatings(ctx context.Context) (int, error)
}

// ResultRepository defines finished-tournament data operations
type ResultRepository interface {
	SaveResult(ctx context.Context, result models.TournamentResult) error
	ListResults(ctx context.Context, limit int) ([]models.TournamentResult, error)
	CountResults(ctx context.Context) (int, error)
	TopWinners(ctx context.Context, limit int) ([]WinnerCount, error)
}

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	RatingRepository
	ResultRepository
	SettingsRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
