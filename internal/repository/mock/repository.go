package mock

import (
	"context"

	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.UpsertRatingError = errors.New("database error")
//	svc := services.NewRatingService(log, mockRepo, tournaments)
//	_, err := svc.RateWinner(ctx, id, 5)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Rating Errors =====
	ListRatingsError  error
	GetRatingError    error
	UpsertRatingError error
	CountRatingsError error

	// ===== Result Errors =====
	SaveResultError   error
	ListResultsError  error
	CountResultsError error
	TopWinnersError   error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	ClearTableError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Rating Methods =====

func (m *Repository) ListRatings(ctx context.Context) ([]models.RatingRecord, error) {
	if m.ListRatingsError != nil {
		return nil, m.ListRatingsError
	}
	return m.FullRepository.ListRatings(ctx)
}

func (m *Repository) GetRating(ctx context.Context, movieID int) (*models.RatingRecord, error) {
	if m.GetRatingError != nil {
		return nil, m.GetRatingError
	}
	return m.FullRepository.GetRating(ctx, movieID)
}

func (m *Repository) UpsertRating(ctx context.Context, record models.RatingRecord) error {
	if m.UpsertRatingError != nil {
		return m.UpsertRatingError
	}
	return m.FullRepository.UpsertRating(ctx, record)
}

func (m *Repository) CountRatings(ctx context.Context) (int, error) {
	if m.CountRatingsError != nil {
		return 0, m.CountRatingsError
	}
	return m.FullRepository.CountRatings(ctx)
}

// ===== Result Methods =====

func (m *Repository) SaveResult(ctx context.Context, result models.TournamentResult) error {
	if m.SaveResultError != nil {
		return m.SaveResultError
	}
	return m.FullRepository.SaveResult(ctx, result)
}

func (m *Repository) ListResults(ctx context.Context, limit int) ([]models.TournamentResult, error) {
	if m.ListResultsError != nil {
		return nil, m.ListResultsError
	}
	return m.FullRepository.ListResults(ctx, limit)
}

func (m *Repository) CountResults(ctx context.Context) (int, error) {
	if m.CountResultsError != nil {
		return 0, m.CountResultsError
	}
	return m.FullRepository.CountResults(ctx)
}

func (m *Repository) TopWinners(ctx context.Context, limit int) ([]repository.WinnerCount, error) {
	if m.TopWinnersError != nil {
		return nil, m.TopWinnersError
	}
	return m.FullRepository.TopWinners(ctx, limit)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}

var _ repository.FullRepository = (*Repository)(nil)
