package services

import (
	"context"

	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/internal/repository"
)

// ActiveCounter reports how many tournaments are in progress
type ActiveCounter interface {
	ActiveCount() int
}

// Stats is the admin dashboard summary
type Stats struct {
	ActiveTournaments   int                      `json:"active_tournaments"`
	FinishedTournaments int                      `json:"finished_tournaments"`
	RatedMovies         int                      `json:"rated_movies"`
	TopWinners          []repository.WinnerCount `json:"top_winners"`
}

// StatsService aggregates usage numbers for the admin API
type StatsService struct {
	log         logger.Logger
	repo        repository.FullRepository
	tournaments ActiveCounter
}

// NewStatsService creates a new StatsService
func NewStatsService(log logger.Logger, repo repository.FullRepository, tournaments ActiveCounter) *StatsService {
	return &StatsService{log: log, repo: repo, tournaments: tournaments}
}

// GetStats returns the dashboard summary
func (s *StatsService) GetStats(ctx context.Context) (*Stats, error) {
	finished, err := s.repo.CountResults(ctx)
	if err != nil {
		return nil, err
	}
	rated, err := s.repo.CountRatings(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopWinners(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &Stats{
		ActiveTournaments:   s.tournaments.ActiveCount(),
		FinishedTournaments: finished,
		RatedMovies:         rated,
		TopWinners:          top,
	}, nil
}

// RecentResults returns the latest finished tournaments, newest first
func (s *StatsService) RecentResults(ctx context.Context, limit int) ([]models.TournamentResult, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.ListResults(ctx, limit)
}
