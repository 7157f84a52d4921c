package services

import (
	"context"

	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/internal/repository"
)

// WinnerSource resolves the winner of a finished tournament
type WinnerSource interface {
	Winner(ctx context.Context, id string) (models.Movie, error)
}

// RatingService handles star ratings of tournament winners
type RatingService struct {
	log         logger.Logger
	repo        repository.RatingRepository
	tournaments WinnerSource
}

// NewRatingService creates a new RatingService
func NewRatingService(log logger.Logger, repo repository.RatingRepository, tournaments WinnerSource) *RatingService {
	return &RatingService{log: log, repo: repo, tournaments: tournaments}
}

// List returns every stored rating
func (s *RatingService) List(ctx context.Context) ([]models.RatingRecord, error) {
	return s.repo.ListRatings(ctx)
}

// RateWinner stores rating for the winner of a finished tournament,
// replacing any earlier rating of the same movie
func (s *RatingService) RateWinner(ctx context.Context, tournamentID string, rating int) (*models.RatingRecord, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	winner, err := s.tournaments.Winner(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	record := models.RatingRecord{
		MovieID:    winner.ID,
		Title:      winner.Title,
		PosterPath: winner.PosterPath,
		Rating:     rating,
	}
	if err := s.repo.UpsertRating(ctx, record); err != nil {
		s.log.Error("Failed to save rating", "movie_id", winner.ID, "error", err)
		return nil, err
	}

	s.log.Info("Winner rated", "tournament", tournamentID, "movie_id", winner.ID, "rating", rating)
	return s.repo.GetRating(ctx, winner.ID)
}
