package services

import (
	"context"
	"sync"

	"github.com/abrezinsky/moviecup/internal/errors"
	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/pkg/tmdb"
)

// GenreService serves the catalog's genre list. The first successful fetch
// of a non-empty list is cached until Invalidate is called.
type GenreService struct {
	log    logger.Logger
	client tmdb.Client

	mu     sync.RWMutex
	genres []models.Genre
}

// NewGenreService creates a new GenreService
func NewGenreService(log logger.Logger, client tmdb.Client) *GenreService {
	return &GenreService{log: log, client: client}
}

// ListGenres returns the genres a tournament can be drawn from
func (s *GenreService) ListGenres(ctx context.Context) ([]models.Genre, error) {
	s.mu.RLock()
	cached := s.genres
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	genres, err := s.client.ListGenres(ctx)
	if err != nil {
		s.log.Error("Failed to fetch genres", "error", err)
		return nil, errors.Unavailable("movie catalog unavailable", err)
	}
	if len(genres) == 0 {
		return []models.Genre{}, nil
	}

	s.mu.Lock()
	s.genres = genres
	s.mu.Unlock()
	return genres, nil
}

// Invalidate drops the cached list so the next call refetches it
func (s *GenreService) Invalidate() {
	s.mu.Lock()
	s.genres = nil
	s.mu.Unlock()
}
