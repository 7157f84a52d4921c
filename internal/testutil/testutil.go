package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedResults stores one finished 4-movie tournament per winner, one minute
// apart and oldest first. It returns the stored results in that order.
func SeedResults(t *testing.T, repo *repository.Repository, winners ...models.Movie) []models.TournamentResult {
	t.Helper()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	results := make([]models.TournamentResult, 0, len(winners))
	for i, w := range winners {
		result := models.TournamentResult{
			ID:           fmt.Sprintf("seed-%d", i+1),
			Genres:       []int{28},
			BracketSize:  4,
			WinnerID:     w.ID,
			WinnerTitle:  w.Title,
			WinnerPoster: w.PosterPath,
			FinishedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveResult(context.Background(), result); err != nil {
			t.Fatalf("failed to seed result: %v", err)
		}
		results = append(results, result)
	}
	return results
}
