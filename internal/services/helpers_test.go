package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/pool"
	"github.com/abrezinsky/moviecup/internal/repository"
	"github.com/abrezinsky/moviecup/internal/services"
	"github.com/abrezinsky/moviecup/internal/testutil"
	"github.com/abrezinsky/moviecup/pkg/tmdb"
)

type recordedEvent struct {
	TournamentID string
	Type         string
	Payload      interface{}
}

// fakeBroadcaster records every event it is asked to send
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *fakeBroadcaster) BroadcastTournamentEvent(id, eventType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{id, eventType, payload})
}

func (b *fakeBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

type tournamentFixture struct {
	svc         *services.TournamentService
	repo        repository.FullRepository
	settings    *services.SettingsService
	client      *tmdb.MockClient
	broadcaster *fakeBroadcaster
}

func identityShuffle(int, func(i, j int)) {}

// newTournamentFixture wires a TournamentService over a mock catalog whose
// first page holds 64 postered movies with IDs 1..64, unshuffled
func newTournamentFixture(t *testing.T, opts ...tmdb.MockOption) *tournamentFixture {
	t.Helper()
	return newTournamentFixtureWithRepo(t, testutil.NewTestRepository(t), opts...)
}

func newTournamentFixtureWithRepo(t *testing.T, repo repository.FullRepository, opts ...tmdb.MockOption) *tournamentFixture {
	t.Helper()
	log := logger.Discard()

	opts = append([]tmdb.MockOption{tmdb.WithPage(1, tmdb.MockMovies(1, 64))}, opts...)
	client := tmdb.NewMockClient(opts...)
	builder := pool.NewBuilder(log, client, pool.WithShuffle(identityShuffle))
	settings := services.NewSettingsService(log, repo)

	svc := services.NewTournamentService(log, repo, client, builder, settings, time.Hour)
	b := &fakeBroadcaster{}
	svc.SetBroadcaster(b)

	return &tournamentFixture{svc: svc, repo: repo, settings: settings, client: client, broadcaster: b}
}

// playLeft finishes a tournament by always picking the left movie
func playLeft(t *testing.T, svc *services.TournamentService, id string) *services.TournamentView {
	t.Helper()
	ctx := context.Background()
	view, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	for view.Status == services.StatusRunning {
		view, err = svc.Select(ctx, id, view.Match.Left.ID)
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
	}
	return view
}
