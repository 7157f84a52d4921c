package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abrezinsky/moviecup/internal/auth"
	"github.com/abrezinsky/moviecup/internal/handlers"
	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/metrics"
	"github.com/abrezinsky/moviecup/internal/pool"
	"github.com/abrezinsky/moviecup/internal/repository"
	"github.com/abrezinsky/moviecup/internal/services"
	"github.com/abrezinsky/moviecup/internal/testutil"
	"github.com/abrezinsky/moviecup/internal/websocket"
	"github.com/abrezinsky/moviecup/pkg/tmdb"
)

type testSetup struct {
	repo        *repository.Repository
	client      *tmdb.MockClient
	tournaments *services.TournamentService
	settings    *services.SettingsService
	handlers    *handlers.Handlers
	router      http.Handler
	authCookie  *http.Cookie
}

func identityShuffle(int, func(i, j int)) {}

// newTestSetup wires real services over an in-memory database and a mock
// catalog whose first page holds 64 postered movies with IDs 1..64
func newTestSetup(t *testing.T, opts ...tmdb.MockOption) *testSetup {
	t.Helper()

	repo := testutil.NewTestRepository(t)
	log := logger.Discard()

	opts = append([]tmdb.MockOption{tmdb.WithPage(1, tmdb.MockMovies(1, 64))}, opts...)
	client := tmdb.NewMockClient(opts...)
	m := metrics.New()

	builder := pool.NewBuilder(log, client, pool.WithShuffle(identityShuffle), pool.WithRecorder(m))
	settingsService := services.NewSettingsService(log, repo)
	tournamentService := services.NewTournamentService(log, repo, client, builder, settingsService, time.Hour)
	tournamentService.SetRecorder(m)

	hub := websocket.New(log, tournamentService)
	hub.Start()
	tournamentService.SetBroadcaster(hub)

	svc := handlers.Services{
		Genre:      services.NewGenreService(log, client),
		Tournament: tournamentService,
		Rating:     services.NewRatingService(log, repo, tournamentService),
		Settings:   settingsService,
		Stats:      services.NewStatsService(log, repo, tournamentService),
	}
	h := handlers.New(svc, auth.New("test-password"), hub, m, repo, handlers.NoopHTTPLogger{})

	// Login to get a session cookie for authenticated requests
	token, _ := h.Auth.Login("test-password")

	return &testSetup{
		repo:        repo,
		client:      client,
		tournaments: tournamentService,
		settings:    settingsService,
		handlers:    h,
		router:      h.Router(),
		authCookie:  &http.Cookie{Name: auth.CookieName, Value: token},
	}
}

func (s *testSetup) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.AddCookie(s.authCookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// start opens a tournament through the service and returns its ID
func (s *testSetup) start(t *testing.T, size int) string {
	t.Helper()
	view, err := s.tournaments.Start(context.Background(), []int{28}, size)
	if err != nil {
		t.Fatalf("failed to start tournament: %v", err)
	}
	return view.ID
}

// finish plays a tournament to the end by always picking the left movie
func (s *testSetup) finish(t *testing.T, id string) *services.TournamentView {
	t.Helper()
	ctx := context.Background()
	view, err := s.tournaments.Get(ctx, id)
	if err != nil {
		t.Fatalf("failed to get tournament: %v", err)
	}
	for view.Status == services.StatusRunning {
		view, err = s.tournaments.Select(ctx, id, view.Match.Left.ID)
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
	}
	return view
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handlers.APIError {
	t.Helper()
	var apiErr handlers.APIError
	decodeBody(t, rec, &apiErr)
	return apiErr
}
