package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/moviecup/internal/bracket"
	"github.com/abrezinsky/moviecup/internal/errors"
	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/models"
	"github.com/abrezinsky/moviecup/internal/pool"
	"github.com/abrezinsky/moviecup/internal/repository"
	"github.com/abrezinsky/moviecup/pkg/tmdb"
)

// Tournament event types pushed to websocket subscribers
const (
	EventTournamentStarted   = "tournament_started"
	EventMatchDecided        = "match_decided"
	EventRoundStarted        = "round_started"
	EventTournamentFinished  = "tournament_finished"
	EventTournamentAbandoned = "tournament_abandoned"
)

// Tournament statuses
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastTournamentEvent(tournamentID, eventType string, payload interface{})
}

// PoolBuilder assembles the candidate pool of a new tournament
type PoolBuilder interface {
	Build(ctx context.Context, genres []int, target int) ([]models.Movie, error)
}

// TournamentRecorder receives tournament telemetry. *metrics.Metrics implements it.
type TournamentRecorder interface {
	Selection()
	TournamentFinished(size int)
	SetActiveSessions(n int)
}

// MovieView is a movie as shown to players
type MovieView struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"`
	PosterURL   string  `json:"poster_url"`
	Overview    string  `json:"overview,omitempty"`
	VoteAverage float64 `json:"vote_average"`
}

// MatchView is the pair currently being decided
type MatchView struct {
	Index  int       `json:"index"`
	Number int       `json:"number"`
	Total  int       `json:"total"`
	Left   MovieView `json:"left"`
	Right  MovieView `json:"right"`
}

// TournamentView is the player-facing state of a tournament
type TournamentView struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	Genres          []int      `json:"genres"`
	BracketSize     int        `json:"bracket_size"`
	RoundSize       int        `json:"round_size,omitempty"`
	RoundLabel      string     `json:"round_label,omitempty"`
	RoundsCompleted int        `json:"rounds_completed"`
	Match           *MatchView `json:"match,omitempty"`
	Winner          *MovieView `json:"winner,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Seq             uint64     `json:"seq"`
}

// Sequence returns the state version the view was taken at
func (v *TournamentView) Sequence() uint64 { return v.Seq }

// MatchDecidedEvent is the payload of EventMatchDecided
type MatchDecidedEvent struct {
	RoundSize int    `json:"round_size"`
	Number    int    `json:"number"`
	WinnerID  int    `json:"winner_id"`
	LoserID   int    `json:"loser_id"`
	Seq       uint64 `json:"seq"`
}

// Sequence returns the state version the selection produced
func (e MatchDecidedEvent) Sequence() uint64 { return e.Seq }

// session is one in-memory tournament. mu serializes access to engine.
type session struct {
	mu         sync.Mutex
	id         string
	genres     []int
	size       int
	engine     *bracket.Engine
	createdAt  time.Time
	lastActive time.Time
	// seq counts state changes. Views and events carry it so subscribers
	// can tell a stale snapshot from a newer event.
	seq uint64
}

// TournamentService owns the in-memory tournaments and drives their brackets
type TournamentService struct {
	log         logger.Logger
	repo        repository.ResultRepository
	catalog     tmdb.Client
	builder     PoolBuilder
	settings    SettingsServicer
	broadcaster Broadcaster
	recorder    TournamentRecorder
	ttl         time.Duration
	now         func() time.Time
	newID       func() string

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewTournamentService creates a new TournamentService. Tournaments untouched
// for longer than ttl are dropped by ReapIdle.
func NewTournamentService(log logger.Logger, repo repository.ResultRepository, catalog tmdb.Client, builder PoolBuilder, settings SettingsServicer, ttl time.Duration) *TournamentService {
	return &TournamentService{
		log:      log,
		repo:     repo,
		catalog:  catalog,
		builder:  builder,
		settings: settings,
		recorder: nopTournamentRecorder{},
		ttl:      ttl,
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*session),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *TournamentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetRecorder sets where tournament telemetry goes
func (s *TournamentService) SetRecorder(r TournamentRecorder) {
	s.recorder = r
}

// SetClock replaces the time source, for tests
func (s *TournamentService) SetClock(now func() time.Time) {
	s.now = now
}

// BracketSizes returns the sizes a tournament can be started with
func (s *TournamentService) BracketSizes() []int {
	return append([]int(nil), bracket.Sizes...)
}

// Start builds a pool for genres and opens a new tournament over it
func (s *TournamentService) Start(ctx context.Context, genres []int, size int) (*TournamentView, error) {
	genres, err := normalizeGenres(genres)
	if err != nil {
		return nil, err
	}
	if !bracket.ValidSize(size) {
		return nil, ErrInvalidBracketSize
	}

	movies, err := s.builder.Build(ctx, genres, size)
	if err != nil {
		return nil, s.mapBuildError(err)
	}

	engine, err := bracket.New(movies)
	if err != nil {
		return nil, errors.Internal(err)
	}

	now := s.now()
	sess := &session{
		id:         s.newID(),
		genres:     genres,
		size:       size,
		engine:     engine,
		createdAt:  now,
		lastActive: now,
		seq:        1,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	active := len(s.sessions)
	sess.mu.Lock()
	s.mu.Unlock()
	s.recorder.SetActiveSessions(active)

	s.log.Info("Tournament started", "id", sess.id, "genres", genres, "size", size)

	view := s.viewLocked(sess)
	s.broadcast(sess.id, EventTournamentStarted, view)
	sess.mu.Unlock()
	return view, nil
}

// mapBuildError classifies a pool build failure. A catalog outage that left
// the pool empty is reported as unavailability rather than a short pool.
func (s *TournamentService) mapBuildError(err error) error {
	var ic *pool.InsufficientCandidatesError
	switch {
	case stderrors.Is(err, context.Canceled):
		return err
	case stderrors.Is(err, context.DeadlineExceeded):
		s.log.Warn("Pool build ran out of time", "error", err)
		return errors.Unavailable("movie catalog unavailable", err)
	case stderrors.Is(err, pool.ErrInvalidBracketSize):
		return ErrInvalidBracketSize
	case stderrors.As(err, &ic):
		if ic.SourceErr != nil && ic.Found == 0 {
			s.log.Error("Catalog unavailable while building pool", "error", ic.SourceErr)
			return errors.Unavailable("movie catalog unavailable", err)
		}
		return err
	case stderrors.Is(err, tmdb.ErrSourceUnavailable):
		return errors.Unavailable("movie catalog unavailable", err)
	default:
		s.log.Error("Pool build failed", "error", err)
		return errors.Internal(err)
	}
}

func normalizeGenres(genres []int) ([]int, error) {
	if len(genres) == 0 {
		return nil, ErrNoGenres
	}
	seen := make(map[int]bool, len(genres))
	out := make([]int, 0, len(genres))
	for _, g := range genres {
		if g <= 0 {
			return nil, ErrInvalidGenre
		}
		if !seen[g] {
			seen[g] = true
			out = append(out, g)
		}
	}
	sort.Ints(out)
	return out, nil
}

// Get returns the current view of a tournament
func (s *TournamentService) Get(ctx context.Context, id string) (*TournamentView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = s.now()
	return s.viewLocked(sess), nil
}

// Select records movieID as the winner of the current match
func (s *TournamentService) Select(ctx context.Context, id string, movieID int) (*TournamentView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	match, live := sess.engine.CurrentMatch()
	roundsBefore := sess.engine.RoundsCompleted()
	if err := sess.engine.SelectWinner(movieID); err != nil {
		sess.mu.Unlock()
		if !live {
			return nil, errors.Wrap(err, errors.ErrConflict, ErrTournamentFinished.Message)
		}
		return nil, errors.Wrap(err, errors.ErrConflict, fmt.Sprintf("movie %d is not in the current match", movieID))
	}
	sess.lastActive = s.now()
	sess.seq++
	finished := sess.engine.Finished()
	newRound := !finished && sess.engine.RoundsCompleted() > roundsBefore
	winner, _ := sess.engine.Winner()
	view := s.viewLocked(sess)

	loser := match.Left.ID
	if loser == movieID {
		loser = match.Right.ID
	}

	// Events go out under sess.mu so concurrent selections reach
	// subscribers in the order they were applied.
	s.broadcast(id, EventMatchDecided, MatchDecidedEvent{
		RoundSize: match.RoundSize,
		Number:    match.Number,
		WinnerID:  movieID,
		LoserID:   loser,
		Seq:       sess.seq,
	})
	switch {
	case finished:
		s.broadcast(id, EventTournamentFinished, view)
	case newRound:
		s.log.Debug("Round started", "id", id, "round_size", view.RoundSize)
		s.broadcast(id, EventRoundStarted, view)
	}
	sess.mu.Unlock()

	s.recorder.Selection()
	if finished {
		s.recorder.TournamentFinished(sess.size)
		s.saveResult(ctx, sess, winner)
		s.log.Info("Tournament finished", "id", id, "winner_id", winner.ID, "winner", winner.Title)
	}

	return view, nil
}

// saveResult persists a finished tournament. Failures are logged only: the
// tournament itself is already decided and stays playable in memory.
func (s *TournamentService) saveResult(ctx context.Context, sess *session, winner models.Movie) {
	err := s.repo.SaveResult(ctx, models.TournamentResult{
		ID:           sess.id,
		Genres:       sess.genres,
		BracketSize:  sess.size,
		WinnerID:     winner.ID,
		WinnerTitle:  winner.Title,
		WinnerPoster: winner.PosterPath,
		FinishedAt:   s.now().UTC(),
	})
	if err != nil {
		s.log.Error("Failed to save tournament result", "id", sess.id, "error", err)
	}
}

// Abandon drops a tournament
func (s *TournamentService) Abandon(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	active := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return ErrTournamentNotFound
	}
	s.recorder.SetActiveSessions(active)
	s.log.Info("Tournament abandoned", "id", id)
	s.broadcast(id, EventTournamentAbandoned, map[string]string{"id": id})
	return nil
}

// Winner returns the winner of a finished tournament
func (s *TournamentService) Winner(ctx context.Context, id string) (models.Movie, error) {
	sess, err := s.session(id)
	if err != nil {
		return models.Movie{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	winner, ok := sess.engine.Winner()
	if !ok {
		return models.Movie{}, ErrTournamentRunning
	}
	return winner, nil
}

// WinnerDetails returns the winner enriched with catalog details. The pooled
// record is used when the catalog cannot be reached.
func (s *TournamentService) WinnerDetails(ctx context.Context, id string) (*MovieView, error) {
	winner, err := s.Winner(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.catalog.GetMovie(ctx, winner.ID)
	if err != nil {
		s.log.Warn("Failed to fetch winner details, using pooled record", "movie_id", winner.ID, "error", err)
		v := s.movieView(winner)
		return &v, nil
	}
	if details.Title == "" {
		details.Title = winner.Title
	}
	if details.PosterPath == "" {
		details.PosterPath = winner.PosterPath
	}
	v := s.movieView(details)
	return &v, nil
}

// ShareURL returns the link players can use to follow a tournament
func (s *TournamentService) ShareURL(ctx context.Context, id string) (string, error) {
	if _, err := s.session(id); err != nil {
		return "", err
	}
	baseURL, err := s.settings.GetBaseURL(ctx)
	if err != nil {
		return "", err
	}
	if baseURL == "" {
		return "", ErrBaseURLNotConfigured
	}
	return fmt.Sprintf("%s/tournaments/%s", strings.TrimSuffix(baseURL, "/"), id), nil
}

// ShareQR renders the share URL of a tournament as a PNG QR code
func (s *TournamentService) ShareQR(ctx context.Context, id string) ([]byte, error) {
	shareURL, err := s.ShareURL(ctx, id)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(shareURL, qrcode.Medium, 256)
}

// ActiveCount returns how many tournaments are held in memory
func (s *TournamentService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ReapIdle drops idle tournaments every interval until ctx is done
func (s *TournamentService) ReapIdle(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.ReapOnce(); n > 0 {
				s.log.Info("Dropped idle tournaments", "count", n)
			}
		}
	}
}

// ReapOnce drops every tournament idle for longer than the ttl and returns
// how many were dropped
func (s *TournamentService) ReapOnce() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var dropped []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastActive.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			dropped = append(dropped, id)
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()

	if len(dropped) > 0 {
		s.recorder.SetActiveSessions(active)
		for _, id := range dropped {
			s.broadcast(id, EventTournamentAbandoned, map[string]string{"id": id})
		}
	}
	return len(dropped)
}

func (s *TournamentService) session(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return sess, nil
}

// viewLocked builds the view of sess. The caller holds sess.mu.
func (s *TournamentService) viewLocked(sess *session) *TournamentView {
	e := sess.engine
	view := &TournamentView{
		ID:              sess.id,
		Status:          StatusRunning,
		Genres:          sess.genres,
		BracketSize:     sess.size,
		RoundsCompleted: e.RoundsCompleted(),
		CreatedAt:       sess.createdAt,
		Seq:             sess.seq,
	}

	if winner, ok := e.Winner(); ok {
		view.Status = StatusFinished
		w := s.movieView(winner)
		view.Winner = &w
		return view
	}

	if m, ok := e.CurrentMatch(); ok {
		view.RoundSize = m.RoundSize
		view.RoundLabel = m.Label()
		view.Match = &MatchView{
			Index:  m.Index,
			Number: m.Number,
			Total:  m.Total,
			Left:   s.movieView(m.Left),
			Right:  s.movieView(m.Right),
		}
	}
	return view
}

func (s *TournamentService) movieView(m models.Movie) MovieView {
	return MovieView{
		ID:          m.ID,
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		PosterURL:   s.catalog.PosterURL(m.PosterPath),
		Overview:    m.Overview,
		VoteAverage: m.VoteAverage,
	}
}

func (s *TournamentService) broadcast(id, eventType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastTournamentEvent(id, eventType, payload)
	}
}

type nopTournamentRecorder struct{}

func (nopTournamentRecorder) Selection()             {}
func (nopTournamentRecorder) TournamentFinished(int) {}
func (nopTournamentRecorder) SetActiveSessions(int)  {}
