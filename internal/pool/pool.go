// Package pool assembles the candidate pool a tournament is played over.
//
// A build walks the catalog's discover pages in popularity order, drops movies
// whose regional certification is not admissible, and keeps postered movies
// it has not seen yet until the pool holds exactly the requested bracket size.
package pool

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/moviecup/internal/bracket"
	"github.com/abrezinsky/moviecup/internal/certification"
	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/metrics"
	"github.com/abrezinsky/moviecup/internal/models"
)

// MaxPages bounds pagination: pages 1 through MaxPages-1 are requested.
const MaxPages = 10

var (
	// ErrInsufficientCandidates is matched by *InsufficientCandidatesError
	ErrInsufficientCandidates = errors.New("insufficient candidates")

	// ErrInvalidBracketSize is returned for targets outside bracket.Sizes
	ErrInvalidBracketSize = errors.New("invalid bracket size")
)

// InsufficientCandidatesError reports a build that ran out of pages before
// filling the pool. SourceErr holds the catalog failure that ended
// pagination early, if any.
type InsufficientCandidatesError struct {
	Target    int
	Found     int
	Pages     int
	SourceErr error
}

func (e *InsufficientCandidatesError) Error() string {
	msg := fmt.Sprintf("insufficient candidates: found %d of %d after %d pages", e.Found, e.Target, e.Pages)
	if e.SourceErr != nil {
		msg += ": " + e.SourceErr.Error()
	}
	return msg
}

func (e *InsufficientCandidatesError) Is(target error) bool {
	return target == ErrInsufficientCandidates
}

func (e *InsufficientCandidatesError) Unwrap() error {
	return e.SourceErr
}

// Source is the slice of the catalog a build needs
type Source interface {
	DiscoverMovies(ctx context.Context, genreIDs []int, page int) ([]models.Movie, error)
	Certification(ctx context.Context, movieID int) (string, error)
}

// Recorder receives build telemetry. *metrics.Metrics implements it.
type Recorder interface {
	CatalogPage(outcome string)
	CertificationLookup(outcome string)
	PoolBuild(outcome string, elapsed time.Duration)
}

// ShuffleFunc permutes n elements through swap, like rand.Shuffle
type ShuffleFunc func(n int, swap func(i, j int))

// Option configures a Builder
type Option func(*Builder)

// WithShuffle replaces the uniform shuffle, for deterministic tests
func WithShuffle(fn ShuffleFunc) Option {
	return func(b *Builder) {
		b.shuffle = fn
	}
}

// WithRecorder sets where build telemetry goes
func WithRecorder(r Recorder) Option {
	return func(b *Builder) {
		b.rec = r
	}
}

// Builder builds candidate pools. It holds no per-build state and is safe
// for concurrent use.
type Builder struct {
	log     logger.Logger
	source  Source
	shuffle ShuffleFunc
	rec     Recorder
}

// NewBuilder creates a Builder over source
func NewBuilder(log logger.Logger, source Source, opts ...Option) *Builder {
	b := &Builder{
		log:     log,
		source:  source,
		shuffle: rand.Shuffle,
		rec:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns a shuffled pool of exactly target movies matching all genres.
// It fails with *InsufficientCandidatesError when the pages run out first and
// with ctx.Err() when the context ends mid-build.
func (b *Builder) Build(ctx context.Context, genres []int, target int) ([]models.Movie, error) {
	if !bracket.ValidSize(target) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBracketSize, target)
	}

	start := time.Now()
	seen := make(map[int]struct{}, target)
	candidates := make([]models.Movie, 0, target)
	pages := 0
	var sourceErr error

	for page := 1; page < MaxPages && len(candidates) < target; page++ {
		if err := ctx.Err(); err != nil {
			b.rec.PoolBuild(metrics.OutcomeCanceled, time.Since(start))
			return nil, err
		}

		pages++
		raw, err := b.source.DiscoverMovies(ctx, genres, page)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				b.rec.PoolBuild(metrics.OutcomeCanceled, time.Since(start))
				return nil, ctxErr
			}
			b.rec.CatalogPage(metrics.OutcomeError)
			b.log.Warn("Discover page failed, stopping pagination", "page", page, "genres", genres, "error", err)
			sourceErr = err
			break
		}
		if len(raw) == 0 {
			b.rec.CatalogPage(metrics.OutcomeEmpty)
			b.log.Debug("Discover page empty, stopping pagination", "page", page)
			break
		}
		b.rec.CatalogPage(metrics.OutcomeOK)

		admissible, err := b.filterAdmissible(ctx, raw)
		if err != nil {
			b.rec.PoolBuild(metrics.OutcomeCanceled, time.Since(start))
			return nil, err
		}

		for _, m := range admissible {
			if len(candidates) == target {
				break
			}
			if !m.HasPoster() {
				continue
			}
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			candidates = append(candidates, m)
		}

		b.log.Debug("Discover page processed", "page", page, "raw", len(raw), "admissible", len(admissible), "pool", len(candidates))
	}

	if len(candidates) < target {
		b.rec.PoolBuild(metrics.OutcomeInsufficient, time.Since(start))
		b.log.Info("Not enough candidates for bracket", "genres", genres, "target", target, "found", len(candidates), "pages", pages)
		return nil, &InsufficientCandidatesError{
			Target:    target,
			Found:     len(candidates),
			Pages:     pages,
			SourceErr: sourceErr,
		}
	}

	b.shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	candidates = candidates[:target]

	b.rec.PoolBuild(metrics.OutcomeOK, time.Since(start))
	b.log.Debug("Pool built", "genres", genres, "target", target, "pages", pages)
	return candidates, nil
}

// filterAdmissible looks up every movie's certification concurrently, waits
// for all of them, then keeps the admissible movies in their original order.
// Failed lookups count as "no certification".
func (b *Builder) filterAdmissible(ctx context.Context, movies []models.Movie) ([]models.Movie, error) {
	codes := make([]string, len(movies))

	g, gctx := errgroup.WithContext(ctx)
	for i, m := range movies {
		i, m := i, m
		g.Go(func() error {
			code, err := b.source.Certification(gctx, m.ID)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				b.rec.CertificationLookup(metrics.OutcomeError)
				b.log.Debug("Certification lookup failed, admitting movie", "movie_id", m.ID, "error", err)
				return nil
			}
			if code == "" {
				b.rec.CertificationLookup(metrics.OutcomeAbsent)
			} else {
				b.rec.CertificationLookup(metrics.OutcomeOK)
			}
			codes[i] = code
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	admissible := make([]models.Movie, 0, len(movies))
	for i, m := range movies {
		if certification.Admissible(codes[i]) {
			admissible = append(admissible, m)
		}
	}
	return admissible, nil
}

type nopRecorder struct{}

func (nopRecorder) CatalogPage(string)              {}
func (nopRecorder) CertificationLookup(string)      {}
func (nopRecorder) PoolBuild(string, time.Duration) {}

var _ Recorder = (*metrics.Metrics)(nil)
