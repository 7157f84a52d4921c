package tmdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/abrezinsky/moviecup/internal/models"
)

// MockClient is a mock TMDB client for testing. Safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	genres         []models.Genre
	pages          map[int][]models.Movie // page -> results
	certifications map[int]string         // movieID -> code
	details        map[int]models.Movie
	imageBaseURL   string

	genresErr     error
	discoverErr   error
	discoverErrAt int // page that fails with discoverErr; 0 means every page
	certErrs      map[int]error
	certErr       error
	movieErr      error

	discoverCalls []int // pages requested, in order
	certCalls     int
	genresCalls   int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithGenres sets the genres to return
func WithGenres(genres []models.Genre) MockOption {
	return func(m *MockClient) {
		m.genres = genres
	}
}

// WithGenresError sets an error to return from ListGenres
func WithGenresError(err error) MockOption {
	return func(m *MockClient) {
		m.genresErr = err
	}
}

// WithPage sets the results returned for one discover page
func WithPage(page int, movies []models.Movie) MockOption {
	return func(m *MockClient) {
		m.pages[page] = movies
	}
}

// WithDiscoverError makes DiscoverMovies fail. page 0 fails every page.
func WithDiscoverError(page int, err error) MockOption {
	return func(m *MockClient) {
		m.discoverErrAt = page
		m.discoverErr = err
	}
}

// WithCertification sets the certification code of a movie
func WithCertification(movieID int, code string) MockOption {
	return func(m *MockClient) {
		m.certifications[movieID] = code
	}
}

// WithCertificationError makes the certification lookup of one movie fail
func WithCertificationError(movieID int, err error) MockOption {
	return func(m *MockClient) {
		m.certErrs[movieID] = err
	}
}

// WithAllCertificationsError makes every certification lookup fail
func WithAllCertificationsError(err error) MockOption {
	return func(m *MockClient) {
		m.certErr = err
	}
}

// WithMovieDetails sets the details returned by GetMovie
func WithMovieDetails(movie models.Movie) MockOption {
	return func(m *MockClient) {
		m.details[movie.ID] = movie
	}
}

// WithMovieError sets an error to return from GetMovie
func WithMovieError(err error) MockOption {
	return func(m *MockClient) {
		m.movieErr = err
	}
}

// NewMockClient creates a new mock TMDB client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		genres:         DefaultMockGenres(),
		pages:          make(map[int][]models.Movie),
		certifications: make(map[int]string),
		certErrs:       make(map[int]error),
		details:        make(map[int]models.Movie),
		imageBaseURL:   "https://image.mock/t/p/",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ListGenres returns the configured genres
func (m *MockClient) ListGenres(ctx context.Context) ([]models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.genresCalls++
	if m.genresErr != nil {
		return nil, m.genresErr
	}
	return append([]models.Genre(nil), m.genres...), nil
}

// DiscoverMovies returns the configured page, or nothing past the last one
func (m *MockClient) DiscoverMovies(ctx context.Context, genreIDs []int, page int) ([]models.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discoverCalls = append(m.discoverCalls, page)
	if m.discoverErr != nil && (m.discoverErrAt == 0 || m.discoverErrAt == page) {
		return nil, m.discoverErr
	}
	return append([]models.Movie(nil), m.pages[page]...), nil
}

// Certification returns the configured code, "" when none is set
func (m *MockClient) Certification(ctx context.Context, movieID int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.certCalls++
	if m.certErr != nil {
		return "", m.certErr
	}
	if err, ok := m.certErrs[movieID]; ok {
		return "", err
	}
	return m.certifications[movieID], nil
}

// GetMovie returns configured details, falling back to any discover result
func (m *MockClient) GetMovie(ctx context.Context, movieID int) (models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.movieErr != nil {
		return models.Movie{}, m.movieErr
	}
	if d, ok := m.details[movieID]; ok {
		return d, nil
	}
	for _, page := range m.pages {
		for _, mv := range page {
			if mv.ID == movieID {
				return mv, nil
			}
		}
	}
	return models.Movie{}, fmt.Errorf("movie %d: %w", movieID, ErrNotFound)
}

// PosterURL builds a poster URL on the mock image host
func (m *MockClient) PosterURL(path string) string {
	return PosterURL(m.imageBaseURL, path)
}

// DiscoverCalls returns the pages requested so far, in order
func (m *MockClient) DiscoverCalls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.discoverCalls...)
}

// CertificationCalls returns how many certification lookups were made
func (m *MockClient) CertificationCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.certCalls
}

// GenresCalls returns how many times ListGenres was called
func (m *MockClient) GenresCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.genresCalls
}

// DefaultMockGenres returns a small genre list for testing
func DefaultMockGenres() []models.Genre {
	return []models.Genre{
		{ID: 28, Name: "Action"},
		{ID: 35, Name: "Comedy"},
		{ID: 18, Name: "Drama"},
		{ID: 878, Name: "Science Fiction"},
	}
}

// MockMovies generates count movies with posters and IDs starting at firstID
func MockMovies(firstID, count int) []models.Movie {
	movies := make([]models.Movie, count)
	for i := range movies {
		id := firstID + i
		movies[i] = models.Movie{
			ID:          id,
			Title:       fmt.Sprintf("Movie %d", id),
			PosterPath:  fmt.Sprintf("/poster-%d.jpg", id),
			VoteAverage: 7.0,
			Popularity:  float64(1000 - id),
			GenreIDs:    []int{28},
		}
	}
	return movies
}

var _ Client = (*MockClient)(nil)
var _ Client = (*HTTPClient)(nil)
