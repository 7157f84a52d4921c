// Package tmdb provides a client for The Movie Database (TMDB) v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/abrezinsky/moviecup/internal/logger"
	"github.com/abrezinsky/moviecup/internal/models"
)

var (
	// ErrSourceUnavailable marks any failure to reach or understand the
	// catalog: transport errors, non-2xx responses, bad JSON, open breaker.
	ErrSourceUnavailable = errors.New("catalog source unavailable")

	// ErrNotFound is returned for lookups of IDs the catalog does not know.
	ErrNotFound = errors.New("catalog entry not found")
)

// PlaceholderPosterURL is served for movies without a poster.
const PlaceholderPosterURL = "https://via.placeholder.com/500x750?text=No+Poster"

// Client defines the catalog operations the service relies on
type Client interface {
	// ListGenres returns the movie genre list in the configured language
	ListGenres(ctx context.Context) ([]models.Genre, error)
	// DiscoverMovies returns one page of movies matching all genres, most popular first
	DiscoverMovies(ctx context.Context, genreIDs []int, page int) ([]models.Movie, error)
	// Certification returns the regional age rating of a movie, "" when absent
	Certification(ctx context.Context, movieID int) (string, error)
	// GetMovie returns the details of one movie
	GetMovie(ctx context.Context, movieID int) (models.Movie, error)
	// PosterURL resolves a poster path to an absolute image URL
	PosterURL(path string) string
}

// Options configures an HTTPClient
type Options struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Region       string
	Timeout      time.Duration
	RateLimit    float64 // requests per second
	Burst        int
}

func (o *Options) setDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.themoviedb.org/3"
	}
	if o.ImageBaseURL == "" {
		o.ImageBaseURL = "https://image.tmdb.org/t/p/"
	}
	if o.Language == "" {
		o.Language = "ko-KR"
	}
	if o.Region == "" {
		o.Region = "KR"
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 40
	}
	if o.Burst < 1 {
		o.Burst = 20
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
}

type genreListResponse struct {
	Genres []models.Genre `json:"genres"`
}

type movieResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  *string `json:"poster_path"`
	Overview    string  `json:"overview"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int   `json:"genre_ids"`
	Genres      []struct {
		ID int `json:"id"`
	} `json:"genres"`
}

func (r movieResult) toModel() models.Movie {
	m := models.Movie{
		ID:          r.ID,
		Title:       r.Title,
		Overview:    r.Overview,
		VoteAverage: r.VoteAverage,
		Popularity:  r.Popularity,
		GenreIDs:    r.GenreIDs,
	}
	if r.PosterPath != nil {
		m.PosterPath = *r.PosterPath
	}
	// /movie/{id} lists genres as objects instead of ids
	if len(m.GenreIDs) == 0 && len(r.Genres) > 0 {
		for _, g := range r.Genres {
			m.GenreIDs = append(m.GenreIDs, g.ID)
		}
	}
	return m
}

type discoverResponse struct {
	Page    int           `json:"page"`
	Results []movieResult `json:"results"`
}

type releaseDatesResponse struct {
	Results []struct {
		Region       string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
		} `json:"release_dates"`
	} `json:"results"`
}

// HTTPClient is a real HTTP client for TMDB
type HTTPClient struct {
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        logger.Logger
}

// NewHTTPClient creates a new TMDB client
func NewHTTPClient(opts Options, log logger.Logger) *HTTPClient {
	opts.setDefaults()
	return NewHTTPClientWithHTTPClient(opts, &http.Client{Timeout: opts.Timeout}, log)
}

// NewHTTPClientWithHTTPClient creates a new TMDB client with a custom http.Client
func NewHTTPClientWithHTTPClient(opts Options, httpClient *http.Client, log logger.Logger) *HTTPClient {
	opts.setDefaults()
	c := &HTTPClient{
		opts:       opts,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		log:        log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Unknown IDs and callers giving up say nothing about catalog health
			return err == nil || errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("Catalog circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// BreakerState reports the circuit breaker state, for diagnostics
func (c *HTTPClient) BreakerState() string {
	return c.breaker.State().String()
}

// doRequest issues a GET against the API and decodes the JSON body into response.
// Every failure except ErrNotFound and context cancellation wraps ErrSourceUnavailable.
func (c *HTTPClient) doRequest(ctx context.Context, path string, params url.Values, response interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.opts.APIKey != "" {
		params.Set("api_key", c.opts.APIKey)
	}
	apiURL := c.opts.BaseURL + path + "?" + params.Encode()

	c.log.Debug("TMDB request", "method", "GET", "path", path)

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(data), 200))
		}
		return data, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		c.log.Debug("TMDB request failed", "path", path, "error", err)
		return fmt.Errorf("%w: GET %s: %w", ErrSourceUnavailable, path, err)
	}

	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("%w: GET %s: failed to parse response: %w", ErrSourceUnavailable, path, err)
	}
	return nil
}

// ListGenres retrieves the movie genre list
func (c *HTTPClient) ListGenres(ctx context.Context) ([]models.Genre, error) {
	params := url.Values{}
	params.Set("language", c.opts.Language)

	var resp genreListResponse
	if err := c.doRequest(ctx, "/genre/movie/list", params, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// DiscoverMovies retrieves one page of movies having all of genreIDs
func (c *HTTPClient) DiscoverMovies(ctx context.Context, genreIDs []int, page int) ([]models.Movie, error) {
	ids := make([]string, len(genreIDs))
	for i, id := range genreIDs {
		ids[i] = strconv.Itoa(id)
	}

	params := url.Values{}
	params.Set("language", c.opts.Language)
	params.Set("sort_by", "popularity.desc")
	params.Set("with_genres", strings.Join(ids, ","))
	params.Set("include_adult", "false")
	params.Set("page", strconv.Itoa(page))

	var resp discoverResponse
	if err := c.doRequest(ctx, "/discover/movie", params, &resp); err != nil {
		return nil, err
	}

	movies := make([]models.Movie, 0, len(resp.Results))
	for _, r := range resp.Results {
		movies = append(movies, r.toModel())
	}
	return movies, nil
}

// Certification returns the certification of the first release in the
// configured region. A movie without a release there has no certification.
func (c *HTTPClient) Certification(ctx context.Context, movieID int) (string, error) {
	var resp releaseDatesResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d/release_dates", movieID), nil, &resp); err != nil {
		return "", err
	}

	for _, r := range resp.Results {
		if r.Region != c.opts.Region {
			continue
		}
		if len(r.ReleaseDates) == 0 {
			return "", nil
		}
		return r.ReleaseDates[0].Certification, nil
	}
	return "", nil
}

// GetMovie retrieves a single movie's details
func (c *HTTPClient) GetMovie(ctx context.Context, movieID int) (models.Movie, error) {
	params := url.Values{}
	params.Set("language", c.opts.Language)

	var resp movieResult
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", movieID), params, &resp); err != nil {
		return models.Movie{}, err
	}
	return resp.toModel(), nil
}

// PosterURL builds the w500 image URL for path
func (c *HTTPClient) PosterURL(path string) string {
	return PosterURL(c.opts.ImageBaseURL, path)
}

// PosterURL builds the w500 image URL for path under imageBaseURL, or the
// placeholder when the movie has no poster
func PosterURL(imageBaseURL, path string) string {
	if path == "" {
		return PlaceholderPosterURL
	}
	return imageBaseURL + "w500" + path
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
