// Package config defines service configuration and how it is loaded.
package config

import (
	"errors"
	"time"
)

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8081".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database holding ratings and tournament results.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// AdminPassword protects the admin API. Generated at startup when empty.
	AdminPassword string `koanf:"admin_password"`

	// BaseURL is the public URL encoded into share QR codes. Detected from
	// the LAN address when empty.
	BaseURL string `koanf:"base_url"`

	// TMDB catalog access.
	TMDBAPIKey       string        `koanf:"tmdb_api_key"`
	TMDBBaseURL      string        `koanf:"tmdb_base_url"`
	TMDBImageBaseURL string        `koanf:"tmdb_image_base_url"`
	TMDBLanguage     string        `koanf:"tmdb_language"`
	TMDBRegion       string        `koanf:"tmdb_region"`
	TMDBTimeout      time.Duration `koanf:"tmdb_timeout"`

	// TMDBRateLimit is the sustained request rate (per second) toward the
	// catalog; TMDBBurst bounds how many requests may go out at once.
	TMDBRateLimit float64 `koanf:"tmdb_rate_limit"`
	TMDBBurst     int     `koanf:"tmdb_burst"`

	// SessionTTL drops tournaments nobody has touched for this long.
	SessionTTL time.Duration `koanf:"session_ttl"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:             ":8081",
		DBPath:           "moviecup.db",
		LogLevel:         "info",
		LogFormat:        "text",
		TMDBBaseURL:      "https://api.themoviedb.org/3",
		TMDBImageBaseURL: "https://image.tmdb.org/t/p/",
		TMDBLanguage:     "ko-KR",
		TMDBRegion:       "KR",
		TMDBTimeout:      10 * time.Second,
		TMDBRateLimit:    40,
		TMDBBurst:        20,
		SessionTTL:       2 * time.Hour,
	}
}

// Validate checks the values Load cannot fix on its own.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.Join(ErrInvalidConfig, errors.New("addr must not be empty"))
	case c.DBPath == "":
		return errors.Join(ErrInvalidConfig, errors.New("db_path must not be empty"))
	case c.TMDBBaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("tmdb_base_url must not be empty"))
	case c.TMDBRateLimit <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("tmdb_rate_limit must be positive"))
	case c.TMDBBurst < 1:
		return errors.Join(ErrInvalidConfig, errors.New("tmdb_burst must be at least 1"))
	case c.SessionTTL <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("session_ttl must be positive"))
	}
	return nil
}
