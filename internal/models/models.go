package models

import "time"

// Genre is a catalog category a tournament can be drawn from
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is a tournament candidate as returned by the catalog
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path,omitempty"` // Empty means the catalog has no poster
	Overview    string  `json:"overview,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	GenreIDs    []int   `json:"genre_ids,omitempty"`
}

// HasPoster reports whether the movie carries a poster reference
func (m Movie) HasPoster() bool {
	return m.PosterPath != ""
}

// RatingRecord is a user's star rating for a tournament winner
type RatingRecord struct {
	MovieID    int       `json:"id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
	Rating     int       `json:"rating"`
	RatedAt    time.Time `json:"rated_at"`
}

// TournamentResult is the persisted outcome of a finished tournament
type TournamentResult struct {
	ID           string    `json:"id"`
	Genres       []int     `json:"genres"`
	BracketSize  int       `json:"bracket_size"`
	WinnerID     int       `json:"winner_id"`
	WinnerTitle  string    `json:"winner_title"`
	WinnerPoster string    `json:"winner_poster,omitempty"`
	FinishedAt   time.Time `json:"finished_at"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
