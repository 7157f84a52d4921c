package handlers

// StartTournamentRequest represents a request to start a tournament
type StartTournamentRequest struct {
	Genres []int `json:"genres"`
	Size   int   `json:"size"`
}

// SelectWinnerRequest represents the pick for the current match
type SelectWinnerRequest struct {
	MovieID int `json:"movie_id"`
}

// RatingRequest represents a star rating for a tournament winner
type RatingRequest struct {
	Rating int `json:"rating"`
}

// LoginRequest represents an admin login attempt
type LoginRequest struct {
	Password string `json:"password"`
}

// SettingsUpdateRequest represents a request to update settings
type SettingsUpdateRequest struct {
	BaseURL string `json:"base_url"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}
