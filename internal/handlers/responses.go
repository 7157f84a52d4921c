package handlers

import "github.com/abrezinsky/moviecup/internal/models"

// BracketSizesResponse lists the playable bracket sizes
type BracketSizesResponse struct {
	Sizes []int `json:"sizes"`
}

// ShareResponse is the response for the share link of a tournament
type ShareResponse struct {
	URL string `json:"url"`
}

// SettingsResponse is the response for settings
type SettingsResponse struct {
	BaseURL string `json:"base_url"`
}

// ResetResponse is the response for a database reset
type ResetResponse struct {
	Message string   `json:"message"`
	Tables  []string `json:"tables"`
}

// HealthResponse is the response of the health probe
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// ResultsResponse wraps recent tournament results
type ResultsResponse struct {
	Results []models.TournamentResult `json:"results"`
}
