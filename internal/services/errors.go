package services

import "fmt"

// Service errors
var (
	ErrNoGenres             = &ServiceError{Message: "at least one genre is required"}
	ErrInvalidGenre         = &ServiceError{Message: "genre ids must be positive"}
	ErrInvalidBracketSize   = &ServiceError{Message: "bracket size must be one of 4, 8, 16, 32, 64"}
	ErrTournamentNotFound   = &ServiceError{Message: "tournament not found"}
	ErrTournamentRunning    = &ServiceError{Message: "tournament has not finished yet"}
	ErrTournamentFinished   = &ServiceError{Message: "tournament is already finished"}
	ErrInvalidRating        = &ServiceError{Message: "rating must be between 1 and 5"}
	ErrNoTablesSpecified    = &ServiceError{Message: "no tables specified"}
	ErrBaseURLNotConfigured = &ServiceError{Message: "base_url not configured"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidTableError represents an invalid table name error
type InvalidTableError struct {
	Table string
}

func (e *InvalidTableError) Error() string {
	return fmt.Sprintf("invalid table name: %s", e.Table)
}
