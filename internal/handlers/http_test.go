package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/abrezinsky/moviecup/internal/bracket"
	"github.com/abrezinsky/moviecup/internal/errors"
	"github.com/abrezinsky/moviecup/internal/handlers"
	"github.com/abrezinsky/moviecup/internal/pool"
	"github.com/abrezinsky/moviecup/internal/services"
	"github.com/abrezinsky/moviecup/pkg/tmdb"
)

func TestAPIError_Error(t *testing.T) {
	err := handlers.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "test message")

	if err.Error() != "test message" {
		t.Errorf("expected 'test message', got %q", err.Error())
	}
	if err.Code != "BAD_REQUEST" {
		t.Errorf("expected code 'BAD_REQUEST', got %q", err.Code)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *handlers.APIError
		status int
		code   string
	}{
		{"BadRequest", handlers.BadRequest("bad"), http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"ValidationError", handlers.ValidationError("bad field"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"Unauthorized", handlers.Unauthorized("login required"), http.StatusUnauthorized, handlers.ErrCodeUnauthorized},
		{"NotFound", handlers.NotFound("missing"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"Conflict", handlers.Conflict("clash"), http.StatusConflict, handlers.ErrCodeConflict},
		{"ErrBadRequest", handlers.ErrBadRequest, http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"ErrUnauthorized", handlers.ErrUnauthorized, http.StatusUnauthorized, handlers.ErrCodeUnauthorized},
		{"ErrNotFound", handlers.ErrNotFound, http.StatusNotFound, handlers.ErrCodeNotFound},
		{"ErrInternalServer", handlers.ErrInternalServer, http.StatusInternalServerError, handlers.ErrCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.Status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
		})
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	err := handlers.InternalError(fmt.Errorf("db connection failed"))

	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
	// Internal errors should not expose the original message
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
}

func TestToAPIError(t *testing.T) {
	short := &pool.InsufficientCandidatesError{Target: 32, Found: 17, Pages: 9}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient candidates", short, http.StatusUnprocessableEntity, handlers.ErrCodeInsufficientCandidates},
		{"wrapped insufficient candidates", fmt.Errorf("start: %w", short), http.StatusUnprocessableEntity, handlers.ErrCodeInsufficientCandidates},
		{"outage after a partial pool", &pool.InsufficientCandidatesError{Target: 16, Found: 9, Pages: 2, SourceErr: tmdb.ErrSourceUnavailable}, http.StatusUnprocessableEntity, handlers.ErrCodeInsufficientCandidates},
		{"outage with empty pool", errors.Unavailable("movie catalog unavailable", &pool.InsufficientCandidatesError{Target: 16, SourceErr: tmdb.ErrSourceUnavailable}), http.StatusServiceUnavailable, handlers.ErrCodeSourceUnavailable},
		{"invalid selection", errors.Wrap(bracket.ErrInvalidSelection, errors.ErrConflict, "movie 9 is not in the current match"), http.StatusConflict, handlers.ErrCodeInvalidSelection},
		{"catalog unavailable", errors.Unavailable("movie catalog unavailable", tmdb.ErrSourceUnavailable), http.StatusServiceUnavailable, handlers.ErrCodeSourceUnavailable},
		{"raw source error", fmt.Errorf("%w: GET /genre/movie/list", tmdb.ErrSourceUnavailable), http.StatusServiceUnavailable, handlers.ErrCodeSourceUnavailable},
		{"not found kind", errors.NotFound("gone"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"validation kind", errors.Validation("bad"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"invalid input kind", errors.InvalidInput("bad"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"conflict kind", errors.Conflict("clash"), http.StatusConflict, handlers.ErrCodeConflict},
		{"internal kind", errors.Internal(fmt.Errorf("boom")), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
		{"tournament not found", services.ErrTournamentNotFound, http.StatusNotFound, handlers.ErrCodeNotFound},
		{"tournament running", services.ErrTournamentRunning, http.StatusConflict, handlers.ErrCodeTournamentRunning},
		{"tournament finished", services.ErrTournamentFinished, http.StatusConflict, handlers.ErrCodeConflict},
		{"base url missing", services.ErrBaseURLNotConfigured, http.StatusConflict, handlers.ErrCodeBaseURLNotConfigured},
		{"invalid rating", services.ErrInvalidRating, http.StatusBadRequest, handlers.ErrCodeValidation},
		{"invalid table", &services.InvalidTableError{Table: "users"}, http.StatusBadRequest, handlers.ErrCodeValidation},
		{"canceled", context.Canceled, handlers.StatusClientClosedRequest, handlers.ErrCodeRequestCanceled},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, handlers.ErrCodeSourceUnavailable},
		{"wrapped deadline", fmt.Errorf("build: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, handlers.ErrCodeSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := handlers.ToAPIError(tt.err)
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
		})
	}
}

func TestToAPIError_InsufficientCandidatesDetails(t *testing.T) {
	apiErr := handlers.ToAPIError(&pool.InsufficientCandidatesError{Target: 64, Found: 40, Pages: 9})

	if apiErr.Details["target"] != 64 || apiErr.Details["found"] != 40 {
		t.Errorf("expected target 64 and found 40, got %v", apiErr.Details)
	}
}

func TestToAPIError_InvalidSelectionKeepsMessage(t *testing.T) {
	err := errors.Wrap(bracket.ErrInvalidSelection, errors.ErrConflict, "movie 9 is not in the current match")

	if msg := handlers.ToAPIError(err).Message; msg != "movie 9 is not in the current match" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/tournaments", nil, false)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Message != "Request body is empty" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestDecodeJSON_InvalidJSON(t *testing.T) {
	setup := newTestSetup(t)

	rec := setup.do(t, http.MethodPost, "/api/tournaments", `{"genres": [28`, false)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != handlers.ErrCodeBadRequest {
		t.Errorf("expected BAD_REQUEST, got %s", apiErr.Code)
	}
}
