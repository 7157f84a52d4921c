package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/moviecup/internal/bracket"
	"github.com/abrezinsky/moviecup/internal/errors"
	"github.com/abrezinsky/moviecup/internal/pool"
	"github.com/abrezinsky/moviecup/internal/services"
	"github.com/abrezinsky/moviecup/pkg/tmdb"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest             = "BAD_REQUEST"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeConflict               = "CONFLICT"
	ErrCodeValidation             = "VALIDATION_ERROR"
	ErrCodeInternalServer         = "INTERNAL_SERVER_ERROR"
	ErrCodeTooManyRequests        = "TOO_MANY_REQUESTS"
	ErrCodeInsufficientCandidates = "INSUFFICIENT_CANDIDATES"
	ErrCodeSourceUnavailable      = "SOURCE_UNAVAILABLE"
	ErrCodeInvalidSelection       = "INVALID_SELECTION"
	ErrCodeTournamentRunning      = "TOURNAMENT_RUNNING"
	ErrCodeBaseURLNotConfigured   = "BASE_URL_NOT_CONFIGURED"
	ErrCodeRequestCanceled        = "REQUEST_CANCELED"
)

// StatusClientClosedRequest is the nginx status for a client that went away
// before the response was ready
const StatusClientClosedRequest = 499

// APIError represents an error with an HTTP status code and error code
type APIError struct {
	Status  int            `json:"-"`
	Code    string         `json:"code"`
	Message string         `json:"error"`
	Details map[string]int `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrBadRequest     = &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: "Bad request"}
	ErrUnauthorized   = &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: "Unauthorized"}
	ErrNotFound       = &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: "Not found"}
	ErrInternalServer = &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
)

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// ValidationError creates a 400 error for rejected field values
func ValidationError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// Conflict creates a 409 error with custom message
func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Code: ErrCodeConflict, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	slog.Error("Internal error", "error", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondCreated writes a 201 Created JSON response
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, data)
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// respondDeleted writes a 204 No Content response
func respondDeleted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*APIError); ok {
		respondJSON(w, apiErr.Status, apiErr)
		return
	}
	// Convert service errors to appropriate API errors
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is empty")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// parseIntQuery reads an optional integer query parameter
func parseIntQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, BadRequest("Invalid " + name + " parameter")
	}
	return n, nil
}

// tournamentID extracts the tournament ID URL parameter
func tournamentID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return "", BadRequest("Missing id parameter")
	}
	return id, nil
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	if stderrors.Is(err, context.Canceled) {
		return &APIError{Status: StatusClientClosedRequest, Code: ErrCodeRequestCanceled, Message: "Request canceled"}
	}

	// A catalog outage may wrap the short pool it caused, check it first.
	// Running out of time waiting on the catalog counts as an outage.
	if errors.KindOf(err) == errors.ErrUnavailable ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		(stderrors.Is(err, tmdb.ErrSourceUnavailable) && !stderrors.Is(err, pool.ErrInsufficientCandidates)) {
		return &APIError{Status: http.StatusServiceUnavailable, Code: ErrCodeSourceUnavailable, Message: "The movie catalog is unavailable. Please try again later."}
	}

	// Short pools carry their counts so clients can suggest a smaller bracket
	var ic *pool.InsufficientCandidatesError
	if stderrors.As(err, &ic) {
		return &APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    ErrCodeInsufficientCandidates,
			Message: "Not enough movies for this bracket size. Try other genres or a smaller bracket.",
			Details: map[string]int{"target": ic.Target, "found": ic.Found},
		}
	}
	if stderrors.Is(err, bracket.ErrInvalidSelection) {
		msg := "Selection is not part of the current match"
		var appErr *errors.Error
		if stderrors.As(err, &appErr) {
			msg = appErr.Message
		}
		return &APIError{Status: http.StatusConflict, Code: ErrCodeInvalidSelection, Message: msg}
	}

	// Check for application errors first
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation, errors.ErrInvalidInput:
			return ValidationError(appErr.Message)
		case errors.ErrConflict:
			return Conflict(appErr.Message)
		default:
			return InternalError(err)
		}
	}
	if svcErr, ok := err.(*services.ServiceError); ok {
		switch svcErr {
		case services.ErrTournamentNotFound:
			return NotFound(svcErr.Message)
		case services.ErrTournamentRunning:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeTournamentRunning, Message: svcErr.Message}
		case services.ErrTournamentFinished:
			return Conflict(svcErr.Message)
		case services.ErrBaseURLNotConfigured:
			return &APIError{Status: http.StatusConflict, Code: ErrCodeBaseURLNotConfigured, Message: svcErr.Message}
		}
		return ValidationError(svcErr.Message)
	}
	if tableErr, ok := err.(*services.InvalidTableError); ok {
		return ValidationError(tableErr.Error())
	}

	return InternalError(err)
}
