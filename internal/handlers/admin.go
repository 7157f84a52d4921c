package handlers

import (
	"net/http"

	"github.com/abrezinsky/moviecup/internal/models"
)

// ==================== Stats & Results ====================

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.GetStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, stats)
}

func (h *Handlers) handleGetResults(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		respondError(w, err)
		return
	}

	results, err := h.Stats.RecentResults(r.Context(), limit)
	if err != nil {
		respondError(w, err)
		return
	}

	// Ensure we return an empty array, not null
	if results == nil {
		results = []models.TournamentResult{}
	}
	respondOK(w, ResultsResponse{Results: results})
}

// ==================== Settings ====================

func (h *Handlers) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	baseURL, err := h.Settings.GetBaseURL(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, SettingsResponse{BaseURL: baseURL})
}

func (h *Handlers) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.Settings.SetBaseURL(r.Context(), req.BaseURL); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, "Settings updated")
}

// handleRefreshGenres drops the cached genre list
func (h *Handlers) handleRefreshGenres(w http.ResponseWriter, r *http.Request) {
	h.Genre.Invalidate()
	respondSuccess(w, "Genre cache cleared")
}

// ==================== Database Management ====================

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Settings.ResetTables(r.Context(), req.Tables)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ResetResponse{Message: result.Message, Tables: result.Tables})
}
