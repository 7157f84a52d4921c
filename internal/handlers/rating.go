package handlers

import (
	"net/http"

	"github.com/abrezinsky/moviecup/internal/models"
)

func (h *Handlers) handleGetRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.Rating.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	if ratings == nil {
		ratings = []models.RatingRecord{}
	}
	respondOK(w, ratings)
}

// handleRateWinner stores a 1-5 star rating for a finished tournament's winner
func (h *Handlers) handleRateWinner(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req RatingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	record, err := h.Rating.RateWinner(r.Context(), id, req.Rating)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, record)
}
