package handlers

import (
	"net/http"

	"github.com/abrezinsky/moviecup/internal/models"
)

func (h *Handlers) handleGetGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Genre.ListGenres(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	// Ensure we return an empty array, not null
	if genres == nil {
		genres = []models.Genre{}
	}
	respondOK(w, genres)
}

func (h *Handlers) handleGetBracketSizes(w http.ResponseWriter, r *http.Request) {
	respondOK(w, BracketSizesResponse{Sizes: h.Tournament.BracketSizes()})
}
