package handlers

import (
	"net/http"
)

// handleStartTournament builds a pool and opens a tournament over it
func (h *Handlers) handleStartTournament(w http.ResponseWriter, r *http.Request) {
	var req StartTournamentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	view, err := h.Tournament.Start(r.Context(), req.Genres, req.Size)
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, view)
}

func (h *Handlers) handleGetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	view, err := h.Tournament.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, view)
}

func (h *Handlers) handleAbandonTournament(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.Tournament.Abandon(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	respondDeleted(w)
}

// handleSelectWinner records the pick for the current match
func (h *Handlers) handleSelectWinner(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req SelectWinnerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.MovieID <= 0 {
		respondError(w, ValidationError("movie_id is required"))
		return
	}

	view, err := h.Tournament.Select(r.Context(), id, req.MovieID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, view)
}

func (h *Handlers) handleGetWinner(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	winner, err := h.Tournament.WinnerDetails(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, winner)
}

func (h *Handlers) handleGetShareURL(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	url, err := h.Tournament.ShareURL(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, ShareResponse{URL: url})
}

func (h *Handlers) handleGetShareQR(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Tournament.ShareQR(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// handleTournamentEvents subscribes a websocket client to one tournament
func (h *Handlers) handleTournamentEvents(w http.ResponseWriter, r *http.Request) {
	id, err := tournamentID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.Tournament.Get(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	h.Hub.ServeWs(w, r, id)
}
