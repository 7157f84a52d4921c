package handlers

import "net/http"

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health == nil {
		respondOK(w, HealthResponse{Status: "ok"})
		return
	}
	if err := h.Health.Ping(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: err.Error()})
		return
	}
	respondOK(w, HealthResponse{Status: "ok", Database: "ok"})
}
