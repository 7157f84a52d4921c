package handlers

import (
	"net"
	"net/http"

	"github.com/abrezinsky/moviecup/internal/auth"
)

// handleLogin checks the admin password and starts a cookie session
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Auth.AllowLogin(clientAddr(r)) {
		respondError(w, NewAPIError(http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many login attempts, try again later"))
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	token, ok := h.Auth.Login(req.Password)
	if !ok {
		respondError(w, Unauthorized("Invalid password"))
		return
	}

	auth.SetSessionCookie(w, token)
	respondSuccess(w, "Logged in")
}

// handleLogout clears the session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Get and invalidate the session
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}

// clientAddr returns the request's remote host without the port
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
