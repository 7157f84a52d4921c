package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	CookieName    = "moviecup_session"
	SessionExpiry = 12 * time.Hour

	// Login attempts allowed per client address before throttling
	LoginBurst  = 5
	LoginWindow = time.Minute
)

// Movie-themed words for password generation
var movieWords = []string{
	"popcorn", "premiere", "director", "matinee", "sequel",
	"trailer", "reel", "studio", "encore", "cinema",
	"montage", "oscar", "festival", "ticket", "screen",
	"cameo", "finale", "spotlight", "usher", "curtain",
}

// Auth handles admin authentication
type Auth struct {
	password string
	sessions map[string]time.Time
	mu       sync.RWMutex
	now      func() time.Time

	limiterMu sync.Mutex
	limiters  map[string]*loginLimiter
}

// loginLimiter throttles login attempts from one address
type loginLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// New creates a new Auth instance with the given password
func New(password string) *Auth {
	return &Auth{
		password: password,
		sessions: make(map[string]time.Time),
		now:      time.Now,
		limiters: make(map[string]*loginLimiter),
	}
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		words[i] = movieWords[randomInt(len(movieWords))]
	}
	return strings.Join(words, "-")
}

// Login validates the password and returns a session token if valid
func (a *Auth) Login(password string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", false
	}

	token := generateToken()
	a.mu.Lock()
	a.sessions[token] = a.now().Add(SessionExpiry)
	a.mu.Unlock()

	return token, true
}

// AllowLogin reports whether addr may attempt another login
func (a *Auth) AllowLogin(addr string) bool {
	a.limiterMu.Lock()
	entry, ok := a.limiters[addr]
	if !ok {
		entry = &loginLimiter{limiter: rate.NewLimiter(rate.Every(LoginWindow/LoginBurst), LoginBurst)}
		a.limiters[addr] = entry
	}
	entry.lastAccess = a.now()
	limiter := entry.limiter
	a.limiterMu.Unlock()

	return limiter.Allow()
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// ValidateSession checks if a session token is valid
func (a *Auth) ValidateSession(token string) bool {
	a.mu.RLock()
	expiry, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return false
	}

	if a.now().After(expiry) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return false
	}

	return true
}

// Sweep drops expired sessions and login limiters idle for over an hour.
// It returns the number of sessions removed.
func (a *Auth) Sweep() int {
	now := a.now()

	a.mu.Lock()
	removed := 0
	for token, expiry := range a.sessions {
		if now.After(expiry) {
			delete(a.sessions, token)
			removed++
		}
	}
	a.mu.Unlock()

	threshold := now.Add(-time.Hour)
	a.limiterMu.Lock()
	for addr, entry := range a.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(a.limiters, addr)
		}
	}
	a.limiterMu.Unlock()

	return removed
}

// GetSessionFromRequest extracts and validates the session from a request
func (a *Auth) GetSessionFromRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return a.ValidateSession(cookie.Value)
}

// RequireAuthAPI middleware for API endpoints (returns 401)
func (a *Auth) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.GetSessionFromRequest(r) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateToken creates a random session token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// randomInt returns a uniformly random int in [0, max)
func randomInt(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}
