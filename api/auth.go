package api

import (
	"net/http"
	"strings"
	"time"

	"lookout/config"

	"golang.org/x/crypto/bcrypt"
)

// Failed login lockout
const (
	maxAuthFailures   = 5
	authLockoutWindow = 10 * time.Minute
	basicAuthRealm    = `Basic realm="lookout"`
	anonymousUsername = "anonymous"
)

// authFailureEntry counts failed authentication attempts from one IP
type authFailureEntry struct {
	count    int
	lastFail time.Time
}

// unauthenticatedPaths are served without credentials
var unauthenticatedPaths = map[string]bool{
	"/health": true,
}

// authMiddleware authenticates with the configured mode
func (a *API) authMiddleware(next http.Handler) http.Handler {
	var inner http.Handler
	switch a.config.Auth.Mode {
	case config.AuthModeJWT:
		inner = a.jwtAuthMiddleware(next)
	default:
		inner = a.basicAuthMiddleware(next)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unauthenticatedPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), anonymousUsername)))
			return
		}
		inner.ServeHTTP(w, r)
	})
}

// basicAuthMiddleware provides basic authentication with rate limiting for failed attempts
func (a *API) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if a.lockedOut(ip) {
			a.logger.Warnw("Too many failed auth attempts", "ip", ip)
			respondJSON(w, http.StatusTooManyRequests, errorBody{Message: "Too many requests"})
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok || username != a.config.Auth.Username ||
			bcrypt.CompareHashAndPassword([]byte(a.config.Auth.HashedPassword), []byte(password)) != nil {
			a.recordAuthFailure(ip)
			a.logger.Warnw("Failed authentication attempt", "ip", ip, "request_id", requestIDFrom(r.Context()))
			w.Header().Set("WWW-Authenticate", basicAuthRealm)
			respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Unauthorized"})
			return
		}

		a.clearAuthFailures(ip)
		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), username)))
	})
}

// jwtAuthMiddleware provides bearer token authentication
func (a *API) jwtAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if a.lockedOut(ip) {
			a.logger.Warnw("Too many failed auth attempts", "ip", ip)
			respondJSON(w, http.StatusTooManyRequests, errorBody{Message: "Too many requests"})
			return
		}

		authHeader := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || tokenString == "" {
			respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Authorization required"})
			return
		}

		claims, err := validateJWT(tokenString, a.config)
		if err != nil {
			a.recordAuthFailure(ip)
			a.logger.Warnw("Invalid JWT token", "ip", ip, "error", err, "request_id", requestIDFrom(r.Context()))
			respondJSON(w, http.StatusUnauthorized, errorBody{Message: "Invalid token"})
			return
		}

		a.clearAuthFailures(ip)
		next.ServeHTTP(w, r.WithContext(WithUsername(r.Context(), claims.Username)))
	})
}

func (a *API) lockedOut(ip string) bool {
	a.authFailuresMu.Lock()
	defer a.authFailuresMu.Unlock()
	entry, exists := a.authFailures[ip]
	return exists && entry.count >= maxAuthFailures && time.Since(entry.lastFail) < authLockoutWindow
}

func (a *API) recordAuthFailure(ip string) {
	a.authFailuresMu.Lock()
	defer a.authFailuresMu.Unlock()
	if entry, exists := a.authFailures[ip]; exists {
		entry.count++
		entry.lastFail = time.Now()
		return
	}
	a.authFailures[ip] = &authFailureEntry{count: 1, lastFail: time.Now()}
}

func (a *API) clearAuthFailures(ip string) {
	a.authFailuresMu.Lock()
	delete(a.authFailures, ip)
	a.authFailuresMu.Unlock()
}
