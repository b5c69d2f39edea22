package api

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"lookout/metrics"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// handle registers h for path and method. OPTIONS is accepted too so that
// preflight requests reach corsMiddleware.
func (a *API) handle(path string, h http.HandlerFunc, method string) {
	a.router.HandleFunc(path, h).Methods(method, http.MethodOptions)
}

// rateLimitMiddleware provides rate limiting per IP
func (a *API) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limits := a.config.API.RateLimit
		ip := clientIP(r)
		if limits.RequestsPerSecond <= 0 || slices.Contains(limits.ExemptIPs, ip) {
			next.ServeHTTP(w, r)
			return
		}

		a.rateLimitersMu.Lock()
		entry, exists := a.rateLimiters[ip]
		if !exists {
			entry = &rateLimiterEntry{
				limiter:  rate.NewLimiter(rate.Limit(limits.RequestsPerSecond), limits.Burst),
				lastSeen: time.Now(),
			}
			a.rateLimiters[ip] = entry
		} else {
			entry.lastSeen = time.Now()
		}
		// Capture limiter reference while holding lock to prevent race with cleanup
		limiter := entry.limiter
		a.rateLimitersMu.Unlock()

		if !limiter.Allow() {
			a.logger.Warnw("Rate limit exceeded", "ip", ip, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
			respondJSON(w, http.StatusTooManyRequests, errorBody{Message: "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// cleanupRateLimiters periodically removes inactive rate limiters and auth failures
func (a *API) cleanupRateLimiters() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.pruneClientState(time.Now(), 1*time.Hour)
		case <-a.stopCh:
			return
		}
	}
}

// pruneClientState drops per-IP state idle for longer than maxIdle
func (a *API) pruneClientState(now time.Time, maxIdle time.Duration) {
	a.rateLimitersMu.Lock()
	for ip, entry := range a.rateLimiters {
		if now.Sub(entry.lastSeen) > maxIdle {
			delete(a.rateLimiters, ip)
		}
	}
	a.rateLimitersMu.Unlock()

	a.authFailuresMu.Lock()
	for ip, entry := range a.authFailures {
		if now.Sub(entry.lastFail) > maxIdle {
			delete(a.authFailures, ip)
		}
	}
	a.authFailuresMu.Unlock()
}

// corsMiddleware adds CORS headers
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(a.config.API.AllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if a.config.API.TLS {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware records request counts and latency by route template
func (a *API) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		routeName := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				routeName = tpl
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, routeName, strconv.Itoa(wrapped.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, routeName).Observe(time.Since(start).Seconds())
	})
}
