package api

import (
	"encoding/json"
	"net"
	"net/http"
)

// errorBody is the JSON envelope of every error response
type errorBody struct {
	Message string `json:"message"`
}

// respondJSON writes v as a JSON response with the given status
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure can only truncate the body
	_ = json.NewEncoder(w).Encode(v)
}

// clientIP returns the IP of the direct peer
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
