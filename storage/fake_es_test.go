package storage

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"lookout/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordedRequest is a request seen by the fake cluster
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// JSON decodes the recorded body
func (r recordedRequest) JSON(t *testing.T) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(r.Body, &body))
	return body
}

// fakeES is a minimal Elasticsearch stand-in. Routes are keyed by path; the
// handler decides on the method.
type fakeES struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []recordedRequest
}

func newFakeES(t *testing.T) *fakeES {
	t.Helper()
	f := &fakeES{t: t, routes: make(map[string]http.HandlerFunc)}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeES) serve(w http.ResponseWriter, r *http.Request) {
	// The client refuses to talk to anything that does not identify as Elasticsearch
	w.Header().Set("X-Elastic-Product", "Elasticsearch")

	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   body,
	})
	handler, ok := f.routes[r.URL.Path]
	f.mu.Unlock()

	if ok {
		handler(w, r)
		return
	}
	if r.URL.Path == "/" {
		writeJSON(w, http.StatusOK, map[string]any{"version": map[string]any{"number": "8.15.0"}})
		return
	}
	writeJSON(w, http.StatusNotFound, esError("index_not_found_exception", "no such index"))
}

func (f *fakeES) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = h
}

// requestsTo returns the recorded requests for path
func (f *fakeES) requestsTo(path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// client connects a storage client to the fake cluster
func (f *fakeES) client() *Elasticsearch {
	f.t.Helper()
	cfg := &config.Config{}
	cfg.Elasticsearch.Addresses = []string{f.server.URL}
	cfg.Elasticsearch.MaxRetries = 0

	es, err := NewElasticsearch(cfg, zap.NewNop().Sugar())
	require.NoError(f.t, err)
	return es
}

// withLicense answers GET _license with the given type and status
func (f *fakeES) withLicense(licenseType, status string) {
	f.handle("/_license", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"license": map[string]any{"uid": "test", "type": licenseType, "status": status},
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func esError(errType, reason string) map[string]any {
	return map[string]any{
		"error":  map[string]any{"type": errType, "reason": reason},
		"status": 400,
	}
}
