package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"lookout/config"
	"lookout/core"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stubAnnotations records calls and returns canned results
type stubAnnotations struct {
	calls atomic.Int32

	lastCreate core.Annotation
	lastUpdate struct {
		id  string
		ann core.Annotation
	}
	lastID   string
	lastFind core.FindParams

	err error
}

func (s *stubAnnotations) Create(_ context.Context, ann core.Annotation) (*core.StoredAnnotation, error) {
	s.calls.Add(1)
	s.lastCreate = ann
	if s.err != nil {
		return nil, s.err
	}
	return &core.StoredAnnotation{ID: "new-id", Index: core.DefaultAnnotationIndex, Source: ann}, nil
}

func (s *stubAnnotations) Update(_ context.Context, id string, ann core.Annotation) (*core.StoredAnnotation, error) {
	s.calls.Add(1)
	s.lastUpdate.id = id
	s.lastUpdate.ann = ann
	if s.err != nil {
		return nil, s.err
	}
	return &core.StoredAnnotation{ID: id, Index: core.DefaultAnnotationIndex, Source: ann}, nil
}

func (s *stubAnnotations) GetByID(_ context.Context, id string) (*core.StoredAnnotation, error) {
	s.calls.Add(1)
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return &core.StoredAnnotation{ID: id, Index: core.DefaultAnnotationIndex}, nil
}

func (s *stubAnnotations) Delete(_ context.Context, id string) (map[string]any, error) {
	s.calls.Add(1)
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return map[string]any{"deleted": 1}, nil
}

func (s *stubAnnotations) Find(_ context.Context, params core.FindParams) (*core.FindResult, error) {
	s.calls.Add(1)
	s.lastFind = params
	if s.err != nil {
		return nil, s.err
	}
	return &core.FindResult{Items: []core.FoundAnnotation{}, Total: 0}, nil
}

func (s *stubAnnotations) Permissions(_ context.Context) (*core.AnnotationPermissions, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &core.AnnotationPermissions{Index: core.DefaultAnnotationIndex, HasGoldLicense: true, Read: true, Write: true}, nil
}

type stubFields struct {
	patterns []string
	fields   []core.Field
}

func (s *stubFields) Fields(_ context.Context, patterns []string) []core.Field {
	s.patterns = patterns
	return s.fields
}

type stubIndices struct {
	indices []string
}

func (s *stubIndices) Indices(_ context.Context, _ string) []string {
	return s.indices
}

type stubTimeSeries struct {
	last core.TimeSeriesParams
	err  error
}

func (s *stubTimeSeries) Query(_ context.Context, params core.TimeSeriesParams) (*core.TimeSeriesResult, error) {
	s.last = params
	if s.err != nil {
		return nil, s.err
	}
	return &core.TimeSeriesResult{Results: []core.TimeSeriesGroup{}}, nil
}

type stubEntities struct {
	calls atomic.Int32
	last  core.EntityListParams
}

func (s *stubEntities) List(_ context.Context, params core.EntityListParams) (*core.EntityListResult, error) {
	s.calls.Add(1)
	s.last = params
	return &core.EntityListResult{Records: []map[string]any{}, Page: params.Page, PerPage: params.PerPage}, nil
}

type stubPinger struct {
	err error
}

func (s *stubPinger) Ping(context.Context) error { return s.err }

var errBackendDown = errors.New("connection refused")

// testServices returns stubs for every service
type testServices struct {
	annotations *stubAnnotations
	fields      *stubFields
	indices     *stubIndices
	timeSeries  *stubTimeSeries
	entities    *stubEntities
	health      *stubPinger
}

func newTestServices() *testServices {
	return &testServices{
		annotations: &stubAnnotations{},
		fields:      &stubFields{},
		indices:     &stubIndices{},
		timeSeries:  &stubTimeSeries{},
		entities:    &stubEntities{},
		health:      &stubPinger{},
	}
}

func (s *testServices) services() Services {
	return Services{
		Annotations: s.annotations,
		Fields:      s.fields,
		Indices:     s.indices,
		TimeSeries:  s.timeSeries,
		Entities:    s.entities,
		Health:      s.health,
	}
}

// testConfig returns a config with auth off and a generous rate limit
func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 5601
	cfg.API.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.API.MaxBodyBytes = 1 << 20
	cfg.API.RateLimit.RequestsPerSecond = 100000
	cfg.API.RateLimit.Burst = 100000
	cfg.Auth.Mode = config.AuthModeBasic
	cfg.Auth.JWTIssuer = "lookout"
	return cfg
}

// setupTestAPI creates an API over the given stubs and stops it on cleanup
func setupTestAPI(t *testing.T, svc *testServices, cfg *config.Config) *API {
	t.Helper()
	a := NewAPI(svc.services(), cfg, zaptest.NewLogger(t).Sugar())
	t.Cleanup(func() {
		_ = a.Stop(context.Background())
	})
	return a
}

// do sends a request through the router and returns the recorder
func do(t *testing.T, a *API, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)
	return rr
}

// errorMessage decodes the {message} envelope
func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body.Message
}

// validAnnotation is a request body that passes decoding
func validAnnotation() map[string]any {
	return map[string]any{
		"@timestamp": "2024-05-01T10:00:00Z",
		"message":    "deployed v1.2.3",
		"annotation": map[string]any{"type": "deployment"},
		"service":    map[string]any{"name": "checkout"},
	}
}
