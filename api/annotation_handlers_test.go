package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"lookout/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCreateAnnotation_Success(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodPost, annotationBasePath, validAnnotation())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got core.StoredAnnotation
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "new-id", got.ID)
	assert.Equal(t, "deployed v1.2.3", got.Source.Message)
	assert.Equal(t, "deployment", svc.annotations.lastCreate.Annotation.Type)
	require.NotNil(t, svc.annotations.lastCreate.Service)
	assert.Equal(t, "checkout", svc.annotations.lastCreate.Service.Name)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestCreateAnnotation_MalformedRequestsNeverReachHandler(t *testing.T) {
	missingMessage := validAnnotation()
	delete(missingMessage, "message")

	badTimestamp := validAnnotation()
	badTimestamp["@timestamp"] = "yesterday"

	missingType := validAnnotation()
	missingType["annotation"] = map[string]any{"title": "no type"}

	badLineStyle := validAnnotation()
	badLineStyle["annotation"] = map[string]any{
		"type":  "deployment",
		"style": map[string]any{"line": map[string]any{"style": "wavy"}},
	}

	invertedRange := validAnnotation()
	invertedRange["event"] = map[string]any{
		"start": "2024-05-01T12:00:00Z",
		"end":   "2024-05-01T11:00:00Z",
	}

	tests := []struct {
		name        string
		body        any
		wantMessage string
	}{
		{name: "invalid JSON", body: `{"message": `, wantMessage: "body: invalid JSON"},
		{name: "empty body", body: nil, wantMessage: "body is required"},
		{name: "missing message", body: missingMessage, wantMessage: "message is required"},
		{name: "bad timestamp", body: badTimestamp, wantMessage: "@timestamp"},
		{name: "missing annotation type", body: missingType, wantMessage: "type is required"},
		{name: "unknown line style", body: badLineStyle, wantMessage: "style"},
		{name: "end before start", body: invertedRange, wantMessage: "event.end must not be before event.start"},
		{name: "wrong body type", body: `["not", "an", "object"]`, wantMessage: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServices()
			a := setupTestAPI(t, svc, testConfig())

			rr := do(t, a, http.MethodPost, annotationBasePath, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, errorMessage(t, rr), tt.wantMessage)
			assert.Zero(t, svc.annotations.calls.Load(), "handler must not be invoked")
		})
	}
}

func TestCreateAnnotation_JoinsEveryDecodeError(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodPost, annotationBasePath, map[string]any{"tags": []string{"x"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	msg := errorMessage(t, rr)
	assert.Contains(t, msg, "@timestamp is required")
	assert.Contains(t, msg, "message is required")
	assert.Contains(t, msg, "|")
}

func TestAnnotationRoutes_HandlerErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found keeps its message",
			err:         core.NotFound("Annotation with id abc not found", nil),
			wantStatus:  http.StatusNotFound,
			wantMessage: "Annotation with id abc not found",
		},
		{
			name:        "forbidden",
			err:         core.Forbidden("Annotations require at least a gold license or a trial license.", nil),
			wantStatus:  http.StatusForbidden,
			wantMessage: "Annotations require at least a gold license or a trial license.",
		},
		{
			name:        "plain error maps to 500 with the generic message",
			err:         errors.New("dial tcp 10.0.0.5:9200: connection refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: core.DefaultErrorMessage,
		},
		{
			name:        "wrapped status error",
			err:         errors.Join(errors.New("context"), core.Conflict("version conflict", nil)),
			wantStatus:  http.StatusConflict,
			wantMessage: "version conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServices()
			svc.annotations.err = tt.err
			a := setupTestAPI(t, svc, testConfig())

			rr := do(t, a, http.MethodGet, annotationBasePath+"/abc", nil)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantMessage, errorMessage(t, rr))
			assert.Equal(t, "abc", svc.annotations.lastID)
		})
	}
}

func TestUpdateAnnotation(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	body := validAnnotation()
	body["message"] = "rolled back"
	rr := do(t, a, http.MethodPut, annotationBasePath+"/ann-1", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, "ann-1", svc.annotations.lastUpdate.id)
	assert.Equal(t, "rolled back", svc.annotations.lastUpdate.ann.Message)
}

func TestDeleteAnnotation(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodDelete, annotationBasePath+"/ann-2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":1}`, rr.Body.String())
	assert.Equal(t, "ann-2", svc.annotations.lastID)
}

func TestFindAnnotations_QueryCoercion(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodGet, annotationBasePath+"/find?size=25&serviceName=checkout&sloId=slo-1&start=now-1h", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := svc.annotations.lastFind
	assert.Equal(t, 25, got.Size)
	assert.Equal(t, "checkout", got.ServiceName)
	assert.Equal(t, "slo-1", got.SLOID)
	assert.Equal(t, "now-1h", got.Start)
	assert.Equal(t, core.DefaultFindTo, got.End, "defaults are applied before the handler runs")
	assert.Empty(t, svc.annotations.lastID, "find must not be routed to get by id")
	assert.JSONEq(t, `{"items":[],"total":0}`, rr.Body.String())
}

func TestFindAnnotations_RejectsBadQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "size not a number", target: "/find?size=lots"},
		{name: "size too large", target: "/find?size=20000"},
		{name: "size zero", target: "/find?size=0"},
		{name: "size fractional", target: "/find?size=2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServices()
			a := setupTestAPI(t, svc, testConfig())

			rr := do(t, a, http.MethodGet, annotationBasePath+tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, errorMessage(t, rr), "query.size")
			assert.Zero(t, svc.annotations.calls.Load())
		})
	}
}

func TestAnnotationPermissions(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodGet, annotationBasePath+"/permissions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"index":"observability-annotations","hasGoldLicense":true,"read":true,"write":true}`, rr.Body.String())
	assert.Empty(t, svc.annotations.lastID)
}

func TestAnnotationRoutes_DisabledWithoutService(t *testing.T) {
	svc := newTestServices()
	services := svc.services()
	services.Annotations = nil
	a := NewAPI(services, testConfig(), zaptest.NewLogger(t).Sugar())
	t.Cleanup(func() { _ = a.Stop(t.Context()) })

	rr := do(t, a, http.MethodGet, annotationBasePath+"/permissions", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
