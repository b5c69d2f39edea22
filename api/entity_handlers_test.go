package api

import (
	"net/http"
	"testing"

	"lookout/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityListPath = "/api/entity_store/entities/list"

func TestListEntities_ArrayQueryParameters(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodGet, entityListPath+
		"?entityTypes=host,user&criticality=high_impact&criticality=unassigned&severity=Critical&page=2&per_page=25&sortOrder=asc", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got := svc.entities.last
	assert.Equal(t, []core.EntityType{core.EntityTypeHost, core.EntityTypeUser}, got.EntityTypes)
	assert.Equal(t, []core.Criticality{"high_impact", "unassigned"}, got.Criticality)
	assert.Equal(t, []core.RiskSeverity{"Critical"}, got.Severity)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 25, got.PerPage)
	assert.Equal(t, core.SortAsc, got.SortOrder)
	assert.JSONEq(t, `{"records":[],"total":0,"page":2,"per_page":25}`, rr.Body.String())
}

func TestListEntities_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "entity types required", query: "", want: "entityTypes is required"},
		{name: "unknown entity type", query: "?entityTypes=container", want: "query.entityTypes.0"},
		{name: "unknown criticality", query: "?entityTypes=host&criticality=very_high", want: "query.criticality.0"},
		{name: "per page too large", query: "?entityTypes=host&per_page=20000", want: "query.per_page"},
		{name: "bad namespace", query: "?entityTypes=host&namespace=Prod!", want: "query.namespace"},
		{name: "bad sort order", query: "?entityTypes=host&sortOrder=up", want: "query.sortOrder"},
		{name: "page past the result window", query: "?entityTypes=host&page=1001&per_page=10", want: "reaches past the first 10000 entities"},
		{name: "page above the schema maximum", query: "?entityTypes=host&page=922337203685477582", want: "query.page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServices()
			a := setupTestAPI(t, svc, testConfig())

			rr := do(t, a, http.MethodGet, entityListPath+tt.query, nil)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, errorMessage(t, rr), tt.want)
			assert.Zero(t, svc.entities.calls.Load())
		})
	}
}
