package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"lookout/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRuleParams() map[string]any {
	return map[string]any{
		"index":               []string{"logs-*"},
		"timeField":           "@timestamp",
		"timeWindowSize":      5,
		"timeWindowUnit":      "m",
		"thresholdComparator": ">",
		"threshold":           []float64{100},
	}
}

func TestValidateRule(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodPost, ruleBasePath+"/_validate", validRuleParams())
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got validateRuleResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, core.AggTypeCount, got.Params.AggType, "defaults are echoed")
	assert.Equal(t, core.GroupByAll, got.Params.GroupBy)
	assert.Equal(t, []float64{100}, got.Params.Threshold)
}

func TestValidateRule_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p map[string]any)
		want   []string
	}{
		{
			name:   "between needs two thresholds",
			mutate: func(p map[string]any) { p["thresholdComparator"] = "between" },
			want:   []string{"[threshold]: must have 2 elements"},
		},
		{
			name:   "unknown comparator",
			mutate: func(p map[string]any) { p["thresholdComparator"] = "~=" },
			want:   []string{"[thresholdComparator]: invalid thresholdComparator specified: ~="},
		},
		{
			name: "avg without field and top without term field",
			mutate: func(p map[string]any) {
				p["aggType"] = "avg"
				p["groupBy"] = "top"
				p["termSize"] = 5
			},
			want: []string{"[aggField]", "[termField]"},
		},
		{
			name:   "missing threshold is a schema error",
			mutate: func(p map[string]any) { delete(p, "threshold") },
			want:   []string{"threshold is required"},
		},
		{
			name:   "bad time unit",
			mutate: func(p map[string]any) { p["timeWindowUnit"] = "w" },
			want:   []string{"body.timeWindowUnit"},
		},
		{
			name:   "empty index list",
			mutate: func(p map[string]any) { p["index"] = []string{} },
			want:   []string{"body.index"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestServices()
			a := setupTestAPI(t, svc, testConfig())

			params := validRuleParams()
			tt.mutate(params)
			rr := do(t, a, http.MethodPost, ruleBasePath+"/_validate", params)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			msg := errorMessage(t, rr)
			for _, want := range tt.want {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func TestRuleFields(t *testing.T) {
	svc := newTestServices()
	svc.fields.fields = []core.Field{
		{Name: "host.name", Type: "keyword", NormalizedType: "string", Aggregatable: true, Searchable: true},
	}
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodPost, ruleBasePath+"/_fields", map[string]any{"indexPatterns": []string{"logs-*", "metrics-*"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.Equal(t, []string{"logs-*", "metrics-*"}, svc.fields.patterns)
	assert.JSONEq(t, `{"fields":[{"name":"host.name","type":"keyword","normalizedType":"string","aggregatable":true,"searchable":true}]}`, rr.Body.String())
}

func TestRuleFields_RequiresPatterns(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodPost, ruleBasePath+"/_fields", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errorMessage(t, rr), "indexPatterns is required")
	assert.Nil(t, svc.fields.patterns)
}

func TestRuleIndices(t *testing.T) {
	svc := newTestServices()
	svc.indices.indices = []string{"logs-a", "logs-b"}
	a := setupTestAPI(t, svc, testConfig())

	rr := do(t, a, http.MethodPost, ruleBasePath+"/_indices", map[string]any{"pattern": "logs-*"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"indices":["logs-a","logs-b"]}`, rr.Body.String())
}

func TestTimeSeriesQuery(t *testing.T) {
	svc := newTestServices()
	a := setupTestAPI(t, svc, testConfig())

	body := map[string]any{
		"index":          []string{"logs-*"},
		"timeField":      "@timestamp",
		"aggType":        "max",
		"aggField":       "system.cpu.total.pct",
		"timeWindowSize": 5,
		"timeWindowUnit": "m",
		"dateStart":      "2024-05-01T10:00:00Z",
		"dateEnd":        "2024-05-01T11:00:00Z",
		"interval":       "15m",
	}
	rr := do(t, a, http.MethodPost, ruleBasePath+"/_time_series_query", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	assert.JSONEq(t, `{"results":[]}`, rr.Body.String())
	assert.Equal(t, core.AggTypeMax, svc.timeSeries.last.AggType)
	assert.Equal(t, core.GroupByAll, svc.timeSeries.last.GroupBy)
	assert.Equal(t, "15m", svc.timeSeries.last.Interval)
}

func TestTimeSeriesQuery_Errors(t *testing.T) {
	t.Run("bad date is rejected at decode", func(t *testing.T) {
		svc := newTestServices()
		a := setupTestAPI(t, svc, testConfig())

		params := validRuleParams()
		params["dateStart"] = "last tuesday"
		rr := do(t, a, http.MethodPost, ruleBasePath+"/_time_series_query", params)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, errorMessage(t, rr), "body.dateStart")
	})

	t.Run("service bad request is passed through", func(t *testing.T) {
		svc := newTestServices()
		svc.timeSeries.err = core.BadRequest("intervals exceed the maximum of 1000", nil)
		a := setupTestAPI(t, svc, testConfig())

		rr := do(t, a, http.MethodPost, ruleBasePath+"/_time_series_query", validRuleParams())
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "intervals exceed the maximum of 1000", errorMessage(t, rr))
	})
}
