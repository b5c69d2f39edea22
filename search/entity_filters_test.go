package search

import (
	"encoding/json"
	"testing"

	"lookout/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shouldClauses(t *testing.T, f Fragment) []Fragment {
	t.Helper()
	b, ok := f["bool"].(Fragment)
	require.True(t, ok, "fragment is not a bool query: %v", f)
	clauses, ok := b["should"].([]Fragment)
	require.True(t, ok, "bool query has no should clauses: %v", f)
	return clauses
}

func TestCompose_EmptySelection(t *testing.T) {
	fragments := Compose(Selection{})
	assert.NotNil(t, fragments)
	assert.Empty(t, fragments)

	data, err := json.Marshal(fragments)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestCompose_OneGroupPerNonEmptySet(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want int
	}{
		{"criticality only", Selection{Criticalities: []core.Criticality{core.CriticalityHigh}}, 1},
		{"source only", Selection{Sources: []core.EntitySource{core.EntitySourceEvents}}, 1},
		{"severity only", Selection{Severities: []core.RiskSeverity{core.RiskSeverityLow}}, 1},
		{
			"all three",
			Selection{
				Criticalities: []core.Criticality{core.CriticalityHigh, core.CriticalityLow},
				Sources:       []core.EntitySource{core.EntitySourceEvents, core.EntitySourceCSVUpload},
				Severities:    []core.RiskSeverity{core.RiskSeverityCritical, core.RiskSeverityHigh},
			},
			3,
		},
		{
			"global query only",
			Selection{GlobalQuery: Term("host.name", "web-1")},
			1,
		},
		{
			"duplicates collapse into one group",
			Selection{Criticalities: []core.Criticality{core.CriticalityHigh, core.CriticalityHigh}},
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Compose(tt.sel), tt.want)
		})
	}
}

func TestCompose_OrderIndependent(t *testing.T) {
	a := Compose(Selection{
		Criticalities: []core.Criticality{core.CriticalityHigh, core.CriticalityUnassigned, core.CriticalityLow},
		Sources:       []core.EntitySource{core.EntitySourceEvents, core.EntitySourceCSVUpload},
		Severities:    []core.RiskSeverity{core.RiskSeverityUnknown, core.RiskSeverityCritical},
		EntityTypes:   []core.EntityType{core.EntityTypeUser, core.EntityTypeHost},
	})
	b := Compose(Selection{
		Criticalities: []core.Criticality{core.CriticalityLow, core.CriticalityHigh, core.CriticalityUnassigned, core.CriticalityLow},
		Sources:       []core.EntitySource{core.EntitySourceCSVUpload, core.EntitySourceEvents},
		Severities:    []core.RiskSeverity{core.RiskSeverityCritical, core.RiskSeverityUnknown},
		EntityTypes:   []core.EntityType{core.EntityTypeHost, core.EntityTypeUser},
	})
	assert.Equal(t, a, b)
}

func TestCompose_Criticality(t *testing.T) {
	fragments := Compose(Selection{
		Criticalities: []core.Criticality{core.CriticalityUnassigned, core.CriticalityExtreme},
	})
	require.Len(t, fragments, 1)

	clauses := shouldClauses(t, fragments[0])
	require.Len(t, clauses, 2)
	assert.Equal(t, Term(AssetCriticalityField, "extreme_impact"), clauses[0])
	assert.Equal(t, MustNot(Exists(AssetCriticalityField)), clauses[1])
}

func TestCompose_Sources(t *testing.T) {
	fragments := Compose(Selection{
		Sources: []core.EntitySource{core.EntitySourceEvents, core.EntitySourceCSVUpload},
	})
	require.Len(t, fragments, 1)

	clauses := shouldClauses(t, fragments[0])
	require.Len(t, clauses, 2)
	assert.Equal(t, Term(AssetSourceField, "csv"), clauses[0])
	assert.Equal(t, Wildcard(EntitySourceField, "logs-*"), clauses[1])
}

func TestCompose_Severity(t *testing.T) {
	fragments := Compose(Selection{
		Severities:  []core.RiskSeverity{core.RiskSeverityHigh, core.RiskSeverityUnknown},
		EntityTypes: []core.EntityType{core.EntityTypeHost},
	})
	require.Len(t, fragments, 1)

	clauses := shouldClauses(t, fragments[0])
	require.Len(t, clauses, 2)
	assert.Equal(t, Terms("host.risk.calculated_level", []string{"High", "Unknown"}), clauses[0])
	assert.Equal(t, MustNot(Exists("host.risk.calculated_level")), clauses[1])
}

func TestCompose_SeverityDefaultsToAllEntityTypes(t *testing.T) {
	fragments := Compose(Selection{Severities: []core.RiskSeverity{core.RiskSeverityLow}})
	require.Len(t, fragments, 1)

	clauses := shouldClauses(t, fragments[0])
	require.Len(t, clauses, len(core.EntityTypes))
	assert.Equal(t, Terms("host.risk.calculated_level", []string{"Low"}), clauses[0])
	assert.Equal(t, Terms("service.risk.calculated_level", []string{"Low"}), clauses[1])
	assert.Equal(t, Terms("user.risk.calculated_level", []string{"Low"}), clauses[2])
}

func TestCompose_GlobalQueryLast(t *testing.T) {
	global := Fragment{"query_string": Fragment{"query": "host.name:web-*"}}
	fragments := Compose(Selection{
		Criticalities: []core.Criticality{core.CriticalityMedium},
		GlobalQuery:   global,
	})
	require.Len(t, fragments, 2)
	assert.Equal(t, global, fragments[1])
}

func TestFilterQuery(t *testing.T) {
	assert.Equal(t, Fragment{"match_all": Fragment{}}, FilterQuery(nil))

	f := FilterQuery([]Fragment{Term("a", "b")})
	assert.Equal(t, Fragment{"bool": Fragment{"filter": []Fragment{Term("a", "b")}}}, f)
}
