package search

import (
	"slices"
	"sort"

	"lookout/core"
)

// Entity store field names
const (
	AssetCriticalityField = "asset.criticality"
	AssetSourceField      = "asset.source"
	EntitySourceField     = "entity.source"
	RiskLevelSuffix       = ".risk.calculated_level"
)

// csvAssetSource is the asset.source value of records imported from a CSV upload
const csvAssetSource = "csv"

// eventsSourcePattern matches entities extracted from log data streams
const eventsSourcePattern = "logs-*"

// Selection is the facet state of the entity list
type Selection struct {
	Criticalities []core.Criticality
	Sources       []core.EntitySource
	Severities    []core.RiskSeverity
	// EntityTypes scopes the severity group; empty means every type
	EntityTypes []core.EntityType
	// GlobalQuery is appended unchanged when non-nil
	GlobalQuery Fragment
}

// Compose maps the selection to query-DSL fragments. Each non-empty set yields
// exactly one bool.should group, in the order criticality, source, severity,
// followed by the global query. Values are de-duplicated and sorted so the
// result does not depend on selection order.
func Compose(sel Selection) []Fragment {
	var fragments []Fragment

	if crit := uniqueSorted(sel.Criticalities); len(crit) > 0 {
		fragments = append(fragments, criticalityGroup(crit))
	}
	if sources := uniqueSorted(sel.Sources); len(sources) > 0 {
		fragments = append(fragments, sourceGroup(sources))
	}
	if sev := uniqueSorted(sel.Severities); len(sev) > 0 {
		types := uniqueSorted(sel.EntityTypes)
		if len(types) == 0 {
			types = uniqueSorted(core.EntityTypes)
		}
		fragments = append(fragments, severityGroup(sev, types))
	}
	if sel.GlobalQuery != nil {
		fragments = append(fragments, sel.GlobalQuery)
	}

	if fragments == nil {
		return []Fragment{}
	}
	return fragments
}

func criticalityGroup(levels []core.Criticality) Fragment {
	clauses := make([]Fragment, 0, len(levels))
	for _, level := range levels {
		if level == core.CriticalityUnassigned {
			clauses = append(clauses, MustNot(Exists(AssetCriticalityField)))
			continue
		}
		clauses = append(clauses, Term(AssetCriticalityField, string(level)))
	}
	return Should(clauses...)
}

func sourceGroup(sources []core.EntitySource) Fragment {
	clauses := make([]Fragment, 0, len(sources))
	for _, src := range sources {
		switch src {
		case core.EntitySourceCSVUpload:
			clauses = append(clauses, Term(AssetSourceField, csvAssetSource))
		case core.EntitySourceEvents:
			clauses = append(clauses, Wildcard(EntitySourceField, eventsSourcePattern))
		}
	}
	return Should(clauses...)
}

func severityGroup(severities []core.RiskSeverity, types []core.EntityType) Fragment {
	levels := make([]string, 0, len(severities))
	for _, sev := range severities {
		levels = append(levels, string(sev))
	}
	unknown := slices.Contains(severities, core.RiskSeverityUnknown)

	var clauses []Fragment
	for _, t := range types {
		field := string(t) + RiskLevelSuffix
		clauses = append(clauses, Terms(field, levels))
		if unknown {
			clauses = append(clauses, MustNot(Exists(field)))
		}
	}
	return Should(clauses...)
}

func uniqueSorted[T ~string](values []T) []T {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
