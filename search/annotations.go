package search

import (
	"lookout/core"
)

// Annotation document fields used in find queries
const (
	AnnotationTimestampField = "@timestamp"
	ServiceNameField         = "service.name"
	SLOIDField               = "slo.id"
	SLOInstanceIDField       = "slo.instanceId"
)

// BuildFindAnnotationsQuery builds the search body of an annotation find.
// An SLO filter also matches annotations attached to every SLO ("*").
func BuildFindAnnotationsQuery(params core.FindParams) (Fragment, error) {
	p := params.WithDefaults()

	filters := []Fragment{{
		"range": Fragment{
			AnnotationTimestampField: Fragment{
				"gte": p.Start,
				"lte": p.End,
			},
		},
	}}

	if p.ServiceName != "" {
		filters = append(filters, Term(ServiceNameField, p.ServiceName))
	}

	raw, err := ParseRawFilter(p.Filter)
	if err != nil {
		return nil, core.BadRequest(err.Error(), err)
	}
	if raw != nil {
		filters = append(filters, raw)
	}

	if p.SLOID != "" {
		filters = append(filters, ShouldMatchOne(
			Term(SLOIDField, p.SLOID),
			Term(SLOIDField, core.SLOWildcard),
		))
	}
	if p.SLOInstanceID != "" {
		filters = append(filters, ShouldMatchOne(
			Term(SLOInstanceIDField, p.SLOInstanceID),
			Term(SLOInstanceIDField, core.SLOWildcard),
		))
	}

	return Fragment{
		"size":             p.Size,
		"track_total_hits": true,
		"sort":             []Fragment{{AnnotationTimestampField: Fragment{"order": "desc"}}},
		"query":            Fragment{"bool": Fragment{"filter": filters}},
	}, nil
}

// BuildGetAnnotationQuery builds the search body that fetches one annotation by id
func BuildGetAnnotationQuery(id string) Fragment {
	return Fragment{
		"size":  1,
		"query": Fragment{"bool": Fragment{"filter": []Fragment{IDs(id)}}},
	}
}

// BuildDeleteAnnotationQuery builds the delete_by_query body for one annotation
func BuildDeleteAnnotationQuery(id string) Fragment {
	return Fragment{
		"query": Fragment{"term": Fragment{"_id": id}},
	}
}
