package search

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"lookout/core"
)

// Aggregation names used by time series queries
const (
	DateAggName      = "dateAgg"
	MetricAggName    = "metricAgg"
	GroupAggName     = "groupAgg"
	SortValueAggName = "sortValueAgg"
)

// dateFormat is the format requested for date_range bounds
const dateFormat = "strict_date_time"

// BuildTimeSeriesQuery builds the search body of a preview query. ranges must
// be sorted oldest first, as returned by core.DateRangeInfo.
func BuildTimeSeriesQuery(p *core.TimeSeriesParams, ranges []core.DateRange) (Fragment, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("no date ranges to query")
	}

	filters := []Fragment{{
		"range": Fragment{
			p.TimeField: Fragment{
				"gte":    ranges[0].From.UTC().Format(time.RFC3339Nano),
				"lt":     ranges[len(ranges)-1].To.UTC().Format(time.RFC3339Nano),
				"format": dateFormat,
			},
		},
	}}
	if kuery := KueryFilter(p.FilterKuery); kuery != nil {
		filters = append(filters, kuery)
	}

	esRanges := make([]Fragment, 0, len(ranges))
	for _, r := range ranges {
		esRanges = append(esRanges, Fragment{
			"from": r.From.UTC().Format(time.RFC3339Nano),
			"to":   r.To.UTC().Format(time.RFC3339Nano),
		})
	}

	dateAgg := Fragment{
		"date_range": Fragment{
			"field":  p.TimeField,
			"format": dateFormat,
			"ranges": esRanges,
		},
	}
	isCount := p.AggType == core.AggTypeCount || p.AggType == ""
	if !isCount {
		dateAgg["aggs"] = Fragment{
			MetricAggName: Fragment{string(p.AggType): Fragment{"field": p.AggField}},
		}
	}

	aggs := Fragment{DateAggName: dateAgg}
	if p.GroupBy == core.GroupByTop {
		terms := Fragment{
			"field": p.TermField,
			"size":  p.TermSize,
		}
		groupAgg := Fragment{"terms": terms}
		if isCount {
			terms["order"] = Fragment{"_count": "desc"}
			groupAgg["aggs"] = Fragment{DateAggName: dateAgg}
		} else {
			order := "desc"
			if p.AggType == core.AggTypeMin {
				order = "asc"
			}
			terms["order"] = Fragment{SortValueAggName: order}
			groupAgg["aggs"] = Fragment{
				DateAggName:      dateAgg,
				SortValueAggName: Fragment{string(p.AggType): Fragment{"field": p.AggField}},
			}
		}
		aggs = Fragment{GroupAggName: groupAgg}
	}

	return Fragment{
		"size":             0,
		"track_total_hits": false,
		"query":            Fragment{"bool": Fragment{"filter": filters}},
		"aggs":             aggs,
	}, nil
}

type dateRangeBucket struct {
	To        float64 `json:"to"`
	DocCount  int64   `json:"doc_count"`
	MetricAgg *struct {
		Value *float64 `json:"value"`
	} `json:"metricAgg"`
}

type dateAggResult struct {
	Buckets []dateRangeBucket `json:"buckets"`
}

type timeSeriesResponse struct {
	Aggregations struct {
		DateAgg  *dateAggResult `json:"dateAgg"`
		GroupAgg *struct {
			Buckets []struct {
				Key         any           `json:"key"`
				KeyAsString string        `json:"key_as_string"`
				DateAgg     dateAggResult `json:"dateAgg"`
			} `json:"buckets"`
		} `json:"groupAgg"`
	} `json:"aggregations"`
}

// ParseTimeSeriesResponse converts a search response of a query built by
// BuildTimeSeriesQuery into series. Buckets without a metric value become
// points with a nil value.
func ParseTimeSeriesResponse(p *core.TimeSeriesParams, raw []byte) (*core.TimeSeriesResult, error) {
	var resp timeSeriesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode time series response: %w", err)
	}

	isCount := p.AggType == core.AggTypeCount || p.AggType == ""
	result := &core.TimeSeriesResult{Results: []core.TimeSeriesGroup{}}

	if resp.Aggregations.GroupAgg != nil {
		for _, bucket := range resp.Aggregations.GroupAgg.Buckets {
			group := bucket.KeyAsString
			if group == "" {
				group = fmt.Sprint(bucket.Key)
			}
			result.Results = append(result.Results, core.TimeSeriesGroup{
				Group:   group,
				Metrics: pointsFromBuckets(bucket.DateAgg.Buckets, isCount),
			})
		}
		return result, nil
	}

	if resp.Aggregations.DateAgg != nil {
		result.Results = append(result.Results, core.TimeSeriesGroup{
			Group:   core.AllDocumentsGroup,
			Metrics: pointsFromBuckets(resp.Aggregations.DateAgg.Buckets, isCount),
		})
	}
	return result, nil
}

func pointsFromBuckets(buckets []dateRangeBucket, isCount bool) []core.TimeSeriesPoint {
	points := make([]core.TimeSeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		var value *float64
		if isCount {
			count := float64(b.DocCount)
			value = &count
		} else if b.MetricAgg != nil && b.MetricAgg.Value != nil && !math.IsNaN(*b.MetricAgg.Value) {
			metric := *b.MetricAgg.Value
			value = &metric
		}
		points = append(points, core.TimeSeriesPoint{
			Date:  time.UnixMilli(int64(b.To)).UTC(),
			Value: value,
		})
	}
	return points
}
