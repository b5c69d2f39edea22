package storage

import (
	"context"
	"time"

	"lookout/core"
	"lookout/search"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TimeSeriesClient runs preview queries for index threshold rules
type TimeSeriesClient struct {
	es     *Elasticsearch
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewTimeSeriesClient creates a time series client
func NewTimeSeriesClient(es *Elasticsearch, logger *zap.SugaredLogger) *TimeSeriesClient {
	return &TimeSeriesClient{
		es:     es,
		logger: logger,
		now:    time.Now,
	}
}

// Query computes the series described by params. Bad date parameters are a
// 400. Search failures are logged and answered with an empty result, so the
// editor preview shows nothing rather than an error.
func (c *TimeSeriesClient) Query(ctx context.Context, params core.TimeSeriesParams) (*core.TimeSeriesResult, error) {
	params.ApplyDefaults()

	ranges, err := core.DateRangeInfo(&params, c.now())
	if err != nil {
		return nil, core.BadRequest(err.Error(), err)
	}

	query, err := search.BuildTimeSeriesQuery(&params, ranges)
	if err != nil {
		return nil, core.BadRequest(err.Error(), err)
	}
	body, err := jsonBody(query)
	if err != nil {
		return nil, err
	}

	empty := &core.TimeSeriesResult{Results: []core.TimeSeriesGroup{}}

	resp, err := c.es.perform(ctx, "search", esapi.SearchRequest{
		Index:             params.Index,
		Body:              body,
		IgnoreUnavailable: boolPtr(true),
		AllowNoIndices:    boolPtr(true),
	}, attribute.StringSlice("db.elasticsearch.index", params.Index))
	if err != nil {
		c.logger.Errorw("Time series query failed", "index", params.Index, "error", err)
		return empty, nil
	}

	result, err := search.ParseTimeSeriesResponse(&params, resp)
	if err != nil {
		c.logger.Warnw("Time series response unreadable", "index", params.Index, "error", err)
		return empty, nil
	}
	return result, nil
}
