package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"lookout/core"
	"lookout/search"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// EntityStore lists entities from the latest-entities indices
type EntityStore struct {
	es        *Elasticsearch
	composer  *search.Composer
	namespace string
	logger    *zap.SugaredLogger
}

// NewEntityStore creates an entity store. namespace is used when a request names none.
func NewEntityStore(es *Elasticsearch, composer *search.Composer, namespace string, logger *zap.SugaredLogger) *EntityStore {
	if namespace == "" {
		namespace = "default"
	}
	return &EntityStore{
		es:        es,
		composer:  composer,
		namespace: namespace,
		logger:    logger,
	}
}

// List returns one page of entities matching the facet selection in params
func (s *EntityStore) List(ctx context.Context, params core.EntityListParams) (*core.EntityListResult, error) {
	if params.Namespace == "" {
		params.Namespace = s.namespace
	}
	params = params.WithDefaults()
	if err := params.ValidateWindow(); err != nil {
		return nil, err
	}

	var global search.Fragment
	if params.FilterQuery != "" {
		parsed, err := search.ParseRawFilter(params.FilterQuery)
		if err != nil {
			return nil, core.BadRequest(fmt.Sprintf("invalid filterQuery: %v", err), err)
		}
		global = parsed
	}

	fragments, err := s.composer.Compose(search.Selection{
		Criticalities: params.Criticality,
		Sources:       params.Sources,
		Severities:    params.Severity,
		EntityTypes:   params.EntityTypes,
		GlobalQuery:   global,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compose entity filters: %w", err)
	}

	indices := make([]string, 0, len(params.EntityTypes))
	for _, t := range params.EntityTypes {
		indices = append(indices, core.EntityIndex(t, params.Namespace))
	}

	body, err := jsonBody(map[string]any{
		"from":             (params.Page - 1) * params.PerPage,
		"size":             params.PerPage,
		"track_total_hits": true,
		"sort": []search.Fragment{{
			params.SortField: search.Fragment{"order": params.SortOrder, "unmapped_type": "keyword"},
		}},
		"query": search.FilterQuery(fragments),
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.es.perform(ctx, "search", esapi.SearchRequest{
		Index:             indices,
		Body:              body,
		IgnoreUnavailable: boolPtr(true),
		AllowNoIndices:    boolPtr(true),
	}, attribute.StringSlice("db.elasticsearch.index", indices))
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	hits, err := decodeSearchHits(resp)
	if err != nil {
		return nil, err
	}

	result := &core.EntityListResult{
		Records: make([]map[string]any, 0, len(hits.Hits.Hits)),
		Total:   hits.Hits.Total.Value,
		Page:    params.Page,
		PerPage: params.PerPage,
	}
	for _, hit := range hits.Hits.Hits {
		var record map[string]any
		if err := json.Unmarshal(hit.Source, &record); err != nil {
			s.logger.Warnw("Skipping unreadable entity", "id", hit.ID, "index", hit.Index, "error", err)
			continue
		}
		result.Records = append(result.Records, record)
	}
	return result, nil
}
