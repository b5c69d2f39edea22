package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultMaxIndices caps index suggestions when no limit is configured
const DefaultMaxIndices = 1000

// IndexLookup suggests index and alias names matching a pattern
type IndexLookup struct {
	es         *Elasticsearch
	maxIndices int
	logger     *zap.SugaredLogger
}

// NewIndexLookup creates an index lookup returning at most maxIndices indices
func NewIndexLookup(es *Elasticsearch, maxIndices int, logger *zap.SugaredLogger) *IndexLookup {
	if maxIndices <= 0 {
		maxIndices = DefaultMaxIndices
	}
	return &IndexLookup{
		es:         es,
		maxIndices: maxIndices,
		logger:     logger,
	}
}

// Indices returns the sorted, de-duplicated indices and aliases matching
// pattern. Hidden indices are only included when the pattern starts with a dot.
// Lookup failures are logged and contribute nothing.
func (l *IndexLookup) Indices(ctx context.Context, pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return []string{}
	}

	seen := make(map[string]struct{})

	indices, err := l.indicesFromPattern(ctx, pattern)
	if err != nil {
		l.logger.Warnw("Index lookup failed", "pattern", pattern, "error", err)
	}
	for _, name := range indices {
		seen[name] = struct{}{}
	}

	aliases, err := l.aliasesFromPattern(ctx, pattern)
	if err != nil {
		l.logger.Warnw("Alias lookup failed", "pattern", pattern, "error", err)
	}
	for _, name := range aliases {
		seen[name] = struct{}{}
	}

	result := make([]string, 0, len(seen))
	for name := range seen {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// indicesFromPattern lists the concrete indices holding documents via a
// terms aggregation on _index
func (l *IndexLookup) indicesFromPattern(ctx context.Context, pattern string) ([]string, error) {
	index := []string{pattern}
	if !strings.HasPrefix(pattern, ".") {
		index = append(index, "-.*")
	}

	body, err := jsonBody(map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"indices": map[string]any{
				"terms": map[string]any{"field": "_index", "size": l.maxIndices},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	resp, err := l.es.perform(ctx, "search", esapi.SearchRequest{
		Index:             index,
		Body:              body,
		IgnoreUnavailable: boolPtr(true),
		AllowNoIndices:    boolPtr(true),
	}, attribute.StringSlice("db.elasticsearch.index", index))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	var result struct {
		Aggregations struct {
			Indices struct {
				Buckets []struct {
					Key string `json:"key"`
				} `json:"buckets"`
			} `json:"indices"`
		} `json:"aggregations"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	names := make([]string, 0, len(result.Aggregations.Indices.Buckets))
	for _, b := range result.Aggregations.Indices.Buckets {
		names = append(names, b.Key)
	}
	return names, nil
}

// aliasesFromPattern lists the aliases of the indices matching pattern
func (l *IndexLookup) aliasesFromPattern(ctx context.Context, pattern string) ([]string, error) {
	resp, err := l.es.perform(ctx, "indices.get_alias", esapi.IndicesGetAliasRequest{
		Index:             []string{pattern},
		AllowNoIndices:    boolPtr(true),
		IgnoreUnavailable: boolPtr(true),
	}, attribute.String("db.elasticsearch.index", pattern))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("alias lookup failed: %w", err)
	}

	var byIndex map[string]struct {
		Aliases map[string]json.RawMessage `json:"aliases"`
	}
	if err := json.Unmarshal(resp, &byIndex); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	var names []string
	for _, entry := range byIndex {
		for alias := range entry.Aliases {
			names = append(names, alias)
		}
	}
	return names, nil
}
