package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lookout/core"
	"lookout/metrics"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Cache is the subset of core.RedisCache the lookups use
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// skippedFieldTypes are never offered to the rule editor
var skippedFieldTypes = map[string]bool{
	"object": true,
	"nested": true,
}

// FieldLookup lists the fields of index patterns using _field_caps
type FieldLookup struct {
	es     *Elasticsearch
	cache  Cache
	ttl    time.Duration
	logger *zap.SugaredLogger
}

// NewFieldLookup creates a field lookup. cache may be nil.
func NewFieldLookup(es *Elasticsearch, cache Cache, ttl time.Duration, logger *zap.SugaredLogger) *FieldLookup {
	return &FieldLookup{
		es:     es,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Fields returns the fields of the given index patterns sorted by name. A
// failed lookup is logged and answered with an empty list.
func (f *FieldLookup) Fields(ctx context.Context, indexPatterns []string) []core.Field {
	patterns := make([]string, 0, len(indexPatterns))
	for _, p := range indexPatterns {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return []core.Field{}
	}

	key := core.GetFieldsCacheKey(patterns)
	if f.cache != nil && f.ttl > 0 {
		var cached []core.Field
		found, err := f.cache.Get(ctx, key, &cached)
		if err != nil {
			f.logger.Warnw("Field cache read failed, evicting entry", "patterns", patterns, "error", err)
			if err := f.cache.Delete(ctx, key); err != nil {
				f.logger.Debugw("Field cache eviction failed", "patterns", patterns, "error", err)
			}
		} else if found {
			return cached
		}
	}

	fields, err := f.lookup(ctx, patterns)
	if err != nil {
		metrics.FieldLookupFailures.Inc()
		f.logger.Warnw("Field lookup failed, returning no fields", "patterns", patterns, "error", err)
		return []core.Field{}
	}

	if f.cache != nil && f.ttl > 0 {
		if err := f.cache.Set(ctx, key, fields, f.ttl); err != nil {
			f.logger.Warnw("Field cache write failed", "patterns", patterns, "error", err)
		}
	}
	return fields
}

func (f *FieldLookup) lookup(ctx context.Context, patterns []string) ([]core.Field, error) {
	resp, err := f.es.perform(ctx, "field_caps", esapi.FieldCapsRequest{
		Index:             patterns,
		Fields:            []string{"*"},
		AllowNoIndices:    boolPtr(true),
		IgnoreUnavailable: boolPtr(true),
	}, attribute.StringSlice("db.elasticsearch.index", patterns))
	if err != nil {
		return nil, fmt.Errorf("field_caps request failed: %w", err)
	}
	return parseFieldCaps(resp)
}

// fieldCapability is one type entry of a _field_caps response
type fieldCapability struct {
	Type         string `json:"type"`
	Searchable   bool   `json:"searchable"`
	Aggregatable bool   `json:"aggregatable"`
}

// parseFieldCaps turns a _field_caps response into editor fields. A field
// mapped with different types across indices takes the first type by name.
func parseFieldCaps(body []byte) ([]core.Field, error) {
	var resp struct {
		Fields map[string]map[string]fieldCapability `json:"fields"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	fields := make([]core.Field, 0, len(resp.Fields))
	for name, byType := range resp.Fields {
		if strings.HasPrefix(name, "_") || len(byType) == 0 {
			continue
		}

		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Strings(types)

		esType := types[0]
		if strings.HasPrefix(esType, "_") || skippedFieldTypes[esType] {
			continue
		}

		capability := byType[esType]
		fields = append(fields, core.Field{
			Name:           name,
			Type:           esType,
			NormalizedType: core.NormalizeFieldType(esType),
			Aggregatable:   capability.Aggregatable,
			Searchable:     capability.Searchable,
		})
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})
	return fields, nil
}
