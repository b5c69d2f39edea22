package search

import (
	"encoding/json"
	"fmt"

	"lookout/metrics"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultComposerCacheSize is used when no cache size is configured
const DefaultComposerCacheSize = 256

// Composer memoises Compose by selection
type Composer struct {
	cache *lru.Cache[string, []Fragment]
}

// NewComposer creates a composer holding up to size selections
func NewComposer(size int) (*Composer, error) {
	if size <= 0 {
		size = DefaultComposerCacheSize
	}
	cache, err := lru.New[string, []Fragment](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create entity filter cache: %w", err)
	}
	return &Composer{cache: cache}, nil
}

// Compose returns the fragments for sel, computing them on first use
func (c *Composer) Compose(sel Selection) ([]Fragment, error) {
	key, err := selectionKey(sel)
	if err != nil {
		return nil, err
	}
	if cached, ok := c.cache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("entity_filters").Inc()
		return append([]Fragment{}, cached...), nil
	}
	metrics.CacheMisses.WithLabelValues("entity_filters").Inc()

	fragments := Compose(sel)
	c.cache.Add(key, fragments)
	return append([]Fragment{}, fragments...), nil
}

// Len returns the number of memoised selections
func (c *Composer) Len() int {
	return c.cache.Len()
}

// selectionKey canonicalises a selection. Map keys are sorted by encoding/json.
func selectionKey(sel Selection) (string, error) {
	canonical := struct {
		Criticalities any      `json:"c"`
		Sources       any      `json:"s"`
		Severities    any      `json:"v"`
		EntityTypes   any      `json:"t"`
		GlobalQuery   Fragment `json:"q"`
	}{
		Criticalities: uniqueSorted(sel.Criticalities),
		Sources:       uniqueSorted(sel.Sources),
		Severities:    uniqueSorted(sel.Severities),
		EntityTypes:   uniqueSorted(sel.EntityTypes),
		GlobalQuery:   sel.GlobalQuery,
	}
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to encode entity filter selection: %w", err)
	}
	return string(data), nil
}
