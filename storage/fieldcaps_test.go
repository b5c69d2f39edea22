package storage

import (
	"context"
	"net/http"
	"testing"
	"time"

	"lookout/core"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const fieldCapsBody = `{
  "indices": ["logs-a", "logs-b"],
  "fields": {
    "_id": {"_id": {"type": "_id", "searchable": true, "aggregatable": false}},
    "@timestamp": {"date": {"type": "date", "searchable": true, "aggregatable": true}},
    "host": {"object": {"type": "object", "searchable": false, "aggregatable": false}},
    "host.name": {"keyword": {"type": "keyword", "searchable": true, "aggregatable": true}},
    "message": {"text": {"type": "text", "searchable": true, "aggregatable": false}},
    "bytes": {"long": {"type": "long", "searchable": true, "aggregatable": true}},
    "spans": {"nested": {"type": "nested", "searchable": false, "aggregatable": false}},
    "mixed": {
      "long": {"type": "long", "searchable": true, "aggregatable": true},
      "keyword": {"type": "keyword", "searchable": true, "aggregatable": true}
    }
  }
}`

func TestParseFieldCaps(t *testing.T) {
	fields, err := parseFieldCaps([]byte(fieldCapsBody))
	require.NoError(t, err)

	assert.Equal(t, []core.Field{
		{Name: "@timestamp", Type: "date", NormalizedType: "date", Aggregatable: true, Searchable: true},
		{Name: "bytes", Type: "long", NormalizedType: "number", Aggregatable: true, Searchable: true},
		{Name: "host.name", Type: "keyword", NormalizedType: "string", Aggregatable: true, Searchable: true},
		{Name: "message", Type: "text", NormalizedType: "string", Aggregatable: false, Searchable: true},
		{Name: "mixed", Type: "keyword", NormalizedType: "string", Aggregatable: true, Searchable: true},
	}, fields)
}

func TestParseFieldCaps_Invalid(t *testing.T) {
	_, err := parseFieldCaps([]byte("not json"))
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestFieldLookup_Fields(t *testing.T) {
	f := newFakeES(t)
	f.handle("/logs-*/_field_caps", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fieldCapsBody))
	})
	lookup := NewFieldLookup(f.client(), nil, 0, zaptest.NewLogger(t).Sugar())

	fields := lookup.Fields(context.Background(), []string{"logs-*"})
	assert.Len(t, fields, 5)

	req := f.requestsTo("/logs-*/_field_caps")[0]
	assert.Contains(t, req.Query, "fields=%2A")
	assert.Contains(t, req.Query, "allow_no_indices=true")
	assert.Contains(t, req.Query, "ignore_unavailable=true")
}

func TestFieldLookup_FailureReturnsEmpty(t *testing.T) {
	f := newFakeES(t)
	f.handle("/logs-*/_field_caps", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, esError("exception", "shard failure"))
	})
	lookup := NewFieldLookup(f.client(), nil, 0, zap.NewNop().Sugar())

	fields := lookup.Fields(context.Background(), []string{"logs-*"})
	assert.NotNil(t, fields)
	assert.Empty(t, fields)
}

func TestFieldLookup_NoPatterns(t *testing.T) {
	f := newFakeES(t)
	lookup := NewFieldLookup(f.client(), nil, 0, zap.NewNop().Sugar())

	assert.Empty(t, lookup.Fields(context.Background(), []string{"", "  "}))
	assert.Empty(t, f.requestsTo("/_field_caps"))
}

func TestFieldLookup_UsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := core.NewRedisCache(mr.Addr(), "", 0, 5, "lookout:", zap.NewNop().Sugar())
	defer cache.Close()

	f := newFakeES(t)
	f.handle("/logs-*,metrics-*/_field_caps", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fieldCapsBody))
	})
	lookup := NewFieldLookup(f.client(), cache, time.Minute, zap.NewNop().Sugar())

	first := lookup.Fields(context.Background(), []string{"logs-*", "metrics-*"})
	second := lookup.Fields(context.Background(), []string{"logs-*", "metrics-*"})

	assert.Equal(t, first, second)
	assert.Len(t, f.requestsTo("/logs-*,metrics-*/_field_caps"), 1)

	key := "lookout:" + core.GetFieldsCacheKey([]string{"metrics-*", "logs-*"})
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestFieldLookup_EvictsUnreadableCacheEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := core.NewRedisCache(mr.Addr(), "", 0, 5, "lookout:", zap.NewNop().Sugar())
	defer cache.Close()

	key := "lookout:" + core.GetFieldsCacheKey([]string{"logs-*"})
	require.NoError(t, mr.Set(key, "{not json"))

	f := newFakeES(t)
	f.handle("/logs-*/_field_caps", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, esError("exception", "shard failure"))
	})
	lookup := NewFieldLookup(f.client(), cache, time.Minute, zap.NewNop().Sugar())

	assert.Empty(t, lookup.Fields(context.Background(), []string{"logs-*"}))
	assert.Len(t, f.requestsTo("/logs-*/_field_caps"), 1, "an unreadable entry falls through to Elasticsearch")
	assert.False(t, mr.Exists(key), "the unreadable entry is evicted")
}
