package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lookout/config"
	"lookout/core"
	"lookout/search"
	"lookout/storage"

	"go.uber.org/zap"
)

// StorageComponents holds the Elasticsearch-backed clients behind the API.
type StorageComponents struct {
	ES          *storage.Elasticsearch
	Cache       *core.RedisCache // nil when redis is disabled or unreachable
	License     *storage.LicenseChecker
	Annotations *storage.AnnotationClient
	Fields      *storage.FieldLookup
	Indices     *storage.IndexLookup
	TimeSeries  *storage.TimeSeriesClient
	Entities    *storage.EntityStore
}

// esConnect is replaced in tests
var esConnect = storage.NewElasticsearch

// InitElasticsearch connects to Elasticsearch with retry logic.
func InitElasticsearch(cfg *config.Config, sugar *zap.SugaredLogger) (*storage.Elasticsearch, error) {
	return initElasticsearch(cfg, sugar, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second})
}

func initElasticsearch(cfg *config.Config, sugar *zap.SugaredLogger, retryDelays []time.Duration) (*storage.Elasticsearch, error) {
	addr := strings.Join(cfg.Elasticsearch.Addresses, ",")
	if cfg.Elasticsearch.CloudID != "" {
		addr = "cloud:" + cfg.Elasticsearch.CloudID
	}

	var lastErr error
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		if attempt > 0 {
			sugar.Infow("Retrying Elasticsearch connection",
				"attempt", attempt,
				"max_retries", len(retryDelays),
				"delay", retryDelays[attempt-1])
			time.Sleep(retryDelays[attempt-1])
		}

		es, err := esConnect(cfg, sugar)
		if err == nil {
			return es, nil
		}
		lastErr = err

		sugar.Warnw("Elasticsearch connection attempt failed",
			"attempt", attempt+1,
			"error", err)
	}

	sugar.Error(ClassifyConnectionError(lastErr, addr))
	return nil, fmt.Errorf("failed to connect to Elasticsearch after %d attempts: %w", len(retryDelays)+1, lastErr)
}

// InitRedis connects the optional field cache. An unreachable Redis is not
// fatal: field lookups then go straight to Elasticsearch.
func InitRedis(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) *core.RedisCache {
	if !cfg.Redis.Enabled {
		sugar.Info("Redis cache disabled")
		return nil
	}

	cache := core.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.KeyPrefix, sugar)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := cache.Ping(pingCtx); err != nil {
		sugar.Warnw("Redis unreachable, field cache disabled", "addr", cfg.Redis.Addr, "error", err)
		_ = cache.Close()
		return nil
	}

	sugar.Infow("Redis cache connected", "addr", cfg.Redis.Addr)
	return cache
}

// InitStorage builds every storage client on top of a connected cluster.
func InitStorage(es *storage.Elasticsearch, cache *core.RedisCache, cfg *config.Config, sugar *zap.SugaredLogger) (*StorageComponents, error) {
	composer, err := search.NewComposer(cfg.Entities.FilterCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create entity filter composer: %w", err)
	}

	// A nil *RedisCache must not become a non-nil storage.Cache
	var fieldCache storage.Cache
	if cache != nil {
		fieldCache = cache
	}

	license := storage.NewLicenseChecker(es, cfg.Annotations.LicenseCacheTTL, sugar)
	return &StorageComponents{
		ES:          es,
		Cache:       cache,
		License:     license,
		Annotations: storage.NewAnnotationClient(es, cfg.Annotations.Index, cfg.Annotations.RequiredLicense, license, sugar),
		Fields:      storage.NewFieldLookup(es, fieldCache, cfg.Rules.FieldCacheTTL, sugar),
		Indices:     storage.NewIndexLookup(es, cfg.Rules.MaxIndices, sugar),
		TimeSeries:  storage.NewTimeSeriesClient(es, sugar),
		Entities:    storage.NewEntityStore(es, composer, cfg.Entities.Namespace, sugar),
	}, nil
}
