package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lookout/metrics"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// licenseRanks orders license types. A trial unlocks every paid feature.
var licenseRanks = map[string]int{
	"basic":      1,
	"standard":   2,
	"gold":       3,
	"platinum":   4,
	"enterprise": 5,
	"trial":      5,
}

// licenseCacheKey is the single key of the license cache
const licenseCacheKey = "license"

// License is the cluster license as reported by GET _license
type License struct {
	UID    string `json:"uid"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// IsActive reports whether the license is active
func (l License) IsActive() bool {
	return l.Status == "active"
}

// AtLeast reports whether the license is active and ranks at or above level
func (l License) AtLeast(level string) bool {
	if !l.IsActive() {
		return false
	}
	have, ok := licenseRanks[l.Type]
	if !ok {
		return false
	}
	return have >= licenseRanks[level]
}

// LicenseChecker reads the cluster license, caching it for a short TTL
type LicenseChecker struct {
	es     *Elasticsearch
	cache  *expirable.LRU[string, License]
	logger *zap.SugaredLogger
}

// NewLicenseChecker creates a checker whose cached license expires after ttl
func NewLicenseChecker(es *Elasticsearch, ttl time.Duration, logger *zap.SugaredLogger) *LicenseChecker {
	return &LicenseChecker{
		es:     es,
		cache:  expirable.NewLRU[string, License](1, nil, ttl),
		logger: logger,
	}
}

// Current returns the cluster license
func (lc *LicenseChecker) Current(ctx context.Context) (License, error) {
	if license, ok := lc.cache.Get(licenseCacheKey); ok {
		metrics.CacheHits.WithLabelValues("license").Inc()
		return license, nil
	}
	metrics.CacheMisses.WithLabelValues("license").Inc()

	body, err := lc.es.perform(ctx, "license", esapi.LicenseGetRequest{})
	if err != nil {
		return License{}, fmt.Errorf("failed to read cluster license: %w", err)
	}

	var resp struct {
		License License `json:"license"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return License{}, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}

	lc.cache.Add(licenseCacheKey, resp.License)
	lc.logger.Debugw("Cluster license refreshed", "type", resp.License.Type, "status", resp.License.Status)
	return resp.License, nil
}

// Require returns nil when the cluster license is active and at least level
func (lc *LicenseChecker) Require(ctx context.Context, level string) error {
	license, err := lc.Current(ctx)
	if err != nil {
		metrics.LicenseChecks.WithLabelValues("error").Inc()
		return err
	}
	if !license.IsActive() {
		metrics.LicenseChecks.WithLabelValues("denied").Inc()
		return fmt.Errorf("%w: status %q", ErrLicenseInactive, license.Status)
	}
	if !license.AtLeast(level) {
		metrics.LicenseChecks.WithLabelValues("denied").Inc()
		return fmt.Errorf("%w: have %q, need %q", ErrLicenseInsufficient, license.Type, level)
	}
	metrics.LicenseChecks.WithLabelValues("allowed").Inc()
	return nil
}

// Invalidate drops the cached license
func (lc *LicenseChecker) Invalidate() {
	lc.cache.Purge()
}
