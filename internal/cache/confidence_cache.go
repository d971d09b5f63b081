package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Bruhadev45/AI-Multi-Agent-Supply-Chain-Optimizer/internal/forecast"
)

const keyPrefix = "forecast:confidence:"

// ConfidenceCache stores confidence reports in Redis keyed by a digest of
// the input series, so repeated queries over unchanged order history skip
// the validation and scoring work. A nil client disables caching entirely.
type ConfidenceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewConfidenceCache builds a cache with the given TTL. Pass a nil client
// to run with caching disabled.
func NewConfidenceCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *ConfidenceCache {
	return &ConfidenceCache{client: client, ttl: ttl, logger: logger}
}

// Key derives the cache key for a series of order records.
func Key(records []forecast.Record) string {
	payload, err := json.Marshal(records)
	if err != nil {
		payload = fmt.Appendf(nil, "unmarshalable:%d", len(records))
	}
	sum := sha256.Sum256(payload)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached report for the key, or nil on a miss. Redis errors
// are logged and treated as misses.
func (c *ConfidenceCache) Get(ctx context.Context, key string) *forecast.ConfidenceReport {
	if c.client == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).Warn("confidence cache read failed")
		}
		return nil
	}

	var report forecast.ConfidenceReport
	if err := json.Unmarshal(raw, &report); err != nil {
		c.logger.WithError(err).Warn("confidence cache entry corrupt, dropping")
		c.client.Del(ctx, key)
		return nil
	}
	return &report
}

// Set stores a report under the key for the cache TTL. Failures are logged
// and otherwise ignored; caching is best effort.
func (c *ConfidenceCache) Set(ctx context.Context, key string, report *forecast.ConfidenceReport) {
	if c.client == nil || report == nil {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		c.logger.WithError(err).Warn("confidence report not serializable")
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Warn("confidence cache write failed")
	}
}
