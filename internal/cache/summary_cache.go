package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lpiteam/autoorder/internal/config"
	"github.com/lpiteam/autoorder/internal/domain"
)

const summaryKeyPrefix = "autoorder:summary"

// RunFingerprint identifies one calculation run's exact inputs. Two
// runs share a cache entry only when the snapshot, the period and the
// settings revision all match, so a summary computed under one
// configuration is never served for another.
type RunFingerprint struct {
	SnapshotID       string
	PeriodDays       int
	SettingsRevision uint64
}

// SummaryCache caches run summaries. The classification itself is
// never cached; only the final aggregated metrics are.
type SummaryCache interface {
	Get(ctx context.Context, fp RunFingerprint) (*domain.RunSummary, bool, error)
	Set(ctx context.Context, fp RunFingerprint, summary domain.RunSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSummaryCache struct{}

// NewSummaryCache builds a redis-backed cache, or a noop cache when
// caching is disabled.
func NewSummaryCache(cfg config.CacheConfig) (SummaryCache, error) {
	if !cfg.Enabled {
		return &noopSummaryCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSummaryCache{client: client, ttl: ttl}, nil
}

// NewNoopSummaryCache returns a cache that stores nothing.
func NewNoopSummaryCache() SummaryCache {
	return &noopSummaryCache{}
}

func (c *redisSummaryCache) Get(ctx context.Context, fp RunFingerprint) (*domain.RunSummary, bool, error) {
	payload, err := c.client.Get(ctx, buildSummaryKey(fp)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summary domain.RunSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, false, fmt.Errorf("decode run summary cache: %w", err)
	}

	return &summary, true, nil
}

func (c *redisSummaryCache) Set(ctx context.Context, fp RunFingerprint, summary domain.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode run summary cache: %w", err)
	}

	if err := c.client.Set(ctx, buildSummaryKey(fp), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisSummaryCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, summaryKeyPrefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del failed: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	return nil
}

func (noopSummaryCache) Get(context.Context, RunFingerprint) (*domain.RunSummary, bool, error) {
	return nil, false, nil
}

func (noopSummaryCache) Set(context.Context, RunFingerprint, domain.RunSummary) error {
	return nil
}

func (noopSummaryCache) InvalidateAll(context.Context) error {
	return nil
}

func buildSummaryKey(fp RunFingerprint) string {
	digest := sha1.Sum([]byte(fmt.Sprintf("%s|%d|%d", fp.SnapshotID, fp.PeriodDays, fp.SettingsRevision)))
	return summaryKeyPrefix + ":" + hex.EncodeToString(digest[:])
}
