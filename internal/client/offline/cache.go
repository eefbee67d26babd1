package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/marketclient/internal/client/models"
	"github.com/dmitrijs2005/marketclient/internal/metrics"
)

// CacheData stores data under key. A ttl of zero or less uses the queue's
// default expiry.
func (q *Queue) CacheData(ctx context.Context, key string, data any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = q.defaultTTL
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode cache[%s]: %w", key, err)
	}
	entry := models.CacheEntry{Key: key, Data: raw, StoredAt: q.clock.Now().UTC(), TTL: ttl}
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache[%s]: %w", key, err)
	}
	if err := q.kv.Set(ctx, CachePrefix+key, b); err != nil {
		return fmt.Errorf("store cache[%s]: %w", key, err)
	}
	return nil
}

// CachedData decodes the entry under key into out and reports whether one
// was found. Expired entries are deleted and reported as absent.
func (q *Queue) CachedData(ctx context.Context, key string, out any) (bool, error) {
	b, err := q.kv.Get(ctx, CachePrefix+key)
	if err != nil {
		return false, fmt.Errorf("read cache[%s]: %w", key, err)
	}
	if b == nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false, nil
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		q.log.Warn(ctx, "removing unreadable cache entry", "key", key, "error", err)
		return false, q.evict(ctx, key)
	}
	if entry.Expired(q.clock.Now()) {
		metrics.CacheLookups.WithLabelValues("expired").Inc()
		return false, q.evict(ctx, key)
	}
	if err := json.Unmarshal(entry.Data, out); err != nil {
		return false, fmt.Errorf("decode cache[%s]: %w", key, err)
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true, nil
}

// ClearCache removes every cache entry. Queued actions are kept.
func (q *Queue) ClearCache(ctx context.Context) error {
	keys, err := q.kv.Keys(ctx, CachePrefix)
	if err != nil {
		return fmt.Errorf("list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return q.kv.DeleteMany(ctx, keys...)
}

func (q *Queue) evict(ctx context.Context, key string) error {
	if err := q.kv.Delete(ctx, CachePrefix+key); err != nil {
		return fmt.Errorf("evict cache[%s]: %w", key, err)
	}
	return nil
}
