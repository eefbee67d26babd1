package offline

import (
	"context"
	"errors"
	"time"
)

// Options controls WithOfflineSupport. Cache enables reading and writing the
// cache under the given key; Fallback, when set, is returned as a last
// resort instead of an error.
type Options[T any] struct {
	Cache       bool
	CacheExpiry time.Duration
	Fallback    *T
}

// WithOfflineSupport wraps a read. Offline with caching enabled it serves the
// cache, then the fallback, then fails with ErrOfflineNoCache. Online it
// calls fn and caches the result; if fn fails it serves the cache, then the
// fallback, then returns fn's error.
func WithOfflineSupport[T any](ctx context.Context, q *Queue, key string, fn func(context.Context) (T, error), opts Options[T]) (T, error) {
	var zero T

	if !q.online() && opts.Cache {
		if v, ok := fromCache[T](ctx, q, key); ok {
			return v, nil
		}
		if opts.Fallback != nil {
			return *opts.Fallback, nil
		}
		return zero, ErrOfflineNoCache
	}

	v, err := fn(ctx)
	if err == nil {
		if opts.Cache {
			if cerr := q.CacheData(ctx, key, v, opts.CacheExpiry); cerr != nil {
				q.log.Warn(ctx, "caching response failed", "key", key, "error", cerr)
			}
		}
		return v, nil
	}
	if errors.Is(err, context.Canceled) {
		return zero, err
	}

	if opts.Cache {
		if v, ok := fromCache[T](ctx, q, key); ok {
			q.log.Debug(ctx, "serving cached data after failure", "key", key, "error", err)
			return v, nil
		}
	}
	if opts.Fallback != nil {
		return *opts.Fallback, nil
	}
	return zero, err
}

func fromCache[T any](ctx context.Context, q *Queue, key string) (T, bool) {
	var v T
	ok, err := q.CachedData(ctx, key, &v)
	if err != nil {
		q.log.Warn(ctx, "reading cache failed", "key", key, "error", err)
		return v, false
	}
	return v, ok
}
