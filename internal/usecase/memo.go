package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	drepo "MarketFeed/internal/domain/repository"
	"MarketFeed/pkg/cache"
	applogger "MarketFeed/pkg/logger"
)

// memo caches fetch results under per-operation keys for a fixed TTL.
type memo struct {
	cache   cache.Service
	prefix  string // namespaces keys when several providers share one cache
	ttl     time.Duration
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// remember returns the cached value for key or runs fetch and caches its result.
// Failed fetches are never cached.
func remember[T any](ctx context.Context, m *memo, op, key string, fetch func() (T, error)) (T, error) {
	key = m.key(key)
	v, err := cache.GetTyped[T](ctx, m.cache, key)
	switch {
	case err == nil:
		m.metrics.RecordCacheLookup(op, true)
		m.logger.Debug("cache hit", applogger.String("op", op), applogger.String("key", key))
		return v, nil
	case !errors.Is(err, cache.ErrCacheMiss):
		m.logger.Debug("cache read failed", applogger.String("key", key), applogger.Error(err))
	}
	m.metrics.RecordCacheLookup(op, false)

	v, err = fetch()
	if err != nil {
		return v, err
	}
	if err := m.cache.Set(ctx, key, v, m.ttl); err != nil {
		m.logger.Debug("cache write failed", applogger.String("key", key), applogger.Error(err))
	}
	return v, nil
}

func (m *memo) key(k string) string {
	if m.prefix == "" {
		return k
	}
	return m.prefix + ":" + k
}

// forget drops every entry cached for ticker under the given operation names,
// both the bare op:{T} key and any op:{T}:... variants.
func (m *memo) forget(ctx context.Context, ticker string, ops ...string) error {
	exact := make([]string, 0, len(ops))
	for _, op := range ops {
		base := m.key(cache.GenerateKey(op, ticker))
		exact = append(exact, base)
		if err := m.cache.DeleteByPattern(ctx, cache.BuildPattern(base+":")); err != nil {
			return fmt.Errorf("forget %s: %w", base, err)
		}
	}
	return m.cache.Delete(ctx, exact...)
}

// clean drops expired entries when the cache supports it.
func (m *memo) clean() int {
	if c, ok := m.cache.(cache.Cleaner); ok {
		return c.CleanExpired()
	}
	return 0
}

// size reports the number of stored entries for caches that can count them.
func (m *memo) size() (int, bool) {
	if c, ok := m.cache.(interface{ Len() int }); ok {
		return c.Len(), true
	}
	return 0, false
}

// logFailure reports a fetch error at the level its kind deserves.
func logFailure(l *applogger.Logger, msg, ticker string, err error) {
	switch {
	case errors.Is(err, drepo.ErrDisabled), errors.Is(err, context.Canceled):
	case errors.Is(err, drepo.ErrNoData):
		l.Debug(msg, applogger.String("ticker", ticker), applogger.Error(err))
	default:
		l.Warn(msg, applogger.String("ticker", ticker), applogger.Error(err))
	}
}
