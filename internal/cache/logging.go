package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"opsdash-api/internal/metrics"
	"opsdash-api/pkg/logging/logging"
)

// LoggingStore wraps a Store with logging + metrics.
type LoggingStore struct {
	inner Store
}

// NewLoggingStore returns a store that logs and records metrics.
func NewLoggingStore(inner Store) Store {
	return &LoggingStore{inner: inner}
}

func (s *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	if dashboard, tenant, parsed := parseKey(key); parsed {
		fields = append(fields,
			zap.String("dashboard", dashboard),
			zap.String("tenant", tenant),
		)
		if err == nil {
			if ok {
				metrics.CacheHitsTotal.WithLabelValues(dashboard).Inc()
			} else {
				metrics.CacheMissesTotal.WithLabelValues(dashboard).Inc()
			}
		}
	}

	if err != nil {
		logger.Error("dashboard_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Info("dashboard_cache_get", fields...)
	}

	return value, ok, err
}

func (s *LoggingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Duration("ttl", ttl),
		zap.Int("value_bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	}

	if dashboard, tenant, parsed := parseKey(key); parsed {
		fields = append(fields,
			zap.String("dashboard", dashboard),
			zap.String("tenant", tenant),
		)
	}

	if err != nil {
		logger.Error("dashboard_cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Info("dashboard_cache_set", fields...)
	}

	return err
}

func (s *LoggingStore) Delete(ctx context.Context, keys ...string) error {
	err := s.inner.Delete(ctx, keys...)

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("dashboard_cache_delete",
			zap.Int("keys", len(keys)),
			zap.Error(err),
		)
		return err
	}

	metrics.InvalidatedKeysTotal.Add(float64(len(keys)))
	logger.Info("dashboard_cache_delete", zap.Int("keys", len(keys)))
	return nil
}

func (s *LoggingStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.inner.Keys(ctx, pattern)
	if err != nil {
		logging.L(ctx).Error("dashboard_cache_keys",
			zap.String("pattern", pattern),
			zap.Error(err),
		)
	}
	return keys, err
}
