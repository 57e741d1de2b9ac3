package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHits   = "gitsynth.cache.hits"
	metricCacheMisses = "gitsynth.cache.misses"
)

// CacheStatsProvider exposes cache hit/miss counters for OTel export.
type CacheStatsProvider interface {
	CacheHits() int64
	CacheMisses() int64
}

// RegisterCacheMetrics registers observable gauges that report cache hit/miss
// counters from the blob cache (pkg/synth.BlobCache), reported as "blob", and
// from a second provider, always reported as "diff". Either provider may be
// nil.
func RegisterCacheMetrics(mt metric.Meter, blob, other CacheStatsProvider) error {
	providers := make([]struct {
		name     string
		provider CacheStatsProvider
	}, 0, 2)

	if blob != nil {
		providers = append(providers, struct {
			name     string
			provider CacheStatsProvider
		}{"blob", blob})
	}

	if other != nil {
		providers = append(providers, struct {
			name     string
			provider CacheStatsProvider
		}{"diff", other})
	}

	if len(providers) == 0 {
		return nil
	}

	_, err := mt.Int64ObservableGauge(metricCacheHits,
		metric.WithDescription("Cache hit count"),
		metric.WithUnit("{hit}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			for _, p := range providers {
				o.Observe(p.provider.CacheHits(), metric.WithAttributes(
					attribute.String("cache", p.name),
				))
			}

			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHits, err)
	}

	_, err = mt.Int64ObservableGauge(metricCacheMisses,
		metric.WithDescription("Cache miss count"),
		metric.WithUnit("{miss}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			for _, p := range providers {
				o.Observe(p.provider.CacheMisses(), metric.WithAttributes(
					attribute.String("cache", p.name),
				))
			}

			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMisses, err)
	}

	return nil
}
