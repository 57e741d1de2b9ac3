package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCommitsTotal     = "gitsynth.synthesis.commits.total"
	metricChunksTotal      = "gitsynth.synthesis.chunks.total"
	metricChunkDuration    = "gitsynth.synthesis.chunk.duration.seconds"
	metricCacheHitsTotal   = "gitsynth.synthesis.cache.hits.total"
	metricCacheMissesTotal = "gitsynth.synthesis.cache.misses.total"

	attrCache = "cache"
)

// PipelineMetrics holds OTel instruments for a single run_pipeline
// invocation's chunking and synthesis stages.
type PipelineMetrics struct {
	commitsTotal  metric.Int64Counter
	chunksTotal   metric.Int64Counter
	chunkDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
}

// PipelineStats holds the statistics for a single RunPipeline call,
// decoupled from any instrumentation framework type.
type PipelineStats struct {
	Commits         int64
	Chunks          int
	ChunkDurations  []time.Duration
	BlobCacheHits   int64
	BlobCacheMisses int64
}

// NewPipelineMetrics creates pipeline metric instruments from the given meter.
func NewPipelineMetrics(mt metric.Meter) (*PipelineMetrics, error) {
	commits, err := mt.Int64Counter(metricCommitsTotal,
		metric.WithDescription("Total synthetic commits created"),
		metric.WithUnit("{commit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCommitsTotal, err)
	}

	chunks, err := mt.Int64Counter(metricChunksTotal,
		metric.WithDescription("Total diff chunks processed"),
		metric.WithUnit("{chunk}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunksTotal, err)
	}

	chunkDur, err := mt.Float64Histogram(metricChunkDuration,
		metric.WithDescription("Per-chunk labelling/grouping duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricChunkDuration, err)
	}

	hits, err := mt.Int64Counter(metricCacheHitsTotal,
		metric.WithDescription("Blob cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheHitsTotal, err)
	}

	misses, err := mt.Int64Counter(metricCacheMissesTotal,
		metric.WithDescription("Blob cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCacheMissesTotal, err)
	}

	return &PipelineMetrics{
		commitsTotal:  commits,
		chunksTotal:   chunks,
		chunkDuration: chunkDur,
		cacheHits:     hits,
		cacheMisses:   misses,
	}, nil
}

// RecordRun records pipeline statistics for a completed RunPipeline call.
// Safe to call on a nil receiver (no-op).
func (pm *PipelineMetrics) RecordRun(ctx context.Context, stats PipelineStats) {
	if pm == nil {
		return
	}

	pm.commitsTotal.Add(ctx, stats.Commits)
	pm.chunksTotal.Add(ctx, int64(stats.Chunks))

	for _, d := range stats.ChunkDurations {
		pm.chunkDuration.Record(ctx, d.Seconds())
	}

	blobAttrs := metric.WithAttributes(attribute.String(attrCache, "blob"))
	pm.cacheHits.Add(ctx, stats.BlobCacheHits, blobAttrs)
	pm.cacheMisses.Add(ctx, stats.BlobCacheMisses, blobAttrs)
}
