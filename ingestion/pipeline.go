// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/catalyst/ai"
	"github.com/poiesic/catalyst/cache"
	"github.com/poiesic/catalyst/chunking"
	"github.com/poiesic/catalyst/core"
	"github.com/poiesic/catalyst/dedup"
)

// Pipeline defaults.
const (
	DefaultPoolSize  = 5
	DefaultBatchSize = 10

	defaultMaxAttempts = 3
	defaultBaseDelay   = 200 * time.Millisecond
)

// Pipeline orchestrates one accelerated normalization run: chunking, cache
// lookups, model routing, batched normalization, and deduplication.
type Pipeline struct {
	provider ai.Provider
	selector *ai.ModelSelector
	cache    *cache.MultiTier
	dedup    *dedup.Deduplicator
	pool     *ants.Pool

	poolSize    int
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration

	parallel     bool
	caching      bool
	batching     bool
	dedupEnabled bool

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent chunk processing.
// The pool size also sets the target chunk count. Default is 5.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.pool = pool
		p.poolSize = size
		return nil
	}
}

// WithBatchSize sets how many records go into one normalization call.
// Default is 10.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithCache sets the multi-tier result cache. Without one, caching is
// disabled regardless of the caching flag.
func WithCache(c *cache.MultiTier) Option {
	return func(p *Pipeline) error {
		p.cache = c
		return nil
	}
}

// WithSimilarityThreshold sets the dedup similarity threshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(p *Pipeline) error {
		d, err := dedup.New(dedup.WithThreshold(threshold), dedup.WithLogger(p.logger))
		if err != nil {
			return err
		}
		p.dedup = d
		return nil
	}
}

// WithRetry sets the per-batch retry policy.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithParallelism enables or disables concurrent chunk processing.
// When disabled, chunks are processed sequentially in order.
func WithParallelism(enabled bool) Option {
	return func(p *Pipeline) error {
		p.parallel = enabled
		return nil
	}
}

// WithCaching enables or disables cache lookups and writes.
func WithCaching(enabled bool) Option {
	return func(p *Pipeline) error {
		p.caching = enabled
		return nil
	}
}

// WithBatching enables or disables multi-record normalization calls.
// When disabled, every record goes out in its own call.
func WithBatching(enabled bool) Option {
	return func(p *Pipeline) error {
		p.batching = enabled
		return nil
	}
}

// WithDedup enables or disables near-duplicate removal.
func WithDedup(enabled bool) Option {
	return func(p *Pipeline) error {
		p.dedupEnabled = enabled
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline around the given AI provider and config.
// The config supplies model routing; per-run behavior comes from options.
func NewPipeline(provider ai.Provider, config *ai.Config, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if config == nil {
		return nil, ErrConfigRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	pool, err := ants.NewPool(DefaultPoolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		provider:     provider,
		selector:     ai.NewModelSelector(config),
		pool:         pool,
		poolSize:     DefaultPoolSize,
		batchSize:    DefaultBatchSize,
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		parallel:     true,
		caching:      true,
		batching:     true,
		dedupEnabled: true,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.dedup == nil {
		d, dedupErr := dedup.New(dedup.WithLogger(p.logger))
		if dedupErr != nil {
			p.Release()
			return nil, dedupErr
		}
		p.dedup = d
	}

	return p, nil
}

// chunkResult carries one worker's outcome back to the orchestrator.
type chunkResult struct {
	index int
	items []core.NormalizedItem
	err   error
}

// Accelerate runs the full pipeline over input and returns the final items
// with run statistics. Invalid input fails the call; everything downstream
// degrades instead of failing. If ctx is canceled mid-run, the chunks that
// completed before cancellation are returned in a partial output alongside
// the context error.
func (p *Pipeline) Accelerate(ctx context.Context, input core.AcceleratorInput) (*core.AcceleratorOutput, error) {
	start := time.Now()

	if err := core.ValidateInput(&input); err != nil {
		return nil, err
	}

	stats := newStatsCollector()
	chunks := p.splitContent(input, stats)

	p.logger.Info("accelerating content",
		"tenant", input.Tenant,
		"content_type", input.ContentType,
		"file", input.FileName,
		"chunks", len(chunks))

	var results []chunkResult
	var runErr error
	if p.parallel && len(chunks) > 1 {
		results, runErr = p.runParallel(ctx, input, chunks, stats)
	} else {
		results, runErr = p.runSequential(ctx, input, chunks, stats)
	}

	// Flatten completed chunks in chunk order. Workers may finish out of
	// order; results are already indexed by chunk.
	var all []core.NormalizedItem
	completed := 0
	for _, result := range results {
		if result.err != nil {
			continue
		}
		all = append(all, result.items...)
		completed++
	}
	if runErr != nil {
		stats.warn(fmt.Sprintf("run canceled after %d of %d chunks completed",
			completed, len(chunks)))
	}
	extracted := len(all)

	final := all
	duplicatesRemoved := 0
	if p.dedupEnabled {
		dedupResult := p.dedup.Deduplicate(all)
		final = dedupResult.Items
		duplicatesRemoved = dedupResult.DuplicatesRemoved
		if dedupResult.SignatureFailures > 0 {
			stats.warn(fmt.Sprintf("%d items could not be compared for duplicates",
				dedupResult.SignatureFailures))
		}
	}

	output := &core.AcceleratorOutput{
		Items: final,
		Stats: stats.snapshot(extracted, len(final), duplicatesRemoved, time.Since(start)),
	}

	if runErr != nil {
		p.logger.Warn("acceleration canceled, returning partial results",
			"tenant", input.Tenant,
			"chunks_completed", completed,
			"chunks_total", len(chunks))
		return output, runErr
	}

	p.logger.Info("acceleration complete",
		"tenant", input.Tenant,
		"items_extracted", extracted,
		"items_after_dedup", len(final),
		"cache_hits", output.Stats.CacheHits,
		"batch_calls", output.Stats.BatchCalls,
		"duration", output.Stats.Duration)

	return output, nil
}

// splitContent chunks the raw content, degrading to a single whole-content
// chunk when no record separator exists.
func (p *Pipeline) splitContent(input core.AcceleratorInput, stats *statsCollector) []core.Chunk {
	chunks, err := chunking.Split(input.Content, input.ContentType, p.poolSize)
	if err != nil {
		if errors.Is(err, chunking.ErrNoSeparator) {
			stats.warn("content has no record separator, processing as a single chunk")
		} else {
			stats.warn(fmt.Sprintf("chunking failed, processing as a single chunk: %v", err))
		}
		return []core.Chunk{{
			Index: 0,
			Items: []string{input.Content},
			Size:  len(input.Content),
		}}
	}
	return chunks
}

func (p *Pipeline) runParallel(ctx context.Context, input core.AcceleratorInput, chunks []core.Chunk, stats *statsCollector) ([]chunkResult, error) {
	results := make([]chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		i, chunk := i, chunk
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.processChunk(ctx, input, chunk, stats)
		})
		if submitErr != nil {
			// Pool rejected the task (released or overloaded); run inline so
			// the chunk is never dropped.
			results[i] = p.processChunk(ctx, input, chunk, stats)
			wg.Done()
		}
	}
	wg.Wait()

	for _, result := range results {
		if result.err != nil {
			return results, result.err
		}
	}
	return results, nil
}

func (p *Pipeline) runSequential(ctx context.Context, input core.AcceleratorInput, chunks []core.Chunk, stats *statsCollector) ([]chunkResult, error) {
	results := make([]chunkResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = p.processChunk(ctx, input, chunk, stats)
		if results[i].err != nil {
			return results[:i+1], results[i].err
		}
	}
	return results, nil
}

// processChunk normalizes one chunk, consulting the cache first. Only
// context cancellation surfaces as an error.
func (p *Pipeline) processChunk(ctx context.Context, input core.AcceleratorInput, chunk core.Chunk, stats *statsCollector) chunkResult {
	chunkStart := time.Now()

	if err := ctx.Err(); err != nil {
		return chunkResult{index: chunk.Index, err: err}
	}

	content := chunk.Content()
	key := cache.KeyForContent(input.Tenant, input.ContentType, content)

	if p.cachingEnabled() {
		if items, tier, ok := p.cache.Get(ctx, key); ok {
			stats.cacheHit()
			stats.timing(core.ChunkTiming{
				Index:    chunk.Index,
				Items:    len(items),
				CacheHit: true,
				Duration: time.Since(chunkStart),
			})
			p.logger.Debug("chunk served from cache",
				"chunk", chunk.Index, "tier", tier.String(), "items", len(items))
			return chunkResult{index: chunk.Index, items: items}
		}
		stats.cacheMiss()
	}

	model, score := p.selector.Select(content)
	stats.modelRoute(model)
	p.logger.Debug("chunk routed",
		"chunk", chunk.Index, "model", model, "complexity", score)

	batcher := &batchNormalizer{
		normalizer:  p.provider.Normalizer(),
		batchSize:   p.effectiveBatchSize(),
		maxAttempts: p.maxAttempts,
		baseDelay:   p.baseDelay,
		logger:      p.logger,
	}

	items, err := batcher.normalizeChunk(ctx, chunk, model, stats)
	if err != nil {
		return chunkResult{index: chunk.Index, err: err}
	}

	// Degraded chunks stay out of the cache so a later run renormalizes
	// them instead of replaying fallback items for the entry's TTL.
	degraded := countFallbacks(items)
	if p.cachingEnabled() {
		if degraded > 0 {
			p.logger.Debug("skipping cache write for degraded chunk",
				"chunk", chunk.Index, "fallback_items", degraded)
		} else if cacheErr := p.cache.Set(ctx, key, items); cacheErr != nil {
			stats.warn(fmt.Sprintf("chunk %d: cache write failed: %v", chunk.Index, cacheErr))
		}
	}

	timing := core.ChunkTiming{
		Index:    chunk.Index,
		Items:    len(items),
		Model:    model,
		Duration: time.Since(chunkStart),
	}
	if degraded > 0 {
		timing.Err = fmt.Sprintf("%d of %d records degraded to fallback", degraded, len(items))
	}
	stats.timing(timing)

	return chunkResult{index: chunk.Index, items: items}
}

func countFallbacks(items []core.NormalizedItem) int {
	n := 0
	for i := range items {
		if items[i].Fallback {
			n++
		}
	}
	return n
}

func (p *Pipeline) cachingEnabled() bool {
	return p.caching && p.cache != nil
}

func (p *Pipeline) effectiveBatchSize() int {
	if !p.batching {
		return 1
	}
	return p.batchSize
}

// Release releases the worker pool. The pipeline should not be used after
// calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
