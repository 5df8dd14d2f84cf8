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
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/catalyst/ai"
	"github.com/poiesic/catalyst/ai/mock"
	"github.com/poiesic/catalyst/cache"
	"github.com/poiesic/catalyst/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogRecords holds twelve distinct records; records 0 and 8 are text
// variants of the same item and land in different chunks at pool size 3.
var catalogRecords = []string{
	"Cloud Platform Subscription Annual Plan",
	"Rack Server Chassis 2U Redundant Power",
	"Fiber Optic Patch Panel 48 Port",
	"Managed Hosting Service Gold Tier",
	"Industrial Sensor Mounting Bracket Set",
	"Quarterly Consulting Engagement Billing",
	"Wireless Access Point Ceiling Mount",
	"Backup Storage Appliance 24TB Tower",
	"cloud platform subscription annual plan.",
	"Network Cable Tester Professional Edition",
	"Onsite Training Workshop Two Days",
	"Firewall License Renewal One Year",
}

func catalogInput() core.AcceleratorInput {
	return core.AcceleratorInput{
		Tenant:      "acme",
		Content:     strings.Join(catalogRecords, "\n"),
		ContentType: core.ContentTypeText,
		FileName:    "catalog.txt",
	}
}

func newTestPipeline(t *testing.T, provider ai.Provider, opts ...Option) *Pipeline {
	t.Helper()
	base := []Option{
		WithPoolSize(3),
		WithRetry(1, time.Millisecond),
	}
	p, err := NewPipeline(provider, ai.NewConfig(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestNewPipelineRequiresProvider(t *testing.T) {
	_, err := NewPipeline(nil, ai.NewConfig())
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = NewPipeline(mock.NewMockProvider(), nil)
	assert.ErrorIs(t, err, ErrConfigRequired)
}

func TestNewPipelineInvalidOptions(t *testing.T) {
	provider := mock.NewMockProvider()

	_, err := NewPipeline(provider, ai.NewConfig(), WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidBatchSize)

	_, err = NewPipeline(provider, ai.NewConfig(), WithRetry(0, time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestAccelerateFullRun(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider, WithCache(cache.NewMultiTier(nil)))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	assert.Equal(t, 12, output.Stats.ItemsExtracted)
	assert.Equal(t, 11, output.Stats.ItemsAfterDedup)
	assert.Equal(t, 1, output.Stats.DuplicatesRemoved)
	assert.Len(t, output.Items, 11)

	// Three chunks of four records, one batch each.
	assert.Equal(t, 3, output.Stats.BatchCalls)
	assert.Equal(t, 0, output.Stats.CacheHits)
	assert.Equal(t, 3, output.Stats.CacheMisses)
	assert.Equal(t, 0, output.Stats.FallbackItems)

	// The duplicate cluster keeps its first occurrence.
	assert.Equal(t, "Cloud Platform Subscription Annual Plan", output.Items[0].Name)
	for _, item := range output.Items {
		assert.NotEqual(t, "cloud platform subscription annual plan.", item.Name)
	}

	// Every route went to some model and every chunk was timed.
	routed := 0
	for _, count := range output.Stats.ModelRoutes {
		routed += count
	}
	assert.Equal(t, 3, routed)

	require.Len(t, output.Stats.ChunkTimings, 3)
	for i, timing := range output.Stats.ChunkTimings {
		assert.Equal(t, i, timing.Index)
		assert.Equal(t, 4, timing.Items)
		assert.False(t, timing.CacheHit)
	}
}

func TestAccelerateTagsSourceChunk(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider, WithDedup(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)
	require.Len(t, output.Items, 12)

	for i, item := range output.Items {
		assert.Equal(t, i/4, item.SourceChunk, "item %d", i)
	}
}

func TestAccelerateCacheDeterminism(t *testing.T) {
	provider := mock.NewMockProvider()
	normalizer := provider.(*mock.MockProvider).GetMockNormalizer()
	p := newTestPipeline(t, provider, WithCache(cache.NewMultiTier(nil)))

	first, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)
	assert.Equal(t, 3, normalizer.CallCount())

	second, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	// Everything served from cache: no new service calls.
	assert.Equal(t, 3, normalizer.CallCount())
	assert.Equal(t, 0, second.Stats.BatchCalls)
	assert.Equal(t, 3, second.Stats.CacheHits)
	assert.Equal(t, 0, second.Stats.CacheMisses)
	assert.Equal(t, 1.0, second.Stats.CacheHitRatio)

	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.Stats.ItemsExtracted, second.Stats.ItemsExtracted)
}

func TestAccelerateCacheIsolatedByTenant(t *testing.T) {
	provider := mock.NewMockProvider()
	normalizer := provider.(*mock.MockProvider).GetMockNormalizer()
	p := newTestPipeline(t, provider, WithCache(cache.NewMultiTier(nil)))

	_, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	other := catalogInput()
	other.Tenant = "globex"
	output, err := p.Accelerate(context.Background(), other)
	require.NoError(t, err)

	assert.Equal(t, 0, output.Stats.CacheHits)
	assert.Equal(t, 6, normalizer.CallCount())
}

func TestAccelerateConcurrencyBounded(t *testing.T) {
	var inFlight, maxInFlight atomic.Int64
	var mu sync.Mutex

	normalizer := mock.NewMockNormalizer()
	normalizer.NormalizeBatchFunc = func(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
		cur := inFlight.Add(1)
		mu.Lock()
		if cur > maxInFlight.Load() {
			maxInFlight.Store(cur)
		}
		mu.Unlock()
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)

		results := make([]ai.BatchResult, len(items))
		for i, item := range items {
			results[i] = ai.BatchResult{
				Index:      i,
				Name:       item,
				Type:       core.ItemTypeProduct,
				Confidence: 0.9,
			}
		}
		return results, nil
	}

	provider := mock.NewMockProviderWithNormalizer(normalizer)
	p := newTestPipeline(t, provider, WithPoolSize(4), WithDedup(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	assert.Len(t, output.Items, 12)
	assert.LessOrEqual(t, maxInFlight.Load(), int64(4))
	assert.Greater(t, maxInFlight.Load(), int64(1), "chunks should overlap")
}

func TestAcceleratePartialFailureContained(t *testing.T) {
	normalizer := mock.NewMockNormalizer()
	normalizer.NormalizeBatchFunc = func(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
		for _, item := range items {
			if strings.Contains(item, "Managed Hosting") {
				return nil, errors.New("model unavailable")
			}
		}
		results := make([]ai.BatchResult, len(items))
		for i, item := range items {
			results[i] = ai.BatchResult{
				Index:      i,
				Name:       item,
				Type:       core.ItemTypeProduct,
				Confidence: 0.9,
			}
		}
		return results, nil
	}

	provider := mock.NewMockProviderWithNormalizer(normalizer)
	p := newTestPipeline(t, provider, WithDedup(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)
	require.Len(t, output.Items, 12)

	// Record 3 sits in chunk 0, so that whole chunk's batch degrades.
	assert.Equal(t, 4, output.Stats.FallbackItems)
	assert.NotEmpty(t, output.Stats.Warnings)

	fallbacks := 0
	for _, item := range output.Items {
		if item.Fallback {
			fallbacks++
			assert.Equal(t, 0.1, item.Confidence)
			assert.Equal(t, 0, item.SourceChunk)
		} else {
			assert.Equal(t, 0.9, item.Confidence)
		}
	}
	assert.Equal(t, 4, fallbacks)
}

func TestAccelerateDegradedChunkNotCached(t *testing.T) {
	var outage atomic.Bool
	outage.Store(true)

	normalizer := mock.NewMockNormalizer()
	normalizer.NormalizeBatchFunc = func(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
		if outage.Load() {
			return nil, errors.New("model unavailable")
		}
		results := make([]ai.BatchResult, len(items))
		for i, item := range items {
			results[i] = ai.BatchResult{
				Index:      i,
				Name:       item,
				Type:       core.ItemTypeProduct,
				Confidence: 0.9,
			}
		}
		return results, nil
	}

	provider := mock.NewMockProviderWithNormalizer(normalizer)
	p := newTestPipeline(t, provider, WithCache(cache.NewMultiTier(nil)), WithDedup(false))

	// First run during an outage: every record degrades to a fallback item.
	first, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)
	assert.Equal(t, 12, first.Stats.FallbackItems)

	// Once the service recovers, the same content must be renormalized
	// rather than served from entries written during the outage.
	outage.Store(false)
	second, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	assert.Equal(t, 0, second.Stats.CacheHits)
	assert.Equal(t, 3, second.Stats.BatchCalls)
	assert.Equal(t, 0, second.Stats.FallbackItems)
	for _, item := range second.Items {
		assert.False(t, item.Fallback, "item %q", item.Name)
		assert.Equal(t, 0.9, item.Confidence)
	}

	// A healthy run is cached as usual.
	third, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)
	assert.Equal(t, 3, third.Stats.CacheHits)
	assert.Equal(t, 0, third.Stats.BatchCalls)
}

func TestAccelerateDegradedChunkTimingRecordsError(t *testing.T) {
	normalizer := mock.NewMockNormalizer()
	normalizer.NormalizeBatchFunc = func(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
		for _, item := range items {
			if strings.Contains(item, "Managed Hosting") {
				return nil, errors.New("model unavailable")
			}
		}
		results := make([]ai.BatchResult, len(items))
		for i, item := range items {
			results[i] = ai.BatchResult{
				Index:      i,
				Name:       item,
				Type:       core.ItemTypeProduct,
				Confidence: 0.9,
			}
		}
		return results, nil
	}

	provider := mock.NewMockProviderWithNormalizer(normalizer)
	p := newTestPipeline(t, provider, WithDedup(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)
	require.Len(t, output.Stats.ChunkTimings, 3)

	// Record 3 sits in chunk 0, so only that chunk's timing carries an error.
	assert.Contains(t, output.Stats.ChunkTimings[0].Err, "4 of 4 records degraded")
	assert.Empty(t, output.Stats.ChunkTimings[1].Err)
	assert.Empty(t, output.Stats.ChunkTimings[2].Err)
}

func TestAccelerateMissingResultsDegrade(t *testing.T) {
	normalizer := mock.NewMockNormalizer()
	normalizer.NormalizeBatchFunc = func(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
		// Drop every other record, as a lossy service would.
		var results []ai.BatchResult
		for i, item := range items {
			if i%2 == 1 {
				continue
			}
			results = append(results, ai.BatchResult{
				Index:      i,
				Name:       item,
				Type:       core.ItemTypeService,
				Confidence: 0.8,
			})
		}
		return results, nil
	}

	provider := mock.NewMockProviderWithNormalizer(normalizer)
	p := newTestPipeline(t, provider, WithDedup(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	require.Len(t, output.Items, 12)
	assert.Equal(t, 6, output.Stats.FallbackItems)
}

func TestAccelerateSequential(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider, WithParallelism(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	assert.Equal(t, 12, output.Stats.ItemsExtracted)
	assert.Equal(t, 11, output.Stats.ItemsAfterDedup)
}

func TestAccelerateBatchingDisabled(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider, WithBatching(false), WithDedup(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	// One call per record instead of one per chunk.
	assert.Equal(t, 12, output.Stats.BatchCalls)
	assert.Len(t, output.Items, 12)
}

func TestAccelerateDedupDisabled(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider, WithDedup(false))

	output, err := p.Accelerate(context.Background(), catalogInput())
	require.NoError(t, err)

	assert.Len(t, output.Items, 12)
	assert.Equal(t, 0, output.Stats.DuplicatesRemoved)
}

func TestAccelerateNoSeparatorDegradesToSingleChunk(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider)

	input := core.AcceleratorInput{
		Tenant:      "acme",
		Content:     strings.Repeat("x", 20_000),
		ContentType: core.ContentTypeText,
	}

	output, err := p.Accelerate(context.Background(), input)
	require.NoError(t, err)

	assert.Len(t, output.Items, 1)
	assert.Equal(t, 1, output.Stats.BatchCalls)
	require.NotEmpty(t, output.Stats.Warnings)
	assert.Contains(t, output.Stats.Warnings[0], "single chunk")
}

func TestAccelerateInvalidInput(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider)

	_, err := p.Accelerate(context.Background(), core.AcceleratorInput{
		Tenant:      "acme",
		Content:     "   ",
		ContentType: core.ContentTypeText,
	})
	assert.ErrorIs(t, err, core.ErrEmptyContent)

	_, err = p.Accelerate(context.Background(), core.AcceleratorInput{
		Tenant:      "",
		Content:     "something",
		ContentType: core.ContentTypeText,
	})
	assert.ErrorIs(t, err, core.ErrEmptyTenant)

	_, err = p.Accelerate(context.Background(), core.AcceleratorInput{
		Tenant:      "acme",
		Content:     "something",
		ContentType: core.ContentType("csv"),
	})
	assert.ErrorIs(t, err, core.ErrInvalidContentType)
}

func TestAccelerateCanceledContext(t *testing.T) {
	provider := mock.NewMockProvider()
	p := newTestPipeline(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	output, err := p.Accelerate(ctx, catalogInput())
	assert.ErrorIs(t, err, context.Canceled)

	// Nothing completed, but the partial output still reports the run.
	require.NotNil(t, output)
	assert.Empty(t, output.Items)
	require.NotEmpty(t, output.Stats.Warnings)
	assert.Contains(t, output.Stats.Warnings[0], "canceled")
}

func TestAccelerateMidRunCancelKeepsCompletedChunks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	normalizer := mock.NewMockNormalizer()
	normalizer.NormalizeBatchFunc = func(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
		results := make([]ai.BatchResult, len(items))
		for i, item := range items {
			results[i] = ai.BatchResult{
				Index:      i,
				Name:       item,
				Type:       core.ItemTypeProduct,
				Confidence: 0.9,
			}
		}
		// Cancel once the first chunk's batch has been produced; later
		// chunks see the canceled context before issuing a call.
		cancel()
		return results, nil
	}

	provider := mock.NewMockProviderWithNormalizer(normalizer)
	p := newTestPipeline(t, provider, WithParallelism(false), WithDedup(false))

	output, err := p.Accelerate(ctx, catalogInput())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, output)

	// Chunk 0 finished before the cancellation and is kept.
	assert.Len(t, output.Items, 4)
	assert.Equal(t, 4, output.Stats.ItemsExtracted)
	require.NotEmpty(t, output.Stats.Warnings)
	assert.Contains(t, output.Stats.Warnings[0], "1 of 3 chunks completed")
}
