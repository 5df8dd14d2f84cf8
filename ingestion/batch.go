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
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/catalyst/ai"
	"github.com/poiesic/catalyst/core"
)

// batchNormalizer drives the normalization service for one chunk at a time:
// it partitions the chunk's records into batches, retries transient call
// failures, and degrades unrecoverable records to fallback items.
type batchNormalizer struct {
	normalizer  ai.Normalizer
	batchSize   int
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// normalizeChunk normalizes all records of chunk with the given model.
// The returned slice always has one item per record. An error is returned
// only for context cancellation; every service-level failure is contained
// as fallback items.
func (b *batchNormalizer) normalizeChunk(ctx context.Context, chunk core.Chunk, model string, stats *statsCollector) ([]core.NormalizedItem, error) {
	items := make([]core.NormalizedItem, 0, len(chunk.Items))

	for start := 0; start < len(chunk.Items); start += b.batchSize {
		end := min(start+b.batchSize, len(chunk.Items))
		batch := chunk.Items[start:end]

		normalized, err := b.normalizeBatch(ctx, batch, model, chunk.Index, stats)
		if err != nil {
			return nil, err
		}
		items = append(items, normalized...)
	}

	return items, nil
}

func (b *batchNormalizer) normalizeBatch(ctx context.Context, batch []string, model string, chunkIndex int, stats *statsCollector) ([]core.NormalizedItem, error) {
	stats.batchCall()

	var results []ai.BatchResult
	err := RetryWithBackoff(ctx, func() error {
		var callErr error
		results, callErr = b.normalizer.NormalizeBatch(ctx, batch, model)
		return callErr
	}, b.maxAttempts, b.baseDelay)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		b.logger.Warn("batch normalization failed, degrading to fallback items",
			"chunk", chunkIndex, "model", model, "batch_size", len(batch), "err", err)
		stats.warn(fmt.Sprintf("chunk %d: batch of %d degraded to fallback: %v",
			chunkIndex, len(batch), err))
		stats.fallback(len(batch))

		items := make([]core.NormalizedItem, len(batch))
		for i, raw := range batch {
			items[i] = fallbackItem(raw, chunkIndex)
		}
		return items, nil
	}

	// Results are index-tagged and may be missing for records the service
	// could not parse. Keep one slot per record.
	byIndex := make(map[int]ai.BatchResult, len(results))
	for _, result := range results {
		byIndex[result.Index] = result
	}

	items := make([]core.NormalizedItem, len(batch))
	for i, raw := range batch {
		result, ok := byIndex[i]
		if !ok {
			b.logger.Debug("record missing from batch response, using fallback",
				"chunk", chunkIndex, "record", i)
			stats.fallback(1)
			items[i] = fallbackItem(raw, chunkIndex)
			continue
		}
		items[i] = toNormalizedItem(result, chunkIndex)
	}

	return items, nil
}

// fallbackItem wraps a raw record that could not be normalized. The item
// survives the run with minimal confidence so no input is silently lost.
func fallbackItem(raw string, chunkIndex int) core.NormalizedItem {
	return core.NormalizedItem{
		Name:       strings.TrimSpace(raw),
		Type:       core.ItemTypeProduct,
		Confidence: 0.1,
		Breakdown: core.ConfidenceBreakdown{
			Reasoning: []string{"normalization unavailable, raw record preserved"},
			Quality:   "low",
		},
		SourceChunk: chunkIndex,
		Fallback:    true,
	}
}

func toNormalizedItem(result ai.BatchResult, chunkIndex int) core.NormalizedItem {
	return core.NormalizedItem{
		Name:        result.Name,
		Description: result.Description,
		Type:        result.Type,
		Confidence:  result.Confidence,
		Breakdown: core.ConfidenceBreakdown{
			Fields:    result.FieldConfidence,
			Reasoning: result.Reasoning,
			Quality:   qualityLabel(result.Confidence),
		},
		Vendor:      result.Vendor,
		Category:    result.Category,
		SourceChunk: chunkIndex,
	}
}

func qualityLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "high"
	case confidence >= 0.5:
		return "medium"
	default:
		return "low"
	}
}
