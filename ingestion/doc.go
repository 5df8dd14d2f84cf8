// Package ingestion provides pipeline orchestration for accelerated catalog
// normalization.
//
// The Pipeline type manages the full run for one piece of raw content:
//   - Splitting content into independently processable chunks
//   - Serving chunks from the multi-tier result cache where possible
//   - Routing cache misses to an AI model chosen by complexity
//   - Normalizing chunk records in batched calls with retry
//   - Collapsing near-duplicate items across chunk boundaries
//
// Chunks are processed concurrently on a bounded worker pool. Failures are
// contained: a chunk or batch that cannot be normalized degrades to
// low-confidence fallback items and a warning, never a failed run.
package ingestion
