package ai

import (
	"context"

	"github.com/poiesic/catalyst/core"
)

// BatchResult is one normalized item returned from a batch call, tagged with
// the index of the raw item it belongs to. The backing service may reorder
// results; Index is authoritative.
type BatchResult struct {
	// Index is the zero-based position of the source item in the batch.
	Index int

	// Name is the normalized item name.
	Name string

	// Description is the normalized description, possibly empty.
	Description string

	// Type is the classified item type (product or service).
	Type core.ItemType

	// Confidence is the overall classification confidence in [0, 1].
	Confidence float64

	// FieldConfidence holds per-field confidence scores (e.g. "name", "type").
	FieldConfidence map[string]float64

	// Reasoning holds the classifier's qualitative notes, possibly empty.
	Reasoning []string

	// Vendor and Category are optional enrichment fields.
	Vendor   string
	Category string
}

// Normalizer classifies and normalizes a batch of raw catalog items in one
// call. Implementations must be thread-safe for concurrent use: the pipeline
// issues calls from multiple workers.
type Normalizer interface {
	// NormalizeBatch normalizes items using the given model identifier.
	// The returned results are index-tagged; a result may be missing for an
	// item the service could not parse, and callers degrade those items
	// rather than failing the batch. Returns an error only when the whole
	// call failed.
	NormalizeBatch(ctx context.Context, items []string, model string) ([]BatchResult, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Normalizer returns the batch normalization service.
	// The returned Normalizer is safe for concurrent use.
	Normalizer() Normalizer

	// Close releases resources held by the provider and its services.
	Close() error
}
