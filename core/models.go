package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint is a deterministic 64-bit digest of raw content.
// It identifies content for cache lookups and duplicate detection.
type Fingerprint uint64

// FingerprintFromContent generates a deterministic fingerprint from text
// content using BLAKE2b hashing. Identical content always produces an
// identical fingerprint.
func FingerprintFromContent(text string) Fingerprint {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return Fingerprint(binary.LittleEndian.Uint64(sum))
}

// ContentType tags the originating format of raw catalog content.
type ContentType string

const (
	// ContentTypePDF marks content extracted from a PDF document.
	ContentTypePDF ContentType = "pdf"
	// ContentTypeExcel marks content extracted from a spreadsheet.
	ContentTypeExcel ContentType = "excel"
	// ContentTypeText marks free-text content.
	ContentTypeText ContentType = "text"
)

// ItemType classifies a normalized catalog item.
type ItemType int

const (
	// ItemTypeProduct represents a sellable product.
	ItemTypeProduct ItemType = iota + 1
	// ItemTypeService represents a service offering.
	ItemTypeService
)

// String returns the lowercase label for the item type.
func (t ItemType) String() string {
	switch t {
	case ItemTypeProduct:
		return "product"
	case ItemTypeService:
		return "service"
	default:
		return "unknown"
	}
}

// ConfidenceBreakdown explains how a normalized item's confidence score was
// reached. Populated by the normalization call and carried through dedup to
// the caller.
type ConfidenceBreakdown struct {
	Fields    map[string]float64 // Per-field confidence (e.g. "name", "type")
	Reasoning []string           // Qualitative reasoning from the classifier
	Quality   string             // Overall quality indicator: high, medium, low
}

// NormalizedItem is a single catalog entry after classification and
// normalization. It is the unit the deduplicator clusters and the unit the
// caller persists.
type NormalizedItem struct {
	Name        string
	Description string
	Type        ItemType
	Confidence  float64 // Overall confidence in [0, 1]
	Breakdown   ConfidenceBreakdown
	Vendor      string // Optional enrichment
	Category    string // Optional enrichment
	SourceChunk int    // Index of the chunk this item came from
	Fallback    bool   // True if normalization degraded to a placeholder
}

// Text returns the similarity text for the item, used for shingling.
func (n *NormalizedItem) Text() string {
	if n.Description == "" {
		return n.Name
	}
	return n.Name + " " + n.Description
}

// Chunk is an independently normalizable slice of raw input content.
// It is owned by the orchestrator and consumed by exactly one worker.
type Chunk struct {
	Index int      // Position in the original content, zero-based
	Items []string // Logical records, never split across chunks
	Size  int      // Total byte size of the records
}

// Content returns the chunk's records joined back into one block.
func (c *Chunk) Content() string {
	var size int
	for _, item := range c.Items {
		size += len(item) + 1
	}
	buf := make([]byte, 0, size)
	for i, item := range c.Items {
		if i > 0 {
			buf = append(buf, '\n')
		}
		buf = append(buf, item...)
	}
	return string(buf)
}

// AcceleratorInput carries one run's raw content and routing metadata.
// It is immutable for the duration of the run.
type AcceleratorInput struct {
	Tenant      string
	Content     string
	ContentType ContentType
	FileName    string // Originating file name, informational only
}

// ChunkTiming records per-chunk processing outcomes for observability.
type ChunkTiming struct {
	Index    int
	Items    int
	CacheHit bool
	Model    string // Model the chunk was routed to, empty on cache hit
	Duration time.Duration
	Err      string // Non-empty if the chunk degraded with an error
}

// Stats aggregates a run's observable outcomes. Degraded-quality conditions
// surface here as warnings; they never change the success of the call.
type Stats struct {
	ItemsExtracted    int
	ItemsAfterDedup   int
	CacheHits         int
	CacheMisses       int
	CacheHitRatio     float64
	BatchCalls        int
	FallbackItems     int
	DuplicatesRemoved int
	ModelRoutes       map[string]int
	ChunkTimings      []ChunkTiming
	Warnings          []string
	Duration          time.Duration
}

// AcceleratorOutput is the result of one accelerated run: the final
// deduplicated items plus run statistics.
type AcceleratorOutput struct {
	Items []NormalizedItem
	Stats Stats
}
