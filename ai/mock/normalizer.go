package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/catalyst/ai"
	"github.com/poiesic/catalyst/core"
)

// MockNormalizer is a test double for ai.Normalizer.
// It allows custom behavior injection via function fields and is safe for
// concurrent use, matching the contract the pipeline relies on.
type MockNormalizer struct {
	// NormalizeBatchFunc is called by NormalizeBatch if set.
	// If nil, uses default deterministic behavior.
	NormalizeBatchFunc func(ctx context.Context, items []string, model string) ([]ai.BatchResult, error)

	mu         sync.Mutex
	callCount  int
	modelCalls map[string]int
}

// NewMockNormalizer creates a mock normalizer with default deterministic
// behavior. Returns concrete type to allow test assertions.
func NewMockNormalizer() *MockNormalizer {
	return &MockNormalizer{
		modelCalls: make(map[string]int),
	}
}

// NormalizeBatch produces one deterministic result per input item.
func (m *MockNormalizer) NormalizeBatch(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
	m.mu.Lock()
	m.callCount++
	m.modelCalls[model]++
	fn := m.NormalizeBatchFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, items, model)
	}

	results := make([]ai.BatchResult, len(items))
	for i, item := range items {
		results[i] = deterministicResult(i, item)
	}
	return results, nil
}

// CallCount returns the number of NormalizeBatch invocations.
func (m *MockNormalizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// ModelCalls returns a copy of the per-model invocation counts.
func (m *MockNormalizer) ModelCalls() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.modelCalls))
	for k, v := range m.modelCalls {
		out[k] = v
	}
	return out
}

// Reset clears counters and injected behavior.
func (m *MockNormalizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.modelCalls = make(map[string]int)
	m.NormalizeBatchFunc = nil
}

// deterministicResult classifies an item by keyword so that identical input
// always yields an identical normalized item.
func deterministicResult(index int, item string) ai.BatchResult {
	lower := strings.ToLower(item)

	typ := core.ItemTypeProduct
	if strings.Contains(lower, "service") ||
		strings.Contains(lower, "support") ||
		strings.Contains(lower, "consulting") ||
		strings.Contains(lower, "subscription") {
		typ = core.ItemTypeService
	}

	return ai.BatchResult{
		Index:       index,
		Name:        strings.TrimSpace(item),
		Description: "normalized: " + strings.TrimSpace(item),
		Type:        typ,
		Confidence:  0.9,
		FieldConfidence: map[string]float64{
			"name": 0.95,
			"type": 0.85,
		},
		Reasoning: []string{"keyword classification"},
	}
}
