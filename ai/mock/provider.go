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


package mock

import "github.com/poiesic/catalyst/ai"

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	normalizer *MockNormalizer
}

// NewMockProvider creates a new mock provider with a default mock normalizer.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use GetMockNormalizer() to access the concrete type for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		normalizer: NewMockNormalizer(),
	}
}

// NewMockProviderWithNormalizer creates a mock provider with a custom mock
// normalizer. This allows full control over normalization behavior.
func NewMockProviderWithNormalizer(normalizer *MockNormalizer) ai.Provider {
	return &MockProvider{normalizer: normalizer}
}

// Normalizer returns the mock normalizer.
func (p *MockProvider) Normalizer() ai.Normalizer {
	return p.normalizer
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockNormalizer returns the underlying mock normalizer for test
// assertions. This allows tests to check call counts and inject behavior.
func (p *MockProvider) GetMockNormalizer() *MockNormalizer {
	return p.normalizer
}
