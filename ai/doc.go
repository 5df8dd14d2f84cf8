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


// Package ai provides abstractions for the AI services used in catalyst.
//
// This package defines the interfaces for batch item normalization and the
// model selector that routes content between a cheap default model and a
// more capable one. It follows the dependency inversion principle: the
// pipeline depends on these abstractions, not on a concrete provider.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider) return INTERFACE types to enforce
// abstraction. Test utility constructors (mock.NewMockNormalizer) return
// CONCRETE types to enable assertions and behavior injection.
package ai
