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


// Package mock provides test doubles for the ai interfaces.
//
// The mocks support behavior injection via function fields and record call
// counts for assertions. The default behavior is deterministic: the same
// input always produces the same normalized output, which lets pipeline
// tests assert exact cache and dedup behavior.
//
// Constructors return concrete types (not interfaces) so tests can reach
// the injection fields and counters.
package mock
