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


// Package dedup removes near-duplicate normalized items.
//
// Items are shingled into token 3-grams, sketched with MinHash signatures,
// and bucketed with locality-sensitive hashing so only candidate pairs are
// compared. Candidates whose estimated Jaccard similarity reaches the
// threshold are merged with union-find; each cluster keeps its highest
// confidence member as the representative.
//
// Deduplication is deterministic for a given input order and idempotent:
// running it over its own output removes nothing further.
package dedup
