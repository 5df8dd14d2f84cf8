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


// Package storage provides the durable cache-store abstraction for catalyst.
//
// This package defines the CacheStore interface that decouples the durable
// (L2) cache tier from its implementation, plus the binary serialization of
// cached normalization payloads. The badger subpackage provides the default
// BadgerDB-backed implementation.
//
// # Constructor Return Type Pattern
//
// Public constructors return the CacheStore interface to enforce abstraction
// and enable alternative backends:
//
//	store, err := badger.NewStore(backend)  // returns storage.CacheStore
//
// Consumers (the cache package, tests) depend only on the interface, so a
// failing or in-memory store can be substituted without modification.
package storage
