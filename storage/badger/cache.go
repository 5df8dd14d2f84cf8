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


package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/catalyst/storage"
)

// Store implements storage.CacheStore on BadgerDB. Entries are written with
// badger's native per-entry TTL, so expiry is enforced by the database at
// read time without any sweep having to run first.
type Store struct {
	backend *Backend
}

var _ storage.CacheStore = (*Store)(nil)

// NewStore creates a CacheStore on the given backend.
func NewStore(backend *Backend) (storage.CacheStore, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &Store{backend: backend}, nil
}

// Get retrieves the value for key. Expired and missing keys both return
// storage.ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var value []byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	}, false)

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key with the given time-to-live.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: %s", storage.ErrInvalidTTL, ttl)
	}
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeCacheKey(key), value).WithTTL(ttl)
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Sweep reclaims value-log space held by expired entries. Badger already
// hides expired keys from reads; this only compacts the underlying files.
func (s *Store) Sweep(ctx context.Context) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	passes := s.backend.RunValueLogGC()
	if passes > 0 {
		s.backend.logger.Debug("cache sweep reclaimed space", "gcPasses", passes)
	}
	return nil
}

// Close releases resources. The backend is owned by the caller; Store has
// nothing of its own to release.
func (s *Store) Close() error {
	return nil
}
