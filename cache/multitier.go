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


package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/poiesic/catalyst/core"
	"github.com/poiesic/catalyst/storage"
)

// Tier identifies which cache level served a lookup.
type Tier int

const (
	// TierNone means the lookup missed both tiers.
	TierNone Tier = iota
	// TierL1 means the in-process tier served the lookup.
	TierL1
	// TierL2 means the durable tier served the lookup.
	TierL2
)

// String returns the tier label used in logs and stats.
func (t Tier) String() string {
	switch t {
	case TierL1:
		return "l1"
	case TierL2:
		return "l2"
	default:
		return "none"
	}
}

const (
	defaultL1Size = 1024
	defaultL1TTL  = 5 * time.Minute
	defaultL2TTL  = 24 * time.Hour
)

// MultiTier maps content fingerprints to previously computed normalization
// results across two tiers. L1 access is lock-protected inside the LRU and
// safe for concurrent workers; L2 is an external store already safe for
// concurrent access.
type MultiTier struct {
	l1     *expirable.LRU[string, []core.NormalizedItem]
	l2     storage.CacheStore // nil means L1-only
	l1TTL  time.Duration
	l2TTL  time.Duration
	logger *slog.Logger
}

// Option configures a MultiTier.
type Option func(*config)

type config struct {
	l1Size int
	l1TTL  time.Duration
	l2TTL  time.Duration
	logger *slog.Logger
}

// WithL1Size sets the maximum number of L1 entries. Default is 1024.
func WithL1Size(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.l1Size = size
		}
	}
}

// WithL1TTL sets the L1 time-to-live. Default is 5 minutes.
func WithL1TTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.l1TTL = ttl
		}
	}
}

// WithL2TTL sets the L2 time-to-live. Default is 24 hours.
func WithL2TTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.l2TTL = ttl
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewMultiTier creates a two-tier cache over the given durable store.
// A nil store yields an L1-only cache, which is valid for offline runs.
func NewMultiTier(l2 storage.CacheStore, opts ...Option) *MultiTier {
	cfg := &config{
		l1Size: defaultL1Size,
		l1TTL:  defaultL1TTL,
		l2TTL:  defaultL2TTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &MultiTier{
		l1:     expirable.NewLRU[string, []core.NormalizedItem](cfg.l1Size, nil, cfg.l1TTL),
		l2:     l2,
		l1TTL:  cfg.l1TTL,
		l2TTL:  cfg.l2TTL,
		logger: cfg.logger.With("component", "cache"),
	}
}

// Get looks up key in L1 then L2. An L2 hit is promoted into L1 so repeated
// lookups within a run stay in memory. Any L2 I/O error is logged and
// reported as a miss.
func (m *MultiTier) Get(ctx context.Context, key string) ([]core.NormalizedItem, Tier, bool) {
	if items, ok := m.l1.Get(key); ok {
		return cloneItems(items), TierL1, true
	}

	if m.l2 == nil {
		return nil, TierNone, false
	}

	data, err := m.l2.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.logger.Warn("durable cache read failed, treating as miss", "key", key, "err", err)
		}
		return nil, TierNone, false
	}

	payload, err := storage.UnmarshalCachedItems(data)
	if err != nil {
		m.logger.Warn("durable cache entry unreadable, treating as miss", "key", key, "err", err)
		return nil, TierNone, false
	}

	// Promote into L1, best-effort.
	m.l1.Add(key, payload.Items)
	return cloneItems(payload.Items), TierL2, true
}

// Set writes items into both tiers. L1 is written synchronously; an L2 write
// failure is returned so the caller can surface a warning, but the L1 write
// still stands — a later Get in the same run sees the fresh entry.
func (m *MultiTier) Set(ctx context.Context, key string, items []core.NormalizedItem) error {
	m.l1.Add(key, cloneItems(items))

	if m.l2 == nil {
		return nil
	}

	payload := &storage.CachedItems{
		CreatedAt: time.Now().UTC(),
		Items:     items,
	}
	if err := m.l2.Set(ctx, key, storage.MarshalCachedItems(payload), m.l2TTL); err != nil {
		m.logger.Warn("durable cache write failed", "key", key, "err", err)
		return err
	}
	return nil
}

// EvictExpired reclaims space held by expired entries in both tiers.
// Expiry checks at read time do not depend on it.
func (m *MultiTier) EvictExpired(ctx context.Context) error {
	// The L1 LRU drops expired entries on access and during its own
	// housekeeping; only L2 needs an explicit sweep.
	if m.l2 == nil {
		return nil
	}
	return m.l2.Sweep(ctx)
}

// Purge drops every L1 entry. Intended for tests.
func (m *MultiTier) Purge() {
	m.l1.Purge()
}

// cloneItems copies the slice so callers and cache never share backing
// arrays; workers annotate items (chunk index) after retrieval.
func cloneItems(items []core.NormalizedItem) []core.NormalizedItem {
	if len(items) == 0 {
		return nil
	}
	cloned := make([]core.NormalizedItem, len(items))
	copy(cloned, items)
	return cloned
}
