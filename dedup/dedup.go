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


package dedup

import (
	"log/slog"

	"github.com/poiesic/catalyst/core"
)

// DefaultThreshold is the estimated Jaccard similarity at or above which
// two items are considered duplicates.
const DefaultThreshold = 0.85

// Deduplicator collapses near-duplicate normalized items.
type Deduplicator struct {
	threshold float64
	logger    *slog.Logger
}

// Option is a functional option for configuring a Deduplicator.
type Option func(*Deduplicator) error

// WithThreshold sets the similarity threshold. Must be in (0, 1].
func WithThreshold(threshold float64) Option {
	return func(d *Deduplicator) error {
		if threshold <= 0 || threshold > 1 {
			return ErrInvalidThreshold
		}
		d.threshold = threshold
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deduplicator) error {
		d.logger = logger
		return nil
	}
}

// New creates a Deduplicator with the default threshold and applies the
// provided options.
func New(opts ...Option) (*Deduplicator, error) {
	d := &Deduplicator{
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "dedup"),
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Result summarizes one deduplication pass.
type Result struct {
	// Items holds the surviving items in first-seen order. Each duplicate
	// cluster is represented by its highest-confidence member, placed at
	// the position of the cluster's first occurrence.
	Items []core.NormalizedItem

	// ClustersCollapsed counts clusters that had more than one member.
	ClustersCollapsed int

	// DuplicatesRemoved counts items dropped in favor of a representative.
	DuplicatesRemoved int

	// SignatureFailures counts items that produced no shingles and were
	// passed through as unique.
	SignatureFailures int
}

// Deduplicate collapses near-duplicates in items. The input slice is not
// modified. Items whose text yields no shingles cannot be compared and
// survive unconditionally.
func (d *Deduplicator) Deduplicate(items []core.NormalizedItem) Result {
	if len(items) < 2 {
		return Result{Items: append([]core.NormalizedItem(nil), items...)}
	}

	sigs := make([]signature, len(items))
	valid := make([]bool, len(items))
	failures := 0

	idx := newLSHIndex()
	for i, item := range items {
		sig, err := computeSignature(shingles(item.Text()))
		if err != nil {
			failures++
			continue
		}
		sigs[i] = sig
		valid[i] = true
		idx.add(i, sig)
	}

	uf := newUnionFind(len(items))
	for _, pair := range idx.candidatePairs() {
		i, j := pair[0], pair[1]
		if estimateSimilarity(sigs[i], sigs[j]) >= d.threshold {
			uf.union(i, j)
		}
	}

	// Pick the highest-confidence member of each cluster; ties keep the
	// first-seen member.
	best := make(map[int]int)
	members := make(map[int]int)
	for i := range items {
		if !valid[i] {
			continue
		}
		root := uf.find(i)
		members[root]++
		if cur, ok := best[root]; !ok || items[i].Confidence > items[cur].Confidence {
			best[root] = i
		}
	}

	result := Result{
		Items:             make([]core.NormalizedItem, 0, len(items)),
		SignatureFailures: failures,
	}
	emitted := make(map[int]bool)
	for i, item := range items {
		if !valid[i] {
			result.Items = append(result.Items, item)
			continue
		}
		root := uf.find(i)
		if emitted[root] {
			result.DuplicatesRemoved++
			continue
		}
		emitted[root] = true
		result.Items = append(result.Items, items[best[root]])
		if members[root] > 1 {
			result.ClustersCollapsed++
		}
	}

	d.logger.Debug("deduplicated items",
		"input", len(items),
		"output", len(result.Items),
		"clusters_collapsed", result.ClustersCollapsed,
		"signature_failures", failures)

	return result
}

// Threshold returns the configured similarity threshold.
func (d *Deduplicator) Threshold() float64 {
	return d.threshold
}
