package ingestion

import (
	"sort"
	"sync"
	"time"

	"github.com/poiesic/catalyst/core"
)

// statsCollector accumulates run statistics from concurrent chunk workers.
type statsCollector struct {
	mu            sync.Mutex
	cacheHits     int
	cacheMisses   int
	batchCalls    int
	fallbackItems int
	modelRoutes   map[string]int
	timings       []core.ChunkTiming
	warnings      []string
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		modelRoutes: make(map[string]int),
	}
}

func (s *statsCollector) cacheHit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheHits++
}

func (s *statsCollector) cacheMiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheMisses++
}

func (s *statsCollector) batchCall() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchCalls++
}

func (s *statsCollector) fallback(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallbackItems += count
}

func (s *statsCollector) modelRoute(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelRoutes[model]++
}

func (s *statsCollector) timing(t core.ChunkTiming) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings = append(s.timings, t)
}

func (s *statsCollector) warn(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, msg)
}

// snapshot assembles the final core.Stats. Chunk timings are ordered by
// chunk index regardless of worker completion order.
func (s *statsCollector) snapshot(extracted, afterDedup, duplicatesRemoved int, duration time.Duration) core.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	timings := append([]core.ChunkTiming(nil), s.timings...)
	sort.Slice(timings, func(i, j int) bool {
		return timings[i].Index < timings[j].Index
	})

	ratio := 0.0
	if lookups := s.cacheHits + s.cacheMisses; lookups > 0 {
		ratio = float64(s.cacheHits) / float64(lookups)
	}

	routes := make(map[string]int, len(s.modelRoutes))
	for model, count := range s.modelRoutes {
		routes[model] = count
	}

	return core.Stats{
		ItemsExtracted:    extracted,
		ItemsAfterDedup:   afterDedup,
		CacheHits:         s.cacheHits,
		CacheMisses:       s.cacheMisses,
		CacheHitRatio:     ratio,
		BatchCalls:        s.batchCalls,
		FallbackItems:     s.fallbackItems,
		DuplicatesRemoved: duplicatesRemoved,
		ModelRoutes:       routes,
		ChunkTimings:      timings,
		Warnings:          append([]string(nil), s.warnings...),
		Duration:          duration,
	}
}
