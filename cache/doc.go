// Package cache provides the two-tier normalization cache.
//
// Tier 1 is a size- and TTL-bounded in-process LRU with minutes-scale expiry;
// tier 2 is a durable storage.CacheStore with day-scale expiry that survives
// process restarts. Lookups try L1 then L2, promoting L2 hits into L1. Any
// tier-2 I/O failure degrades to a miss: the cache is an optimization, never
// a correctness dependency of the pipeline.
package cache
