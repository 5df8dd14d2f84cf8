package badger

// Key prefix for normalization cache entries. Keys are already
// tenant-scoped by the cache layer; the prefix isolates them from any other
// data sharing the database.
const cacheEntryPrefix = "normcache"

// makeCacheKey generates the storage key for a cache entry.
func makeCacheKey(key string) []byte {
	buf := make([]byte, 0, len(cacheEntryPrefix)+1+len(key))
	buf = append(buf, cacheEntryPrefix...)
	buf = append(buf, ':')
	buf = append(buf, key...)
	return buf
}
