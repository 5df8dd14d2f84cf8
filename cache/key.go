package cache

import (
	"fmt"

	"github.com/poiesic/catalyst/core"
)

// Key derives the cache key for a piece of content scoped to a tenant and
// content type. Identical content from the same tenant always maps to the
// same key; the tenant segment guarantees no cross-tenant reads.
func Key(tenant string, contentType core.ContentType, fp core.Fingerprint) string {
	return fmt.Sprintf("%s:%s:%016x", tenant, contentType, uint64(fp))
}

// KeyForContent is a convenience that fingerprints content and builds its key.
func KeyForContent(tenant string, contentType core.ContentType, content string) string {
	return Key(tenant, contentType, core.FingerprintFromContent(content))
}
