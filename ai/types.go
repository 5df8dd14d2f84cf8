package ai

import (
	"strings"

	"github.com/poiesic/catalyst/core"
)

// TypeLabels defines the valid classification labels the normalization
// service may return. The set is closed: everything is a product or a
// service.
var TypeLabels = []string{
	"product",
	"service",
}

// ParseItemType maps a classifier label to a core.ItemType.
// Matching is case-insensitive; unknown labels report false.
func ParseItemType(label string) (core.ItemType, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "product":
		return core.ItemTypeProduct, true
	case "service":
		return core.ItemTypeService, true
	default:
		return 0, false
	}
}
