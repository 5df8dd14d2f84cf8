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


package core

import (
	"fmt"
	"strings"
)

// ValidateInput validates an AcceleratorInput according to domain rules.
//
// Validation rules:
//   - Tenant must not be empty (cache keys are tenant-scoped)
//   - Content must not be empty or whitespace-only
//   - ContentType must be one of the recognized tags
//
// NOT validated:
//   - FileName (informational only)
func ValidateInput(input *AcceleratorInput) error {
	if input == nil {
		return fmt.Errorf("%w: input is nil", ErrInvalidInput)
	}

	if strings.TrimSpace(input.Tenant) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyTenant)
	}

	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidInput, ErrEmptyContent)
	}

	if err := ValidateContentType(input.ContentType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return nil
}

// ValidateContentType validates that a ContentType has a recognized value.
func ValidateContentType(ct ContentType) error {
	switch ct {
	case ContentTypePDF, ContentTypeExcel, ContentTypeText:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidContentType, string(ct))
	}
}

// ValidateItemType validates that an ItemType has a valid value.
func ValidateItemType(t ItemType) error {
	if t != ItemTypeProduct && t != ItemTypeService {
		return fmt.Errorf("%w: value %d", ErrInvalidItemType, t)
	}
	return nil
}

// ValidateItem validates a NormalizedItem according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Type must be valid (product or service)
//   - Confidence must be within [0, 1]
//
// NOT validated (optional enrichment):
//   - Vendor, Category, Breakdown
func ValidateItem(item *NormalizedItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}

	if item.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyItemName)
	}

	if err := ValidateItemType(item.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}

	if item.Confidence < 0 || item.Confidence > 1 {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrInvalidConfidence)
	}

	return nil
}
