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

import "errors"

// Domain validation errors
var (
	// ErrInvalidInput indicates an AcceleratorInput failed validation.
	// This is the only input-side error that aborts a run.
	ErrInvalidInput = errors.New("invalid accelerator input")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyTenant indicates the Tenant field is empty.
	ErrEmptyTenant = errors.New("tenant cannot be empty")

	// ErrInvalidContentType indicates an unrecognized ContentType value.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrInvalidItemType indicates an invalid ItemType value.
	ErrInvalidItemType = errors.New("invalid item type")

	// ErrInvalidConfidence indicates a confidence score outside [0, 1].
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")

	// ErrInvalidItem indicates a NormalizedItem failed validation.
	ErrInvalidItem = errors.New("invalid normalized item")

	// ErrEmptyItemName indicates the item Name field is empty.
	ErrEmptyItemName = errors.New("item name cannot be empty")
)
