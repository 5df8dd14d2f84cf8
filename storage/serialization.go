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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/catalyst/core"
)

// payloadFormatVersion guards against reading entries written by an
// incompatible release. Bump on any layout change.
const payloadFormatVersion = 1

// CachedItems is the payload stored per cache key: the normalized items for
// one chunk fingerprint, plus the time they were computed.
type CachedItems struct {
	CreatedAt time.Time
	Items     []core.NormalizedItem
}

// MarshalCachedItems serializes a CachedItems payload to bytes.
func MarshalCachedItems(c *CachedItems) []byte {
	buf := make([]byte, sizeCachedItems(c))
	n := varint.Int.Marshal(payloadFormatVersion, buf)
	n += varint.Int64.Marshal(c.CreatedAt.UnixMicro(), buf[n:])
	n += varint.Int.Marshal(len(c.Items), buf[n:])
	for i := range c.Items {
		n += marshalItem(&c.Items[i], buf[n:])
	}
	return buf
}

// UnmarshalCachedItems deserializes a CachedItems payload from bytes.
// Returns ErrSerializationFailed (wrapped) on malformed or incompatible data.
func UnmarshalCachedItems(data []byte) (*CachedItems, error) {
	version, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if version != payloadFormatVersion {
		return nil, fmt.Errorf("%w: unsupported payload version %d", ErrSerializationFailed, version)
	}

	createdAt, m, err := varint.Int64.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += m

	count, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	n += m
	if count < 0 {
		return nil, fmt.Errorf("%w: negative item count", ErrSerializationFailed)
	}

	items := make([]core.NormalizedItem, count)
	for i := 0; i < count; i++ {
		m, err = unmarshalItem(&items[i], data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrSerializationFailed, i, err)
		}
		n += m
	}

	return &CachedItems{
		CreatedAt: time.UnixMicro(createdAt).UTC(),
		Items:     items,
	}, nil
}

func sizeCachedItems(c *CachedItems) int {
	size := varint.Int.Size(payloadFormatVersion)
	size += varint.Int64.Size(c.CreatedAt.UnixMicro())
	size += varint.Int.Size(len(c.Items))
	for i := range c.Items {
		size += sizeItem(&c.Items[i])
	}
	return size
}

func marshalItem(it *core.NormalizedItem, buf []byte) int {
	n := ord.String.Marshal(it.Name, buf)
	n += ord.String.Marshal(it.Description, buf[n:])
	n += varint.Int.Marshal(int(it.Type), buf[n:])
	n += varint.Float64.Marshal(it.Confidence, buf[n:])

	n += varint.Int.Marshal(len(it.Breakdown.Fields), buf[n:])
	for field, conf := range it.Breakdown.Fields {
		n += ord.String.Marshal(field, buf[n:])
		n += varint.Float64.Marshal(conf, buf[n:])
	}
	n += varint.Int.Marshal(len(it.Breakdown.Reasoning), buf[n:])
	for _, reason := range it.Breakdown.Reasoning {
		n += ord.String.Marshal(reason, buf[n:])
	}
	n += ord.String.Marshal(it.Breakdown.Quality, buf[n:])

	n += ord.String.Marshal(it.Vendor, buf[n:])
	n += ord.String.Marshal(it.Category, buf[n:])
	n += varint.Int.Marshal(it.SourceChunk, buf[n:])
	n += ord.Bool.Marshal(it.Fallback, buf[n:])
	return n
}

func unmarshalItem(it *core.NormalizedItem, data []byte) (int, error) {
	var n int

	name, m, err := ord.String.Unmarshal(data)
	if err != nil {
		return 0, err
	}
	n += m

	description, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	itemType, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	confidence, m, err := varint.Float64.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	fieldCount, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m
	var fields map[string]float64
	if fieldCount > 0 {
		fields = make(map[string]float64, fieldCount)
		for i := 0; i < fieldCount; i++ {
			field, m, err := ord.String.Unmarshal(data[n:])
			if err != nil {
				return 0, err
			}
			n += m
			conf, m, err := varint.Float64.Unmarshal(data[n:])
			if err != nil {
				return 0, err
			}
			n += m
			fields[field] = conf
		}
	}

	reasonCount, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m
	var reasoning []string
	if reasonCount > 0 {
		reasoning = make([]string, reasonCount)
		for i := 0; i < reasonCount; i++ {
			reason, m, err := ord.String.Unmarshal(data[n:])
			if err != nil {
				return 0, err
			}
			n += m
			reasoning[i] = reason
		}
	}

	quality, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	vendor, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	category, m, err := ord.String.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	sourceChunk, m, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	fallback, m, err := ord.Bool.Unmarshal(data[n:])
	if err != nil {
		return 0, err
	}
	n += m

	it.Name = name
	it.Description = description
	it.Type = core.ItemType(itemType)
	it.Confidence = confidence
	it.Breakdown = core.ConfidenceBreakdown{
		Fields:    fields,
		Reasoning: reasoning,
		Quality:   quality,
	}
	it.Vendor = vendor
	it.Category = category
	it.SourceChunk = sourceChunk
	it.Fallback = fallback
	return n, nil
}

func sizeItem(it *core.NormalizedItem) int {
	size := ord.String.Size(it.Name)
	size += ord.String.Size(it.Description)
	size += varint.Int.Size(int(it.Type))
	size += varint.Float64.Size(it.Confidence)

	size += varint.Int.Size(len(it.Breakdown.Fields))
	for field, conf := range it.Breakdown.Fields {
		size += ord.String.Size(field)
		size += varint.Float64.Size(conf)
	}
	size += varint.Int.Size(len(it.Breakdown.Reasoning))
	for _, reason := range it.Breakdown.Reasoning {
		size += ord.String.Size(reason)
	}
	size += ord.String.Size(it.Breakdown.Quality)

	size += ord.String.Size(it.Vendor)
	size += ord.String.Size(it.Category)
	size += varint.Int.Size(it.SourceChunk)
	size += ord.Bool.Size(it.Fallback)
	return size
}
