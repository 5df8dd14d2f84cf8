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


package chunking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/catalyst/core"
)

// maxUnsplitBytes is the largest content size accepted as a single record.
// Separator-free content above this limit fails with ErrNoSeparator.
const maxUnsplitBytes = 16 * 1024

// ErrNoSeparator indicates oversized content with no recognizable record
// separator. The caller is expected to fall back to a single chunk.
var ErrNoSeparator = errors.New("content has no recognizable record separator")

// Split divides content into at most target ordered chunks along record
// boundaries. Records are distributed evenly while preserving order, so the
// union of all chunks' records equals the records of the whole content.
//
// target is typically the pipeline's worker pool size; values below 1 are
// treated as 1.
func Split(content string, contentType core.ContentType, target int) ([]core.Chunk, error) {
	if target < 1 {
		target = 1
	}

	records := Records(content, contentType)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records found", ErrNoSeparator)
	}
	if len(records) == 1 && len(content) > maxUnsplitBytes {
		return nil, fmt.Errorf("%w: %d bytes in one record", ErrNoSeparator, len(content))
	}

	count := target
	if len(records) < count {
		count = len(records)
	}

	chunks := make([]core.Chunk, 0, count)
	per := len(records) / count
	extra := len(records) % count

	offset := 0
	for i := 0; i < count; i++ {
		n := per
		if i < extra {
			n++
		}
		items := records[offset : offset+n]
		offset += n

		var size int
		for _, item := range items {
			size += len(item)
		}
		chunks = append(chunks, core.Chunk{
			Index: i,
			Items: items,
			Size:  size,
		})
	}

	return chunks, nil
}

// Records splits content into logical records for the given content type.
// Spreadsheet-extracted content splits strictly on newlines (one row per
// record); text and PDF-extracted content prefer blank-line separated
// paragraphs, falling back to lines when the content is single-paragraph.
// Empty records are dropped.
func Records(content string, contentType core.ContentType) []string {
	switch contentType {
	case core.ContentTypeExcel:
		return splitLines(content)
	default:
		paragraphs := splitParagraphs(content)
		if len(paragraphs) > 1 {
			return paragraphs
		}
		return splitLines(content)
	}
}

func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	records := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(strings.TrimSuffix(line, "\r"), " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, line)
	}
	return records
}

func splitParagraphs(content string) []string {
	blocks := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n")
	records := make([]string, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		records = append(records, block)
	}
	return records
}
