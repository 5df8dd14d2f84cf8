package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/catalyst/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogRows(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Widget %d | A widget of grade %d\n", i, i%3)
	}
	return sb.String()
}

func TestSplit_EvenDistribution(t *testing.T) {
	chunks, err := Split(catalogRows(12), core.ContentTypeExcel, 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Len(t, chunk.Items, 4)
	}
}

func TestSplit_UnevenDistribution(t *testing.T) {
	chunks, err := Split(catalogRows(10), core.ContentTypeExcel, 4)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	// 10 records over 4 chunks: 3, 3, 2, 2
	assert.Len(t, chunks[0].Items, 3)
	assert.Len(t, chunks[1].Items, 3)
	assert.Len(t, chunks[2].Items, 2)
	assert.Len(t, chunks[3].Items, 2)
}

func TestSplit_FewerRecordsThanTarget(t *testing.T) {
	chunks, err := Split(catalogRows(2), core.ContentTypeExcel, 5)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

// Merge completeness: concatenating all chunks' records in order reproduces
// the record sequence of a whole-content pass.
func TestSplit_MergeCompleteness(t *testing.T) {
	content := catalogRows(37)
	whole := Records(content, core.ContentTypeExcel)

	for _, target := range []int{1, 2, 3, 5, 8} {
		chunks, err := Split(content, core.ContentTypeExcel, target)
		require.NoError(t, err)

		var merged []string
		for _, chunk := range chunks {
			merged = append(merged, chunk.Items...)
		}
		assert.Equal(t, whole, merged, "target=%d", target)
	}
}

func TestSplit_NoSeparatorOversized(t *testing.T) {
	content := strings.Repeat("x", maxUnsplitBytes+1)
	_, err := Split(content, core.ContentTypeText, 4)
	assert.ErrorIs(t, err, ErrNoSeparator)
}

func TestSplit_NoSeparatorSmallContent(t *testing.T) {
	// A single separator-free record below the size limit is one chunk.
	chunks, err := Split("just one record", core.ContentTypeText, 4)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []string{"just one record"}, chunks[0].Items)
}

func TestRecords_ExcelRows(t *testing.T) {
	content := "Name,Price\r\nWidget A,10\r\n\r\nWidget B,20\n"
	records := Records(content, core.ContentTypeExcel)
	assert.Equal(t, []string{"Name,Price", "Widget A,10", "Widget B,20"}, records)
}

func TestRecords_TextParagraphs(t *testing.T) {
	content := "Cloud Platform\nManaged hosting for teams.\n\nSupport Plan\n24/7 coverage."
	records := Records(content, core.ContentTypeText)
	require.Len(t, records, 2)
	assert.Contains(t, records[0], "Cloud Platform")
	assert.Contains(t, records[1], "Support Plan")
}

func TestRecords_SingleParagraphFallsBackToLines(t *testing.T) {
	content := "Widget A\nWidget B\nWidget C"
	records := Records(content, core.ContentTypeText)
	assert.Equal(t, []string{"Widget A", "Widget B", "Widget C"}, records)
}
