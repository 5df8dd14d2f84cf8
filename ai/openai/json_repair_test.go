package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSONMissingOpeningQuote(t *testing.T) {
	in := `{index": 0, name": "Widget"}`
	out := repairJSON(in)
	assert.Equal(t, `{"index": 0, "name": "Widget"}`, out)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
}

func TestRepairJSONTrailingComma(t *testing.T) {
	in := `{"items": [{"index": 0, "name": "Widget",},]}`
	out := repairJSON(in)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
}

func TestRepairJSONValidInputUnchanged(t *testing.T) {
	in := `{"items":[{"index":0,"name":"Widget","type":"product","confidence":0.9}]}`
	assert.Equal(t, in, repairJSON(in))
}

func TestBuildBatchPromptNumbersItems(t *testing.T) {
	prompt := buildBatchPrompt([]string{"first\nitem", "second"})
	assert.Contains(t, prompt, "0: first item")
	assert.Contains(t, prompt, "1: second")
}
