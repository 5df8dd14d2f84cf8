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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/catalyst/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Normalizer implements ai.Normalizer using OpenAI-compatible chat APIs.
type Normalizer struct {
	client        llms.Model
	minConfidence float64
	logger        *slog.Logger
}

// normalizedItem is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type normalizedItem struct {
	Index           int                `json:"index"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Type            string             `json:"type"`
	Confidence      float64            `json:"confidence"`
	FieldConfidence map[string]float64 `json:"field_confidence"`
	Reasoning       []string           `json:"reasoning"`
	Vendor          string             `json:"vendor"`
	Category        string             `json:"category"`
}

// batchResponse is the wrapper structure for the LLM's JSON response.
type batchResponse struct {
	Items []normalizedItem `json:"items"`
}

// newNormalizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newNormalizer(config *ai.Config) (*Normalizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/classification
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken("none"),
		openai.WithModel(config.DefaultModel),
	)
	if err != nil {
		return nil, err
	}

	return &Normalizer{
		client:        client,
		minConfidence: config.MinConfidence,
		logger:        slog.Default().With("component", "openai-normalizer"),
	}, nil
}

// NewNormalizer creates a new batch normalizer using the provided configuration.
//
// Returns ai.Normalizer interface to enforce abstraction.
func NewNormalizer(config *ai.Config) (ai.Normalizer, error) {
	return newNormalizer(config)
}

// NormalizeBatch classifies and normalizes a batch of raw catalog items in a
// single chat call. Results below the confidence floor or with indexes
// outside the batch are discarded; callers degrade the missing items.
func (n *Normalizer) NormalizeBatch(ctx context.Context, items []string, model string) ([]ai.BatchResult, error) {
	if len(items) == 0 {
		return []ai.BatchResult{}, nil
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildBatchPrompt(items)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result batchResponse
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := n.client.GenerateContent(ctx, content,
			llms.WithTemperature(0.0),
			llms.WithJSONMode(),
			llms.WithModel(model))
		if err != nil {
			n.logger.Error("failed to generate content", "attempt", attempt+1, "model", model, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			n.logger.Debug("no choices returned from model", "model", model)
			return []ai.BatchResult{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			n.logger.Warn("error parsing normalizer response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		n.logger.Error("failed to parse normalizer response after retries", "err", lastErr)
		return nil, lastErr
	}

	results := make([]ai.BatchResult, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Index < 0 || item.Index >= len(items) {
			n.logger.Warn("discarding result with out-of-range index", "index", item.Index)
			continue
		}

		typ, ok := ai.ParseItemType(item.Type)
		if !ok {
			n.logger.Warn("discarding result with unknown type",
				"index", item.Index, "type", item.Type)
			continue
		}

		confidence := clampConfidence(item.Confidence)
		if confidence < n.minConfidence {
			n.logger.Debug("discarding low-confidence result",
				"index", item.Index, "confidence", confidence)
			continue
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = scrubString(items[item.Index])
		}

		results = append(results, ai.BatchResult{
			Index:           item.Index,
			Name:            name,
			Description:     strings.TrimSpace(item.Description),
			Type:            typ,
			Confidence:      confidence,
			FieldConfidence: item.FieldConfidence,
			Reasoning:       item.Reasoning,
			Vendor:          strings.TrimSpace(item.Vendor),
			Category:        strings.TrimSpace(item.Category),
		})
	}

	n.logger.Debug("normalized batch",
		"model", model,
		"sent", len(items),
		"accepted", len(results))

	return results, nil
}

// buildBatchPrompt numbers the raw items so the model can tag each result
// with its source index.
func buildBatchPrompt(items []string) string {
	var b strings.Builder
	b.WriteString("Normalize the following catalog items:\n\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d: %s\n", i, scrubControl(item))
	}
	return b.String()
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
