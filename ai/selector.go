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


package ai

import (
	"math"
	"strings"
)

// Complexity scoring weights and saturation points. The score is a cheap
// heuristic computed synchronously before dispatch; it must never block.
const (
	lengthSaturationBytes = 4000
	ambiguousSaturation   = 3

	weightLength       = 0.25
	weightIrregularity = 0.25
	weightDiversity    = 0.25
	weightMixedSignals = 0.25
)

// Signal terms indicating the two classification families. Content carrying
// both reads as mixed-type and routes to the capable model more readily.
var serviceSignalTerms = []string{
	"service", "support", "consulting", "subscription", "maintenance",
	"license", "training", "hosting", "plan", "management",
}

var productSignalTerms = []string{
	"device", "hardware", "unit", "kit", "appliance", "module",
	"widget", "sensor", "cable", "server",
}

// Terms that leave the item type genuinely unclear.
var ambiguousTerms = []string{
	"misc", "miscellaneous", "other", "various", "assorted", "bundle", "tbd",
}

// ModelSelector routes content to a backing model based on a complexity
// score. Selection is a pure decision: idempotent for identical input and
// free of side effects beyond the choice itself.
type ModelSelector struct {
	defaultModel string
	capableModel string
	threshold    float64
}

// NewModelSelector creates a selector from the routing fields of cfg.
func NewModelSelector(cfg *Config) *ModelSelector {
	return &ModelSelector{
		defaultModel: cfg.DefaultModel,
		capableModel: cfg.CapableModel,
		threshold:    cfg.ComplexityThreshold,
	}
}

// Select scores content and returns the chosen model identifier along with
// the score, for observability.
func (s *ModelSelector) Select(content string) (string, float64) {
	score := ComplexityScore(content)
	if score >= s.threshold {
		return s.capableModel, score
	}
	return s.defaultModel, score
}

// DefaultModel returns the low-cost model identifier.
func (s *ModelSelector) DefaultModel() string {
	return s.defaultModel
}

// ComplexityScore computes a heuristic complexity score in [0, 1] from
// content length, structural irregularity of its lines, vocabulary
// diversity, and the presence of mixed or ambiguous type signals.
func ComplexityScore(content string) float64 {
	if strings.TrimSpace(content) == "" {
		return 0
	}

	score := weightLength*lengthFactor(content) +
		weightIrregularity*irregularityFactor(content) +
		weightDiversity*diversityFactor(content) +
		weightMixedSignals*mixedSignalFactor(content)

	return clamp01(score)
}

func lengthFactor(content string) float64 {
	return clamp01(float64(len(content)) / lengthSaturationBytes)
}

// irregularityFactor measures how uneven line lengths are, as the
// coefficient of variation of non-empty line lengths. Uniform rows (clean
// spreadsheet extracts) score near 0; ragged free text scores higher.
func irregularityFactor(content string) float64 {
	var lengths []float64
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lengths = append(lengths, float64(len(line)))
	}
	if len(lengths) < 2 {
		return 0
	}

	var sum float64
	for _, l := range lengths {
		sum += l
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, l := range lengths {
		d := l - mean
		variance += d * d
	}
	variance /= float64(len(lengths))

	return clamp01(math.Sqrt(variance) / mean)
}

func diversityFactor(content string) float64 {
	words := strings.Fields(strings.ToLower(content))
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.Trim(w, ".,!?;:\"'()[]{}|")] = struct{}{}
	}
	return clamp01(float64(len(unique)) / float64(len(words)))
}

func mixedSignalFactor(content string) float64 {
	lower := strings.ToLower(content)

	var score float64
	if containsAny(lower, serviceSignalTerms) && containsAny(lower, productSignalTerms) {
		score += 0.7
	}

	ambiguous := 0
	for _, term := range ambiguousTerms {
		if strings.Contains(lower, term) {
			ambiguous++
		}
	}
	score += 0.3 * clamp01(float64(ambiguous)/ambiguousSaturation)

	return clamp01(score)
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
