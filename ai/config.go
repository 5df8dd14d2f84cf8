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
	"errors"
	"strings"
)

// Config holds configuration for AI service providers and model routing.
type Config struct {
	// Host is the base URL for the OpenAI-compatible normalization API.
	// Example: "http://localhost:11434/v1" for a local server
	Host string

	// DefaultModel is the low-cost model used for ordinary content.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	DefaultModel string

	// CapableModel is the higher-capability model used when content
	// complexity exceeds ComplexityThreshold.
	// Example: "qwen2.5:14b", "gpt-4o"
	CapableModel string

	// ComplexityThreshold is the complexity score (0-1) at or above which
	// content is routed to CapableModel.
	// Default: 0.6
	ComplexityThreshold float64

	// MinConfidence is the confidence floor for results accepted from the
	// normalization service. Results below it are treated as malformed and
	// degraded to fallback items.
	// Default: 0.3
	MinConfidence float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the normalization service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithDefaultModel sets the low-cost model identifier.
func WithDefaultModel(model string) ConfigOption {
	return func(c *Config) {
		c.DefaultModel = model
	}
}

// WithCapableModel sets the higher-capability model identifier.
func WithCapableModel(model string) ConfigOption {
	return func(c *Config) {
		c.CapableModel = model
	}
}

// WithComplexityThreshold sets the routing threshold.
func WithComplexityThreshold(threshold float64) ConfigOption {
	return func(c *Config) {
		c.ComplexityThreshold = threshold
	}
}

// WithMinConfidence sets the accepted-result confidence floor.
func WithMinConfidence(min float64) ConfigOption {
	return func(c *Config) {
		c.MinConfidence = min
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	return &Config{
		Host:                "http://localhost:11434/v1",
		DefaultModel:        "qwen2.5:3b",
		CapableModel:        "qwen2.5:14b",
		ComplexityThreshold: 0.6,
		MinConfidence:       0.3,
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options. This is the recommended way to create a Config.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithDefaultModel("gpt-4o-mini"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It adds the
// /v1 suffix to the host if missing, which is required by most
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.DefaultModel == "" {
		return errors.New("ai config: DefaultModel is required")
	}
	if c.CapableModel == "" {
		return errors.New("ai config: CapableModel is required")
	}
	if c.ComplexityThreshold < 0 || c.ComplexityThreshold > 1 {
		return errors.New("ai config: ComplexityThreshold must be between 0 and 1")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("ai config: MinConfidence must be between 0 and 1")
	}
	return nil
}
