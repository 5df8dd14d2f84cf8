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


package catalyst

import (
	"context"
	"log/slog"

	"github.com/poiesic/catalyst/ai"
	"github.com/poiesic/catalyst/ai/openai"
	"github.com/poiesic/catalyst/cache"
	"github.com/poiesic/catalyst/core"
	"github.com/poiesic/catalyst/ingestion"
	"github.com/poiesic/catalyst/storage"
	"github.com/poiesic/catalyst/storage/badger"
)

// Accelerator wires the durable cache tier, the AI provider, and the
// normalization pipeline behind one handle. It is the entry point for
// applications embedding the library.
type Accelerator struct {
	backend  *badger.Backend
	store    storage.CacheStore
	cache    *cache.MultiTier
	provider ai.Provider
	pipeline *ingestion.Pipeline
	logger   *slog.Logger
}

// AcceleratorOption configures an Accelerator.
type AcceleratorOption func(*acceleratorOptions)

type acceleratorOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	inMemory     bool
	cacheOpts    []cache.Option
	pipelineOpts []ingestion.Option
}

// WithAIConfig sets the AI configuration used to build the default
// OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) AcceleratorOption {
	return func(o *acceleratorOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies an AI provider directly, bypassing the default
// OpenAI-compatible one. The accelerator takes ownership and closes it.
func WithProvider(provider ai.Provider) AcceleratorOption {
	return func(o *acceleratorOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the durable cache tier in memory. Intended for
// tests and ephemeral runs.
func WithInMemoryStorage() AcceleratorOption {
	return func(o *acceleratorOptions) {
		o.inMemory = true
	}
}

// WithCacheOptions forwards options to the multi-tier cache.
func WithCacheOptions(opts ...cache.Option) AcceleratorOption {
	return func(o *acceleratorOptions) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// WithPipelineOptions forwards options to the normalization pipeline.
func WithPipelineOptions(opts ...ingestion.Option) AcceleratorOption {
	return func(o *acceleratorOptions) {
		o.pipelineOpts = append(o.pipelineOpts, opts...)
	}
}

// New creates an Accelerator with its durable cache at filePath.
func New(filePath string, opts ...AcceleratorOption) (*Accelerator, error) {
	options := &acceleratorOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	multiTier := cache.NewMultiTier(store, options.cacheOpts...)

	pipelineOpts := append([]ingestion.Option{
		ingestion.WithCache(multiTier),
	}, options.pipelineOpts...)

	pipeline, err := ingestion.NewPipeline(provider, options.aiConfig, pipelineOpts...)
	if err != nil {
		provider.Close()
		store.Close()
		backend.Close()
		return nil, err
	}

	return &Accelerator{
		backend:  backend,
		store:    store,
		cache:    multiTier,
		provider: provider,
		pipeline: pipeline,
		logger:   slog.Default(),
	}, nil
}

// Accelerate runs the full normalization pipeline over input.
func (a *Accelerator) Accelerate(ctx context.Context, input core.AcceleratorInput) (*core.AcceleratorOutput, error) {
	return a.pipeline.Accelerate(ctx, input)
}

// Cache returns the multi-tier result cache.
func (a *Accelerator) Cache() *cache.MultiTier {
	return a.cache
}

// Sweep evicts expired cache entries and reclaims storage space.
func (a *Accelerator) Sweep(ctx context.Context) error {
	return a.cache.EvictExpired(ctx)
}

// Close releases the pipeline, the AI provider, and the storage backend.
// The accelerator should not be used after Close.
func (a *Accelerator) Close() error {
	a.pipeline.Release()

	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing cache store", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
