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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/catalyst"
	"github.com/poiesic/catalyst/ai"
	"github.com/poiesic/catalyst/ai/mock"
	"github.com/poiesic/catalyst/core"
	"github.com/poiesic/catalyst/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "catalyst",
		Usage: "Catalog ingestion accelerator: normalize, cache, and dedup raw catalog content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "accelerate",
				Usage:  "Normalize a raw catalog file and print the items as JSON",
				Action: accelerateCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB cache directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Usage:    "Tenant identifier for cache scoping",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the raw catalog content file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "content-type",
						Usage: "Content type of the file (pdf, excel, text)",
						Value: "text",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "Normalization service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "default-model",
						Usage: "Model for ordinary content",
						Value: "qwen2.5:3b",
					},
					&cli.StringFlag{
						Name:  "capable-model",
						Usage: "Model for complex content",
						Value: "qwen2.5:14b",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Worker pool size and target chunk count",
						Value: ingestion.DefaultPoolSize,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records per normalization call",
						Value: ingestion.DefaultBatchSize,
					},
					&cli.Float64Flag{
						Name:  "similarity-threshold",
						Usage: "Duplicate similarity threshold in (0, 1]",
						Value: 0.85,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per normalization call",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 200 * time.Millisecond,
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Disable cache lookups and writes",
					},
					&cli.BoolFlag{
						Name:  "no-dedup",
						Usage: "Disable near-duplicate removal",
					},
					&cli.BoolFlag{
						Name:  "sequential",
						Usage: "Process chunks one at a time",
					},
					&cli.BoolFlag{
						Name:  "offline",
						Usage: "Use the deterministic offline normalizer instead of a service",
					},
					&cli.BoolFlag{
						Name:  "stats",
						Usage: "Print run statistics to stderr",
					},
				},
			},
			{
				Name:   "sweep",
				Usage:  "Evict expired cache entries and reclaim storage space",
				Action: sweepCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB cache directory",
						Required: true,
					},
				},
			},
		},
	}
}

func accelerateCommand(c *cli.Context) error {
	ctx := context.Background()

	contentType := core.ContentType(strings.ToLower(c.String("content-type")))
	if err := core.ValidateContentType(contentType); err != nil {
		return err
	}

	raw, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read content file: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithDefaultModel(c.String("default-model")),
		ai.WithCapableModel(c.String("capable-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithPoolSize(c.Int("concurrency")),
		ingestion.WithBatchSize(c.Int("batch-size")),
		ingestion.WithSimilarityThreshold(c.Float64("similarity-threshold")),
		ingestion.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		ingestion.WithCaching(!c.Bool("no-cache")),
		ingestion.WithDedup(!c.Bool("no-dedup")),
		ingestion.WithParallelism(!c.Bool("sequential")),
	}

	accOpts := []catalyst.AcceleratorOption{
		catalyst.WithAIConfig(aiConfig),
		catalyst.WithPipelineOptions(pipelineOpts...),
	}
	if c.Bool("offline") {
		accOpts = append(accOpts, catalyst.WithProvider(mock.NewMockProvider()))
	}

	acc, err := catalyst.New(c.String("db"), accOpts...)
	if err != nil {
		return fmt.Errorf("failed to open accelerator: %w", err)
	}
	defer acc.Close()

	output, err := acc.Accelerate(ctx, core.AcceleratorInput{
		Tenant:      c.String("tenant"),
		Content:     string(raw),
		ContentType: contentType,
		FileName:    c.String("file"),
	})
	if err != nil {
		return fmt.Errorf("acceleration failed: %w", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(itemsForOutput(output.Items)); err != nil {
		return err
	}

	if c.Bool("stats") {
		printStats(os.Stderr, &output.Stats)
	}

	return nil
}

func sweepCommand(c *cli.Context) error {
	// The sweep only touches storage; a provider is never dialed.
	acc, err := catalyst.New(c.String("db"), catalyst.WithProvider(mock.NewMockProvider()))
	if err != nil {
		return fmt.Errorf("failed to open accelerator: %w", err)
	}
	defer acc.Close()

	if err := acc.Sweep(context.Background()); err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Fprintln(os.Stderr, "sweep complete")
	return nil
}

// outputItem is the JSON shape printed for each normalized item.
type outputItem struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Type        string             `json:"type"`
	Confidence  float64            `json:"confidence"`
	Fields      map[string]float64 `json:"field_confidence,omitempty"`
	Reasoning   []string           `json:"reasoning,omitempty"`
	Quality     string             `json:"quality,omitempty"`
	Vendor      string             `json:"vendor,omitempty"`
	Category    string             `json:"category,omitempty"`
	SourceChunk int                `json:"source_chunk"`
	Fallback    bool               `json:"fallback,omitempty"`
}

func itemsForOutput(items []core.NormalizedItem) []outputItem {
	out := make([]outputItem, len(items))
	for i, item := range items {
		out[i] = outputItem{
			Name:        item.Name,
			Description: item.Description,
			Type:        item.Type.String(),
			Confidence:  item.Confidence,
			Fields:      item.Breakdown.Fields,
			Reasoning:   item.Breakdown.Reasoning,
			Quality:     item.Breakdown.Quality,
			Vendor:      item.Vendor,
			Category:    item.Category,
			SourceChunk: item.SourceChunk,
			Fallback:    item.Fallback,
		}
	}
	return out
}

func printStats(w *os.File, stats *core.Stats) {
	fmt.Fprintf(w, "items extracted:    %d\n", stats.ItemsExtracted)
	fmt.Fprintf(w, "items after dedup:  %d\n", stats.ItemsAfterDedup)
	fmt.Fprintf(w, "duplicates removed: %d\n", stats.DuplicatesRemoved)
	fmt.Fprintf(w, "cache hits/misses:  %d/%d (%.0f%%)\n",
		stats.CacheHits, stats.CacheMisses, stats.CacheHitRatio*100)
	fmt.Fprintf(w, "batch calls:        %d\n", stats.BatchCalls)
	fmt.Fprintf(w, "fallback items:     %d\n", stats.FallbackItems)
	for model, count := range stats.ModelRoutes {
		fmt.Fprintf(w, "model %-18s %d chunks\n", model+":", count)
	}
	fmt.Fprintf(w, "duration:           %s\n", stats.Duration)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
