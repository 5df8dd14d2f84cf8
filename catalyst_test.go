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
	"path/filepath"
	"testing"

	"github.com/poiesic/catalyst/ai/mock"
	"github.com/poiesic/catalyst/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInput() core.AcceleratorInput {
	return core.AcceleratorInput{
		Tenant:      "acme",
		Content:     "Rack Server Chassis 2U\nManaged Hosting Service Gold Tier\nFiber Optic Patch Panel",
		ContentType: core.ContentTypeText,
		FileName:    "catalog.txt",
	}
}

func newTestAccelerator(t *testing.T, opts ...AcceleratorOption) *Accelerator {
	t.Helper()
	base := []AcceleratorOption{
		WithInMemoryStorage(),
		WithProvider(mock.NewMockProvider()),
	}
	acc, err := New("", append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { acc.Close() })
	return acc
}

func TestNewAccelerator(t *testing.T) {
	acc := newTestAccelerator(t)

	assert.NotNil(t, acc.Cache())
	assert.NotNil(t, acc.backend)
	assert.NotNil(t, acc.pipeline)
}

func TestAcceleratorRun(t *testing.T) {
	acc := newTestAccelerator(t)

	output, err := acc.Accelerate(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, 3, output.Stats.ItemsExtracted)
	assert.Len(t, output.Items, 3)

	// Service classification comes through the full stack.
	var serviceSeen bool
	for _, item := range output.Items {
		if item.Type == core.ItemTypeService {
			serviceSeen = true
		}
	}
	assert.True(t, serviceSeen)
}

func TestAcceleratorDurableCacheHit(t *testing.T) {
	provider := mock.NewMockProvider()
	normalizer := provider.(*mock.MockProvider).GetMockNormalizer()

	acc := newTestAccelerator(t, WithProvider(provider))

	_, err := acc.Accelerate(context.Background(), testInput())
	require.NoError(t, err)
	firstCalls := normalizer.CallCount()
	require.Greater(t, firstCalls, 0)

	// Drop the in-process tier; the durable tier must still serve the rerun.
	acc.Cache().Purge()

	output, err := acc.Accelerate(context.Background(), testInput())
	require.NoError(t, err)

	assert.Equal(t, firstCalls, normalizer.CallCount())
	assert.Greater(t, output.Stats.CacheHits, 0)
	assert.Equal(t, 0, output.Stats.CacheMisses)
}

func TestAcceleratorOnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalyst_db")

	acc, err := New(dir, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	output, err := acc.Accelerate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Len(t, output.Items, 3)

	require.NoError(t, acc.Sweep(context.Background()))
	require.NoError(t, acc.Close())
}

func TestAcceleratorClose(t *testing.T) {
	acc, err := New("", WithInMemoryStorage(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	assert.NoError(t, acc.Close())
}
