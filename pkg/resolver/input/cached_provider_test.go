package input_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polytool/polytool/pkg/resolver"
	"github.com/polytool/polytool/pkg/resolver/input"
	"github.com/polytool/polytool/pkg/resolver/version"
)

// instrumentedProvider counts calls reaching the inner provider.
type instrumentedProvider struct {
	*input.Static
	listCalls atomic.Int64
	depCalls  atomic.Int64
	failList  bool
}

func (p *instrumentedProvider) ListVersions(ctx context.Context, pkg resolver.Identifier) ([]version.Version, error) {
	p.listCalls.Add(1)
	if p.failList {
		return nil, fmt.Errorf("transient failure")
	}
	return p.Static.ListVersions(ctx, pkg)
}

func (p *instrumentedProvider) GetDependencies(ctx context.Context, pkg resolver.Identifier, v version.Version) (map[resolver.Identifier]version.Range, error) {
	p.depCalls.Add(1)
	return p.Static.GetDependencies(ctx, pkg, v)
}

func newInstrumented() *instrumentedProvider {
	return &instrumentedProvider{
		Static: input.NewStatic().
			MustAdd("A", "1.0.0", input.Deps{"B": ">=1.0"}).
			MustAdd("B", "1.0.0", nil),
	}
}

func TestCachedProviderMemoizes(t *testing.T) {
	ctx := context.Background()
	inner := newInstrumented()
	cached := input.NewCachedProvider(inner)

	for i := 0; i < 3; i++ {
		vs, err := cached.ListVersions(ctx, "A")
		require.NoError(t, err)
		assert.Len(t, vs, 1)

		deps, err := cached.GetDependencies(ctx, "A", version.MustParse("1.0.0"))
		require.NoError(t, err)
		assert.Len(t, deps, 1)
	}

	assert.Equal(t, int64(1), inner.listCalls.Load())
	assert.Equal(t, int64(1), inner.depCalls.Load())
}

func TestCachedProviderDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	inner := newInstrumented()
	cached := input.NewCachedProvider(inner)

	inner.failList = true
	_, err := cached.ListVersions(ctx, "A")
	assert.Error(t, err)

	inner.failList = false
	vs, err := cached.ListVersions(ctx, "A")
	require.NoError(t, err)
	assert.Len(t, vs, 1)
	assert.Equal(t, int64(2), inner.listCalls.Load())
}

func TestPrefetchWarmsTheCache(t *testing.T) {
	ctx := context.Background()
	inner := newInstrumented()
	cached := input.NewCachedProvider(inner)

	err := cached.Prefetch(ctx, []resolver.Identifier{"A", "B", "ghost"}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inner.listCalls.Load())

	// all subsequent lookups are served from the cache
	_, err = cached.ListVersions(ctx, "A")
	require.NoError(t, err)
	_, err = cached.ListVersions(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, int64(3), inner.listCalls.Load())
}

func TestPrefetchPropagatesProviderFailures(t *testing.T) {
	ctx := context.Background()
	inner := newInstrumented()
	inner.failList = true
	cached := input.NewCachedProvider(inner)

	err := cached.Prefetch(ctx, []resolver.Identifier{"A"}, 0)
	assert.Error(t, err)
}
