package input

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/polytool/polytool/pkg/resolver"
	"github.com/polytool/polytool/pkg/resolver/version"
)

// CachedProvider memoizes provider responses across solves. Cached values are
// immutable once stored, so concurrent solves can share one CachedProvider;
// failures are never cached, a later call retries the inner provider.
type CachedProvider struct {
	inner    resolver.Provider
	versions Cache[resolver.Identifier, []version.Version]
	deps     Cache[string, map[resolver.Identifier]version.Range]
}

var _ resolver.Provider = &CachedProvider{}

func NewCachedProvider(inner resolver.Provider) *CachedProvider {
	return &CachedProvider{
		inner:    inner,
		versions: NewMapCache[resolver.Identifier, []version.Version](),
		deps:     NewMapCache[string, map[resolver.Identifier]version.Range](),
	}
}

func (c *CachedProvider) ListVersions(ctx context.Context, pkg resolver.Identifier) ([]version.Version, error) {
	if vs, ok := c.versions.Get(pkg); ok {
		return vs, nil
	}
	vs, err := c.inner.ListVersions(ctx, pkg)
	if err != nil {
		return nil, err
	}
	c.versions.Set(pkg, vs)
	return vs, nil
}

func (c *CachedProvider) GetDependencies(ctx context.Context, pkg resolver.Identifier, v version.Version) (map[resolver.Identifier]version.Range, error) {
	key := fmt.Sprintf("%s@%s", pkg, v)
	if deps, ok := c.deps.Get(key); ok {
		return deps, nil
	}
	deps, err := c.inner.GetDependencies(ctx, pkg, v)
	if err != nil {
		return nil, err
	}
	c.deps.Set(key, deps)
	return deps, nil
}

// Prefetch warms the version cache for a set of packages before a batch of
// solves, fetching at most limit packages concurrently. Unknown packages are
// skipped; any other provider failure aborts the prefetch.
func (c *CachedProvider) Prefetch(ctx context.Context, pkgs []resolver.Identifier, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, pkg := range pkgs {
		pkg := pkg
		g.Go(func() error {
			_, err := c.ListVersions(ctx, pkg)
			if err != nil && !errors.Is(err, resolver.ErrNotFound) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
