package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/burrow/pkg/model"
	"github.com/m-mizutani/burrow/pkg/repository"
	"github.com/m-mizutani/gt"
)

func TestDiscoveryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tag_cache.db")

	cache := repository.NewDiscoveryCache(ctx, path)
	defer cache.Close()

	_, ok := cache.Get(ctx, "2026-08-30", "golang", 5)
	gt.False(t, ok)

	ids := []model.VideoID{"vid1", "vid2", "vid3"}
	cache.Put(ctx, "2026-08-30", "golang", 5, ids)

	got, ok := cache.Get(ctx, "2026-08-30", "golang", 5)
	gt.True(t, ok)
	gt.Equal(t, got, ids)
}

func TestDiscoveryCacheKeyIsolation(t *testing.T) {
	ctx := context.Background()
	cache := repository.NewDiscoveryCache(ctx, filepath.Join(t.TempDir(), "tag_cache.db"))
	defer cache.Close()

	cache.Put(ctx, "2026-08-29", "golang", 5, []model.VideoID{"old"})

	// Different day, different limit and different tag are all misses
	_, ok := cache.Get(ctx, "2026-08-30", "golang", 5)
	gt.False(t, ok)
	_, ok = cache.Get(ctx, "2026-08-29", "golang", 10)
	gt.False(t, ok)
	_, ok = cache.Get(ctx, "2026-08-29", "rust", 5)
	gt.False(t, ok)
}

func TestDiscoveryCachePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tag_cache.db")

	first := repository.NewDiscoveryCache(ctx, path)
	first.Put(ctx, "2026-08-30", "golang", 5, []model.VideoID{"vid1"})
	gt.NoError(t, first.Close())

	second := repository.NewDiscoveryCache(ctx, path)
	defer second.Close()

	got, ok := second.Get(ctx, "2026-08-30", "golang", 5)
	gt.True(t, ok)
	gt.Equal(t, got, []model.VideoID{"vid1"})
}

func TestDiscoveryCacheFailsOpen(t *testing.T) {
	ctx := context.Background()

	// A directory path cannot be opened as a database; the cache must
	// degrade to a permanent miss instead of failing
	dir := t.TempDir()
	gt.NoError(t, os.MkdirAll(filepath.Join(dir, "cache.db"), 0700))

	cache := repository.NewDiscoveryCache(ctx, filepath.Join(dir, "cache.db"))
	defer cache.Close()

	cache.Put(ctx, "2026-08-30", "golang", 5, []model.VideoID{"vid1"})
	_, ok := cache.Get(ctx, "2026-08-30", "golang", 5)
	gt.False(t, ok)
}
