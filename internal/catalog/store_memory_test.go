package catalog

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMemStore_CreateAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	before := time.Now()
	first, err := s.Create(ctx, "テスト商品", 1000)
	require.NoError(t, err)
	second, err := s.Create(ctx, "pen", 1.5)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "テスト商品", first.Name)
	assert.Equal(t, 1000.0, first.Price)
	assert.False(t, first.CreatedAt.Before(before.Truncate(time.Microsecond)), "created_at precedes the call")

	assert.Equal(t, int64(2), second.ID)
	assert.False(t, second.CreatedAt.Before(first.CreatedAt))
	assert.Equal(t, 2, s.Len())
}

func TestMemStore_GetReturnsStoredProduct(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	created, err := s.Create(ctx, "keyboard", 49.9)
	require.NoError(t, err)

	got, ok, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, created, got)
}

func TestMemStore_GetMissDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	for _, id := range []int64{1, 9999, -1, 0} {
		_, ok, err := s.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, ok, "id %d", id)
	}
	assert.Equal(t, 0, s.Len())

	p, err := s.Create(ctx, "first", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID, "lookups must not advance the sequence")
}

func TestMemStore_UsesInjectedClock(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	s := NewMemStore()
	s.now = func() time.Time { return fixed }

	p, err := s.Create(context.Background(), "mouse", 19.9)
	require.NoError(t, err)
	assert.Equal(t, fixed, p.CreatedAt)
}

func TestMemStore_ConcurrentCreateHasNoGapsOrDuplicates(t *testing.T) {
	const n = 500
	ctx := context.Background()
	s := NewMemStore()

	ids := make([]int64, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			p, err := s.Create(ctx, "item", 10)
			if err != nil {
				return err
			}
			ids[i] = p.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		require.Equal(t, int64(i+1), id)
	}
	assert.Equal(t, n, s.Len())

	next, err := s.Create(ctx, "after", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), next.ID)
}

func TestMemStore_ConcurrentReadersSeeWholeProducts(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := s.Create(ctx, "widget", 2.5)
			return err
		})
		g.Go(func() error {
			for id := int64(1); id <= 50; id++ {
				p, ok, err := s.Get(ctx, id)
				if err != nil {
					return err
				}
				if ok && (p.ID != id || p.Name != "widget" || p.Price != 2.5 || p.CreatedAt.IsZero()) {
					t.Errorf("torn read: %+v", p)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}
