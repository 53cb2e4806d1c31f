package workspace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(pkgNames ...string) Snapshot {
	var tree []PackageNode
	for _, n := range pkgNames {
		tree = append(tree, PackageNode{Name: n, Path: "/repo/" + n, Kind: KindPackage})
	}
	return NewSnapshot(tree)
}

func TestCacheCachedStartsEmptyThenFills(t *testing.T) {
	release := make(chan struct{})
	cache := NewCache(func(ctx context.Context) (Snapshot, error) {
		<-release
		return snapshotOf("a", "b"), nil
	})
	defer cache.Close()

	first := cache.Cached()
	assert.Empty(t, first.Packages)

	_, loaded := cache.Peek()
	assert.False(t, loaded)

	close(release)
	cache.Wait()

	assert.Equal(t, []string{"a", "b"}, names(cache.Cached().Packages))
	_, loaded = cache.Peek()
	assert.True(t, loaded)
}

func TestCacheSingleFlight(t *testing.T) {
	var running, maxRunning, calls atomic.Int32
	release := make(chan struct{})

	cache := NewCache(func(ctx context.Context) (Snapshot, error) {
		calls.Add(1)
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return snapshotOf("a"), nil
	})
	defer cache.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.Cached()
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 5*time.Millisecond)
	close(release)
	cache.Wait()

	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Equal(t, []string{"a"}, names(cache.Cached().Packages))
}

func TestCacheOlderPassDoesNotOverwriteNewer(t *testing.T) {
	var call atomic.Int32
	slowStarted := make(chan struct{})
	releaseSlow := make(chan struct{})

	cache := NewCache(func(ctx context.Context) (Snapshot, error) {
		if call.Add(1) == 1 {
			close(slowStarted)
			<-releaseSlow
			return snapshotOf("stale"), nil
		}
		return snapshotOf("fresh"), nil
	})
	defer cache.Close()

	done := make(chan Snapshot)
	go func() {
		snap, _ := cache.Fresh(context.Background())
		done <- snap
	}()
	<-slowStarted

	snap, err := cache.Fresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, names(snap.Packages))

	close(releaseSlow)
	stale := <-done
	assert.Equal(t, []string{"stale"}, names(stale.Packages))

	current, loaded := cache.Peek()
	assert.True(t, loaded)
	assert.Equal(t, []string{"fresh"}, names(current.Packages))
}

func TestCacheInvalidateKeepsSnapshotVisible(t *testing.T) {
	var version atomic.Int32
	cache := NewCache(func(ctx context.Context) (Snapshot, error) {
		if version.Add(1) == 1 {
			return snapshotOf("v1"), nil
		}
		return snapshotOf("v2"), nil
	})
	defer cache.Close()

	_, err := cache.Fresh(context.Background())
	require.NoError(t, err)

	cache.Invalidate()
	_, loaded := cache.Peek()
	assert.False(t, loaded)

	assert.Equal(t, []string{"v1"}, names(cache.Cached().Packages))
	cache.Wait()
	assert.Equal(t, []string{"v2"}, names(cache.Cached().Packages))
}

func TestCacheKeepsErrors(t *testing.T) {
	boom := errors.New("boom")
	cache := NewCache(func(ctx context.Context) (Snapshot, error) {
		return snapshotOf("partial"), boom
	})
	defer cache.Close()

	snap, err := cache.Fresh(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"partial"}, names(snap.Packages))
	assert.ErrorIs(t, cache.LastError(), boom)
}

func TestCacheIgnoresCancelledPass(t *testing.T) {
	cache := NewCache(func(ctx context.Context) (Snapshot, error) {
		return Snapshot{}, ctx.Err()
	})
	defer cache.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Fresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, loaded := cache.Peek()
	assert.False(t, loaded)
}

func TestCacheRefreshAfterInvalidateDuringPass(t *testing.T) {
	var call atomic.Int32
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	cache := NewCache(func(ctx context.Context) (Snapshot, error) {
		if call.Add(1) == 1 {
			close(firstStarted)
			<-releaseFirst
			return snapshotOf("old"), nil
		}
		return snapshotOf("new"), nil
	})
	defer cache.Close()

	cache.Refresh()
	<-firstStarted

	cache.Invalidate()
	cache.Refresh()
	close(releaseFirst)
	cache.Wait()

	snap, loaded := cache.Peek()
	assert.True(t, loaded)
	assert.Equal(t, []string{"new"}, names(snap.Packages))
}
