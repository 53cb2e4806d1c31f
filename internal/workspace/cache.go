package workspace

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

type Snapshot struct {
	Tree       []PackageNode `json:"tree"`
	Packages   []PackageNode `json:"packages"`
	LoadedAt   time.Time     `json:"loadedAt"`
	Generation uint64        `json:"generation"`
}

func NewSnapshot(tree []PackageNode) Snapshot {
	return Snapshot{
		Tree:     tree,
		Packages: Flatten(tree),
		LoadedAt: time.Now(),
	}
}

// LoadFunc performs one full discovery pass. It returns whatever it managed
// to find even when err is non-nil.
type LoadFunc func(ctx context.Context) (Snapshot, error)

// Cache keeps the last discovered snapshot for non-blocking reads. At most
// one background refresh runs at a time, and a pass that started earlier
// never replaces the result of a pass that started later.
type Cache struct {
	load LoadFunc

	mu          sync.RWMutex
	snap        Snapshot
	storedGen   uint64
	loaded      bool
	invalidGen  uint64
	lastErr     error
	generations atomic.Uint64

	group   singleflight.Group
	pending sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewCache(load LoadFunc) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		load:   load,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Cached returns the current snapshot without blocking. When nothing has
// been loaded yet, or the cache was invalidated, it starts a background
// refresh and returns what it has, which may be empty.
func (c *Cache) Cached() Snapshot {
	c.mu.RLock()
	snap, loaded := c.snap, c.loaded
	c.mu.RUnlock()

	if !loaded {
		c.Refresh()
	}
	return snap
}

// Peek returns the stored snapshot and whether it is current.
func (c *Cache) Peek() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, c.loaded
}

// Fresh runs a full discovery pass, stores the result and returns it.
func (c *Cache) Fresh(ctx context.Context) (Snapshot, error) {
	return c.run(ctx)
}

// Refresh starts a background pass unless one is already in flight.
func (c *Cache) Refresh() {
	if c.ctx.Err() != nil {
		return
	}

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		// Joining a pass that started before an Invalidate leaves the cache
		// stale, so go again until a pass lands after it.
		for c.ctx.Err() == nil {
			_, err, _ := c.group.Do(refreshKey, func() (interface{}, error) {
				snap, err := c.run(c.ctx)
				if err != nil {
					log.Warn("background refresh finished with errors", "error", err)
				}
				return snap, err
			})
			if isCancellation(err) || c.isLoaded() {
				return
			}
		}
	}()
}

func (c *Cache) isLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Invalidate marks the stored snapshot stale. Readers keep seeing it until
// a pass that started after this call completes.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.invalidGen = c.generations.Load()
	c.mu.Unlock()
}

// Wait blocks until every background refresh started so far has finished.
func (c *Cache) Wait() {
	c.pending.Wait()
}

func (c *Cache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Cache) Close() {
	c.cancel()
	c.pending.Wait()
}

func (c *Cache) run(ctx context.Context) (Snapshot, error) {
	gen := c.generations.Add(1)

	snap, err := c.load(ctx)
	if isCancellation(err) {
		return snap, err
	}

	snap.Generation = gen
	c.store(gen, snap, err)

	return snap, err
}

func (c *Cache) store(gen uint64, snap Snapshot, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen <= c.storedGen {
		log.Debug("discarding stale snapshot", "generation", gen, "stored", c.storedGen)
		return
	}

	c.snap = snap
	c.storedGen = gen
	c.lastErr = err
	if gen > c.invalidGen {
		c.loaded = true
	}
}
