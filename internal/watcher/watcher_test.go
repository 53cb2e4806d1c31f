package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalescesInOrder(t *testing.T) {
	var mu sync.Mutex
	var got [][]FileEvent

	d := NewDebouncer(20*time.Millisecond, 100, func(events []FileEvent) {
		mu.Lock()
		got = append(got, events)
		mu.Unlock()
	})

	d.Add(FileEvent{Path: "/b", Type: EventCreate})
	d.Add(FileEvent{Path: "/a", Type: EventCreate})
	d.Add(FileEvent{Path: "/b", Type: EventModify})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got[0], 2)
	assert.Equal(t, "/b", got[0][0].Path)
	assert.Equal(t, EventModify, got[0][0].Type)
	assert.Equal(t, "/a", got[0][1].Path)
}

func TestDebouncerFlushesFullBatch(t *testing.T) {
	flushed := make(chan []FileEvent, 1)
	d := NewDebouncer(time.Hour, 2, func(events []FileEvent) { flushed <- events })

	d.Add(FileEvent{Path: "/a"})
	assert.Equal(t, 1, d.Pending())
	d.Add(FileEvent{Path: "/b"})

	select {
	case events := <-flushed:
		assert.Len(t, events, 2)
	case <-time.After(time.Second):
		t.Fatal("batch was not flushed")
	}
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncerStopFlushes(t *testing.T) {
	var count atomic.Int32
	d := NewDebouncer(time.Hour, 100, func(events []FileEvent) { count.Add(int32(len(events))) })

	d.Add(FileEvent{Path: "/a"})
	d.Stop()
	d.Add(FileEvent{Path: "/b"})

	assert.Equal(t, int32(1), count.Load())
}

func TestEventClassifier(t *testing.T) {
	c := NewEventClassifier("pnpm-workspace.yaml", "package.json")

	assert.True(t, c.Relevant(FileEvent{Path: "/repo/pnpm-workspace.yaml", Type: EventModify}))
	assert.True(t, c.Relevant(FileEvent{Path: "/repo/packages/ui/package.json", Type: EventCreate}))
	assert.True(t, c.Relevant(FileEvent{Path: "/repo/packages/ui", Type: EventDelete}))
	assert.False(t, c.Relevant(FileEvent{Path: "/repo/packages/ui/src/index.ts", Type: EventModify}))
	assert.False(t, c.Relevant(FileEvent{Path: "/repo/packages/ui/src/index.ts", Type: EventDelete}))

	batch := c.RelevantBatch([]FileEvent{
		{Path: "/repo/README.md", Type: EventModify},
		{Path: "/repo/apps/web/package.json", Type: EventModify},
	})
	require.Len(t, batch, 1)
	assert.Equal(t, "/repo/apps/web/package.json", batch[0].Path)
}

type fakeTarget struct {
	invalidated atomic.Int32
	refreshed   atomic.Int32
}

func (f *fakeTarget) Invalidate() { f.invalidated.Add(1) }
func (f *fakeTarget) Refresh()    { f.refreshed.Add(1) }

func TestWatcherRefreshesOnManifestChange(t *testing.T) {
	root := t.TempDir()
	pkgDir := filepath.Join(root, "packages", "ui")
	require.NoError(t, os.MkdirAll(pkgDir, 0755))

	cfg := DefaultWatcherConfig()
	cfg.DebounceWindow = 20 * time.Millisecond

	target := &fakeTarget{}
	w, err := New(cfg, NewEventClassifier("pnpm-workspace.yaml", "package.json"), target)
	require.NoError(t, err)
	require.NoError(t, w.AddRoot(root))
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(`{"name":"ui"}`), 0644))

	require.Eventually(t, func() bool {
		return target.refreshed.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, target.invalidated.Load())
}

func TestWatcherIgnoresPatterns(t *testing.T) {
	w := &Watcher{config: DefaultWatcherConfig()}

	assert.True(t, w.shouldIgnore("/repo/node_modules"))
	assert.True(t, w.shouldIgnore("/repo/packages/ui/node_modules/react"))
	assert.True(t, w.shouldIgnore("/repo/.git"))
	assert.False(t, w.shouldIgnore("/repo/packages/ui"))
}
