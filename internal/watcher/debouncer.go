package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of file events. A batch is flushed once no new
// event has arrived for the window, or as soon as maxBatch distinct paths
// are pending. Events are delivered in first-seen order, one per path, with
// the latest type observed for that path.
type Debouncer struct {
	window   time.Duration
	maxBatch int
	order    []string
	events   map[string]FileEvent
	mu       sync.Mutex
	timer    *time.Timer
	onFlush  func([]FileEvent)
	stopped  bool
}

func NewDebouncer(window time.Duration, maxBatch int, onFlush func([]FileEvent)) *Debouncer {
	if maxBatch <= 0 {
		maxBatch = 1
	}
	return &Debouncer{
		window:   window,
		maxBatch: maxBatch,
		events:   make(map[string]FileEvent),
		onFlush:  onFlush,
	}
}

func (d *Debouncer) Add(event FileEvent) {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if _, seen := d.events[event.Path]; !seen {
		d.order = append(d.order, event.Path)
	}
	d.events[event.Path] = event

	if len(d.order) >= d.maxBatch {
		d.flushLocked()
		return
	}

	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.flushLocked()
	})

	d.mu.Unlock()
}

func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// flushLocked must be called with d.mu held and releases it before invoking
// the callback.
func (d *Debouncer) flushLocked() {
	batch := make([]FileEvent, 0, len(d.order))
	for _, path := range d.order {
		batch = append(batch, d.events[path])
	}

	d.order = nil
	d.events = make(map[string]FileEvent)

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	if len(batch) > 0 && d.onFlush != nil {
		d.onFlush(batch)
	}
}

// Stop flushes whatever is pending and drops later events.
func (d *Debouncer) Stop() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()
		return
	}

	d.stopped = true
	d.flushLocked()
}
