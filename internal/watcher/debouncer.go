package watcher

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Debouncer coalesces rapid file events into one ChangeEvent per key. Each
// key (a project path, or "" for shared configuration) has its own window
// that restarts on every event. Events for the same path within a window
// are merged according to these rules:
//   - CREATE + MODIFY = CREATE (file is still new)
//   - CREATE + DELETE = nothing (file never really existed)
//   - MODIFY + DELETE = DELETE (file is gone)
//   - DELETE + CREATE = MODIFY (file was replaced)
type Debouncer struct {
	window  time.Duration
	pending map[string]*pendingBatch
	mu      sync.Mutex
	output  chan ChangeEvent
	stopped bool
}

type pendingBatch struct {
	events map[string]*pendingEvent
	timer  *time.Timer
	gen    uint64
}

type pendingEvent struct {
	event   FileEvent
	firstOp Operation // Track the first operation for coalescing
}

// NewDebouncer creates a debouncer with the given window and output buffer.
func NewDebouncer(window time.Duration, buffer int) *Debouncer {
	if buffer <= 0 {
		buffer = 1
	}
	return &Debouncer{
		window:  window,
		pending: make(map[string]*pendingBatch),
		output:  make(chan ChangeEvent, buffer),
	}
}

// Add adds an event to the batch for key and restarts its window.
func (d *Debouncer) Add(key string, event FileEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	batch, ok := d.pending[key]
	if !ok {
		batch = &pendingBatch{events: make(map[string]*pendingEvent)}
		d.pending[key] = batch
	}

	if existing, ok := batch.events[event.Path]; ok {
		coalesced := coalesce(existing, event)
		if coalesced == nil {
			// Events cancelled each other out (CREATE + DELETE)
			delete(batch.events, event.Path)
		} else {
			existing.event = *coalesced
		}
	} else {
		batch.events[event.Path] = &pendingEvent{event: event, firstOp: event.Operation}
	}

	d.scheduleFlush(key, batch)
}

// coalesce merges two events according to the coalescing rules.
// Returns nil if the events cancel each other out.
func coalesce(existing *pendingEvent, next FileEvent) *FileEvent {
	switch existing.firstOp {
	case OpCreate:
		switch next.Operation {
		case OpModify:
			return &existing.event
		case OpDelete:
			return nil
		default:
			return &next
		}

	case OpDelete:
		if next.Operation == OpCreate {
			result := next
			result.Operation = OpModify
			return &result
		}
		return &next

	default:
		// MODIFY and RENAME keep the latest operation.
		return &next
	}
}

// scheduleFlush restarts the window for key. Must be called with lock held.
func (d *Debouncer) scheduleFlush(key string, batch *pendingBatch) {
	if batch.timer != nil {
		batch.timer.Stop()
	}
	batch.gen++
	gen := batch.gen
	batch.timer = time.AfterFunc(d.window, func() {
		d.flush(key, batch, gen)
	})
}

// flush emits the batch for key if it is still the current one.
func (d *Debouncer) flush(key string, batch *pendingBatch, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.pending[key] != batch || batch.gen != gen {
		return
	}
	delete(d.pending, key)

	if len(batch.events) == 0 {
		return
	}

	paths := make([]string, 0, len(batch.events))
	for path := range batch.events {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	// Non-blocking send
	select {
	case d.output <- ChangeEvent{Timestamp: time.Now(), ProjectPath: key, Paths: paths}:
	default:
		slog.Warn("debouncer output full, dropping change event",
			slog.String("project", key),
			slog.Int("paths", len(paths)),
		)
	}
}

// Drop discards the pending batch for key without emitting it.
func (d *Debouncer) Drop(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if batch, ok := d.pending[key]; ok {
		batch.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending returns the keys with a batch waiting for its window to close.
func (d *Debouncer) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(d.pending))
	for k := range d.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Output returns the channel of debounced change events.
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}

// Stop stops the debouncer, discards pending batches and closes the output
// channel. Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.stopped = true
	for _, batch := range d.pending {
		batch.timer.Stop()
	}
	d.pending = make(map[string]*pendingBatch)
	close(d.output)
}
