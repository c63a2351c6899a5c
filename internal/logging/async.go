package logging

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// AsyncHandler queues records on a channel that a single goroutine drains
// into the wrapped handler. When the queue is full the record is dropped
// and counted, so callers never block on a slow or stalled sink.
type AsyncHandler struct {
	inner slog.Handler
	q     *queue
}

type queue struct {
	records chan asyncRecord
	done    chan struct{}
	dropped atomic.Int64
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
}

type asyncRecord struct {
	handler slog.Handler
	record  slog.Record
}

// NewAsyncHandler starts the writer goroutine for inner.
func NewAsyncHandler(inner slog.Handler, buffer int) *AsyncHandler {
	if buffer < 1 {
		buffer = 1
	}
	q := &queue{
		records: make(chan asyncRecord, buffer),
		done:    make(chan struct{}),
	}
	go q.run()
	return &AsyncHandler{inner: inner, q: q}
}

func (q *queue) run() {
	defer close(q.done)
	for rec := range q.records {
		// Records are already detached from the caller's context.
		_ = rec.handler.Handle(context.Background(), rec.record)
	}
}

// Enabled reports whether the wrapped handler accepts level.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle enqueues r without blocking.
func (h *AsyncHandler) Handle(_ context.Context, r slog.Record) error {
	h.q.mu.RLock()
	defer h.q.mu.RUnlock()
	if h.q.closed {
		h.q.dropped.Add(1)
		return nil
	}
	select {
	case h.q.records <- asyncRecord{handler: h.inner, record: r.Clone()}:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

// WithAttrs returns a handler sharing the same queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithAttrs(attrs), q: h.q}
}

// WithGroup returns a handler sharing the same queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{inner: h.inner.WithGroup(name), q: h.q}
}

// Dropped returns the number of records discarded so far.
func (h *AsyncHandler) Dropped() int64 {
	return h.q.dropped.Load()
}

// Close stops accepting records and waits for the queue to drain.
func (h *AsyncHandler) Close() error {
	h.q.once.Do(func() {
		h.q.mu.Lock()
		h.q.closed = true
		close(h.q.records)
		h.q.mu.Unlock()
	})
	<-h.q.done
	return nil
}
