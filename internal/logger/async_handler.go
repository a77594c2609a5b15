package logger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultAsyncQueueSize    = 1024
	defaultAsyncFlushTimeout = 5 * time.Second
)

// AsyncOptions configures the async log pipeline.
type AsyncOptions struct {
	QueueSize    int
	FlushTimeout time.Duration
}

type queuedRecord struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// AsyncHandler decouples remote log shipping from the caller: Handle
// enqueues and returns immediately, a single goroutine drains the queue.
// When the queue is full the record is dropped and counted instead of
// blocking a request.
type AsyncHandler struct {
	queue        chan queuedRecord
	handler      slog.Handler
	flushTimeout time.Duration
	closed       *atomic.Bool
	dropped      *atomic.Uint64
	done         *sync.WaitGroup
}

// NewAsyncHandler creates an async handler draining into the given
// destination. All derived handlers (WithAttrs/WithGroup) share one queue
// and one drain goroutine.
func NewAsyncHandler(handler slog.Handler, opts AsyncOptions) *AsyncHandler {
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultAsyncQueueSize
	}
	flushTimeout := opts.FlushTimeout
	if flushTimeout <= 0 {
		flushTimeout = defaultAsyncFlushTimeout
	}

	h := &AsyncHandler{
		queue:        make(chan queuedRecord, queueSize),
		handler:      handler,
		flushTimeout: flushTimeout,
		closed:       &atomic.Bool{},
		dropped:      &atomic.Uint64{},
		done:         &sync.WaitGroup{},
	}
	h.done.Add(1)
	go h.drain()
	return h
}

func (h *AsyncHandler) drain() {
	defer h.done.Done()
	for q := range h.queue {
		_ = q.handler.Handle(q.ctx, q.record)
	}
}

// Enabled reports whether the destination accepts the level.
func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle enqueues the record for background delivery. Never blocks.
func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.handler.Enabled(ctx, r.Level) {
		return nil
	}
	if h.closed.Load() {
		return nil
	}
	select {
	case h.queue <- queuedRecord{ctx: ctx, record: r.Clone(), handler: h.handler}:
	default:
		h.dropped.Add(1)
	}
	return nil
}

// WithAttrs derives a handler with the attributes applied, sharing the queue.
func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.handler = h.handler.WithAttrs(attrs)
	return &next
}

// WithGroup derives a handler with the group applied, sharing the queue.
func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.handler = h.handler.WithGroup(name)
	return &next
}

// Dropped returns the number of records discarded because the queue was full.
func (h *AsyncHandler) Dropped() uint64 {
	return h.dropped.Load()
}

// Shutdown stops accepting records and waits for the queue to drain, up
// to the context deadline or the configured flush timeout. Safe to call
// more than once.
func (h *AsyncHandler) Shutdown(ctx context.Context) error {
	if h == nil {
		return nil
	}
	if h.closed.Swap(true) {
		return nil
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.flushTimeout)
		defer cancel()
	}
	close(h.queue)

	drained := make(chan struct{})
	go func() {
		h.done.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
