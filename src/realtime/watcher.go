package realtime

import (
	"context"
	"sync"
)

// QueryFunc loads the full, ordered result set for one subscription.
type QueryFunc[T any] func(ctx context.Context) ([]T, error)

// Watcher implements the read-model subscription lifecycle:
//
//	Initializing -> Live -> Closed
//
// On start it issues the full query once; while live, every change
// notification triggers the same full query again. Snapshots are delivered
// whole, there is no incremental patching. Reloads run concurrently and
// may finish out of order, so each carries a sequence number and a result
// older than the last delivered one is discarded. After Stop nothing is
// ever delivered, even from reloads already in flight.
type watcher[T any] struct {
	mu        sync.Mutex
	closed    bool
	seq       uint64
	delivered uint64

	query   QueryFunc[T]
	onData  func([]T)
	onError func(error)
}

// Watch starts a subscription on table (scoped to key when non-empty) and
// returns its stop function. onData receives every fresh snapshot; onError
// receives reload failures so the caller decides between stale data, an
// error surface, or a retry. Neither is ever called after stop returns
// control with the watcher closed.
func Watch[T any](ctx context.Context, sub Subscriber, table string, key string, query QueryFunc[T], onData func([]T), onError func(error)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	ch, unsub := sub.Subscribe(ctx, table, key)

	w := &watcher[T]{
		query:   query,
		onData:  onData,
		onError: onError,
	}

	go w.reload(ctx, w.next())

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				go w.reload(ctx, w.next())
			}
		}
	}()

	return func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		cancel()
		unsub()
	}
}

func (w *watcher[T]) next() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	return w.seq
}

func (w *watcher[T]) reload(ctx context.Context, seq uint64) {
	res, err := w.query(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if seq < w.delivered {
		// A newer reload already landed; this one is stale.
		return
	}
	w.delivered = seq
	if err != nil {
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.onData(res)
}
