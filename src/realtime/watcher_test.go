package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"rewards/src/types"

	"github.com/stretchr/testify/assert"
)

// fakeSubscriber hands out a channel the test pushes notifications into.
type fakeSubscriber struct {
	ch       chan types.Change
	canceled bool
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{ch: make(chan types.Change, 16)}
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, table string, key string) (<-chan types.Change, func()) {
	return f.ch, func() { f.canceled = true }
}

func (f *fakeSubscriber) notify() {
	f.ch <- types.Change{Table: "transactions", Op: types.CHANGE_UPDATE}
}

type snapshotRecorder struct {
	mu        sync.Mutex
	snapshots [][]int
	errs      []error
}

func (r *snapshotRecorder) onData(rows []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, rows)
}

func (r *snapshotRecorder) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *snapshotRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *snapshotRecorder) last() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWatcherDeliversInitialSnapshot(t *testing.T) {
	sub := newFakeSubscriber()
	rec := &snapshotRecorder{}
	query := func(ctx context.Context) ([]int, error) { return []int{1, 2, 3}, nil }

	stop := Watch(context.Background(), sub, "transactions", "", query, rec.onData, rec.onError)
	defer stop()

	waitFor(t, func() bool { return rec.count() == 1 })
	assert.Equal(t, []int{1, 2, 3}, rec.last())
}

func TestWatcherReloadsOnNotification(t *testing.T) {
	sub := newFakeSubscriber()
	rec := &snapshotRecorder{}
	var mu sync.Mutex
	rows := []int{1}
	query := func(ctx context.Context) ([]int, error) {
		mu.Lock()
		defer mu.Unlock()
		out := make([]int, len(rows))
		copy(out, rows)
		return out, nil
	}

	stop := Watch(context.Background(), sub, "transactions", "", query, rec.onData, rec.onError)
	defer stop()

	waitFor(t, func() bool { return rec.count() == 1 })

	mu.Lock()
	rows = []int{1, 2}
	mu.Unlock()
	sub.notify()

	waitFor(t, func() bool { return rec.count() == 2 })
	assert.Equal(t, []int{1, 2}, rec.last())
}

func TestWatcherDiscardsResultsAfterStop(t *testing.T) {
	sub := newFakeSubscriber()
	rec := &snapshotRecorder{}
	release := make(chan struct{})
	query := func(ctx context.Context) ([]int, error) {
		<-release
		return []int{9}, nil
	}

	stop := Watch(context.Background(), sub, "transactions", "u1", query, rec.onData, rec.onError)

	// Unsubscribe while the initial load is still in flight.
	stop()
	close(release)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
	assert.True(t, sub.canceled)
}

func TestWatcherDiscardsStaleReload(t *testing.T) {
	sub := newFakeSubscriber()
	rec := &snapshotRecorder{}

	var mu sync.Mutex
	calls := 0
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	query := func(ctx context.Context) ([]int, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			// The first (older) reload resolves after the second.
			<-releaseFirst
			return []int{1}, nil
		}
		return []int{1, 2}, nil
	}

	stop := Watch(context.Background(), sub, "transactions", "", query, rec.onData, rec.onError)
	defer stop()

	<-firstStarted
	sub.notify()
	waitFor(t, func() bool { return rec.count() == 1 })
	assert.Equal(t, []int{1, 2}, rec.last())

	close(releaseFirst)
	time.Sleep(50 * time.Millisecond)

	// The older result must not overwrite the newer snapshot.
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, []int{1, 2}, rec.last())
}

func TestWatcherReportsQueryErrors(t *testing.T) {
	sub := newFakeSubscriber()
	rec := &snapshotRecorder{}
	query := func(ctx context.Context) ([]int, error) {
		return nil, assert.AnError
	}

	stop := Watch(context.Background(), sub, "offers", "", query, rec.onData, rec.onError)
	defer stop()

	waitFor(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.errs) == 1
	})
	assert.Equal(t, 0, rec.count())
}
