package store

import "sync"

// feed delivers snapshots latest-wins: a pending undelivered snapshot is
// replaced by a newer one instead of queueing behind it.
type feed struct {
	mu     sync.Mutex
	ch     chan Snapshot
	closed bool
	stop   chan struct{}
	once   sync.Once
}

func newFeed() *feed {
	return &feed{ch: make(chan Snapshot, 1), stop: make(chan struct{})}
}

func (f *feed) Snapshots() <-chan Snapshot { return f.ch }

func (f *feed) publish(s Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case <-f.ch:
	default:
	}
	f.ch <- s
}

// fail publishes a terminal error and closes the feed.
func (f *feed) fail(err error) {
	f.publish(Snapshot{Err: err})
	f.close()
}

func (f *feed) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.ch)
}

// Cancel stops the producer and closes the channel. Safe to call twice.
func (f *feed) Cancel() {
	f.once.Do(func() { close(f.stop) })
	f.close()
}

func (f *feed) done() <-chan struct{} { return f.stop }
