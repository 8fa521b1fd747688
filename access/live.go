package access

import (
	"context"
	"log"
	"sync"

	"shaaban-furniture-backend/store"
)

// View is what a LiveQuery publishes.
type View[T any] struct {
	Items   []T
	Loading bool
	Err     error
}

// LiveQuery keeps at most one store subscription open for a Gate and
// re-plans it whenever Apply is called with a new Session.
type LiveQuery[T any] struct {
	store  store.Store
	gate   Gate
	decode Decoder[T]
	logger *log.Logger

	mu      sync.Mutex
	plan    Plan
	planned bool
	gen     uint64
	sub     store.Subscription
	views   chan View[T]
	closed  bool
}

func NewLiveQuery[T any](st store.Store, gate Gate, decode Decoder[T], logger *log.Logger) *LiveQuery[T] {
	if logger == nil {
		logger = log.Default()
	}
	q := &LiveQuery[T]{store: st, gate: gate, decode: decode, logger: logger, views: make(chan View[T], 1)}
	q.views <- View[T]{Loading: true}
	return q
}

// Views delivers the latest view; older undelivered views are dropped.
func (q *LiveQuery[T]) Views() <-chan View[T] { return q.views }

// Apply re-plans for s. An unchanged plan is a no-op. A changed plan
// cancels the running subscription before the next one starts, and no
// snapshot of the cancelled one is published afterwards.
func (q *LiveQuery[T]) Apply(ctx context.Context, s Session) error {
	p := q.gate.Plan(s)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || (q.planned && p == q.plan) {
		return nil
	}
	q.plan, q.planned = p, true
	q.gen++
	gen := q.gen
	if q.sub != nil {
		q.sub.Cancel()
		q.sub = nil
	}

	switch p.Kind {
	case PlanPending:
		q.publishLocked(View[T]{Loading: true})
		return nil
	case PlanNone:
		q.publishLocked(View[T]{Items: []T{}})
		return nil
	}

	q.publishLocked(View[T]{Loading: true})
	sub, err := q.store.Watch(ctx, q.gate.Query(p))
	if err != nil {
		q.logger.Printf("live %s (%s): %v", q.gate.Collection, p.Kind, err)
		q.publishLocked(View[T]{Err: err})
		return err
	}
	q.sub = sub
	go q.pump(gen, sub)
	return nil
}

func (q *LiveQuery[T]) pump(gen uint64, sub store.Subscription) {
	for snap := range sub.Snapshots() {
		view := View[T]{Err: snap.Err}
		if snap.Err == nil {
			items, err := DecodeAll(snap.Docs, q.decode)
			view = View[T]{Items: items, Err: err}
		}
		if view.Err != nil {
			q.logger.Printf("live %s: %v", q.gate.Collection, view.Err)
		}

		q.mu.Lock()
		if q.gen != gen {
			q.mu.Unlock()
			return
		}
		q.publishLocked(view)
		q.mu.Unlock()
	}
}

func (q *LiveQuery[T]) publishLocked(v View[T]) {
	if q.closed {
		return
	}
	select {
	case <-q.views:
	default:
	}
	q.views <- v
}

// Plan reports the active plan.
func (q *LiveQuery[T]) Plan() Plan {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.plan
}

// Close cancels the subscription and closes Views.
func (q *LiveQuery[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.gen++
	if q.sub != nil {
		q.sub.Cancel()
		q.sub = nil
	}
	q.closed = true
	close(q.views)
}
