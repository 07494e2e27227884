package sync

import (
	"context"
	gosync "sync"

	"github.com/labcatalog/catalog-sync/internal/catalog"
)

// refQueue is an unbounded FIFO of machine references, deduplicated for the run.
// The module phase pushes without blocking; machine resolution pops until the
// queue is closed and drained.
type refQueue struct {
	mu     gosync.Mutex
	items  []catalog.MachineRef
	seen   map[string]struct{}
	closed bool
	ready  chan struct{}
}

func newRefQueue() *refQueue {
	return &refQueue{
		seen:  map[string]struct{}{},
		ready: make(chan struct{}, 1),
	}
}

// push enqueues ref unless an equal reference was queued before. It reports whether ref was added.
func (q *refQueue) push(ref catalog.MachineRef) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := ref.Key()
	if _, dup := q.seen[key]; dup || q.closed {
		return false
	}
	q.seen[key] = struct{}{}
	q.items = append(q.items, ref)
	q.signal()
	return true
}

// close marks the end of input
func (q *refQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.signal()
}

// pop returns the next reference. It blocks while the queue is open and empty,
// and returns false once the queue is closed and drained or ctx is done.
func (q *refQueue) pop(ctx context.Context) (catalog.MachineRef, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			ref := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return ref, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return catalog.MachineRef{}, false
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return catalog.MachineRef{}, false
		}
	}
}

// len returns the number of references not yet popped
func (q *refQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// signal wakes a blocked pop. Callers hold q.mu.
func (q *refQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
