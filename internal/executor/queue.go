package executor

import (
	"context"
	"sync"

	"github.com/gammazero/deque"

	"github.com/aryankumar/batchrun/internal/util"
)

// queuedTask is a submitted task waiting for a worker
type queuedTask struct {
	ctx    context.Context
	handle *Handle
	inv    Invocation
}

// taskQueue is an unbounded FIFO shared by a pool's workers.
// Pushing never blocks, so a whole batch can be submitted before the engine
// starts waiting on completions.
type taskQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  deque.Deque[*queuedTask]
	closed bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push enqueues a task, failing once the queue is closed
func (q *taskQueue) push(t *queuedTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return util.ErrPoolClosed
	}
	q.items.PushBack(t)
	q.cond.Signal()
	return nil
}

// pop blocks until a task is available. It returns false once the queue is
// closed and drained.
func (q *taskQueue) pop() (*queuedTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Len() == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.items.Len() == 0 {
		return nil, false
	}
	return q.items.PopFront(), true
}

// close stops accepting tasks and wakes every waiting worker.
// Tasks already queued are still handed out by pop.
func (q *taskQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// abort closes the queue and fails every task still waiting in it
func (q *taskQueue) abort(err error) int {
	q.mu.Lock()
	q.closed = true
	pending := make([]*queuedTask, 0, q.items.Len())
	for q.items.Len() > 0 {
		pending = append(pending, q.items.PopFront())
	}
	q.cond.Broadcast()
	q.mu.Unlock()

	for _, t := range pending {
		t.handle.fail(err)
	}
	return len(pending)
}

// len returns the number of queued tasks
func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
