package executor

import (
	"sync/atomic"

	"github.com/aryankumar/batchrun/internal/util"
)

// HandleState is the lifecycle state of a submitted task
type HandleState int32

const (
	// StatePending means the task is queued and has not started
	StatePending HandleState = iota
	// StateRunning means a worker picked the task up
	StateRunning
	// StateDone means the task finished, successfully or not
	StateDone
	// StateCancelled means the task was cancelled before it started
	StateCancelled
)

// String returns the state name
func (s HandleState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Handle is a reference to a submitted task.
// Whether it has finished is answered by its own state.
type Handle struct {
	index  int
	state  atomic.Int32
	done   chan struct{}
	notify chan<- *Handle

	record Record
	err    error
}

// newHandle creates a pending handle. On completion or cancellation the handle
// sends itself to notify exactly once; notify must have room for it.
func newHandle(index int, notify chan<- *Handle) *Handle {
	return &Handle{
		index:  index,
		done:   make(chan struct{}),
		notify: notify,
	}
}

// Index returns the task's position in the job's kwargs list
func (h *Handle) Index() int {
	return h.index
}

// State returns the current state
func (h *Handle) State() HandleState {
	return HandleState(h.state.Load())
}

// Done returns a channel closed once the handle is finished or cancelled
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// IsDone reports whether the handle reached a terminal state
func (h *Handle) IsDone() bool {
	s := h.State()
	return s == StateDone || s == StateCancelled
}

// Result blocks until the handle is terminal and returns its outcome
func (h *Handle) Result() (Record, error) {
	<-h.done
	return h.record, h.err
}

// Cancel prevents the task from starting. It returns false if the task is
// already running or finished; a running task cannot be stopped.
func (h *Handle) Cancel() bool {
	if !h.state.CompareAndSwap(int32(StatePending), int32(StateCancelled)) {
		return false
	}
	h.err = util.ErrCancelled
	h.complete()
	return true
}

// start moves the handle to running. Workers skip the task if it returns false.
func (h *Handle) start() bool {
	return h.state.CompareAndSwap(int32(StatePending), int32(StateRunning))
}

// finish records the outcome of a running task
func (h *Handle) finish(rec Record, err error) {
	if !h.state.CompareAndSwap(int32(StateRunning), int32(StateDone)) {
		return
	}
	h.record = rec
	h.err = err
	h.complete()
}

// fail finishes a handle that never ran, e.g. because its pool lost every worker
func (h *Handle) fail(err error) {
	if !h.state.CompareAndSwap(int32(StatePending), int32(StateDone)) {
		return
	}
	h.err = err
	h.complete()
}

func (h *Handle) complete() {
	close(h.done)
	if h.notify != nil {
		h.notify <- h
	}
}
