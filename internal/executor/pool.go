package executor

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aryankumar/batchrun/internal/util"
)

// Pool is a worker substrate. Submit must not block; results are delivered
// through the handle. Close stops accepting tasks, lets workers drain what is
// queued and waits for every worker to exit.
type Pool interface {
	Submit(ctx context.Context, h *Handle, inv Invocation) error
	Size() int
	Close() error
}

// poolOptions carries everything a substrate needs to build its pool
type poolOptions struct {
	substrate  Substrate
	fn         Func
	workers    int
	identity   IdentityFunc
	limiter    *rate.Limiter
	logger     *slog.Logger
	workerPath string
	workerArgs []string
}

// ThreadPool runs tasks on goroutine workers that share the engine's memory.
// Each worker is locked to its own OS thread for its lifetime.
type ThreadPool struct {
	workers   int
	substrate Substrate
	call      Call
	queue     *taskQueue
	limiter   *rate.Limiter
	logger    *slog.Logger

	group    errgroup.Group
	shutdown atomic.Bool
}

// newThreadPool starts opts.workers worker goroutines
func newThreadPool(_ context.Context, opts poolOptions) (Pool, error) {
	if opts.workers <= 0 {
		opts.workers = 1
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	if opts.identity == nil {
		opts.identity = ThreadID
	}

	p := &ThreadPool{
		workers:   opts.workers,
		substrate: opts.substrate,
		call:      Wrap(opts.fn, opts.identity),
		queue:     newTaskQueue(),
		limiter:   opts.limiter,
		logger:    opts.logger,
	}

	p.logger.Debug("starting workers", "count", p.workers)
	for i := 0; i < p.workers; i++ {
		workerID := i
		p.group.Go(func() error {
			p.worker(workerID)
			return nil
		})
	}

	return p, nil
}

// Submit queues a task for the next free worker
func (p *ThreadPool) Submit(ctx context.Context, h *Handle, inv Invocation) error {
	if p.shutdown.Load() {
		return util.ErrPoolClosed
	}
	return p.queue.push(&queuedTask{ctx: ctx, handle: h, inv: inv})
}

// Size returns the number of workers
func (p *ThreadPool) Size() int {
	return p.workers
}

// Close waits for queued and running tasks and stops every worker
func (p *ThreadPool) Close() error {
	if !p.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	p.queue.close()
	err := p.group.Wait()
	p.logger.Debug("worker pool shut down", "workers", p.workers)
	return err
}

// worker processes tasks until the queue is closed and drained
func (p *ThreadPool) worker(workerID int) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	gauge := activeWorkers.WithLabelValues(string(p.substrate))
	gauge.Inc()
	defer gauge.Dec()

	p.logger.Debug("worker started", "worker_id", workerID, "thread_id", ThreadID())

	for {
		t, ok := p.queue.pop()
		if !ok {
			p.logger.Debug("worker finished (no more tasks)", "worker_id", workerID)
			return
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(t.ctx); err != nil {
				t.handle.fail(err)
				continue
			}
		}

		// Cancelled while queued
		if !t.handle.start() {
			continue
		}

		rec, err := p.call(t.ctx, t.inv)
		t.handle.finish(rec, err)
	}
}
