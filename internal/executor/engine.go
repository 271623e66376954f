package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/aryankumar/batchrun/internal/util"
)

// Engine runs a job to completion on one worker substrate
type Engine interface {
	// Execute runs every batch in order. It returns the first task error
	// unchanged after cancelling the failing batch's queued siblings. Pool or
	// progress shutdown errors are joined to it.
	Execute(ctx context.Context) error
	// Results returns the records collected so far in completion order
	Results() []Record
	// Substrate names the pool implementation
	Substrate() Substrate
	// Workers returns the configured pool size
	Workers() int
}

// Core is the execution algorithm shared by every substrate.
// It is single-use: a second Execute fails with util.ErrEngineReused.
type Core struct {
	substrate substrateDef
	fn        Func
	kwargs    []Kwargs
	cfg       Config

	results  Aggregator
	executed atomic.Bool
}

// newCore validates the configuration once; it is fixed afterwards
func newCore(substrate substrateDef, fn Func, kwargs []Kwargs, opts []Option) (*Core, error) {
	if fn.IsZero() {
		return nil, util.NewValidationError("worker_fn", nil, "function must be obtained from a registry")
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(substrate.defaultWorkers()); err != nil {
		return nil, err
	}

	if substrate.validate != nil {
		if err := substrate.validate(fn, kwargs); err != nil {
			return nil, err
		}
	}

	return &Core{
		substrate: substrate,
		fn:        fn,
		kwargs:    kwargs,
		cfg:       cfg,
	}, nil
}

// Substrate returns the substrate name
func (c *Core) Substrate() Substrate {
	return c.substrate.name
}

// Workers returns the pool size
func (c *Core) Workers() int {
	return c.cfg.Workers
}

// BatchSize returns the number of tasks per wave
func (c *Core) BatchSize() int {
	return c.cfg.BatchSize
}

// Results returns a copy of the collected records. After a failed run it
// holds the records of the batches that completed before the failure.
func (c *Core) Results() []Record {
	return c.results.Snapshot()
}

// Execute runs the job. The pool is torn down and the progress sink closed on
// every return path.
func (c *Core) Execute(ctx context.Context) (err error) {
	if !c.executed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %w", util.ErrInternalState, util.ErrEngineReused)
	}

	runID := ulid.Make().String()
	logger := c.cfg.Logger.With("run_id", runID, "substrate", string(c.substrate.name))
	start := time.Now()

	batches, err := Plan(c.kwargs, c.cfg.BatchSize)
	if err != nil {
		return err
	}

	logger.Info("starting run",
		"function", c.fn.Name(),
		"tasks", len(c.kwargs),
		"workers", c.cfg.Workers,
		"batches", NumBatches(len(c.kwargs), c.cfg.BatchSize))

	pool, err := c.substrate.newPool(ctx, poolOptions{
		substrate:  c.substrate.name,
		fn:         c.fn,
		workers:    c.cfg.Workers,
		identity:   c.substrate.identity,
		limiter:    c.cfg.limiter(),
		logger:     logger,
		workerPath: c.cfg.WorkerPath,
		workerArgs: c.cfg.WorkerArgs,
	})
	if err != nil {
		return fmt.Errorf("starting %s pool: %w", c.substrate.name, err)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Warn("pool shutdown reported errors", "error", cerr)
			err = util.CombineErrors(err, util.WrapErrorf(cerr, "closing %s pool", c.substrate.name))
		}
	}()

	var sink Sink
	if c.cfg.sink != nil {
		sink = &guardedSink{inner: c.cfg.sink}
		if err := sink.Init(len(c.kwargs)); err != nil {
			return fmt.Errorf("initializing progress: %w", err)
		}
		defer func() {
			err = util.CombineErrors(err, util.WrapErrorf(sink.Close(), "closing progress"))
		}()
	}

	offset := 0
	for n, batch := range batches {
		if len(batch) == 0 {
			continue
		}
		if err := c.runBatch(ctx, pool, logger, sink, n, offset, batch); err != nil {
			return err
		}
		offset += len(batch)
	}

	logger.Info("run completed",
		"tasks", c.results.Len(),
		"duration", time.Since(start))
	return nil
}

// runBatch submits every task of a batch, then drains completions in the
// order the pool delivers them
func (c *Core) runBatch(ctx context.Context, pool Pool, logger *slog.Logger, sink Sink, n, offset int, batch []Kwargs) error {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	substrate := string(c.substrate.name)
	completions := make(chan *Handle, len(batch))
	handles := make([]*Handle, 0, len(batch))

	for i, kw := range batch {
		h := newHandle(offset+i, completions)
		if err := pool.Submit(batchCtx, h, Invocation{Index: offset + i, Kwargs: kw}); err != nil {
			cancel()
			cancelPending(handles)
			return fmt.Errorf("submitting task %d: %w", offset+i, err)
		}
		handles = append(handles, h)
	}
	logger.Debug("batch submitted", "batch", n, "tasks", len(handles))

	for range handles {
		h := <-completions
		rec, err := h.Result()
		if err != nil {
			cancel()
			swept := cancelPending(handles)

			tasksTotal.WithLabelValues(substrate, statusFailed).Inc()
			cancelledTasks.WithLabelValues(substrate).Add(float64(swept))
			logger.Warn("task failed, batch aborted",
				"batch", n,
				"index", h.Index(),
				"cancelled", swept,
				"error", err)
			return err
		}

		c.results.Append(rec)
		tasksTotal.WithLabelValues(substrate, statusSucceeded).Inc()
		taskDuration.WithLabelValues(substrate).Observe(rec.Duration.Seconds())
		logger.Debug("task completed", "index", rec.Index, "worker_id", rec.WorkerID, "duration", rec.Duration)

		if sink != nil {
			if err := sink.Update(1); err != nil {
				return err
			}
		}
	}

	batchesTotal.WithLabelValues(substrate).Inc()
	logger.Info("batch completed", "batch", n, "tasks", len(handles))
	return nil
}

// cancelPending cancels every handle that has not started and returns how many
// were cancelled. Running handles are left to finish.
func cancelPending(handles []*Handle) int {
	swept := 0
	for _, h := range handles {
		if h.Cancel() {
			swept++
		}
	}
	return swept
}
