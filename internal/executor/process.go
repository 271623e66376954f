package executor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/aryankumar/batchrun/internal/util"
)

// stderrTail bounds how much of a worker's stderr is kept for error messages
const stderrTail = 4096

// ProcessPool runs tasks in isolated child processes of the worker binary.
// Each child is one worker and handles one task at a time.
type ProcessPool struct {
	fn        Func
	substrate Substrate
	workers   []*processWorker
	queue     *taskQueue
	limiter   *rate.Limiter
	logger    *slog.Logger

	group    errgroup.Group
	shutdown atomic.Bool
	alive    atomic.Int32
	nextID   atomic.Uint64

	errMu sync.Mutex
	errs  util.MultiError
}

// newProcessPool starts opts.workers child processes concurrently.
// If any of them fails to start, the ones already running are killed.
func newProcessPool(_ context.Context, opts poolOptions) (Pool, error) {
	if opts.workers <= 0 {
		opts.workers = 1
	}
	if opts.logger == nil {
		opts.logger = slog.Default()
	}

	path := opts.workerPath
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolving worker executable: %w", err)
		}
		path = exe
	}

	workers := make([]*processWorker, opts.workers)
	var g errgroup.Group
	for i := range workers {
		slot := i
		g.Go(func() error {
			w, err := startWorker(slot, path, opts.workerArgs)
			if err != nil {
				return fmt.Errorf("starting worker %d: %w", slot, err)
			}
			workers[slot] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, w := range workers {
			if w != nil {
				w.kill()
			}
		}
		return nil, err
	}

	p := &ProcessPool{
		fn:        opts.fn,
		substrate: opts.substrate,
		workers:   workers,
		queue:     newTaskQueue(),
		limiter:   opts.limiter,
		logger:    opts.logger,
	}
	p.alive.Store(int32(len(workers)))

	for _, w := range workers {
		worker := w
		p.logger.Debug("worker process started", "worker_id", worker.slot, "pid", worker.pid)
		p.group.Go(func() error {
			p.addError(p.serve(worker))
			return nil
		})
	}

	return p, nil
}

// Submit queues a task for the next idle worker process
func (p *ProcessPool) Submit(ctx context.Context, h *Handle, inv Invocation) error {
	if p.shutdown.Load() {
		return util.ErrPoolClosed
	}
	return p.queue.push(&queuedTask{ctx: ctx, handle: h, inv: inv})
}

// Size returns the number of worker processes the pool started with
func (p *ProcessPool) Size() int {
	return len(p.workers)
}

// Alive returns the number of worker processes still serving tasks
func (p *ProcessPool) Alive() int {
	return int(p.alive.Load())
}

// Close drains the queue, closes every child's stdin and waits for the
// children to exit
func (p *ProcessPool) Close() error {
	if !p.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	p.queue.close()
	_ = p.group.Wait()
	p.logger.Debug("worker processes shut down", "workers", len(p.workers))

	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.errs.ErrorOrNil()
}

func (p *ProcessPool) addError(err error) {
	if err == nil {
		return
	}
	p.errMu.Lock()
	p.errs.Add(err)
	p.errMu.Unlock()
}

// serve feeds tasks to one child until the queue is drained or the child dies
func (p *ProcessPool) serve(w *processWorker) error {
	defer p.retire()

	gauge := activeWorkers.WithLabelValues(string(p.substrate))
	gauge.Inc()
	defer gauge.Dec()

	for {
		t, ok := p.queue.pop()
		if !ok {
			return w.stop()
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(t.ctx); err != nil {
				t.handle.fail(err)
				continue
			}
		}

		if !t.handle.start() {
			continue
		}

		rec, dead, err := p.dispatch(w, t)
		t.handle.finish(rec, err)
		if dead {
			p.logger.Warn("worker process exited", "worker_id", w.slot, "pid", w.pid, "error", err)
			return nil
		}
	}
}

// retire fails whatever is still queued once the last worker is gone
func (p *ProcessPool) retire() {
	if p.alive.Add(-1) > 0 {
		return
	}
	if n := p.queue.abort(fmt.Errorf("%w: no live workers left", util.ErrWorkerExited)); n > 0 {
		p.logger.Warn("failed queued tasks, all worker processes exited", "tasks", n)
	}
}

// dispatch sends one task to w and waits for its response.
// dead reports that the child can no longer be used.
func (p *ProcessPool) dispatch(w *processWorker, t *queuedTask) (rec Record, dead bool, err error) {
	req := request{
		ID:     p.nextID.Add(1),
		Func:   p.fn.name,
		Index:  t.inv.Index,
		Args:   encodeArgs(t.inv.Args),
		Kwargs: encodeKwargs(t.inv.Kwargs),
	}

	data, err := json.Marshal(req)
	if err != nil {
		return Record{}, false, &util.TaskError{
			Func:  p.fn.name,
			Index: t.inv.Index,
			Err:   fmt.Errorf("encoding kwargs: %w", err),
		}
	}

	if _, err := w.stdin.Write(append(data, '\n')); err != nil {
		return Record{}, true, w.exitError("writing request", err)
	}

	var resp response
	if err := w.dec.Decode(&resp); err != nil {
		return Record{}, true, w.exitError("reading response", err)
	}
	if resp.ID != req.ID {
		w.kill()
		return Record{}, true, fmt.Errorf("%w: pid %d answered request %d, expected %d",
			util.ErrWorkerExited, w.pid, resp.ID, req.ID)
	}

	rec, err = resp.result(p.fn.name, t.inv)
	return rec, false, err
}

// processWorker is one child process and its pipes
type processWorker struct {
	slot   int
	pid    int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	dec    *json.Decoder
	stderr *tailBuffer

	waitOnce sync.Once
	waitErr  error
}

// startWorker launches path with WorkerEnvVar set.
// Context-free exec is used because the pool, not a context, owns the child's lifetime.
func startWorker(slot int, path string, args []string) (*processWorker, error) {
	cmd := exec.Command(path, args...)
	cmd.Env = append(os.Environ(), WorkerEnvVar+"=1")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting worker binary: %w", err)
	}

	dec := json.NewDecoder(bufio.NewReader(stdout))
	dec.UseNumber()

	return &processWorker{
		slot:   slot,
		pid:    cmd.Process.Pid,
		cmd:    cmd,
		stdin:  stdin,
		dec:    dec,
		stderr: stderr,
	}, nil
}

// wait reaps the child exactly once
func (w *processWorker) wait() error {
	w.waitOnce.Do(func() {
		w.waitErr = w.cmd.Wait()
	})
	return w.waitErr
}

// stop closes stdin so the child exits cleanly, then reaps it
func (w *processWorker) stop() error {
	_ = w.stdin.Close()
	if err := w.wait(); err != nil {
		if tail := w.stderr.String(); tail != "" {
			return fmt.Errorf("worker pid %d exited: %w\nstderr: %s", w.pid, err, tail)
		}
		return fmt.Errorf("worker pid %d exited: %w", w.pid, err)
	}
	return nil
}

// kill terminates the child and reaps it
func (w *processWorker) kill() {
	_ = w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.wait()
}

// exitError describes a child that broke the protocol mid-task
func (w *processWorker) exitError(op string, cause error) error {
	w.kill()
	if tail := w.stderr.String(); tail != "" {
		return fmt.Errorf("%w: pid %d, %s: %v\nstderr: %s", util.ErrWorkerExited, w.pid, op, cause, tail)
	}
	return fmt.Errorf("%w: pid %d, %s: %v", util.ErrWorkerExited, w.pid, op, cause)
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if len(b.buf) > b.max {
		b.buf = b.buf[len(b.buf)-b.max:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
