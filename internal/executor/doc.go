// Package executor runs one registered function over a list of keyword
// argument sets on a bounded pool of workers.
//
// A job is split into batches of at most BatchSize tasks. Each batch is
// submitted in full, then drained in completion order. The next batch starts
// only once the current one is resolved, which bounds the number of in-flight
// tasks at the cost of brief idling while a batch's tail drains.
//
// # Substrates
//
// Two worker substrates share the same algorithm:
//
//   - thread: goroutine workers, each locked to an OS thread. Records are
//     tagged with the thread id. Suited to I/O-bound or blocking work.
//   - process: child processes of the running binary speaking JSON lines over
//     stdin/stdout. Records are tagged with the child's pid. Arguments and
//     return values must be JSON-encodable. Integers cross as int64 and
//     floats as float64.
//
// # Basic Usage
//
// Functions are registered at package level so that worker processes can
// resolve them by name:
//
//	var Square = executor.Register("square", func(ctx context.Context, kw executor.Kwargs) (interface{}, error) {
//	    a := kw["a"].(int64)
//	    return a * a, nil
//	})
//
//	engine, err := executor.NewThreadEngine(Square, kwargs,
//	    executor.WithWorkers(8),
//	    executor.WithProgressLabel("squaring"),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Execute(ctx); err != nil {
//	    return err
//	}
//	records := engine.Results()
//
// A binary that uses the process substrate must start with:
//
//	if executor.IsWorkerProcess() {
//	    if err := executor.RunWorker(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	    os.Exit(0)
//	}
//
// # Error Handling
//
// Configuration errors are returned by the constructors and match
// util.ErrInvalidConfig. The first failing task aborts the run: queued tasks
// of the same batch are cancelled, running ones are allowed to finish and
// their results are discarded, and Execute returns the task's error with its
// cause intact (util.ErrTask or util.ErrInvocation plus the original error).
//
// Engines are single-use. Calling Execute twice returns util.ErrEngineReused.
package executor
