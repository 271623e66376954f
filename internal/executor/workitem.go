package executor

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/aryankumar/batchrun/internal/util"
)

// Invocation is the argument passed to a composed task call.
// Args exists only so that a buggy caller path can be detected; the engine
// itself never sets it.
type Invocation struct {
	Index  int
	Args   []interface{}
	Kwargs Kwargs
}

// Call is a fully composed, worker-safe task invocation
type Call func(ctx context.Context, inv Invocation) (Record, error)

// Transform decorates a Call. Transforms are applied once, at construction.
type Transform func(next Call) Call

// Compose applies transforms to base in order; the last transform is the outermost
func Compose(base Call, transforms ...Transform) Call {
	call := base
	for _, t := range transforms {
		call = t(call)
	}
	return call
}

// Wrap builds the call a worker runs for fn: panics are recovered, positional
// arguments are rejected and every record is tagged with the identity of the
// executing worker.
func Wrap(fn Func, identity IdentityFunc) Call {
	return Compose(invoke(fn),
		Recovered(fn.name),
		KwargsOnly(fn.name),
		Timed(),
		Tagged(identity),
	)
}

// invoke runs the user function and wraps a returned error as a TaskError
func invoke(fn Func) Call {
	return func(ctx context.Context, inv Invocation) (Record, error) {
		value, err := fn.fn(ctx, inv.Kwargs)
		if err != nil {
			return Record{}, &util.TaskError{Func: fn.name, Index: inv.Index, Err: err}
		}
		return Record{Index: inv.Index, Value: value}, nil
	}
}

// KwargsOnly rejects any invocation that carries positional arguments
func KwargsOnly(name string) Transform {
	return func(next Call) Call {
		return func(ctx context.Context, inv Invocation) (Record, error) {
			if len(inv.Args) != 0 {
				return Record{}, &util.InvocationError{Func: name, Args: inv.Args}
			}
			return next(ctx, inv)
		}
	}
}

// Recovered converts a panic in the user function into a TaskError
func Recovered(name string) Transform {
	return func(next Call) Call {
		return func(ctx context.Context, inv Invocation) (rec Record, err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)
					err = &util.TaskError{
						Func:  name,
						Index: inv.Index,
						Err:   fmt.Errorf("worker panic: %v\nstack trace:\n%s", r, buf[:n]),
					}
				}
			}()
			return next(ctx, inv)
		}
	}
}

// Timed records how long the call took
func Timed() Transform {
	return func(next Call) Call {
		return func(ctx context.Context, inv Invocation) (Record, error) {
			start := time.Now()
			rec, err := next(ctx, inv)
			rec.Duration = time.Since(start)
			return rec, err
		}
	}
}

// Tagged stamps the record with the identity of the worker that ran it
func Tagged(identity IdentityFunc) Transform {
	return func(next Call) Call {
		return func(ctx context.Context, inv Invocation) (Record, error) {
			rec, err := next(ctx, inv)
			if err != nil {
				return rec, err
			}
			rec.WorkerID = identity()
			return rec, nil
		}
	}
}
