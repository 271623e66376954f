package executor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aryankumar/batchrun/internal/util"
)

// IsWorkerProcess reports whether this process was started as an isolated worker
func IsWorkerProcess() bool {
	return os.Getenv(WorkerEnvVar) == "1"
}

// RunWorker serves the worker protocol on stdin/stdout using the default
// registry. It returns nil when the parent closes stdin.
func RunWorker(ctx context.Context) error {
	return ServeWorker(ctx, os.Stdin, os.Stdout, DefaultRegistry())
}

// ServeWorker answers JSON-line requests from r on w, one at a time, running
// functions looked up in reg. Nothing else may write to w.
func ServeWorker(ctx context.Context, r io.Reader, w io.Writer, reg *Registry) error {
	dec := json.NewDecoder(bufio.NewReader(r))
	dec.UseNumber()
	calls := make(map[string]Call)

	for {
		var req request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decoding request: %w", err)
		}

		resp := serveRequest(ctx, req, reg, calls)

		data, err := json.Marshal(resp)
		if err != nil {
			data, _ = json.Marshal(response{
				ID:    req.ID,
				PID:   ProcessID(),
				Kind:  kindTask,
				Error: fmt.Sprintf("result is not JSON-encodable: %v", err),
			})
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
}

// serveRequest runs a single request, caching the composed call per function
func serveRequest(ctx context.Context, req request, reg *Registry, calls map[string]Call) response {
	resp := response{ID: req.ID, PID: ProcessID()}

	call, ok := calls[req.Func]
	if !ok {
		fn, found := reg.Lookup(req.Func)
		if !found {
			resp.Kind = kindTask
			resp.Error = fmt.Sprintf("function %q is not registered in the worker binary", req.Func)
			return resp
		}
		call = Wrap(fn, ProcessID)
		calls[req.Func] = call
	}

	args, _ := decodeValue(req.Args).([]interface{})
	inv := Invocation{Index: req.Index, Args: args, Kwargs: decodeKwargs(req.Kwargs)}
	rec, err := call(ctx, inv)
	if err != nil {
		resp.Kind = kindTask
		resp.Error = err.Error()

		var taskErr *util.TaskError
		switch {
		case util.IsInvocationError(err):
			resp.Kind = kindInvocation
		case errors.As(err, &taskErr):
			resp.Error = taskErr.Err.Error()
		}
		return resp
	}

	resp.PID = rec.WorkerID
	resp.Value = encodeValue(rec.Value)
	resp.DurationNS = rec.Duration.Nanoseconds()
	return resp
}
