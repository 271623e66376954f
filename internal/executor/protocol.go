package executor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aryankumar/batchrun/internal/util"
)

// WorkerEnvVar marks a process as an isolated worker. A binary that hosts the
// process substrate must check IsWorkerProcess early in main and hand control
// to RunWorker.
const WorkerEnvVar = "BATCHRUN_WORKER"

// Error kinds reported by a worker process
const (
	kindTask       = "task"
	kindInvocation = "invocation"
)

// request is one JSON line sent to a worker process
type request struct {
	ID     uint64        `json:"id"`
	Func   string        `json:"func"`
	Index  int           `json:"index"`
	Args   []interface{} `json:"args,omitempty"`
	Kwargs Kwargs        `json:"kwargs"`
}

// response is one JSON line read back from a worker process
type response struct {
	ID         uint64      `json:"id"`
	PID        int         `json:"pid"`
	Value      interface{} `json:"value,omitempty"`
	DurationNS int64       `json:"duration_ns,omitempty"`
	Kind       string      `json:"kind,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// result converts a response back into the record or error the worker produced
func (r response) result(fn string, inv Invocation) (Record, error) {
	switch r.Kind {
	case "":
		return Record{
			WorkerID: r.PID,
			Index:    inv.Index,
			Value:    decodeValue(r.Value),
			Duration: time.Duration(r.DurationNS),
		}, nil
	case kindInvocation:
		return Record{}, &util.InvocationError{Func: fn, Args: inv.Args}
	default:
		return Record{}, &util.TaskError{
			Func:  fn,
			Index: inv.Index,
			Err:   &util.RemoteError{PID: r.PID, Message: r.Error},
		}
	}
}

// Values cross the pipe as JSON. Integer literals decode to int64 (uint64 past
// its range) and anything with a fraction or exponent to float64. Integral
// floats are written with a trailing ".0" so they keep their kind.

func encodeKwargs(kw Kwargs) Kwargs {
	if kw == nil {
		return nil
	}
	out := make(Kwargs, len(kw))
	for k, v := range kw {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeArgs(args []interface{}) []interface{} {
	if args == nil {
		return nil
	}
	out := make([]interface{}, len(args))
	for i, v := range args {
		out[i] = encodeValue(v)
	}
	return out
}

func encodeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		return floatLiteral(x)
	case float32:
		return floatLiteral(float64(x))
	case Kwargs:
		return encodeKwargs(x)
	case map[string]interface{}:
		return map[string]interface{}(encodeKwargs(x))
	case []interface{}:
		return encodeArgs(x)
	default:
		return v
	}
}

// floatLiteral leaves NaN and infinities alone so encoding still rejects them
func floatLiteral(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}

func decodeKwargs(kw Kwargs) Kwargs {
	for k, v := range kw {
		kw[k] = decodeValue(v)
	}
	return kw
}

// decodeValue expects input read with json.Decoder.UseNumber
func decodeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case json.Number:
		s := x.String()
		if !strings.ContainsAny(s, ".eE") {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i
			}
			if u, err := strconv.ParseUint(s, 10, 64); err == nil {
				return u
			}
		}
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case map[string]interface{}:
		for k, e := range x {
			x[k] = decodeValue(e)
		}
		return x
	case []interface{}:
		for i, e := range x {
			x[i] = decodeValue(e)
		}
		return x
	default:
		return v
	}
}
