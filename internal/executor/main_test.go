package executor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"testing"
	"time"
)

// TestMain lets the process substrate re-execute the test binary as a worker
func TestMain(m *testing.M) {
	if IsWorkerProcess() {
		if err := RunWorker(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

var errBoom = errors.New("boom")

// Functions shared by the tests. They are registered at package level so that
// worker processes started from the test binary can resolve them.
var (
	testPow = Register("test.pow", func(_ context.Context, kw Kwargs) (interface{}, error) {
		return math.Pow(number(kw["a"]), number(kw["b"])), nil
	})

	testEcho = Register("test.echo", func(_ context.Context, kw Kwargs) (interface{}, error) {
		return kw["a"], nil
	})

	testFail = Register("test.fail", func(_ context.Context, kw Kwargs) (interface{}, error) {
		if b, _ := kw["fail"].(bool); b {
			return nil, errBoom
		}
		return kw["a"], nil
	})

	testSlowFail = Register("test.slowfail", func(ctx context.Context, kw Kwargs) (interface{}, error) {
		if b, _ := kw["fail"].(bool); b {
			return nil, errBoom
		}
		select {
		case <-time.After(20 * time.Millisecond):
		case <-ctx.Done():
		}
		return kw["a"], nil
	})

	testPanic = Register("test.panic", func(_ context.Context, _ Kwargs) (interface{}, error) {
		panic("kaboom")
	})

	testCrash = Register("test.crash", func(_ context.Context, kw Kwargs) (interface{}, error) {
		if b, _ := kw["crash"].(bool); b {
			os.Exit(3)
		}
		return kw["a"], nil
	})
)

// number reads a numeric kwarg as a float64
func number(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

// repeat builds n copies of kw
func repeat(kw Kwargs, n int) []Kwargs {
	out := make([]Kwargs, n)
	for i := range out {
		out[i] = kw
	}
	return out
}

// sequence builds kwargs {"a": 0} ... {"a": n-1}
func sequence(n int) []Kwargs {
	out := make([]Kwargs, n)
	for i := range out {
		out[i] = Kwargs{"a": i}
	}
	return out
}
