package builtin

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aryankumar/batchrun/internal/executor"
)

// Kwargs arrive as Go values on the thread substrate. On the process substrate
// integers decode as int64 and fractional numbers as float64. YAML job files
// may also yield strings.

func floatArg(kw executor.Kwargs, name string) (float64, error) {
	v, ok := kw[name]
	if !ok {
		return 0, fmt.Errorf("missing kwarg %q", name)
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("kwarg %q: %w", name, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("kwarg %q must be a number, got %T", name, v)
	}
}

func intArg(kw executor.Kwargs, name string) (int, error) {
	switch n := kw[name].(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	}

	f, err := floatArg(kw, name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("kwarg %q must be an integer, got %v", name, f)
	}
	return int(f), nil
}

func stringArg(kw executor.Kwargs, name string) (string, error) {
	v, ok := kw[name]
	if !ok {
		return "", fmt.Errorf("missing kwarg %q", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("kwarg %q must be a string, got %T", name, v)
	}
	return s, nil
}
