package executor

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aryankumar/batchrun/internal/util"
)

// Kwargs is one keyword-argument set for a single task invocation
type Kwargs map[string]interface{}

// WorkerFunc is the signature of every function the engine can run.
// Arguments are passed by keyword only.
type WorkerFunc func(ctx context.Context, kw Kwargs) (interface{}, error)

// Func is a reference to a registered top-level worker function.
//
// Isolated workers resolve the function by name in their own copy of the
// binary, so only functions registered at package level (typically in a var
// block or init) can be run by every substrate. A Func must not be built from
// a closure over per-run local state.
type Func struct {
	name  string
	fn    WorkerFunc
	owner *Registry
}

// Name returns the registered name of the function
func (f Func) Name() string {
	return f.name
}

// Registry returns the registry f was obtained from
func (f Func) Registry() *Registry {
	return f.owner
}

// IsZero reports whether f was never obtained from a registry
func (f Func) IsZero() bool {
	return f.fn == nil
}

// Registry maps function names to worker functions
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]WorkerFunc
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]WorkerFunc),
	}
}

// Register adds fn under name.
// Returns an error if the name is empty, fn is nil or the name is taken.
func (r *Registry) Register(name string, fn WorkerFunc) (Func, error) {
	if name == "" {
		return Func{}, util.NewValidationError("name", nil, "function name must not be empty")
	}
	if fn == nil {
		return Func{}, util.NewValidationError("fn", name, "function must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return Func{}, fmt.Errorf("function %q already registered", name)
	}
	r.funcs[name] = fn

	return Func{name: name, fn: fn, owner: r}, nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(name string, fn WorkerFunc) Func {
	f, err := r.Register(name, fn)
	if err != nil {
		panic(err)
	}
	return f
}

// Lookup returns the function registered under name
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	if !ok {
		return Func{}, false
	}
	return Func{name: name, fn: fn, owner: r}, true
}

// Names returns all registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by Register and by
// isolated worker processes
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds fn to the default registry and panics if the name is taken.
// Intended for package-level variables:
//
//	var Square = executor.Register("square", square)
func Register(name string, fn WorkerFunc) Func {
	return defaultRegistry.MustRegister(name, fn)
}

// Lookup finds a function in the default registry
func Lookup(name string) (Func, bool) {
	return defaultRegistry.Lookup(name)
}

// Names lists the functions of the default registry
func Names() []string {
	return defaultRegistry.Names()
}
