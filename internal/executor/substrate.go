package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/aryankumar/batchrun/internal/util"
)

// Substrate names a worker pool implementation
type Substrate string

const (
	// SubstrateThread runs tasks on shared-memory worker threads
	SubstrateThread Substrate = "thread"
	// SubstrateProcess runs tasks in isolated worker processes
	SubstrateProcess Substrate = "process"
)

// Substrates lists the supported substrate names
func Substrates() []string {
	return []string{string(SubstrateThread), string(SubstrateProcess)}
}

// ParseSubstrate validates a substrate name, "" meaning thread
func ParseSubstrate(name string) (Substrate, error) {
	switch Substrate(name) {
	case "", SubstrateThread:
		return SubstrateThread, nil
	case SubstrateProcess:
		return SubstrateProcess, nil
	default:
		return "", util.NewValidationError("substrate", name,
			fmt.Sprintf("must be one of %v", Substrates()))
	}
}

type poolFactory func(ctx context.Context, opts poolOptions) (Pool, error)

// substrateDef is everything that differs between the two engines
type substrateDef struct {
	name           Substrate
	defaultWorkers func() int
	identity       IdentityFunc
	newPool        poolFactory
	validate       func(fn Func, kwargs []Kwargs) error
}

var threadSubstrate = substrateDef{
	name:           SubstrateThread,
	defaultWorkers: func() int { return DefaultThreadWorkers },
	identity:       ThreadID,
	newPool:        newThreadPool,
}

var processSubstrate = substrateDef{
	name:           SubstrateProcess,
	defaultWorkers: runtime.NumCPU,
	identity:       ProcessID,
	newPool:        newProcessPool,
	validate:       validateTransferable,
}

// validateTransferable checks that a job can cross the process boundary:
// the child resolves fn by name in the default registry, so fn must come
// from it, and every kwargs set must encode as JSON
func validateTransferable(fn Func, kwargs []Kwargs) error {
	if fn.Registry() != DefaultRegistry() {
		return util.NewValidationError("worker_fn", fn.Name(),
			"isolated workers can only run functions registered in the default registry")
	}
	for i, kw := range kwargs {
		if _, err := json.Marshal(kw); err != nil {
			return util.NewValidationError("worker_fn_kwargs", i,
				fmt.Sprintf("kwargs are not JSON-encodable: %v", err))
		}
	}
	return nil
}

// ThreadEngine runs a job on shared-memory worker threads
type ThreadEngine struct {
	*Core
}

// NewThreadEngine creates an engine backed by a thread pool.
// The default pool size is DefaultThreadWorkers.
func NewThreadEngine(fn Func, kwargs []Kwargs, opts ...Option) (*ThreadEngine, error) {
	core, err := newCore(threadSubstrate, fn, kwargs, opts)
	if err != nil {
		return nil, err
	}
	return &ThreadEngine{Core: core}, nil
}

// ProcessEngine runs a job in isolated worker processes
type ProcessEngine struct {
	*Core
}

// NewProcessEngine creates an engine backed by worker processes.
// The default pool size is the host CPU count. The binary started for each
// worker must hand control to RunWorker when IsWorkerProcess reports true.
func NewProcessEngine(fn Func, kwargs []Kwargs, opts ...Option) (*ProcessEngine, error) {
	core, err := newCore(processSubstrate, fn, kwargs, opts)
	if err != nil {
		return nil, err
	}
	return &ProcessEngine{Core: core}, nil
}

// New creates the engine for the named substrate, "" meaning thread
func New(substrate Substrate, fn Func, kwargs []Kwargs, opts ...Option) (Engine, error) {
	s, err := ParseSubstrate(string(substrate))
	if err != nil {
		return nil, err
	}

	var core *Core
	if s == SubstrateProcess {
		core, err = newCore(processSubstrate, fn, kwargs, opts)
	} else {
		core, err = newCore(threadSubstrate, fn, kwargs, opts)
	}
	if err != nil {
		return nil, err
	}
	return core, nil
}
