package plugins

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
	"github.com/FocuswithJustin/anchorleak/internal/logging"
	"github.com/FocuswithJustin/anchorleak/plugins/ipc"
)

// Observer receives the outcome of every operation run. The metrics
// package provides one; nil is allowed.
type Observer interface {
	Observe(operation string, err error, d time.Duration)
}

// Registry holds the operations a host serves. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	ops      map[string]Operation
	observer Observer
}

// NewRegistry creates a registry from ops. Operation IDs must be unique and non-empty.
func NewRegistry(ops ...Operation) (*Registry, error) {
	r := &Registry{ops: make(map[string]Operation, len(ops))}
	for _, op := range ops {
		d := op.Descriptor()
		if d == nil || d.ID == "" {
			return nil, fmt.Errorf("operation has no ID")
		}
		if _, exists := r.ops[d.ID]; exists {
			return nil, apperrors.Wrapf(apperrors.ErrAlreadyExists, "operation %s", d.ID)
		}
		r.ops[d.ID] = op
		logging.OperationRegistered(d.ID, len(d.Args))
	}
	return r, nil
}

// WithObserver returns a copy of r that reports runs to obs.
func (r *Registry) WithObserver(obs Observer) *Registry {
	return &Registry{ops: r.ops, observer: obs}
}

// Get returns the operation with the given ID.
func (r *Registry) Get(id string) (Operation, error) {
	op, ok := r.ops[id]
	if !ok {
		return nil, apperrors.NewNotFound("operation", id)
	}
	return op, nil
}

// List returns the descriptors of all operations, sorted by ID.
func (r *Registry) List() []*OperationDescriptor {
	out := make([]*OperationDescriptor, 0, len(r.ops))
	for _, op := range r.ops {
		out = append(out, op.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.ops)
}

// Run executes operation id with named arguments.
func (r *Registry) Run(id string, named map[string]string) (*ipc.RunResult, error) {
	op, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return r.RunPositional(op, op.Descriptor().Positional(named))
}

// RunPositional executes op with positional arguments and fingerprints the output.
func (r *Registry) RunPositional(op Operation, args []string) (*ipc.RunResult, error) {
	id := op.Descriptor().ID
	start := time.Now()
	out, err := op.Run(args)
	elapsed := time.Since(start)

	if r.observer != nil {
		r.observer.Observe(id, err, elapsed)
	}
	if err != nil {
		logging.OperationError(id, err)
		return nil, err
	}
	logging.OperationRun(id, elapsed, len(out))

	return &ipc.RunResult{
		Operation: id,
		Output:    out,
		Digest:    Digest(out),
	}, nil
}

// Digest returns the hex BLAKE3-256 of an operation output. Equal inputs
// give equal outputs, so equal digests identify repeated runs.
func Digest(output string) string {
	sum := blake3.Sum256([]byte(output))
	return hex.EncodeToString(sum[:])
}
