package recipe

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/pkg/errors"
)

// NoneKey is the reserved algorithm key for a passthrough step slot.
const NoneKey = "none"

// Constructor builds a fresh adapter from concrete hyperparameter values.
// Constructors must not fit anything; fitting happens during execution.
type Constructor func(params map[string]any) (model.Adapter, error)

// Registry maps (step name, algorithm key) pairs to adapter constructors.
// It is a pure lookup table populated at process start.
type Registry struct {
	table map[StepName]map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{table: make(map[StepName]map[string]Constructor)}
}

// Register binds an algorithm key under a step name.
func (r *Registry) Register(step StepName, key string, c Constructor) {
	if r.table[step] == nil {
		r.table[step] = make(map[string]Constructor)
	}
	r.table[step][key] = c
}

// Resolve looks up the constructor for (step, key). The reserved key "none"
// always resolves to a passthrough adapter.
func (r *Registry) Resolve(step StepName, key string) (Constructor, error) {
	if key == NoneKey {
		return newNoop, nil
	}
	if c, ok := r.table[step][key]; ok {
		return c, nil
	}
	return nil, errors.NewUnknownAlgorithmError(string(step), key, r.Known(step))
}

// Known returns the registered keys of a step, sorted, including "none".
func (r *Registry) Known(step StepName) []string {
	keys := []string{NoneKey}
	for key := range r.table[step] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Steps returns the step names with at least one registered key, sorted.
func (r *Registry) Steps() []StepName {
	var steps []StepName
	for step := range r.table {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })
	return steps
}

// noop is the passthrough adapter behind the reserved "none" key.
type noop struct{}

func newNoop(map[string]any) (model.Adapter, error) { return noop{}, nil }

func (noop) Name() string { return NoneKey }

// Transform returns its input unchanged.
func (noop) Transform(X mat.Matrix) (mat.Matrix, error) { return X, nil }
