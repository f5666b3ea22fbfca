package recipe

import (
	"github.com/souschef-ml/souschef/pkg/errors"
)

// Enumerator expands step specs into the Cartesian product of recipes. It is
// lazy and restartable: each call to Recipes returns a fresh iterator whose
// recipes carry freshly constructed adapters, so fitted state never leaks
// between iterations or between sibling recipes.
type Enumerator struct {
	registry    *Registry
	specs       []StepSpec
	paramsByKey map[string]map[string]ParamSpec
	search      bool
}

// NewEnumerator validates the configuration eagerly and returns an
// enumerator. Every (step, key) pair must resolve in the registry and every
// constructor must accept its fixed parameters; failures here abort the run
// before any recipe executes.
func NewEnumerator(registry *Registry, specs []StepSpec, paramsByKey map[string]map[string]ParamSpec, searchEnabled bool) (*Enumerator, error) {
	e := &Enumerator{
		registry:    registry,
		specs:       make([]StepSpec, 0, len(specs)),
		paramsByKey: paramsByKey,
		search:      searchEnabled,
	}

	for _, spec := range specs {
		if !KnownStep(spec.Name) {
			return nil, errors.NewValidationError("steps", "unknown step name", string(spec.Name))
		}
		if spec.Optional && !containsKey(spec.Keys, NoneKey) {
			spec.Keys = append(append([]string{}, spec.Keys...), NoneKey)
		}
		if len(spec.Keys) == 0 {
			spec.Keys = []string{NoneKey}
		}
		for _, key := range spec.Keys {
			// probe construction once so bad configuration fails now
			if _, err := e.buildInstance(spec, key); err != nil {
				return nil, err
			}
		}
		e.specs = append(e.specs, spec)
	}
	return e, nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// Count returns the number of recipes enumeration will yield.
func (e *Enumerator) Count() int {
	count := 1
	for _, spec := range e.specs {
		count *= len(spec.Keys)
	}
	return count
}

// Recipes returns a fresh iterator over the full product, in lexicographic
// order of (step order, declared key order).
func (e *Enumerator) Recipes() *Iterator {
	return &Iterator{enum: e, positions: make([]int, len(e.specs))}
}

// buildInstance constructs one fresh step instance for an algorithm key.
func (e *Enumerator) buildInstance(spec StepSpec, key string) (StepInstance, error) {
	construct := spec.Custom
	if spec.Name != StepCustom || construct == nil {
		var err error
		construct, err = e.registry.Resolve(spec.Name, key)
		if err != nil {
			return StepInstance{}, err
		}
	}

	params := e.paramsByKey[key]
	if !e.search || spec.Name != StepModel {
		// only the model step participates in search; everything else
		// takes the deterministic lower bound
		params = CollapseRanges(params)
	}

	adapter, err := construct(FixedValues(params))
	if err != nil {
		return StepInstance{}, err
	}

	return StepInstance{
		Step:      spec.Name,
		Key:       key,
		Adapter:   adapter,
		Construct: construct,
		Params:    params,
	}, nil
}

// Iterator walks the Cartesian product one recipe at a time.
type Iterator struct {
	enum      *Enumerator
	positions []int
	next      int
	done      bool
	recipe    *Recipe
	err       error
}

// Next advances to the next recipe. It returns false when the product is
// exhausted or construction failed; check Err afterwards.
func (it *Iterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}

	steps := make([]StepInstance, 0, len(it.enum.specs))
	for i, spec := range it.enum.specs {
		inst, err := it.enum.buildInstance(spec, spec.Keys[it.positions[i]])
		if err != nil {
			it.err = err
			return false
		}
		steps = append(steps, inst)
	}

	it.next++
	it.recipe = &Recipe{
		ID:            it.next,
		Steps:         steps,
		SearchEnabled: it.enum.search,
	}

	// advance the odometer, last step fastest
	it.done = true
	for i := len(it.positions) - 1; i >= 0; i-- {
		it.positions[i]++
		if it.positions[i] < len(it.enum.specs[i].Keys) {
			it.done = false
			break
		}
		it.positions[i] = 0
	}
	// zero steps still yields exactly one identity recipe
	return true
}

// Recipe returns the current recipe.
func (it *Iterator) Recipe() *Recipe { return it.recipe }

// Err returns the first construction error, if any.
func (it *Iterator) Err() error { return it.err }
