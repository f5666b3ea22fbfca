package recipe

// State tracks a recipe through the executor's lifecycle.
type State int

const (
	// Pending means execution has not started.
	Pending State = iota
	// Fitting means a step adapter is learning from the train partition.
	Fitting
	// Transforming means a fitted adapter is being applied per partition.
	Transforming
	// Searching means hyperparameter search is resolving range parameters.
	Searching
	// Scored means the model step produced predictions.
	Scored
	// Done is the successful terminal state.
	Done
	// Failed is the terminal state for a recipe whose step errored; sibling
	// recipes are unaffected.
	Failed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Fitting:
		return "fitting"
	case Transforming:
		return "transforming"
	case Searching:
		return "searching"
	case Scored:
		return "scored"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// StepInstance is one ready-to-run slot of a recipe: a freshly constructed
// adapter plus the resolved hyperparameters it was built from. Instances are
// owned by exactly one recipe; fitted state never crosses recipes.
type StepInstance struct {
	Step StepName
	Key  string

	// Adapter is the executable wrapper. It is built from the Fixed subset
	// of Params; Range params are resolved by search during execution.
	Adapter interface{ Name() string }

	// Construct rebuilds a fresh adapter for a candidate parameter setting.
	// The executor uses it during hyperparameter search.
	Construct Constructor

	// Params holds the resolved parameter specs for this algorithm key.
	Params map[string]ParamSpec
}

// Recipe is one concrete pipeline produced by enumeration. It is executed
// exactly once, then read as evidence by the results table.
type Recipe struct {
	// ID is the recipe's position in enumeration order, starting at 1.
	ID int

	// Steps is the ordered step-instance sequence.
	Steps []StepInstance

	// SearchEnabled controls whether Range parameters feed search or
	// collapse to their lower bounds.
	SearchEnabled bool

	state   State
	failure error
}

// State returns the recipe's current lifecycle state.
func (r *Recipe) State() State { return r.state }

// Failure returns the error that moved the recipe to Failed, or nil.
func (r *Recipe) Failure() error { return r.failure }

// Keys returns the algorithm key chosen for each step, in step order.
func (r *Recipe) Keys() map[StepName]string {
	out := make(map[StepName]string, len(r.Steps))
	for _, s := range r.Steps {
		out[s.Step] = s.Key
	}
	return out
}

func (r *Recipe) setState(s State) { r.state = s }

func (r *Recipe) fail(err error) {
	r.state = Failed
	r.failure = err
}
