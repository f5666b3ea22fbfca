// Package recipe implements the recipe enumeration and execution engine: it
// expands a step/options configuration into the Cartesian product of concrete
// pipelines, runs each pipeline against a partitioned dataset under
// fit-on-train semantics, and resolves hyperparameter ranges through search.
package recipe

import (
	"github.com/souschef-ml/souschef/dataset"
)

// StepName identifies one stage of the fixed processing taxonomy.
type StepName string

const (
	// StepScale normalizes feature magnitudes.
	StepScale StepName = "scale"
	// StepSplit divides the full partition into train/test(/validation).
	StepSplit StepName = "split"
	// StepEncode converts categorical columns to numeric representations.
	StepEncode StepName = "encode"
	// StepMix constructs interaction features.
	StepMix StepName = "mix"
	// StepCleave narrows the dataset to a registered column group.
	StepCleave StepName = "cleave"
	// StepSample rebalances the train partition.
	StepSample StepName = "sample"
	// StepReduce selects a feature subset.
	StepReduce StepName = "reduce"
	// StepModel fits the final estimator.
	StepModel StepName = "model"
	// StepCustom is the escape hatch for user-supplied adapters.
	StepCustom StepName = "custom"
)

// CanonicalOrder is the step sequence used when configuration does not
// declare its own order.
var CanonicalOrder = []StepName{
	StepScale, StepSplit, StepEncode, StepMix,
	StepCleave, StepSample, StepReduce, StepModel,
}

// KnownStep reports whether name is part of the taxonomy.
func KnownStep(name StepName) bool {
	if name == StepCustom {
		return true
	}
	for _, s := range CanonicalOrder {
		if s == name {
			return true
		}
	}
	return false
}

// StepSpec declares one step slot of a configuration: the step name and the
// algorithm keys the user selected for it. Immutable after construction.
type StepSpec struct {
	Name StepName
	Keys []string

	// Optional adds the "none" passthrough as an extra candidate, so
	// enumeration also tries recipes that skip this step entirely.
	Optional bool

	// Custom constructs a user-supplied adapter, bypassing the registry.
	// Only honored when Name is StepCustom.
	Custom Constructor
}

// DatasetOperator is the capability interface for steps that restructure the
// dataset itself rather than mapping feature matrices: splitters, cleave, and
// train resamplers. The executor applies them once, before any fit/transform
// dispatch.
type DatasetOperator interface {
	Apply(ds *dataset.Dataset) error
}
