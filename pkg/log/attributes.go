// Package log defines standard attribute keys for recipe execution logging.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in souschef. Using these standard keys enables better
// log analysis, monitoring, and debugging of pipeline runs.
//
// The keys follow a hierarchical naming convention (e.g., "recipe.id",
// "step.name", "data.samples") to enable structured log filtering.

package log

// Recipe and Step Context
// These attributes identify the recipe, step, and algorithm being executed.
const (
	// RunIDKey identifies one full cookbook run (one enumeration of recipes).
	RunIDKey = "run.id"

	// RecipeIDKey is the sequential id of a recipe within a run.
	RecipeIDKey = "recipe.id"

	// RecipeCountKey is the total number of enumerated recipes in a run.
	RecipeCountKey = "recipe.count"

	// StepNameKey identifies the step in the fixed taxonomy.
	// Examples: "scale", "split", "encode", "mix", "cleave", "sample",
	// "reduce", "model"
	StepNameKey = "step.name"

	// StepStateKey records the executor state when the message was emitted.
	// Examples: "fitting", "transforming", "searching", "scored", "failed"
	StepStateKey = "step.state"

	// AlgorithmKey is the algorithm key selected for a step.
	// Examples: "standard", "target", "smote", "ols"
	AlgorithmKey = "step.algorithm"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "recipe", "cookbook", "search", "export"
	ComponentKey = "component"
)

// Data Shape and Partition Context
const (
	// PartitionKey names the dataset partition an operation applies to.
	// Standard values: "full", "train", "test", "validation"
	PartitionKey = "data.partition"

	// SamplesKey indicates the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) being processed.
	FeaturesKey = "data.features"

	// LabelKey names the label column.
	LabelKey = "data.label"
)

// Search and Scoring Context
const (
	// SearchStrategyKey names the hyperparameter search strategy.
	// Examples: "grid", "random"
	SearchStrategyKey = "search.strategy"

	// SearchIterationsKey records the search iteration budget.
	SearchIterationsKey = "search.iterations"

	// SearchScoreKey records the best cross-validated score found.
	SearchScoreKey = "search.best_score"

	// MetricKey names an evaluation metric.
	MetricKey = "metrics.name"

	// ScoreKey records an evaluation metric value.
	ScoreKey = "metrics.value"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// SeedKey records the random seed for reproducibility.
	SeedKey = "config.seed"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "StepFitError", "StepTransformError"
	ErrorTypeKey = "error.type"

	// FailedStepKey names the step that moved a recipe to the Failed state.
	FailedStepKey = "error.failed_step"
)

// Standard attribute value constants for common operations.
const (
	OperationKey = "operation"

	OperationFit       = "fit"
	OperationTransform = "transform"
	OperationPredict   = "predict"
	OperationSearch    = "search"
	OperationScore     = "score"
	OperationExport    = "export"
)
