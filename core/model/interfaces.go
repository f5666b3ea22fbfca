// Package model defines the uniform adapter capability contract that every
// wrapped algorithm must satisfy. The Recipe Executor dispatches on these
// interfaces: a step adapter opts into fitting, transforming, predicting, or
// explainability by implementing the corresponding interface.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Adapter is the minimal contract shared by every step algorithm wrapper.
type Adapter interface {
	// Name returns the algorithm key the adapter was registered under.
	Name() string
}

// Fitter is the interface for adapters that learn state from training data.
//
// The executor always offers the train-partition labels: label-aware adapters
// (target encoders, models, supervised selectors) use y, everything else
// ignores it. A nil y is valid for unsupervised fitting.
type Fitter interface {
	Fit(X mat.Matrix, y *mat.VecDense) error
}

// Transformer is the interface for adapters that map a feature matrix to a
// new feature matrix. Transform must be idempotent given a fitted adapter and
// must not mutate its input.
type Transformer interface {
	Transform(X mat.Matrix) (mat.Matrix, error)
}

// ColumnMapper is implemented by transformers that change the column schema
// (encoders that expand categories, selectors that drop features). The
// executor uses it to keep the dataset's column names in sync.
type ColumnMapper interface {
	// MapColumns returns the output column names given the input ones.
	MapColumns(in []string) []string
}

// Predictor is the interface for model-step adapters.
type Predictor interface {
	// Predict returns one predicted value per row of X.
	Predict(X mat.Matrix) (*mat.VecDense, error)
}

// ProbaPredictor is the interface for classifiers that can estimate the
// positive-class probability.
type ProbaPredictor interface {
	// PredictProba returns P(y=1) per row of X.
	PredictProba(X mat.Matrix) (*mat.VecDense, error)
}

// Scorer is the interface for models that can compute their own score.
type Scorer interface {
	// Score returns the model's default metric on (X, y).
	Score(X mat.Matrix, y *mat.VecDense) (float64, error)
}

// Importancer is the interface for models that expose per-feature
// importances, index-aligned with the fitted feature matrix.
type Importancer interface {
	FeatureImportances() []float64
}

// ParameterGetter is the interface for adapters that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the adapter's hyperparameters.
	GetParams() map[string]interface{}
}

// FitTransformer combines the capabilities of a stateful transformation step.
type FitTransformer interface {
	Adapter
	Fitter
	Transformer
}

// Model combines the capabilities of a model-step adapter.
type Model interface {
	Adapter
	Fitter
	Predictor
}
