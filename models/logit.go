package models

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/params"
)

// Logit implements binary logistic regression trained by gradient descent
// with an adaptive learning rate and optional L2 regularization.
type Logit struct {
	model.BaseAdapter

	// C is the inverse regularization strength. Zero disables regularization.
	C float64

	// MaxIter is the iteration budget for gradient descent.
	MaxIter int

	// Tol is the gradient-norm stopping tolerance.
	Tol float64

	// Seed seeds the weight initialization.
	Seed int64

	// Weights and Intercept are the fitted parameters.
	Weights   *mat.VecDense
	Intercept float64

	// NIter is the number of iterations actually run.
	NIter int

	nFeatures int
}

// NewLogit creates a binary logistic regression classifier.
func NewLogit(c float64, maxIter int, tol float64, seed int64) (*Logit, error) {
	if c < 0 {
		return nil, errors.NewValidationError("C", "must be non-negative", c)
	}
	if maxIter < 1 {
		return nil, errors.NewValidationError("max_iter", "must be positive", maxIter)
	}
	return &Logit{C: c, MaxIter: maxIter, Tol: tol, Seed: seed}, nil
}

// NewLogitFromParams creates a Logit from a hyperparameter map.
func NewLogitFromParams(p map[string]any) (model.Adapter, error) {
	c, err := params.Float(p, "C", 1.0)
	if err != nil {
		return nil, err
	}
	maxIter, err := params.Int(p, "max_iter", 200)
	if err != nil {
		return nil, err
	}
	tol, err := params.Float(p, "tol", 1e-4)
	if err != nil {
		return nil, err
	}
	seed, err := params.Int(p, "seed", 42)
	if err != nil {
		return nil, err
	}
	return NewLogit(c, maxIter, tol, int64(seed))
}

// Name returns the algorithm key.
func (m *Logit) Name() string { return "logit" }

// Fit trains the classifier. Labels must be 0 or 1.
func (m *Logit) Fit(X mat.Matrix, y *mat.VecDense) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "Logit.Fit")
	}
	if y == nil {
		return errors.NewValueError("Logit.Fit", "classification requires labels")
	}
	if y.Len() != r {
		return errors.NewDimensionError("Logit.Fit", r, y.Len(), 0)
	}
	for i := 0; i < r; i++ {
		if v := y.AtVec(i); v != 0 && v != 1 {
			return errors.NewValueError("Logit.Fit", "labels must be 0 or 1")
		}
	}

	m.nFeatures = c

	// Initialize with small random values
	rng := rand.New(rand.NewPCG(uint64(m.Seed), uint64(m.Seed)))
	weights := make([]float64, c)
	for j := range weights {
		weights[j] = rng.NormFloat64() * 0.01
	}
	intercept := 0.0

	baseLearningRate := 1.0
	gradWeights := make([]float64, c)

	converged := false
	for iter := 0; iter < m.MaxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < r; i++ {
			z := intercept
			for j := 0; j < c; j++ {
				z += X.At(i, j) * weights[j]
			}
			diff := sigmoid(z) - y.AtVec(i)
			gradIntercept += diff
			for j := 0; j < c; j++ {
				gradWeights[j] += diff * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] /= float64(r)
		}
		gradIntercept /= float64(r)

		if m.C > 0 {
			lambda := 1.0 / m.C
			for j := range weights {
				gradWeights[j] += lambda * weights[j] / float64(r)
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= learningRate * gradWeights[j]
		}
		intercept -= learningRate * gradIntercept

		m.NIter = iter + 1

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < m.Tol {
			converged = true
			break
		}
	}

	if !converged {
		errors.Warn(errors.NewConvergenceWarning("logit", m.MaxIter,
			"gradient descent did not reach tolerance"))
	}

	m.Weights = mat.NewVecDense(c, weights)
	m.Intercept = intercept
	m.SetFitted()
	return nil
}

// PredictProba returns P(y=1) per row of X.
func (m *Logit) PredictProba(X mat.Matrix) (*mat.VecDense, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("Logit", "PredictProba")
	}
	z, err := linearPredict(X, m.Weights, m.Intercept, m.nFeatures, "Logit.PredictProba")
	if err != nil {
		return nil, err
	}
	for i := 0; i < z.Len(); i++ {
		z.SetVec(i, sigmoid(z.AtVec(i)))
	}
	return z, nil
}

// Predict returns the 0/1 class label per row of X.
func (m *Logit) Predict(X mat.Matrix) (*mat.VecDense, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	for i := 0; i < proba.Len(); i++ {
		if proba.AtVec(i) >= 0.5 {
			proba.SetVec(i, 1)
		} else {
			proba.SetVec(i, 0)
		}
	}
	return proba, nil
}

// Score returns the accuracy on (X, y).
func (m *Logit) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	if y == nil || y.Len() != pred.Len() {
		return 0, errors.NewValueError("Logit.Score", "labels and predictions disagree")
	}
	correct := 0
	for i := 0; i < y.Len(); i++ {
		if pred.AtVec(i) == y.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(y.Len()), nil
}

// FeatureImportances returns the absolute coefficients.
func (m *Logit) FeatureImportances() []float64 {
	return absWeights(m.Weights)
}

// GetParams returns the hyperparameters.
func (m *Logit) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"C":        m.C,
		"max_iter": m.MaxIter,
		"tol":      m.Tol,
		"seed":     m.Seed,
	}
}

func sigmoid(z float64) float64 {
	// StabilizeExp clamps the exponent to avoid overflow
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}
