package models

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
)

const tol = 1e-8

func TestOLSPerfectFit(t *testing.T) {
	// y = 2x + 1
	X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	y := mat.NewVecDense(5, []float64{1, 3, 5, 7, 9})

	m := NewOLS()
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(m.Weights.AtVec(0)-2.0) > tol {
		t.Errorf("weight = %v, want 2", m.Weights.AtVec(0))
	}
	if math.Abs(m.Intercept-1.0) > tol {
		t.Errorf("intercept = %v, want 1", m.Intercept)
	}

	pred, err := m.Predict(mat.NewDense(2, 1, []float64{5, 6}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(pred.AtVec(0)-11.0) > tol || math.Abs(pred.AtVec(1)-13.0) > tol {
		t.Errorf("predictions = [%v %v], want [11 13]", pred.AtVec(0), pred.AtVec(1))
	}

	score, err := m.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.Abs(score-1.0) > tol {
		t.Errorf("R2 = %v, want 1", score)
	}
}

func TestOLSNotFitted(t *testing.T) {
	m := NewOLS()
	_, err := m.Predict(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("Predict() error = %v, want NotFittedError", err)
	}
}

func TestOLSRequiresLabels(t *testing.T) {
	m := NewOLS()
	if err := m.Fit(mat.NewDense(2, 1, []float64{1, 2}), nil); err == nil {
		t.Fatal("Fit() without labels should fail")
	}
}

func TestRidgeShrinksWeights(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{0, 1, 2, 3, 4, 5})
	y := mat.NewVecDense(6, []float64{0.1, 2.1, 3.9, 6.2, 7.8, 10.1})

	ols := NewOLS()
	if err := ols.Fit(X, y); err != nil {
		t.Fatalf("OLS Fit() error = %v", err)
	}

	ridge, err := NewRidge(10)
	if err != nil {
		t.Fatalf("NewRidge() error = %v", err)
	}
	if err := ridge.Fit(X, y); err != nil {
		t.Fatalf("Ridge Fit() error = %v", err)
	}

	if math.Abs(ridge.Weights.AtVec(0)) >= math.Abs(ols.Weights.AtVec(0)) {
		t.Errorf("ridge weight %v not shrunk versus ols weight %v",
			ridge.Weights.AtVec(0), ols.Weights.AtVec(0))
	}
}

func TestRidgeZeroAlphaMatchesOLS(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 2,
		2, 1,
		3, 4,
		4, 3,
	})
	y := mat.NewVecDense(4, []float64{5, 4, 11, 10})

	ols := NewOLS()
	if err := ols.Fit(X, y); err != nil {
		t.Fatalf("OLS Fit() error = %v", err)
	}
	ridge, _ := NewRidge(0)
	if err := ridge.Fit(X, y); err != nil {
		t.Fatalf("Ridge Fit() error = %v", err)
	}

	for j := 0; j < 2; j++ {
		if math.Abs(ols.Weights.AtVec(j)-ridge.Weights.AtVec(j)) > 1e-6 {
			t.Errorf("weight %d: ols=%v ridge=%v", j, ols.Weights.AtVec(j), ridge.Weights.AtVec(j))
		}
	}
}

func TestLogitSeparableData(t *testing.T) {
	// 一次元の線形分離可能データ
	X := mat.NewDense(8, 1, []float64{-4, -3, -2, -1, 1, 2, 3, 4})
	y := mat.NewVecDense(8, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	m, err := NewLogit(1.0, 500, 1e-6, 7)
	if err != nil {
		t.Fatalf("NewLogit() error = %v", err)
	}
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := m.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	for i := 0; i < y.Len(); i++ {
		if pred.AtVec(i) != y.AtVec(i) {
			t.Errorf("row %d predicted %v, want %v", i, pred.AtVec(i), y.AtVec(i))
		}
	}

	proba, err := m.PredictProba(mat.NewDense(2, 1, []float64{-10, 10}))
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	if proba.AtVec(0) > 0.1 || proba.AtVec(1) < 0.9 {
		t.Errorf("probabilities = [%v %v], want near [0 1]", proba.AtVec(0), proba.AtVec(1))
	}

	score, err := m.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score != 1.0 {
		t.Errorf("accuracy = %v, want 1", score)
	}
}

func TestLogitRejectsNonBinaryLabels(t *testing.T) {
	m, _ := NewLogit(1.0, 10, 1e-4, 1)
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewVecDense(3, []float64{0, 1, 2})
	if err := m.Fit(X, y); err == nil {
		t.Fatal("Fit() with non-binary labels should fail")
	}
}

func TestLogitConvergenceWarning(t *testing.T) {
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(nil)

	X := mat.NewDense(4, 1, []float64{-2, -1, 1, 2})
	y := mat.NewVecDense(4, []float64{0, 0, 1, 1})

	m, _ := NewLogit(1.0, 2, 1e-12, 1)
	if err := m.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	var cw *errors.ConvergenceWarning
	if !errors.As(warned, &cw) {
		t.Fatalf("warning = %v, want ConvergenceWarning", warned)
	}
}
