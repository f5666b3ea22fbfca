package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
)

const tol = 1e-10

func matApproxEqual(t *testing.T, got mat.Matrix, want *mat.Dense) {
	t.Helper()
	if !mat.EqualApprox(got, want, tol) {
		t.Errorf("matrix mismatch:\ngot:\n%v\nwant:\n%v",
			mat.Formatted(got), mat.Formatted(want))
	}
}

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 10,
		2, 10,
		4, 10,
		6, 10,
	})

	scaler := NewStandardScaler(true, true)
	if err := scaler.Fit(X, nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(scaler.Mean[0]-3.0) > tol {
		t.Errorf("Mean[0] = %v, want 3", scaler.Mean[0])
	}
	// 定数列の標準偏差は1に置き換えられる
	if scaler.Scale[1] != 1.0 {
		t.Errorf("Scale[1] = %v, want 1 for constant column", scaler.Scale[1])
	}

	scaled, err := scaler.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	r, _ := scaled.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		sum += scaled.At(i, 0)
	}
	if math.Abs(sum/float64(r)) > tol {
		t.Errorf("column 0 mean after scaling = %v, want 0", sum/float64(r))
	}

	back, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}
	matApproxEqual(t, back, X)
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScaler(true, true)
	_, err := scaler.Transform(mat.NewDense(1, 1, []float64{1}))
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Fatalf("Transform() error = %v, want NotFittedError", err)
	}
}

func TestMinMaxScaler(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{2, 4, 6})

	scaler := NewMinMaxScaler([2]float64{0, 1})
	if err := scaler.Fit(X, nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	scaled, err := scaler.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := mat.NewDense(3, 1, []float64{0, 0.5, 1})
	matApproxEqual(t, scaled, want)

	back, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform() error = %v", err)
	}
	matApproxEqual(t, back, X)
}

func TestRobustScaler(t *testing.T) {
	// 外れ値100があっても中央値と四分位範囲は影響を受けにくい
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 100})

	scaler := NewRobustScaler()
	if err := scaler.Fit(X, nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(scaler.Center[0]-3.0) > tol {
		t.Errorf("Center[0] = %v, want 3 (median)", scaler.Center[0])
	}

	scaled, err := scaler.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if math.Abs(scaled.At(2, 0)) > tol {
		t.Errorf("median row after scaling = %v, want 0", scaled.At(2, 0))
	}
}

func TestScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScaler(true, true)
	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	_, err := scaler.Transform(mat.NewDense(2, 3, nil))
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("Transform() error = %v, want DimensionError", err)
	}
}

// 学習済みスケーラは行単位で独立に変換する。同じ行はバッチの一部でも
// 単独でも同一の出力になる。
func TestScalerTransformIsRowIndependent(t *testing.T) {
	train := mat.NewDense(5, 2, []float64{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
		5, 500,
	})
	test := mat.NewDense(2, 2, []float64{
		6, 600,
		7, 700,
	})
	batch := mat.NewDense(7, 2, nil)
	batch.Stack(train, test)

	scaler := NewStandardScaler(true, true)
	if err := scaler.Fit(train, nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	alone, err := scaler.Transform(test)
	if err != nil {
		t.Fatalf("Transform(test) error = %v", err)
	}
	batched, err := scaler.Transform(batch)
	if err != nil {
		t.Fatalf("Transform(batch) error = %v", err)
	}

	testRows := asDenseMatrix(batched).Slice(5, 7, 0, 2)
	if !mat.EqualApprox(alone, testRows, tol) {
		t.Errorf("test rows differ between lone and batched transform:\nalone:\n%v\nbatched slice:\n%v",
			mat.Formatted(alone), mat.Formatted(testRows))
	}
}

func asDenseMatrix(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

func TestNewMinMaxScalerFromParams(t *testing.T) {
	a, err := NewMinMaxScalerFromParams(map[string]any{"range_min": -1.0, "range_max": 1.0})
	if err != nil {
		t.Fatalf("NewMinMaxScalerFromParams() error = %v", err)
	}
	scaler := a.(*MinMaxScaler)
	if scaler.FeatureRange != [2]float64{-1, 1} {
		t.Errorf("FeatureRange = %v, want [-1 1]", scaler.FeatureRange)
	}

	if _, err := NewMinMaxScalerFromParams(map[string]any{"range_min": 1.0, "range_max": 0.0}); err == nil {
		t.Error("expected error for inverted range")
	}
}
