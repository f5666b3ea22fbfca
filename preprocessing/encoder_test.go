package preprocessing

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestOrdinalEncoder(t *testing.T) {
	// 列0はカテゴリカル(値5, 7, 9)、列1は連続値
	X := mat.NewDense(4, 2, []float64{
		7, 0.1,
		5, 1.2,
		9, 2.3,
		5, 3.4,
	})

	enc := NewOrdinalEncoder(3)
	if err := enc.Fit(X, nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	out, err := enc.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	// 昇順コード: 5→0, 7→1, 9→2
	wantCol0 := []float64{1, 0, 2, 0}
	for i, want := range wantCol0 {
		if out.At(i, 0) != want {
			t.Errorf("row %d col 0 = %v, want %v", i, out.At(i, 0), want)
		}
	}

	// 未知の値は-1
	unseen := mat.NewDense(1, 2, []float64{11, 0.5})
	out2, err := enc.Transform(unseen)
	if err != nil {
		t.Fatalf("Transform(unseen) error = %v", err)
	}
	if out2.At(0, 0) != -1 {
		t.Errorf("unseen value code = %v, want -1", out2.At(0, 0))
	}
}

func TestDummyEncoder(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{
		1, 0.5,
		2, 1.5,
		1, 2.5,
	})

	enc := NewDummyEncoder(2, false)
	if err := enc.Fit(X, nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	out, err := enc.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	_, c := out.Dims()
	// 列0が2カテゴリに展開され、列1はそのまま
	if c != 3 {
		t.Fatalf("output columns = %d, want 3", c)
	}
	if out.At(0, 0) != 1 || out.At(0, 1) != 0 {
		t.Errorf("row 0 indicators = [%v %v], want [1 0]", out.At(0, 0), out.At(0, 1))
	}
	if out.At(1, 0) != 0 || out.At(1, 1) != 1 {
		t.Errorf("row 1 indicators = [%v %v], want [0 1]", out.At(1, 0), out.At(1, 1))
	}

	cols := enc.MapColumns([]string{"cat", "num"})
	want := []string{"cat=1", "cat=2", "num"}
	if !reflect.DeepEqual(cols, want) {
		t.Errorf("MapColumns() = %v, want %v", cols, want)
	}
}

func TestDummyEncoderDropFirst(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})

	enc := NewDummyEncoder(2, true)
	if err := enc.Fit(X, nil); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	out, err := enc.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	_, c := out.Dims()
	if c != 1 {
		t.Fatalf("output columns = %d, want 1 with drop_first", c)
	}
}

func TestTargetEncoder(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{
		1,
		1,
		2,
		2,
	})
	y := mat.NewVecDense(4, []float64{1, 1, 0, 0})

	enc := NewTargetEncoder(2, 0)
	if err := enc.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	out, err := enc.Transform(X)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	// 平滑化なし: カテゴリ1の平均は1.0、カテゴリ2の平均は0.0
	if math.Abs(out.At(0, 0)-1.0) > tol {
		t.Errorf("encoding for category 1 = %v, want 1", out.At(0, 0))
	}
	if math.Abs(out.At(2, 0)) > tol {
		t.Errorf("encoding for category 2 = %v, want 0", out.At(2, 0))
	}

	// 未知の値は全体平均0.5
	unseen := mat.NewDense(1, 1, []float64{3})
	out2, err := enc.Transform(unseen)
	if err != nil {
		t.Fatalf("Transform(unseen) error = %v", err)
	}
	if math.Abs(out2.At(0, 0)-0.5) > tol {
		t.Errorf("encoding for unseen value = %v, want global mean 0.5", out2.At(0, 0))
	}
}

func TestTargetEncoderRequiresLabels(t *testing.T) {
	enc := NewTargetEncoder(2, 1)
	err := enc.Fit(mat.NewDense(2, 1, []float64{1, 2}), nil)
	if err == nil {
		t.Fatal("Fit() without labels should fail")
	}
}
