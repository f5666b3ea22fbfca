package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func newTestDataset(t *testing.T, rows int) *Dataset {
	t.Helper()
	data := make([]float64, rows*3)
	labels := make([]float64, rows)
	for i := 0; i < rows; i++ {
		data[i*3] = float64(i)
		data[i*3+1] = float64(i) * 2
		data[i*3+2] = float64(i) * 3
		labels[i] = float64(i % 2)
	}
	d, err := New([]string{"a", "b", "c"}, mat.NewDense(rows, 3, data),
		mat.NewVecDense(rows, labels), "target")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return d
}

func TestNewValidation(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	if _, err := New([]string{"a"}, X, nil, ""); err == nil {
		t.Error("expected dimension error for mismatched column names")
	}
	if _, err := New([]string{"a", "b"}, X, mat.NewVecDense(3, nil), "y"); err == nil {
		t.Error("expected dimension error for mismatched label length")
	}
	if _, err := New([]string{"a", "b"}, X, nil, ""); err != nil {
		t.Errorf("unlabeled dataset should be valid: %v", err)
	}
}

func TestSplitTrainTest(t *testing.T) {
	d := newTestDataset(t, 100)

	if err := d.SplitTrainTest(0.3, 42); err != nil {
		t.Fatalf("SplitTrainTest() failed: %v", err)
	}

	train, _ := d.X(Train)
	test, _ := d.X(Test)
	trainRows, _ := train.Dims()
	testRows, _ := test.Dims()

	if testRows != 30 {
		t.Errorf("test rows = %d, want 30", testRows)
	}
	if trainRows+testRows != 100 {
		t.Errorf("partition rows = %d, want 100", trainRows+testRows)
	}

	yTrain, _ := d.Y(Train)
	if yTrain.Len() != trainRows {
		t.Errorf("train labels = %d, want %d", yTrain.Len(), trainRows)
	}
}

func TestSplitReproducible(t *testing.T) {
	a := newTestDataset(t, 50)
	b := newTestDataset(t, 50)

	if err := a.SplitTrainTest(0.2, 7); err != nil {
		t.Fatal(err)
	}
	if err := b.SplitTrainTest(0.2, 7); err != nil {
		t.Fatal(err)
	}

	xa, _ := a.X(Test)
	xb, _ := b.X(Test)
	if !mat.EqualApprox(xa, xb, 1e-12) {
		t.Error("identical seeds should produce identical splits")
	}
}

func TestSplitValidation(t *testing.T) {
	d := newTestDataset(t, 100)
	if err := d.SplitTrainTest(0.2, 1); err != nil {
		t.Fatal(err)
	}
	if err := d.SplitValidation(0.25, 1); err != nil {
		t.Fatalf("SplitValidation() failed: %v", err)
	}

	parts := d.Partitions()
	want := []Partition{Full, Train, Test, Validation}
	if len(parts) != len(want) {
		t.Fatalf("partitions = %v, want %v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("partitions[%d] = %s, want %s", i, parts[i], want[i])
		}
	}
}

func TestCloneIsolation(t *testing.T) {
	d := newTestDataset(t, 10)
	clone := d.Clone()

	X, _ := d.X(Full)
	X.Set(0, 0, 999)

	cloneX, _ := clone.X(Full)
	if cloneX.At(0, 0) == 999 {
		t.Error("mutating the original leaked into the clone")
	}
}

func TestGroups(t *testing.T) {
	d := newTestDataset(t, 10)

	if err := d.RegisterGroup("pair", []string{"a", "c"}); err != nil {
		t.Fatalf("RegisterGroup() failed: %v", err)
	}
	if err := d.RegisterGroup("bad", []string{"a", "zzz"}); err == nil {
		t.Error("expected error for unknown column in group")
	}

	cols, err := d.Group("pair")
	if err != nil {
		t.Fatal(err)
	}
	if len(cols) != 2 || cols[0] != "a" || cols[1] != "c" {
		t.Errorf("Group() = %v, want [a c]", cols)
	}
}

func TestSelectColumns(t *testing.T) {
	d := newTestDataset(t, 5)
	if err := d.SplitTrainTest(0.4, 3); err != nil {
		t.Fatal(err)
	}

	if err := d.SelectColumns([]string{"c", "a"}); err != nil {
		t.Fatalf("SelectColumns() failed: %v", err)
	}

	if d.NumFeatures() != 2 {
		t.Errorf("NumFeatures() = %d, want 2", d.NumFeatures())
	}
	for _, p := range d.Partitions() {
		m, _ := d.X(p)
		_, c := m.Dims()
		if c != 2 {
			t.Errorf("partition %s has %d columns, want 2", p, c)
		}
	}
	// column "c" was row index * 3
	full, _ := d.X(Full)
	if math.Abs(full.At(2, 0)-6) > 1e-12 {
		t.Errorf("reordered column value = %f, want 6", full.At(2, 0))
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	content := "age,color,target\n30,red,1\n25,blue,0\n40,red,1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadCSV(path, "target")
	if err != nil {
		t.Fatalf("LoadCSV() failed: %v", err)
	}

	if d.NumFeatures() != 2 {
		t.Fatalf("NumFeatures() = %d, want 2", d.NumFeatures())
	}
	X, _ := d.X(Full)
	// categorical "color": blue=0, red=1 (sorted unique)
	if X.At(0, 1) != 1 || X.At(1, 1) != 0 {
		t.Errorf("categorical codes = [%f %f], want [1 0]", X.At(0, 1), X.At(1, 1))
	}
	y, _ := d.Y(Full)
	if y.AtVec(0) != 1 || y.AtVec(1) != 0 {
		t.Errorf("labels = [%f %f], want [1 0]", y.AtVec(0), y.AtVec(1))
	}
}
