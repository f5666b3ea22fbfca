package visuals

import (
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/results"
)

func assertImageWritten(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("chart file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Fatal("chart file is empty")
	}
}

func TestImportanceBars(t *testing.T) {
	path := filepath.Join(t.TempDir(), "importance.png")
	err := ImportanceBars(map[string]float64{"a": 0.7, "b": 0.2, "c": 0.1}, "recipe 1", path)
	if err != nil {
		t.Fatalf("ImportanceBars() error = %v", err)
	}
	assertImageWritten(t, path)

	if err := ImportanceBars(nil, "empty", path); err == nil {
		t.Error("empty importances did not error")
	}
}

func TestMetricComparison(t *testing.T) {
	rows := []results.Row{
		{RecipeID: 1, Metrics: map[string]float64{"r2": 0.9}},
		{RecipeID: 2, Failed: true},
		{RecipeID: 3, Metrics: map[string]float64{"r2": 0.7}},
	}

	path := filepath.Join(t.TempDir(), "r2.png")
	if err := MetricComparison(rows, "r2", path); err != nil {
		t.Fatalf("MetricComparison() error = %v", err)
	}
	assertImageWritten(t, path)

	err := MetricComparison(rows, "mae", path)
	var ere *errors.EmptyResultsError
	if !errors.As(err, &ere) {
		t.Errorf("error = %v, want EmptyResultsError when no row has the metric", err)
	}
}

func TestROCCurve(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	scores := mat.NewVecDense(4, []float64{0.1, 0.4, 0.35, 0.8})

	path := filepath.Join(t.TempDir(), "roc.png")
	if err := ROCCurve(yTrue, scores, "logit", path); err != nil {
		t.Fatalf("ROCCurve() error = %v", err)
	}
	assertImageWritten(t, path)
}

func TestROCCurveSingleClass(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 1, 1})
	scores := mat.NewVecDense(3, []float64{0.1, 0.5, 0.9})

	err := ROCCurve(yTrue, scores, "degenerate", filepath.Join(t.TempDir(), "roc.png"))
	if err == nil {
		t.Fatal("single-class labels did not error")
	}
}

func TestRocPoints(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	scores := mat.NewVecDense(4, []float64{0.1, 0.2, 0.8, 0.9})

	pts, err := rocPoints(yTrue, scores)
	if err != nil {
		t.Fatalf("rocPoints() error = %v", err)
	}
	if len(pts) != 5 {
		t.Fatalf("got %d points, want origin plus one per sample", len(pts))
	}
	// perfect ranking climbs to (0,1) before moving right
	if pts[2].X != 0 || pts[2].Y != 1 {
		t.Errorf("pts[2] = %+v, want (0,1)", pts[2])
	}
	last := pts[len(pts)-1]
	if last.X != 1 || last.Y != 1 {
		t.Errorf("last point = %+v, want (1,1)", last)
	}
}
