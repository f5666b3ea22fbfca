package cookbook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/errors"
)

func regressionData(t *testing.T) *dataset.Dataset {
	t.Helper()
	n := 40
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		a := float64(i)
		b := float64(i%7) * 3
		X.Set(i, 0, a)
		X.Set(i, 1, b)
		y.SetVec(i, 2*a+b-4)
	}
	ds, err := dataset.New([]string{"a", "b"}, X, y, "target")
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	return ds
}

func bakeConfig(t *testing.T, doc string) *Config {
	t.Helper()
	cfg, err := ParseConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	cfg.Export.Directory = t.TempDir()
	return cfg
}

const bakeYAML = `
steps:
  order: [scale, split, model]
  scale: standard, minmax
  split: train_test
  model: ols, ridge

ridge_params:
  alpha: "0.5"

metrics: [r2, mse]
`

func TestBake(t *testing.T) {
	cfg := bakeConfig(t, bakeYAML)
	out, err := New(cfg).Bake(context.Background(), regressionData(t))
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}

	if out.Table.Len() != 4 {
		t.Fatalf("table has %d rows, want 2 scalers x 2 models = 4", out.Table.Len())
	}
	for _, row := range out.Table.Rows() {
		if row.Failed {
			t.Errorf("recipe %d failed: %s", row.RecipeID, row.FailureReason)
		}
		if _, ok := row.Metrics["r2"]; !ok {
			t.Errorf("recipe %d missing r2", row.RecipeID)
		}
	}

	// linear data, every linear model fits it near-perfectly
	if out.Best.Metrics["r2"] < 0.99 {
		t.Errorf("best r2 = %v, want near 1", out.Best.Metrics["r2"])
	}

	if _, err := os.Stat(filepath.Join(out.Dir, "results.csv")); err != nil {
		t.Errorf("results.csv missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out.Dir, "recipe_1.json")); err != nil {
		t.Errorf("recipe_1.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out.Dir, "best.json")); err != nil {
		t.Errorf("best.json missing: %v", err)
	}
}

func TestBakeParallel(t *testing.T) {
	cfg := bakeConfig(t, bakeYAML)
	cfg.Run.Workers = 3

	out, err := New(cfg).Bake(context.Background(), regressionData(t))
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}
	if out.Table.Len() != 4 {
		t.Fatalf("table has %d rows, want 4", out.Table.Len())
	}

	seen := map[int]bool{}
	for _, row := range out.Table.Rows() {
		if row.Failed {
			t.Errorf("recipe %d failed: %s", row.RecipeID, row.FailureReason)
		}
		seen[row.RecipeID] = true
	}
	for id := 1; id <= 4; id++ {
		if !seen[id] {
			t.Errorf("recipe %d missing from table", id)
		}
	}
}

func TestBakeIntermediatePersistence(t *testing.T) {
	cfg := bakeConfig(t, `
steps:
  order: [scale, model]
  scale: standard
  model: ols
metrics: [r2]
export:
  intermediate: true
`)
	cfg.Export.Directory = t.TempDir()

	out, err := New(cfg).Bake(context.Background(), regressionData(t))
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}

	for _, name := range []string{"recipe_1_scale.csv", "recipe_1_model.csv"} {
		if _, err := os.Stat(filepath.Join(out.Dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestBakeAllFailed(t *testing.T) {
	// logit rejects continuous labels, so every recipe fails
	cfg := bakeConfig(t, `
steps:
  order: [model]
  model: logit
metrics: [accuracy]
`)

	out, err := New(cfg).Bake(context.Background(), regressionData(t))
	var ere *errors.EmptyResultsError
	if !errors.As(err, &ere) {
		t.Fatalf("error = %v, want EmptyResultsError", err)
	}

	// the table survives for audit even when best() has nothing to pick
	if out == nil || out.Table.Len() != 1 {
		t.Fatal("failed run did not keep its results table")
	}
	row := out.Table.Rows()[0]
	if !row.Failed || row.FailureReason == "" {
		t.Errorf("row = %+v, want failure marked", row)
	}
}

func TestBakeSearch(t *testing.T) {
	cfg := bakeConfig(t, `
steps:
  order: [split, model]
  split: train_test
  model: ridge

ridge_params:
  alpha: 0.1, 2.0

metrics: [r2]

search:
  enabled: true
  strategy: grid
`)

	out, err := New(cfg).Bake(context.Background(), regressionData(t))
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}

	row := out.Table.Rows()[0]
	alpha, ok := row.Params["alpha"].(float64)
	if !ok {
		t.Fatalf("searched alpha missing: %v", row.Params)
	}
	if alpha < 0.1 || alpha >= 2.0 {
		t.Errorf("alpha = %v, want inside [0.1, 2.0)", alpha)
	}
}
