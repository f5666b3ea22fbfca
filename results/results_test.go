package results

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/recipe"
)

func TestValidateMetrics(t *testing.T) {
	if err := ValidateMetrics([]string{"mse", "roc_auc", "f1"}); err != nil {
		t.Errorf("ValidateMetrics() error = %v, want nil", err)
	}

	err := ValidateMetrics([]string{"accuracy", "rco_auc"})
	var ume *errors.UnknownMetricError
	if !errors.As(err, &ume) {
		t.Fatalf("error = %v, want UnknownMetricError", err)
	}
	if ume.Metric != "rco_auc" {
		t.Errorf("Metric = %q, want the misspelled name", ume.Metric)
	}
	if len(ume.Known) == 0 {
		t.Error("Known metric names missing from error")
	}
}

func TestTableBestMaximize(t *testing.T) {
	table := NewTable()
	table.Append(Row{RecipeID: 1, Metrics: map[string]float64{"roc_auc": 0.81}})
	table.Append(Row{
		RecipeID:      2,
		Failed:        true,
		FailureReason: "encoder exploded",
		Metrics:       map[string]float64{"roc_auc": 0.95},
	})
	table.Append(Row{RecipeID: 3, Metrics: map[string]float64{"roc_auc": 0.77}})

	best, err := table.Best("roc_auc")
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}
	if best.RecipeID != 1 {
		t.Errorf("best recipe = %d, want 1 (failed 0.95 row must not win)", best.RecipeID)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d, want all three rows kept", table.Len())
	}
	if got := len(table.Successes()); got != 2 {
		t.Errorf("Successes() = %d rows, want 2", got)
	}
}

func TestTableBestMinimize(t *testing.T) {
	table := NewTable()
	table.Append(Row{RecipeID: 1, Metrics: map[string]float64{"mse": 4.0}})
	table.Append(Row{RecipeID: 2, Metrics: map[string]float64{"mse": 1.5}})
	table.Append(Row{RecipeID: 3, Metrics: map[string]float64{"mse": 2.2}})

	best, err := table.Best("mse")
	if err != nil {
		t.Fatalf("Best() error = %v", err)
	}
	if best.RecipeID != 2 {
		t.Errorf("best recipe = %d, want 2 (lowest mse)", best.RecipeID)
	}

	// flipping the direction explicitly picks the worst mse instead
	worst, err := table.BestDirection("mse", true)
	if err != nil {
		t.Fatalf("BestDirection() error = %v", err)
	}
	if worst.RecipeID != 1 {
		t.Errorf("maximized mse recipe = %d, want 1", worst.RecipeID)
	}
}

func TestTableBestEmpty(t *testing.T) {
	table := NewTable()
	table.Append(Row{RecipeID: 1, Failed: true})

	_, err := table.Best("r2")
	var ere *errors.EmptyResultsError
	if !errors.As(err, &ere) {
		t.Fatalf("error = %v, want EmptyResultsError", err)
	}

	_, err = table.Best("nope")
	var ume *errors.UnknownMetricError
	if !errors.As(err, &ume) {
		t.Errorf("error = %v, want UnknownMetricError", err)
	}
}

func classificationResult(t *testing.T) *recipe.Result {
	t.Helper()
	X := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})
	y := mat.NewVecDense(4, []float64{0, 0, 1, 1})
	ds, err := dataset.New([]string{"a", "b"}, X, y, "target")
	if err != nil {
		t.Fatalf("dataset.New() error = %v", err)
	}
	return &recipe.Result{
		RecipeID:      7,
		Keys:          map[recipe.StepName]string{recipe.StepModel: "logit"},
		Dataset:       ds,
		Predictions:   mat.NewVecDense(4, []float64{0, 1, 1, 1}),
		Probabilities: mat.NewVecDense(4, []float64{0.2, 0.6, 0.7, 0.9}),
		Importances:   []float64{0.8, 0.2},
		ChosenParams:  map[string]any{"c": 1.0},
	}
}

func TestAggregatorScore(t *testing.T) {
	agg, err := NewAggregator([]string{"accuracy", "roc_auc"})
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}

	row := agg.Score(classificationResult(t))
	if row.Failed {
		t.Fatal("successful result scored as failed")
	}
	if row.RecipeID != 7 {
		t.Errorf("RecipeID = %d, want 7", row.RecipeID)
	}

	// one mislabeled of four
	if got := row.Metrics["accuracy"]; math.Abs(got-0.75) > 1e-12 {
		t.Errorf("accuracy = %v, want 0.75", got)
	}
	// probabilities rank every positive above every negative
	auc, ok := row.Metrics["roc_auc"]
	if !ok {
		t.Fatal("roc_auc missing, probabilities were not used")
	}
	if math.Abs(auc-1.0) > 1e-12 {
		t.Errorf("roc_auc = %v, want 1.0", auc)
	}

	if math.Abs(row.Importances["a"]-0.8) > 1e-12 {
		t.Errorf("importance[a] = %v, want 0.8", row.Importances["a"])
	}
	if row.Params["c"] != 1.0 {
		t.Errorf("Params = %v, want chosen params carried over", row.Params)
	}
}

func TestAggregatorScoreFailed(t *testing.T) {
	agg, err := NewAggregator([]string{"mse"})
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}

	res := &recipe.Result{
		RecipeID:   2,
		Keys:       map[recipe.StepName]string{recipe.StepEncode: "boom"},
		FailedStep: recipe.StepEncode,
		Err:        errors.New("encoder exploded"),
	}
	row := agg.Score(res)

	if !row.Failed {
		t.Fatal("failed result scored as success")
	}
	if row.FailedStep != recipe.StepEncode {
		t.Errorf("FailedStep = %v, want encode", row.FailedStep)
	}
	if row.FailureReason == "" {
		t.Error("failure reason missing")
	}
	if len(row.Metrics) != 0 {
		t.Errorf("Metrics = %v, want none on a failed row", row.Metrics)
	}
}

func TestAggregatorProbabilityFallback(t *testing.T) {
	agg, err := NewAggregator([]string{"roc_auc"})
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}

	// model without PredictProba, hard predictions serve as ranking scores
	res := classificationResult(t)
	res.Probabilities = nil
	res.Predictions = mat.NewVecDense(4, []float64{0, 0, 1, 1})

	row := agg.Score(res)
	auc, ok := row.Metrics["roc_auc"]
	if !ok {
		t.Fatal("roc_auc missing, fallback to predictions did not happen")
	}
	if math.Abs(auc-1.0) > 1e-12 {
		t.Errorf("roc_auc = %v, want 1.0", auc)
	}
}

func TestAggregatorNoPredictions(t *testing.T) {
	agg, err := NewAggregator([]string{"mse"})
	if err != nil {
		t.Fatalf("NewAggregator() error = %v", err)
	}

	// a recipe with no model step has nothing to score
	res := classificationResult(t)
	res.Predictions = nil
	res.Probabilities = nil

	row := agg.Score(res)
	if row.Failed {
		t.Fatal("predictionless result scored as failed")
	}
	if len(row.Metrics) != 0 {
		t.Errorf("Metrics = %v, want none without predictions", row.Metrics)
	}
}
