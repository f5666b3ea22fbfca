// Package results collects per-recipe outcomes into a table, scores them
// against a configurable metric set and selects the best recipe.
package results

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/metrics"
	"github.com/souschef-ml/souschef/pkg/errors"
)

// MetricInput picks which model output a metric consumes.
type MetricInput int

const (
	// InputPredictions feeds the metric hard predictions.
	InputPredictions MetricInput = iota
	// InputProbabilities feeds the metric positive-class probabilities,
	// falling back to predictions when the model has no probability output.
	InputProbabilities
)

// MetricFunc computes a score from true and predicted values.
type MetricFunc func(yTrue, yPred *mat.VecDense) (float64, error)

// Metric is a named scoring function with an optimization direction.
type Metric struct {
	Name     string
	Maximize bool
	Input    MetricInput
	Fn       MetricFunc
}

var metricTable = map[string]Metric{
	"mse":      {Name: "mse", Maximize: false, Input: InputPredictions, Fn: metrics.MSE},
	"rmse":     {Name: "rmse", Maximize: false, Input: InputPredictions, Fn: metrics.RMSE},
	"mae":      {Name: "mae", Maximize: false, Input: InputPredictions, Fn: metrics.MAE},
	"mape":     {Name: "mape", Maximize: false, Input: InputPredictions, Fn: metrics.MAPE},
	"r2":       {Name: "r2", Maximize: true, Input: InputPredictions, Fn: metrics.R2Score},
	"accuracy": {Name: "accuracy", Maximize: true, Input: InputPredictions, Fn: metrics.Accuracy},
	"precision": {
		Name: "precision", Maximize: true, Input: InputPredictions, Fn: metrics.Precision,
	},
	"recall":   {Name: "recall", Maximize: true, Input: InputPredictions, Fn: metrics.Recall},
	"f1":       {Name: "f1", Maximize: true, Input: InputPredictions, Fn: metrics.F1},
	"roc_auc":  {Name: "roc_auc", Maximize: true, Input: InputProbabilities, Fn: metrics.AUC},
	"log_loss": {Name: "log_loss", Maximize: false, Input: InputProbabilities, Fn: metrics.BinaryLogLoss},
}

// LookupMetric returns the metric registered under name.
func LookupMetric(name string) (Metric, error) {
	m, ok := metricTable[name]
	if !ok {
		return Metric{}, errors.NewUnknownMetricError(name, KnownMetrics())
	}
	return m, nil
}

// KnownMetrics returns all registered metric names, sorted.
func KnownMetrics() []string {
	names := make([]string, 0, len(metricTable))
	for name := range metricTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateMetrics checks every name against the registry, so a typo fails
// before any recipe runs.
func ValidateMetrics(names []string) error {
	for _, name := range names {
		if _, err := LookupMetric(name); err != nil {
			return err
		}
	}
	return nil
}
