package results

import (
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/log"
	"github.com/souschef-ml/souschef/recipe"
)

// Row is one recipe's scored outcome. A failed recipe still produces a row,
// with Failed set and no metrics.
type Row struct {
	RecipeID    int
	Keys        map[recipe.StepName]string
	Metrics     map[string]float64
	Importances map[string]float64
	Params      map[string]any

	Failed        bool
	FailedStep    recipe.StepName
	FailureReason string
}

// Table accumulates rows across a run. Append is safe for concurrent
// workers; reads take the same lock.
type Table struct {
	mu   sync.Mutex
	rows []Row
}

// NewTable returns an empty results table.
func NewTable() *Table {
	return &Table{}
}

// Append adds a row to the table.
func (t *Table) Append(row Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, row)
}

// Rows returns a snapshot of all rows in append order.
func (t *Table) Rows() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Row(nil), t.rows...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Successes returns the rows whose recipe completed.
func (t *Table) Successes() []Row {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Row
	for _, row := range t.rows {
		if !row.Failed {
			out = append(out, row)
		}
	}
	return out
}

// Best returns the completed row with the best value for the named metric,
// honoring the metric's registered optimization direction.
func (t *Table) Best(metric string) (Row, error) {
	m, err := LookupMetric(metric)
	if err != nil {
		return Row{}, err
	}
	return t.BestDirection(metric, m.Maximize)
}

// BestDirection is Best with an explicit direction. Failed rows and rows
// missing the metric are skipped; an empty field is an error, not a zero row.
// Ties keep the earliest appended row.
func (t *Table) BestDirection(metric string, maximize bool) (Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var best Row
	found := false
	for _, row := range t.rows {
		if row.Failed {
			continue
		}
		score, ok := row.Metrics[metric]
		if !ok {
			continue
		}
		if !found {
			best, found = row, true
			continue
		}
		if maximize && score > best.Metrics[metric] {
			best = row
		} else if !maximize && score < best.Metrics[metric] {
			best = row
		}
	}
	if !found {
		return Row{}, errors.NewEmptyResultsError(metric)
	}
	return best, nil
}

// Aggregator turns executor results into table rows, evaluating each
// configured metric on the test partition (full when no split happened).
type Aggregator struct {
	Metrics []string
	Logger  log.Logger
}

// NewAggregator validates the metric names up front.
func NewAggregator(metricNames []string) (*Aggregator, error) {
	if err := ValidateMetrics(metricNames); err != nil {
		return nil, err
	}
	return &Aggregator{
		Metrics: append([]string(nil), metricNames...),
		Logger:  log.GetLoggerWithName("results"),
	}, nil
}

// Score builds the row for one executed recipe. Metrics that cannot be
// computed for this recipe, a regression model scored with roc_auc for
// example, are logged and omitted rather than failing the row.
func (a *Aggregator) Score(res *recipe.Result) Row {
	row := Row{
		RecipeID: res.RecipeID,
		Keys:     res.Keys,
		Params:   res.ChosenParams,
	}

	if res.Failed() {
		row.Failed = true
		row.FailedStep = res.FailedStep
		row.FailureReason = res.Err.Error()
		return row
	}

	row.Metrics = make(map[string]float64, len(a.Metrics))
	row.Importances = importanceMap(res)

	yTrue := evalLabels(res.Dataset)
	if yTrue == nil {
		a.Logger.Warn("no labels available, skipping metrics",
			log.RecipeIDKey, res.RecipeID)
		return row
	}

	for _, name := range a.Metrics {
		m, err := LookupMetric(name)
		if err != nil {
			// validated at construction, kept for direct Score callers
			a.Logger.Warn("unknown metric", log.ErrorTypeKey, name)
			continue
		}

		yPred := res.Predictions
		if m.Input == InputProbabilities && res.Probabilities != nil {
			yPred = res.Probabilities
		}
		if yPred == nil {
			continue
		}

		score, err := m.Fn(yTrue, yPred)
		if err != nil {
			a.Logger.Warn("metric evaluation failed",
				log.RecipeIDKey, res.RecipeID,
				log.ErrorTypeKey, name,
				log.ErrAttr(err))
			continue
		}
		row.Metrics[name] = score
	}
	return row
}

func evalLabels(ds *dataset.Dataset) *mat.VecDense {
	if ds == nil {
		return nil
	}
	if y, err := ds.Y(dataset.Test); err == nil {
		return y
	}
	y, err := ds.Y(dataset.Full)
	if err != nil {
		return nil
	}
	return y
}

func importanceMap(res *recipe.Result) map[string]float64 {
	if len(res.Importances) == 0 || res.Dataset == nil {
		return nil
	}
	cols := res.Dataset.Columns()
	if len(cols) != len(res.Importances) {
		return nil
	}
	out := make(map[string]float64, len(cols))
	for i, name := range cols {
		out[name] = res.Importances[i]
	}
	return out
}
