// Package export writes a run's outputs to disk: the results table as CSV,
// per-recipe artifacts as JSON and a summary of the winning recipe. Each run
// gets its own directory so repeated runs never clobber each other.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/log"
	"github.com/souschef-ml/souschef/recipe"
	"github.com/souschef-ml/souschef/results"
)

// Exporter owns one run directory under the configured root.
type Exporter struct {
	// Root is the parent of all run directories.
	Root string

	// RunID names this run's directory, unique per run.
	RunID string

	logger log.Logger
}

// NewExporter creates the run directory and returns an exporter bound to it.
// The run id combines a sortable timestamp with a short random suffix.
func NewExporter(root string) (*Exporter, error) {
	id := fmt.Sprintf("%s_%s",
		time.Now().Format("20060102T150405"),
		uuid.NewString()[:8])

	e := &Exporter{
		Root:   root,
		RunID:  id,
		logger: log.GetLoggerWithName("export"),
	}
	if err := os.MkdirAll(e.Dir(), 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating run directory %s", e.Dir())
	}
	return e, nil
}

// Dir returns the absolute run directory path.
func (e *Exporter) Dir() string {
	return filepath.Join(e.Root, e.RunID)
}

// WriteResults writes every row of the table to results.csv. Columns are the
// recipe id, one column per step, one per metric, and the failure fields.
// Failed rows keep their position with empty metric cells.
func (e *Exporter) WriteResults(table *results.Table) (string, error) {
	rows := table.Rows()
	steps := stepColumns(rows)
	metricNames := metricColumns(rows)

	path := filepath.Join(e.Dir(), "results.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"recipe_id"}
	for _, s := range steps {
		header = append(header, string(s))
	}
	header = append(header, metricNames...)
	header = append(header, "failed", "failed_step", "failure_reason")
	if err := w.Write(header); err != nil {
		return "", errors.Wrap(err, "writing csv header")
	}

	for _, row := range rows {
		record := []string{strconv.Itoa(row.RecipeID)}
		for _, s := range steps {
			record = append(record, row.Keys[s])
		}
		for _, name := range metricNames {
			if v, ok := row.Metrics[name]; ok && !row.Failed {
				record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		record = append(record,
			strconv.FormatBool(row.Failed),
			string(row.FailedStep),
			row.FailureReason)
		if err := w.Write(record); err != nil {
			return "", errors.Wrapf(err, "writing row for recipe %d", row.RecipeID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flushing results.csv")
	}

	e.logger.Info("results table written",
		"path", path, "rows", len(rows))
	return path, nil
}

// recipeArtifact is the JSON shape of one recipe's outcome.
type recipeArtifact struct {
	RecipeID    int                `json:"recipe_id"`
	Steps       map[string]string  `json:"steps"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Importances map[string]float64 `json:"importances,omitempty"`
	Params      map[string]any     `json:"params,omitempty"`
	Failed      bool               `json:"failed"`
	FailedStep  string             `json:"failed_step,omitempty"`
	Reason      string             `json:"failure_reason,omitempty"`
}

// WriteRecipeArtifact writes one recipe's outcome to recipe_<id>.json.
func (e *Exporter) WriteRecipeArtifact(row results.Row) (string, error) {
	art := recipeArtifact{
		RecipeID:    row.RecipeID,
		Steps:       stepMap(row.Keys),
		Metrics:     row.Metrics,
		Importances: row.Importances,
		Params:      row.Params,
		Failed:      row.Failed,
		FailedStep:  string(row.FailedStep),
		Reason:      row.FailureReason,
	}

	path := filepath.Join(e.Dir(), fmt.Sprintf("recipe_%d.json", row.RecipeID))
	if err := writeJSON(path, art); err != nil {
		return "", err
	}
	return path, nil
}

// bestSummary is the JSON shape of the run's winner.
type bestSummary struct {
	Metric   string             `json:"metric"`
	Score    float64            `json:"score"`
	RecipeID int                `json:"recipe_id"`
	Steps    map[string]string  `json:"steps"`
	Metrics  map[string]float64 `json:"metrics"`
	Params   map[string]any     `json:"params,omitempty"`
}

// WriteBest writes best.json describing the winning recipe for the metric.
func (e *Exporter) WriteBest(row results.Row, metric string) (string, error) {
	summary := bestSummary{
		Metric:   metric,
		Score:    row.Metrics[metric],
		RecipeID: row.RecipeID,
		Steps:    stepMap(row.Keys),
		Metrics:  row.Metrics,
		Params:   row.Params,
	}

	path := filepath.Join(e.Dir(), "best.json")
	if err := writeJSON(path, summary); err != nil {
		return "", err
	}
	e.logger.Info("best recipe written",
		log.RecipeIDKey, row.RecipeID, "metric", metric, "score", summary.Score)
	return path, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func stepMap(keys map[recipe.StepName]string) map[string]string {
	out := make(map[string]string, len(keys))
	for step, key := range keys {
		out[string(step)] = key
	}
	return out
}

// stepColumns orders step columns canonically, unknown steps last by name.
func stepColumns(rows []results.Row) []recipe.StepName {
	seen := map[recipe.StepName]bool{}
	for _, row := range rows {
		for s := range row.Keys {
			seen[s] = true
		}
	}

	var out []recipe.StepName
	for _, s := range recipe.CanonicalOrder {
		if seen[s] {
			out = append(out, s)
			delete(seen, s)
		}
	}
	var rest []recipe.StepName
	for s := range seen {
		rest = append(rest, s)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

func metricColumns(rows []results.Row) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		for name := range row.Metrics {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
