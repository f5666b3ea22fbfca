// Package visuals renders run outputs as charts: per-feature importances,
// cross-recipe metric comparison and ROC curves. All charts are written as
// image files into the run directory.
package visuals

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/results"
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// ImportanceBars writes a bar chart of per-feature importances, largest
// first, to path. The file extension selects the image format.
func ImportanceBars(importances map[string]float64, title, path string) error {
	if len(importances) == 0 {
		return errors.NewValueError("visuals.ImportanceBars", "no importances")
	}

	names := make([]string, 0, len(importances))
	for name := range importances {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if importances[names[i]] != importances[names[j]] {
			return importances[names[i]] > importances[names[j]]
		}
		return names[i] < names[j]
	})

	values := make(plotter.Values, len(names))
	for i, name := range names {
		values[i] = importances[name]
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "importance"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "building importance bars")
	}
	p.Add(bars)
	p.NominalX(names...)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}

// MetricComparison writes a bar chart of one metric across all completed
// recipes, labeled by recipe id. Failed recipes and recipes missing the
// metric are left out.
func MetricComparison(rows []results.Row, metric, path string) error {
	var labels []string
	var values plotter.Values
	for _, row := range rows {
		if row.Failed {
			continue
		}
		v, ok := row.Metrics[metric]
		if !ok {
			continue
		}
		labels = append(labels, fmt.Sprintf("#%d", row.RecipeID))
		values = append(values, v)
	}
	if len(values) == 0 {
		return errors.NewEmptyResultsError(metric)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by recipe", metric)
	p.Y.Label.Text = metric

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return errors.Wrap(err, "building metric bars")
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}

// ROCCurve writes the receiver operating characteristic of binary labels
// against ranking scores, with the chance diagonal for reference.
func ROCCurve(yTrue, scores *mat.VecDense, title, path string) error {
	pts, err := rocPoints(yTrue, scores)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "false positive rate"
	p.Y.Label.Text = "true positive rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1

	curve, err := plotter.NewLine(pts)
	if err != nil {
		return errors.Wrap(err, "building roc line")
	}
	diagonal, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if err != nil {
		return errors.Wrap(err, "building reference line")
	}
	diagonal.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p.Add(curve, diagonal)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return errors.Wrapf(err, "saving %s", path)
	}
	return nil
}

// rocPoints sweeps thresholds from the highest score down, emitting one
// point per score and the (0,0) origin.
func rocPoints(yTrue, scores *mat.VecDense) (plotter.XYs, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "visuals.ROCCurve")
	}
	if scores.Len() != n {
		return nil, errors.NewDimensionError("visuals.ROCCurve", n, scores.Len(), 0)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return scores.AtVec(order[i]) > scores.AtVec(order[j])
	})

	var pos, neg int
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) > 0.5 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, errors.NewValueError("visuals.ROCCurve", "labels contain a single class")
	}

	pts := make(plotter.XYs, 0, n+1)
	pts = append(pts, plotter.XY{X: 0, Y: 0})
	var tp, fp int
	for _, idx := range order {
		if yTrue.AtVec(idx) > 0.5 {
			tp++
		} else {
			fp++
		}
		pts = append(pts, plotter.XY{
			X: float64(fp) / float64(neg),
			Y: float64(tp) / float64(pos),
		})
	}
	return pts, nil
}
