package cookbook

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/export"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/log"
	"github.com/souschef-ml/souschef/recipe"
	"github.com/souschef-ml/souschef/results"
	"github.com/souschef-ml/souschef/search"
	"github.com/souschef-ml/souschef/visuals"
)

// Cookbook drives one run: enumerate, execute, aggregate, export.
type Cookbook struct {
	Config   *Config
	Registry *recipe.Registry
	Logger   log.Logger
}

// New returns a cookbook over the default algorithm registry.
func New(cfg *Config) *Cookbook {
	return &Cookbook{
		Config:   cfg,
		Registry: DefaultRegistry(),
		Logger:   log.GetLoggerWithName("cookbook"),
	}
}

// RunOutput is everything a finished run produced.
type RunOutput struct {
	Table *results.Table
	Best  results.Row
	Dir   string
}

// Bake executes every recipe the configuration enumerates against ds and
// returns the scored table plus the best recipe. Individual recipe failures
// are recorded in the table; Bake itself fails only on configuration errors,
// export errors, or when no recipe succeeded.
func (c *Cookbook) Bake(ctx context.Context, ds *dataset.Dataset) (*RunOutput, error) {
	cfg := c.Config

	paramsByKey, err := cfg.ParamsByKey()
	if err != nil {
		return nil, err
	}

	enum, err := recipe.NewEnumerator(c.Registry, cfg.StepSpecs(), paramsByKey, cfg.Search.Enabled)
	if err != nil {
		return nil, err
	}

	agg, err := results.NewAggregator(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	exp, err := export.NewExporter(cfg.Export.Directory)
	if err != nil {
		return nil, err
	}

	c.Logger.Info("baking",
		"recipes", enum.Count(),
		"workers", cfg.Run.Workers,
		log.SearchStrategyKey, cfg.Search.Strategy)

	table := results.NewTable()
	resultByID := make(map[int]*recipe.Result)
	var mu sync.Mutex

	runOne := func(rec *recipe.Recipe) {
		res := c.executor(exp.Dir()).Execute(ctx, rec, ds.Clone())
		row := agg.Score(res)

		mu.Lock()
		resultByID[res.RecipeID] = res
		mu.Unlock()
		table.Append(row)
	}

	if cfg.Run.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Run.Workers)

		it := enum.Recipes()
		for it.Next() {
			rec := it.Recipe()
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				runOne(rec)
				return nil
			})
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
		if err := g.Wait(); err != nil {
			return nil, errors.Wrap(err, "baking interrupted")
		}
	} else {
		it := enum.Recipes()
		for it.Next() {
			runOne(it.Recipe())
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
	}

	out := &RunOutput{Table: table, Dir: exp.Dir()}

	if _, err := exp.WriteResults(table); err != nil {
		return out, err
	}
	for _, row := range table.Rows() {
		if _, err := exp.WriteRecipeArtifact(row); err != nil {
			return out, err
		}
	}

	metric := cfg.Run.BestMetric
	if metric == "" {
		c.Logger.Info("run complete", "rows", table.Len())
		return out, nil
	}

	best, err := table.Best(metric)
	if err != nil {
		return out, err
	}
	out.Best = best

	if _, err := exp.WriteBest(best, metric); err != nil {
		return out, err
	}
	if cfg.Export.Plots {
		c.renderPlots(out, resultByID[best.RecipeID], metric)
	}

	c.Logger.Info("run complete",
		"rows", table.Len(),
		log.RecipeIDKey, best.RecipeID,
		"metric", metric,
		"score", best.Metrics[metric])
	return out, nil
}

// executor builds a per-recipe executor from the configuration. Each recipe
// gets its own instance so the persist hook can be wired without sharing.
func (c *Cookbook) executor(runDir string) *recipe.Executor {
	cfg := c.Config

	exec := recipe.NewExecutor()
	exec.SearchStrategy = search.Strategy(cfg.Search.Strategy)
	exec.SearchIterations = cfg.Search.Iterations
	exec.SearchFolds = cfg.Search.Folds
	exec.Seed = cfg.Run.Seed
	exec.ComputeImbalanceWeight = cfg.Run.ComputeImbalanceWeight

	if cfg.Export.Intermediate {
		exec.Persist = func(recipeID int, step recipe.StepName, ds *dataset.Dataset) error {
			p := dataset.Train
			if !ds.Has(p) {
				p = dataset.Full
			}
			name := fmt.Sprintf("recipe_%d_%s.csv", recipeID, step)
			return ds.SaveCSV(p, filepath.Join(runDir, name))
		}
	}
	return exec
}

// renderPlots writes the comparison chart and, when the winning recipe has
// the inputs for them, its importance bars and ROC curve. Chart failures are
// logged, never fatal.
func (c *Cookbook) renderPlots(out *RunOutput, best *recipe.Result, metric string) {
	rows := out.Table.Rows()

	if err := visuals.MetricComparison(rows, metric,
		filepath.Join(out.Dir, metric+".png")); err != nil {
		c.Logger.Warn("metric chart skipped", log.ErrAttr(err))
	}

	if len(out.Best.Importances) > 0 {
		title := fmt.Sprintf("recipe %d importances", out.Best.RecipeID)
		if err := visuals.ImportanceBars(out.Best.Importances, title,
			filepath.Join(out.Dir, "importances.png")); err != nil {
			c.Logger.Warn("importance chart skipped", log.ErrAttr(err))
		}
	}

	if best == nil || best.Probabilities == nil || best.Dataset == nil {
		return
	}
	yTrue := evalLabels(best.Dataset)
	if yTrue == nil {
		return
	}
	title := fmt.Sprintf("recipe %d roc", best.RecipeID)
	if err := visuals.ROCCurve(yTrue, best.Probabilities, title,
		filepath.Join(out.Dir, "roc.png")); err != nil {
		c.Logger.Warn("roc chart skipped", log.ErrAttr(err))
	}
}

func evalLabels(ds *dataset.Dataset) *mat.VecDense {
	if y, err := ds.Y(dataset.Test); err == nil {
		return y
	}
	y, err := ds.Y(dataset.Full)
	if err != nil {
		return nil
	}
	return y
}
