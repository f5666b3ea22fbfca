package recipe

import (
	"context"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/souschef-ml/souschef/core/model"
	"github.com/souschef-ml/souschef/core/parallel"
	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/log"
	"github.com/souschef-ml/souschef/search"
)

// PersistFunc receives the dataset state after each completed step, keyed by
// recipe id and step name. Used for intermediate-artifact export.
type PersistFunc func(recipeID int, step StepName, ds *dataset.Dataset) error

// Executor runs one recipe at a time against a dataset. A single Executor is
// safe to reuse across recipes; per-recipe state lives on the Recipe and the
// Result.
type Executor struct {
	// Logger receives structured progress events.
	Logger log.Logger

	// SearchStrategy, SearchIterations and SearchFolds configure how Range
	// hyperparameters on the model step are resolved.
	SearchStrategy   search.Strategy
	SearchIterations int
	SearchFolds      int

	// Seed drives search sampling and fold shuffling.
	Seed int64

	// ComputeImbalanceWeight, when set, derives a positive-class weight
	// from the training labels and injects it into the model parameters
	// under ScalePosWeightParam, unless the configuration set one.
	ComputeImbalanceWeight bool

	// Persist, when set, is called after every completed step.
	Persist PersistFunc
}

// ScalePosWeightParam is the model parameter the executor fills in when
// ComputeImbalanceWeight is on.
const ScalePosWeightParam = "scale_pos_weight"

// imbalanceWeight returns len(y)/sum(y) for binary 0/1 labels with at least
// one positive, the convention gradient-boosting libraries use.
func imbalanceWeight(y *mat.VecDense) (float64, bool) {
	if y == nil || y.Len() == 0 {
		return 0, false
	}
	var pos int
	for i := 0; i < y.Len(); i++ {
		switch y.AtVec(i) {
		case 0:
		case 1:
			pos++
		default:
			return 0, false
		}
	}
	if pos == 0 || pos == y.Len() {
		return 0, false
	}
	return float64(y.Len()) / float64(pos), true
}

// NewExecutor returns an executor with grid search over 3 shuffled folds.
func NewExecutor() *Executor {
	return &Executor{
		Logger:         log.GetLoggerWithName("executor"),
		SearchStrategy: search.Grid,
		SearchFolds:    3,
		Seed:           42,
	}
}

// Result is the outcome of executing one recipe. A failed recipe yields a
// partial result with Err set; it never aborts sibling recipes.
type Result struct {
	RecipeID int
	Keys     map[StepName]string

	// Dataset is the transformed partition state after the last step.
	Dataset *dataset.Dataset

	// Model is the fitted model-step adapter, if the recipe had one.
	Model model.Adapter

	// Predictions and Probabilities are computed on the test partition
	// (full when no split happened).
	Predictions   *mat.VecDense
	Probabilities *mat.VecDense

	// Importances are the fitted model's per-feature importances.
	Importances []float64

	// ChosenParams is the model step's final parameter set, including any
	// search winners.
	ChosenParams map[string]any

	// SearchEvaluations counts objective evaluations, zero without search.
	SearchEvaluations int

	Duration time.Duration

	// FailedStep and Err mark a failed recipe.
	FailedStep StepName
	Err        error
}

// Failed reports whether the recipe ended in the Failed state.
func (r *Result) Failed() bool { return r.Err != nil }

// Execute runs the recipe's steps in order against ds. The dataset is
// mutated in place; callers running recipes concurrently must pass clones.
// Panics inside adapters are recovered and recorded as a failure.
func (e *Executor) Execute(ctx context.Context, rec *Recipe, ds *dataset.Dataset) *Result {
	res := &Result{
		RecipeID: rec.ID,
		Keys:     rec.Keys(),
		Dataset:  ds,
	}
	logger := e.Logger.With(log.RecipeIDKey, rec.ID)

	start := time.Now()
	err := errors.SafeExecute("recipe execution", func() error {
		return e.run(ctx, rec, ds, res, logger)
	})
	res.Duration = time.Since(start)

	if err != nil {
		rec.fail(err)
		res.Err = err
		logger.Error("recipe failed",
			log.FailedStepKey, string(res.FailedStep),
			log.DurationMsKey, res.Duration.Milliseconds(),
			log.ErrAttr(err))
		return res
	}

	rec.setState(Done)
	logger.Info("recipe done",
		log.DurationMsKey, res.Duration.Milliseconds())
	return res
}

func (e *Executor) run(ctx context.Context, rec *Recipe, ds *dataset.Dataset, res *Result, logger log.Logger) error {
	for _, inst := range rec.Steps {
		if err := ctx.Err(); err != nil {
			res.FailedStep = inst.Step
			return errors.Wrap(err, "execution interrupted")
		}

		stepLogger := logger.With(
			log.StepNameKey, string(inst.Step),
			log.AlgorithmKey, inst.Key,
		)
		stepLogger.Debug("step start")

		var err error
		switch {
		case isDatasetOperator(inst.Adapter):
			err = e.runDatasetStep(rec, inst, ds)
		case inst.Step == StepModel:
			err = e.runModelStep(ctx, rec, inst, ds, res, stepLogger)
		default:
			err = e.runTransformStep(rec, inst, ds)
		}
		if err != nil {
			res.FailedStep = inst.Step
			return err
		}

		if e.Persist != nil {
			if err := e.Persist(rec.ID, inst.Step, ds); err != nil {
				res.FailedStep = inst.Step
				return errors.Wrap(err, "persisting step output")
			}
		}

		stepLogger.Debug("step complete",
			log.StepStateKey, rec.State().String(),
			log.FeaturesKey, ds.NumFeatures())
	}
	return nil
}

func isDatasetOperator(adapter interface{ Name() string }) bool {
	_, ok := adapter.(DatasetOperator)
	return ok
}

// runDatasetStep applies a dataset-restructuring adapter (split, cleave,
// sample) once.
func (e *Executor) runDatasetStep(rec *Recipe, inst StepInstance, ds *dataset.Dataset) error {
	rec.setState(Transforming)
	op := inst.Adapter.(DatasetOperator)
	if err := op.Apply(ds); err != nil {
		return errors.NewStepTransformError(string(inst.Step), inst.Key, "dataset", err)
	}
	return nil
}

// runTransformStep fits a stateful adapter against the train partition, then
// transforms every existing partition independently.
func (e *Executor) runTransformStep(rec *Recipe, inst StepInstance, ds *dataset.Dataset) error {
	if fitter, ok := inst.Adapter.(model.Fitter); ok {
		rec.setState(Fitting)
		X, y, err := fitData(ds)
		if err != nil {
			return errors.NewStepFitError(string(inst.Step), inst.Key, err)
		}
		if err := fitter.Fit(X, y); err != nil {
			return errors.NewStepFitError(string(inst.Step), inst.Key, err)
		}
	}

	transformer, ok := inst.Adapter.(model.Transformer)
	if !ok {
		return nil
	}

	rec.setState(Transforming)
	parts := ds.Partitions()
	outs := make([]*mat.Dense, len(parts))

	// partitions transform independently, so they can run concurrently; the
	// dataset is only written once every partition succeeded
	err := parallel.ForEachErr(len(parts), func(i int) error {
		p := parts[i]
		X, err := ds.X(p)
		if err != nil {
			return errors.NewStepTransformError(string(inst.Step), inst.Key, string(p), err)
		}
		var out mat.Matrix
		if err := errors.SafeExecute("transform", func() error {
			var terr error
			out, terr = transformer.Transform(X)
			return terr
		}); err != nil {
			return errors.NewStepTransformError(string(inst.Step), inst.Key, string(p), err)
		}
		outs[i] = asDense(out)
		return nil
	})
	if err != nil {
		return err
	}
	for i, p := range parts {
		ds.SetX(p, outs[i])
	}

	if mapper, ok := inst.Adapter.(model.ColumnMapper); ok {
		ds.SetColumns(mapper.MapColumns(ds.Columns()))
	}
	return nil
}

// runModelStep resolves range parameters through search when enabled, fits
// the final model on train, and scores the held-out partition.
func (e *Executor) runModelStep(ctx context.Context, rec *Recipe, inst StepInstance, ds *dataset.Dataset, res *Result, logger log.Logger) error {
	// the reserved passthrough skips the model protocol entirely; the
	// recipe completes without predictions
	if inst.Key == NoneKey {
		rec.setState(Scored)
		return nil
	}

	trainX, trainY, err := fitData(ds)
	if err != nil {
		return errors.NewStepFitError(string(inst.Step), inst.Key, err)
	}

	adapter := inst.Adapter.(model.Adapter)
	res.ChosenParams = FixedValues(inst.Params)

	if e.ComputeImbalanceWeight {
		if w, ok := imbalanceWeight(trainY); ok {
			if _, set := res.ChosenParams[ScalePosWeightParam]; !set {
				res.ChosenParams[ScalePosWeightParam] = w
				fresh, err := inst.Construct(res.ChosenParams)
				if err != nil {
					return errors.NewStepFitError(string(inst.Step), inst.Key, err)
				}
				adapter = fresh.(model.Adapter)
				logger.Debug("imbalance weight injected", ScalePosWeightParam, w)
			}
		}
	}

	if rec.SearchEnabled && HasRange(inst.Params) {
		rec.setState(Searching)
		final, evaluations, err := e.searchParams(ctx, inst, res.ChosenParams, trainX, trainY, logger)
		if err != nil {
			return errors.NewStepFitError(string(inst.Step), inst.Key, err)
		}

		fresh, err := inst.Construct(final)
		if err != nil {
			return errors.NewStepFitError(string(inst.Step), inst.Key, err)
		}
		adapter = fresh.(model.Adapter)
		res.ChosenParams = final
		res.SearchEvaluations = evaluations
	}

	fitter, ok := adapter.(model.Fitter)
	if !ok {
		return errors.NewStepFitError(string(inst.Step), inst.Key,
			errors.New("model adapter cannot fit"))
	}

	rec.setState(Fitting)
	if err := fitter.Fit(trainX, trainY); err != nil {
		return errors.NewStepFitError(string(inst.Step), inst.Key, err)
	}

	rec.setState(Scored)
	res.Model = adapter

	evalP := dataset.Test
	if !ds.Has(evalP) {
		evalP = dataset.Full
	}
	evalX, err := ds.X(evalP)
	if err != nil {
		return errors.NewStepTransformError(string(inst.Step), inst.Key, string(evalP), err)
	}

	if predictor, ok := adapter.(model.Predictor); ok {
		pred, err := predictor.Predict(evalX)
		if err != nil {
			return errors.NewStepTransformError(string(inst.Step), inst.Key, string(evalP), err)
		}
		res.Predictions = pred
	}
	if proba, ok := adapter.(model.ProbaPredictor); ok {
		p, err := proba.PredictProba(evalX)
		if err != nil {
			return errors.NewStepTransformError(string(inst.Step), inst.Key, string(evalP), err)
		}
		res.Probabilities = p
	}
	if imp, ok := adapter.(model.Importancer); ok {
		res.Importances = imp.FeatureImportances()
	}
	return nil
}

// searchParams runs the configured search over the instance's Range specs,
// scoring each candidate with k-fold cross-validation on the train partition.
// fixed holds the non-searched parameters, including any computed ones, and
// is carried into every candidate and into the winning set.
func (e *Executor) searchParams(ctx context.Context, inst StepInstance, fixed map[string]any, trainX *mat.Dense, trainY *mat.VecDense, logger log.Logger) (map[string]any, int, error) {
	ranges := searchRanges(inst.Params)

	kf := search.NewKFold(e.SearchFolds, true, e.Seed)
	objective := func(candidate map[string]any) (float64, error) {
		merged := mergeParams(fixed, candidate)
		return kf.Score(trainX, trainY, func(foldTrainX *mat.Dense, foldTrainY *mat.VecDense, foldTestX *mat.Dense, foldTestY *mat.VecDense) (float64, error) {
			trial, err := inst.Construct(merged)
			if err != nil {
				return 0, err
			}
			fitter, ok := trial.(model.Fitter)
			if !ok {
				return 0, errors.New("model adapter cannot fit")
			}
			if err := fitter.Fit(foldTrainX, foldTrainY); err != nil {
				return 0, err
			}
			scorer, ok := trial.(model.Scorer)
			if !ok {
				return 0, errors.New("model adapter cannot score itself")
			}
			return scorer.Score(foldTestX, foldTestY)
		})
	}

	logger.Info("hyperparameter search",
		log.SearchStrategyKey, string(e.SearchStrategy),
		log.SearchIterationsKey, e.SearchIterations)

	result, err := search.Run(ctx, ranges, objective, search.Options{
		Strategy:   e.SearchStrategy,
		Iterations: e.SearchIterations,
		Seed:       e.Seed,
		Maximize:   true,
	})
	if err != nil {
		return nil, 0, err
	}

	logger.Info("search resolved",
		log.SearchScoreKey, result.BestScore,
		log.SearchIterationsKey, result.Evaluations)

	return mergeParams(fixed, result.BestParams), result.Evaluations, nil
}

// searchRanges converts Range specs to the search package's representation,
// sorted by name so the grid's enumeration order is reproducible.
func searchRanges(specs map[string]ParamSpec) []search.ParamRange {
	var out []search.ParamRange
	for _, spec := range specs {
		if spec.Kind != Range {
			continue
		}
		kind := search.RealRange
		if spec.Numeric == Integer {
			kind = search.IntRange
		}
		out = append(out, search.ParamRange{
			Name: spec.Name,
			Kind: kind,
			Low:  spec.Low,
			High: spec.High,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func mergeParams(fixed, winners map[string]any) map[string]any {
	out := make(map[string]any, len(fixed)+len(winners))
	for k, v := range fixed {
		out[k] = v
	}
	for k, v := range winners {
		out[k] = v
	}
	return out
}

// fitData returns the train partition, falling back to full when no split
// step ran. Labels may be nil for unlabeled datasets.
func fitData(ds *dataset.Dataset) (*mat.Dense, *mat.VecDense, error) {
	p := dataset.Train
	if !ds.Has(p) {
		p = dataset.Full
	}
	X, err := ds.X(p)
	if err != nil {
		return nil, nil, err
	}
	y, err := ds.Y(p)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

func asDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}
