package cookbook

import (
	"github.com/souschef-ml/souschef/models"
	"github.com/souschef-ml/souschef/preprocessing"
	"github.com/souschef-ml/souschef/recipe"
)

// DefaultRegistry wires every built-in algorithm under its step. The caller
// may register more before handing the registry to New.
func DefaultRegistry() *recipe.Registry {
	r := recipe.NewRegistry()

	r.Register(recipe.StepScale, "standard", preprocessing.NewStandardScalerFromParams)
	r.Register(recipe.StepScale, "minmax", preprocessing.NewMinMaxScalerFromParams)
	r.Register(recipe.StepScale, "robust", preprocessing.NewRobustScalerFromParams)

	r.Register(recipe.StepSplit, "train_test", preprocessing.NewTrainTestSplitterFromParams)
	r.Register(recipe.StepSplit, "train_test_val", preprocessing.NewTrainTestValSplitterFromParams)

	r.Register(recipe.StepEncode, "ordinal", preprocessing.NewOrdinalEncoderFromParams)
	r.Register(recipe.StepEncode, "dummy", preprocessing.NewDummyEncoderFromParams)
	r.Register(recipe.StepEncode, "target", preprocessing.NewTargetEncoderFromParams)

	r.Register(recipe.StepMix, "polynomial", preprocessing.NewInteractorFromParams("polynomial"))
	r.Register(recipe.StepMix, "sum", preprocessing.NewInteractorFromParams("sum"))
	r.Register(recipe.StepMix, "difference", preprocessing.NewInteractorFromParams("difference"))
	r.Register(recipe.StepMix, "quotient", preprocessing.NewInteractorFromParams("quotient"))
	r.Register(recipe.StepMix, "power", preprocessing.NewPolynomialExpanderFromParams)

	r.Register(recipe.StepCleave, "cleave", preprocessing.NewCleaverFromParams)

	r.Register(recipe.StepSample, "oversample", preprocessing.NewRandomOversamplerFromParams)
	r.Register(recipe.StepSample, "undersample", preprocessing.NewRandomUndersamplerFromParams)
	r.Register(recipe.StepSample, "smote", preprocessing.NewSMOTESamplerFromParams)

	r.Register(recipe.StepReduce, "variance", preprocessing.NewVarianceSelectorFromParams)
	r.Register(recipe.StepReduce, "kbest", preprocessing.NewKBestSelectorFromParams)
	r.Register(recipe.StepReduce, "importance", preprocessing.NewImportanceSelectorFromParams)

	r.Register(recipe.StepModel, "ols", models.NewOLSFromParams)
	r.Register(recipe.StepModel, "ridge", models.NewRidgeFromParams)
	r.Register(recipe.StepModel, "logit", models.NewLogitFromParams)

	return r
}
