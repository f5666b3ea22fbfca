package cookbook

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/recipe"
)

const sampleYAML = `
steps:
  order: [scale, split, model]
  scale: standard, minmax
  split: train_test
  model: ridge

ridge_params:
  alpha: 0.1, 10.0

metrics: [r2, mse]

search:
  enabled: true
  strategy: random
  iterations: 15

run:
  seed: 7
  label: price
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	specs := cfg.StepSpecs()
	want := []recipe.StepSpec{
		{Name: recipe.StepScale, Keys: []string{"standard", "minmax"}},
		{Name: recipe.StepSplit, Keys: []string{"train_test"}},
		{Name: recipe.StepModel, Keys: []string{"ridge"}},
	}
	if diff := cmp.Diff(want, specs); diff != "" {
		t.Errorf("StepSpecs() mismatch (-want +got):\n%s", diff)
	}

	params, err := cfg.ParamsByKey()
	if err != nil {
		t.Fatalf("ParamsByKey() error = %v", err)
	}
	alpha, ok := params["ridge"]["alpha"]
	if !ok {
		t.Fatalf("ridge alpha missing: %v", params)
	}
	if alpha.Kind != recipe.Range || alpha.Low != 0.1 || alpha.High != 10.0 {
		t.Errorf("alpha = %+v, want Range(0.1, 10.0)", alpha)
	}

	if cfg.Search.Strategy != "random" || cfg.Search.Iterations != 15 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Search.Folds != 3 {
		t.Errorf("folds = %d, want default 3", cfg.Search.Folds)
	}
	if cfg.Run.Seed != 7 || cfg.Run.Label != "price" {
		t.Errorf("run = %+v", cfg.Run)
	}
	if cfg.Run.BestMetric != "r2" {
		t.Errorf("best metric = %q, want first configured metric", cfg.Run.BestMetric)
	}
}

func TestParseConfigUnknownStepKey(t *testing.T) {
	const bad = `
steps:
  order: [model]
  model: ols
  modle: ridge
`
	if _, err := ParseConfig(strings.NewReader(bad)); err == nil {
		t.Fatal("unknown key inside steps section did not fail")
	}
}

func TestParseConfigUnknownSectionTolerated(t *testing.T) {
	const doc = `
steps:
  model: ols
notes:
  author: someone
`
	cfg, err := ParseConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v, unknown top-level section must be tolerated", err)
	}
	if _, ok := cfg.Sections["notes"]; !ok {
		t.Error("unknown section dropped instead of kept")
	}
}

func TestParseConfigUnknownStepName(t *testing.T) {
	const bad = `
steps:
  order: [scale, bake]
  scale: standard
`
	_, err := ParseConfig(strings.NewReader(bad))
	var ve *errors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestParseConfigUnknownMetric(t *testing.T) {
	const bad = `
steps:
  model: ols
metrics: [r2, rsme]
`
	_, err := ParseConfig(strings.NewReader(bad))
	var ume *errors.UnknownMetricError
	if !errors.As(err, &ume) {
		t.Fatalf("error = %v, want UnknownMetricError", err)
	}
}

func TestParseConfigMalformedParams(t *testing.T) {
	const bad = `
steps:
  model: ridge
ridge_params:
  alpha: 1, 2, 3
`
	_, err := ParseConfig(strings.NewReader(bad))
	var mpe *errors.MalformedParameterError
	if !errors.As(err, &mpe) {
		t.Fatalf("error = %v, want MalformedParameterError", err)
	}
}

func TestParseConfigBadStrategy(t *testing.T) {
	const bad = `
steps:
  model: ols
search:
  strategy: bayesian
`
	_, err := ParseConfig(strings.NewReader(bad))
	var ve *errors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestStepSpecsCanonicalFallback(t *testing.T) {
	const doc = `
steps:
  model: ols
  scale: standard
`
	cfg, err := ParseConfig(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	specs := cfg.StepSpecs()
	if len(specs) != 2 {
		t.Fatalf("got %d specs, want 2", len(specs))
	}
	if specs[0].Name != recipe.StepScale || specs[1].Name != recipe.StepModel {
		t.Errorf("order = [%s %s], want canonical [scale model]",
			specs[0].Name, specs[1].Name)
	}
}
