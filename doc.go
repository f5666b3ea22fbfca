// Package souschef assembles machine-learning pipelines from declarative
// configuration. A configuration selects algorithm options per step (scale,
// split, encode, mix, cleave, sample, reduce, model); souschef enumerates the
// Cartesian product of those options, executes every resulting recipe against
// a dataset with train/test partition awareness, and compares the outcomes in
// a single results table.
//
// # Packages
//
//   - dataset: partitioned tabular data on gonum matrices, CSV loading
//   - preprocessing: scalers, encoders, interactors, samplers, selectors
//   - models: linear and logistic models behind the adapter contract
//   - metrics: regression and classification scoring functions
//   - recipe: option registry, hyperparameter resolver, enumerator, executor
//   - search: grid and random hyperparameter search with k-fold scoring
//   - results: scored rows, append-only table, best-recipe selection
//   - export: run directories, results CSV, per-recipe JSON artifacts
//   - visuals: importance bars, ROC curves, metric comparison charts
//   - cookbook: YAML configuration and the top-level Bake orchestrator
//
// # Quick Start
//
// Describe a run in YAML:
//
//	steps:
//	  order: [scale, split, model]
//	  scale: standard, minmax
//	  split: train_test
//	  model: ols, ridge
//
//	ridge_params:
//	  alpha: 0.1, 10.0
//
//	metrics: [r2, mse]
//
//	search:
//	  enabled: true
//
// Then bake it:
//
//	cfg, err := cookbook.LoadConfig("cookbook.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ds, err := dataset.LoadCSV("train.csv", "price")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := cookbook.New(cfg).Bake(context.Background(), ds)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("best recipe #%d\n", out.Best.RecipeID)
//
// Each recipe owns fresh adapter instances, fits them on the train partition
// only, and fails in isolation: one broken recipe never aborts its siblings.
package souschef
