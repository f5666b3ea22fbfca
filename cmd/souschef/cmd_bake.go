package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/souschef-ml/souschef/cookbook"
	"github.com/souschef-ml/souschef/dataset"
	"github.com/souschef-ml/souschef/pkg/errors"
)

var bakeFlags struct {
	config  string
	data    string
	label   string
	workers int
}

var bakeCmd = &cobra.Command{
	Use:   "bake",
	Short: "Run every recipe a configuration describes against a dataset",
	Long: `Bake loads a YAML configuration and a CSV dataset, enumerates the
Cartesian product of the configured step options, executes each resulting
recipe, and writes the scored results table plus per-recipe artifacts into
a fresh run directory.

Usage:
  souschef bake --config cookbook.yaml --data train.csv
  souschef bake --config cookbook.yaml --data train.csv --label price`,
	RunE: runBake,
}

func init() {
	f := bakeCmd.Flags()
	f.StringVar(&bakeFlags.config, "config", "cookbook.yaml", "Path to the run configuration")
	f.StringVar(&bakeFlags.data, "data", "", "Path to the CSV dataset")
	f.StringVar(&bakeFlags.label, "label", "", "Label column, overrides the configured one")
	f.IntVar(&bakeFlags.workers, "workers", 0, "Parallel recipe workers, overrides the configured count")
	_ = bakeCmd.MarkFlagRequired("data")
}

func runBake(cmd *cobra.Command, _ []string) error {
	cfg, err := cookbook.LoadConfig(bakeFlags.config)
	if err != nil {
		return err
	}
	if bakeFlags.label != "" {
		cfg.Run.Label = bakeFlags.label
	}
	if bakeFlags.workers > 0 {
		cfg.Run.Workers = bakeFlags.workers
	}

	ds, err := dataset.LoadCSV(bakeFlags.data, cfg.Run.Label)
	if err != nil {
		return err
	}

	out, bakeErr := cookbook.New(cfg).Bake(cmd.Context(), ds)
	if out != nil {
		printRun(cmd, out, cfg.Run.BestMetric)
	}
	if bakeErr != nil {
		var ere *errors.EmptyResultsError
		if errors.As(bakeErr, &ere) {
			return fmt.Errorf("every recipe failed; see %s/results.csv", out.Dir)
		}
		return bakeErr
	}
	return nil
}

func printRun(cmd *cobra.Command, out *cookbook.RunOutput, metric string) {
	rows := out.Table.Rows()
	var failed int
	for _, row := range rows {
		if row.Failed {
			failed++
		}
	}
	cmd.Printf("baked %d recipes (%d failed), artifacts in %s\n",
		len(rows), failed, out.Dir)

	if metric == "" || out.Best.RecipeID == 0 {
		return
	}
	cmd.Printf("best recipe #%d by %s = %.4f\n",
		out.Best.RecipeID, metric, out.Best.Metrics[metric])

	steps := make([]string, 0, len(out.Best.Keys))
	for step, key := range out.Best.Keys {
		steps = append(steps, fmt.Sprintf("%s=%s", step, key))
	}
	sort.Strings(steps)
	for _, s := range steps {
		cmd.Printf("  %s\n", s)
	}
}
