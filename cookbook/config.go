// Package cookbook is the top-level driver: it loads a run configuration,
// enumerates every recipe the configuration describes, executes them against
// a dataset, aggregates their scores, and exports the run's artifacts.
package cookbook

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/recipe"
	"github.com/souschef-ml/souschef/results"
	"github.com/souschef-ml/souschef/search"
)

// Config mirrors the YAML settings document. The steps section declares the
// step order and the comma-separated algorithm keys per step; hyperparameters
// live in one "<key>_params" section per algorithm.
type Config struct {
	Steps   StepsConfig  `yaml:"steps"`
	Metrics []string     `yaml:"metrics"`
	Search  SearchConfig `yaml:"search"`
	Export  ExportConfig `yaml:"export"`
	Run     RunConfig    `yaml:"run"`

	// Sections catches the dynamic "<key>_params" blocks and any unknown
	// top-level sections, which are tolerated.
	Sections map[string]yaml.Node `yaml:",inline"`
}

// StepsConfig is the steps section. Each step field holds that step's
// comma-separated selected keys; empty means the step is skipped unless the
// order names it, in which case it runs as "none".
type StepsConfig struct {
	Order []string `yaml:"order"`

	Scale  string `yaml:"scale"`
	Split  string `yaml:"split"`
	Encode string `yaml:"encode"`
	Mix    string `yaml:"mix"`
	Cleave string `yaml:"cleave"`
	Sample string `yaml:"sample"`
	Reduce string `yaml:"reduce"`
	Model  string `yaml:"model"`
}

// SearchConfig controls model-step hyperparameter search.
type SearchConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Strategy   string `yaml:"strategy"`
	Iterations int    `yaml:"iterations"`
	Folds      int    `yaml:"folds"`
}

// ExportConfig controls what lands in the run directory.
type ExportConfig struct {
	Directory    string `yaml:"directory"`
	Plots        bool   `yaml:"plots"`
	Intermediate bool   `yaml:"intermediate"`
}

// RunConfig holds run-wide knobs.
type RunConfig struct {
	// Workers bounds parallel recipe execution; 0 or 1 runs sequentially.
	Workers int `yaml:"workers"`

	Seed int64 `yaml:"seed"`

	// Label names the dataset's label column.
	Label string `yaml:"label"`

	// BestMetric selects the winner; defaults to the first metric.
	BestMetric string `yaml:"best_metric"`

	// ComputeImbalanceWeight injects a positive-class weight into model
	// parameters, derived from the training labels.
	ComputeImbalanceWeight bool `yaml:"compute_imbalance_weight"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config %s", path)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig decodes YAML from r. Unknown keys inside known sections fail
// eagerly; unknown top-level sections are kept but ignored.
func ParseConfig(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	cfg := &Config{}
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Search.Strategy == "" {
		c.Search.Strategy = string(search.Grid)
	}
	if c.Search.Folds == 0 {
		c.Search.Folds = 3
	}
	if c.Export.Directory == "" {
		c.Export.Directory = "results"
	}
	if c.Run.Seed == 0 {
		c.Run.Seed = 42
	}
	if c.Run.BestMetric == "" && len(c.Metrics) > 0 {
		c.Run.BestMetric = c.Metrics[0]
	}
}

// Validate checks everything that can fail before a recipe runs: step names,
// metric names, the search strategy, and the parameter token grammar.
func (c *Config) Validate() error {
	for _, name := range c.Steps.Order {
		if !recipe.KnownStep(recipe.StepName(name)) {
			return errors.NewValidationError("steps.order",
				"unknown step", name)
		}
	}

	if err := results.ValidateMetrics(c.Metrics); err != nil {
		return err
	}

	switch search.Strategy(c.Search.Strategy) {
	case search.Grid, search.Random:
	default:
		return errors.NewValidationError("search.strategy",
			"must be grid or random", c.Search.Strategy)
	}

	if c.Run.Workers < 0 {
		return errors.NewValidationError("run.workers",
			"must not be negative", c.Run.Workers)
	}

	if _, err := c.ParamsByKey(); err != nil {
		return err
	}
	return nil
}

// StepSpecs builds the ordered step list. The declared order wins; with no
// order, steps that select keys run in canonical order.
func (c *Config) StepSpecs() []recipe.StepSpec {
	order := make([]recipe.StepName, 0, len(c.Steps.Order))
	if len(c.Steps.Order) > 0 {
		for _, name := range c.Steps.Order {
			order = append(order, recipe.StepName(name))
		}
	} else {
		for _, step := range recipe.CanonicalOrder {
			if c.keysFor(step) != "" {
				order = append(order, step)
			}
		}
	}

	specs := make([]recipe.StepSpec, 0, len(order))
	for _, step := range order {
		specs = append(specs, recipe.StepSpec{
			Name: step,
			Keys: splitKeys(c.keysFor(step)),
		})
	}
	return specs
}

func (c *Config) keysFor(step recipe.StepName) string {
	switch step {
	case recipe.StepScale:
		return c.Steps.Scale
	case recipe.StepSplit:
		return c.Steps.Split
	case recipe.StepEncode:
		return c.Steps.Encode
	case recipe.StepMix:
		return c.Steps.Mix
	case recipe.StepCleave:
		return c.Steps.Cleave
	case recipe.StepSample:
		return c.Steps.Sample
	case recipe.StepReduce:
		return c.Steps.Reduce
	case recipe.StepModel:
		return c.Steps.Model
	}
	return ""
}

// splitKeys turns "standard, minmax" into its trimmed parts.
func splitKeys(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

const paramsSuffix = "_params"

// ParamsByKey resolves every "<key>_params" section into parameter specs,
// keyed by algorithm key.
func (c *Config) ParamsByKey() (map[string]map[string]recipe.ParamSpec, error) {
	out := make(map[string]map[string]recipe.ParamSpec)
	for section, node := range c.Sections {
		if !strings.HasSuffix(section, paramsSuffix) {
			continue
		}
		key := strings.TrimSuffix(section, paramsSuffix)

		var block map[string]any
		if err := node.Decode(&block); err != nil {
			return nil, errors.Wrapf(err, "decoding section %s", section)
		}

		raw := make(map[string][]string, len(block))
		for param, value := range block {
			raw[param] = splitKeys(fmt.Sprint(value))
		}

		specs, err := recipe.ResolveParams(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "section %s", section)
		}
		out[key] = specs
	}
	return out, nil
}
