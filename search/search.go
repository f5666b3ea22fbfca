package search

import (
	"context"
	"math/rand/v2"

	"github.com/souschef-ml/souschef/pkg/errors"
	"github.com/souschef-ml/souschef/pkg/log"
)

// Kind distinguishes integer ranges from real-valued ranges.
type Kind int

const (
	// IntRange draws whole numbers from [Low, High] inclusive.
	IntRange Kind = iota
	// RealRange draws reals from [Low, High).
	RealRange
)

// ParamRange is one searchable hyperparameter dimension.
type ParamRange struct {
	Name string
	Kind Kind
	Low  float64
	High float64
}

// Objective evaluates one concrete parameter setting and returns its score.
type Objective func(params map[string]any) (float64, error)

// Strategy names a candidate-generation scheme.
type Strategy string

const (
	// Grid enumerates the Cartesian product of per-range candidate lists.
	Grid Strategy = "grid"
	// Random draws independent uniform samples from every range.
	Random Strategy = "random"
)

// Options configures a search run.
type Options struct {
	Strategy Strategy

	// Iterations bounds the number of evaluations. For Random it is the
	// sample count; for Grid a positive value truncates the product.
	Iterations int

	// GridPoints is the number of evenly spaced candidates a real range
	// contributes to a grid. Integer ranges always contribute every value.
	GridPoints int

	// Seed drives random sampling.
	Seed int64

	// Maximize selects whether higher scores win.
	Maximize bool
}

// Result is the outcome of a search run.
type Result struct {
	BestParams  map[string]any
	BestScore   float64
	Evaluations int
}

const (
	defaultIterations = 20
	defaultGridPoints = 10
)

// Run evaluates candidate settings and returns the best one found.
// With no ranges it evaluates the empty setting once.
func Run(ctx context.Context, ranges []ParamRange, obj Objective, opts Options) (Result, error) {
	logger := log.GetLoggerWithName("search")

	if opts.Iterations <= 0 && opts.Strategy == Random {
		opts.Iterations = defaultIterations
	}
	if opts.GridPoints <= 0 {
		opts.GridPoints = defaultGridPoints
	}

	gen, err := newGenerator(ranges, opts)
	if err != nil {
		return Result{}, err
	}

	var best Result
	evaluated := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrap(err, "search interrupted")
		}
		params, ok := gen.next()
		if !ok {
			break
		}

		score, err := obj(params)
		if err != nil {
			return Result{}, err
		}
		evaluated++

		logger.Debug("evaluated candidate",
			log.SearchIterationsKey, evaluated,
			log.SearchScoreKey, score)

		if evaluated == 1 || better(score, best.BestScore, opts.Maximize) {
			best.BestParams = params
			best.BestScore = score
		}

		if opts.Iterations > 0 && evaluated >= opts.Iterations {
			break
		}
	}

	best.Evaluations = evaluated
	if evaluated == 0 {
		return Result{}, errors.New("search produced no candidates")
	}
	return best, nil
}

func better(score, incumbent float64, maximize bool) bool {
	if maximize {
		return score > incumbent
	}
	return score < incumbent
}

// generator yields candidate settings one at a time.
type generator interface {
	next() (map[string]any, bool)
}

func newGenerator(ranges []ParamRange, opts Options) (generator, error) {
	switch opts.Strategy {
	case Grid, "":
		return newGridGenerator(ranges, opts.GridPoints)
	case Random:
		return newRandomGenerator(ranges, opts.Seed, opts.Iterations), nil
	}
	return nil, errors.NewValidationError("strategy", "unknown search strategy", string(opts.Strategy))
}

// gridGenerator walks the Cartesian product of candidate lists with an
// odometer over per-dimension positions.
type gridGenerator struct {
	dims       []gridDim
	positions  []int
	exhausted  bool
	yieldEmpty bool
}

type gridDim struct {
	name       string
	candidates []any
}

func newGridGenerator(ranges []ParamRange, points int) (*gridGenerator, error) {
	g := &gridGenerator{yieldEmpty: len(ranges) == 0}
	for _, r := range ranges {
		dim := gridDim{name: r.Name}
		switch r.Kind {
		case IntRange:
			for v := int64(r.Low); v <= int64(r.High); v++ {
				dim.candidates = append(dim.candidates, v)
			}
		case RealRange:
			step := (r.High - r.Low) / float64(points)
			for i := 0; i < points; i++ {
				dim.candidates = append(dim.candidates, r.Low+float64(i)*step)
			}
		}
		if len(dim.candidates) == 0 {
			return nil, errors.NewValidationError(r.Name, "range produced no candidates", r)
		}
		g.dims = append(g.dims, dim)
	}
	g.positions = make([]int, len(g.dims))
	return g, nil
}

func (g *gridGenerator) next() (map[string]any, bool) {
	if g.exhausted {
		return nil, false
	}
	if g.yieldEmpty {
		g.exhausted = true
		return map[string]any{}, true
	}

	out := make(map[string]any, len(g.dims))
	for i, dim := range g.dims {
		out[dim.name] = dim.candidates[g.positions[i]]
	}

	// advance the odometer, rightmost dimension fastest
	for i := len(g.dims) - 1; i >= 0; i-- {
		g.positions[i]++
		if g.positions[i] < len(g.dims[i].candidates) {
			return out, true
		}
		g.positions[i] = 0
	}
	g.exhausted = true
	return out, true
}

// randomGenerator draws each dimension uniformly and independently.
type randomGenerator struct {
	ranges    []ParamRange
	rng       *rand.Rand
	remaining int
}

func newRandomGenerator(ranges []ParamRange, seed int64, iterations int) *randomGenerator {
	return &randomGenerator{
		ranges:    ranges,
		rng:       rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		remaining: iterations,
	}
}

func (g *randomGenerator) next() (map[string]any, bool) {
	if g.remaining <= 0 {
		return nil, false
	}
	g.remaining--

	out := make(map[string]any, len(g.ranges))
	for _, r := range g.ranges {
		switch r.Kind {
		case IntRange:
			lo, hi := int64(r.Low), int64(r.High)
			out[r.Name] = lo + g.rng.Int64N(hi-lo+1)
		case RealRange:
			out[r.Name] = r.Low + g.rng.Float64()*(r.High-r.Low)
		}
	}
	return out, true
}
