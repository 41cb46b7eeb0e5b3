// Package optim tunes controller parameters by exhaustive search.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/metrics"
	"github.com/san-kum/loopsim/internal/sim"
)

var (
	ErrNoCandidates  = errors.New("optim: no valid parameter combination")
	ErrUnknownMetric = errors.New("optim: unknown metric")
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d value ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Candidate is one evaluated point of the grid.
type Candidate struct {
	Params map[string]float64
	Value  float64
}

// Size returns the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search runs every grid point on top of base and returns the evaluated
// candidates ordered by ascending metric value, best first. Points whose
// configuration is invalid are skipped; NaN values rank last.
func (g *GridSearch) Search(ctx context.Context, base config.Config, metricName string, workers int) ([]Candidate, error) {
	points := make([]map[string]float64, 0, g.Size())
	g.searchRecursive(0, make(map[string]float64), &points)

	cfgs := make([]config.Config, 0, len(points))
	kept := make([]map[string]float64, 0, len(points))
	for _, p := range points {
		cfg := base
		params := make(map[string]interface{}, len(p))
		for k, v := range p {
			params[k] = v
		}
		if err := cfg.Apply(params); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			continue
		}
		cfgs = append(cfgs, cfg)
		kept = append(kept, p)
	}
	if len(cfgs) == 0 {
		return nil, ErrNoCandidates
	}

	outputs, err := sim.Batch(ctx, cfgs, workers, metrics.Default)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(outputs))
	for i, out := range outputs {
		val, ok := out.Result.Metrics[metricName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metricName)
		}
		if math.IsNaN(val) {
			val = math.Inf(1)
		}
		candidates[i] = Candidate{Params: kept[i], Value: val}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Value < candidates[j].Value
	})
	return candidates, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, points *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*points = append(*points, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(depth+1, newParams, points)
	}
}
