package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/loopsim/internal/config"
)

// Batch simulates each configuration independently on at most workers
// goroutines (GOMAXPROCS when workers <= 0). Outputs keep the order of
// cfgs. The first failure cancels the remaining runs and is returned as a
// *BatchError. The undecimated series of each run is dropped once its
// table and metrics are built.
func Batch(ctx context.Context, cfgs []config.Config, workers int, metrics MetricSet) ([]*Output, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	outputs := make([]*Output, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var ms []Metric
			if metrics != nil {
				ms = metrics(cfg)
			}

			tbl, res, err := Simulate(cfg, ms...)
			if err != nil {
				return &BatchError{Index: i, Process: cfg.Process, Wrapped: err}
			}
			res.DropRecords()
			outputs[i] = &Output{Config: cfg, Table: tbl, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
