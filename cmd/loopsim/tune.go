package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/loopsim/internal/automation"
	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/optim"
	"github.com/san-kum/loopsim/internal/ui"
)

// parseGrid turns key=v1,v2 flags into parameter names and value ranges.
func parseGrid(values []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(values))
	ranges := make([][]float64, 0, len(values))
	for _, kv := range values {
		key, list, ok := strings.Cut(kv, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, nil, fmt.Errorf("%w: expected key=v1,v2,..., got %q", config.ErrInvalidConfig, kv)
		}
		var r []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s: %v", config.ErrInvalidConfig, key, err)
			}
			r = append(r, v)
		}
		names = append(names, key)
		ranges = append(ranges, r)
	}
	return names, ranges, nil
}

func tune(cmd *cobra.Command, args []string) error {
	process := ""
	if len(args) > 0 {
		process = args[0]
	}
	base, err := resolveConfig(process, preset)
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(grid)
	if err != nil {
		return err
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ui.Info("Searching %d combinations of %s for minimal %s...", search.Size(), strings.Join(names, ", "), metricName)
	candidates, err := search.Search(context.Background(), *base, metricName, workers)
	if err != nil {
		return err
	}
	if skipped := search.Size() - len(candidates); skipped > 0 {
		ui.Warning("Skipped %d invalid combinations", skipped)
	}

	n := top
	if n <= 0 || n > len(candidates) {
		n = len(candidates)
	}
	headers := append([]string{"#"}, names...)
	headers = append(headers, metricName)
	rows := make([][]string, 0, n)
	for i, c := range candidates[:n] {
		row := []string{fmt.Sprint(i + 1)}
		for _, name := range names {
			row = append(row, formatFloat(c.Params[name]))
		}
		row = append(row, formatFloat(c.Value))
		rows = append(rows, row)
	}
	return printTable(headers, rows)
}

func sweep(cmd *cobra.Command, args []string) error {
	process := ""
	if len(args) > 0 {
		process = args[0]
	}
	base, err := resolveConfig(process, preset)
	if err != nil {
		return err
	}

	sw := &automation.ParameterSweep{
		Base:      *base,
		ParamName: strings.ToLower(sweepParam),
		ParamMin:  sweepFrom,
		ParamMax:  sweepTo,
		NumSteps:  sweepSteps,
		Workers:   workers,
	}

	ui.Info("Sweeping %s over %d values...", sw.ParamName, len(sw.Values()))
	results, err := automation.RunSweep(context.Background(), sw)
	if err != nil {
		return err
	}

	metricNames := []string{"iae", "settling_time", "saturation"}
	headers := append([]string{sw.ParamName, "Final", "Saturated"}, metricNames...)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{formatFloat(r.ParamValue), formatFloat(r.Final), fmt.Sprint(r.Saturated)}
		for _, m := range metricNames {
			row = append(row, formatFloat(r.Metrics[m]))
		}
		rows = append(rows, row)
	}
	return printTable(headers, rows)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := openStore()
	if err := st.Init(); err != nil {
		return err
	}

	ui.Info("Running scenario %s (%d steps)...", sc.Name, len(sc.Steps))
	results, err := automation.RunScenario(context.Background(), sc, st)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		res := r.Output.Result
		final, _ := res.Value(res.Final(), res.Controlled)
		rows = append(rows, []string{
			r.Name,
			res.Process,
			fmt.Sprint(res.Steps),
			fmt.Sprint(r.Output.Table.Len()),
			formatFloat(final),
			formatFloat(res.Metrics["iae"]),
			r.ID,
		})
	}
	return printTable([]string{"Step", "Process", "Steps", "Rows", "Final", "iae", "Run id"}, rows)
}
