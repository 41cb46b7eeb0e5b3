package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/export"
	"github.com/san-kum/loopsim/internal/metrics"
	"github.com/san-kum/loopsim/internal/sim"
	"github.com/san-kum/loopsim/internal/storage"
	"github.com/san-kum/loopsim/internal/table"
	"github.com/san-kum/loopsim/internal/ui"
	"github.com/san-kum/loopsim/internal/viz"
)

// parseSets turns key=value flags into a parameter mapping.
func parseSets(values []string) (map[string]interface{}, error) {
	params := make(map[string]interface{}, len(values))
	for _, kv := range values {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: expected key=value, got %q", config.ErrInvalidConfig, kv)
		}
		params[key] = strings.TrimSpace(value)
	}
	return params, nil
}

// resolveConfig layers preset, config file, environment and --set flags.
func resolveConfig(process, presetName string) (*config.Config, error) {
	cfg, err := config.LoadPreset(configFile, process, presetName)
	if err != nil {
		return nil, err
	}

	overrides, err := parseSets(sets)
	if err != nil {
		return nil, err
	}
	if len(overrides) > 0 {
		if err := cfg.Apply(overrides); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	process := ""
	if len(args) > 0 {
		process = args[0]
	}

	cfg, err := resolveConfig(process, preset)
	if err != nil {
		return err
	}
	for _, line := range cfg.Summary() {
		ui.Debug("%s", line)
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
		ui.Info("Saved configuration to %s", saveConfig)
	}

	ui.Info("Running %s simulation (%d steps)...", cfg.Process, sim.StepCount(*cfg))
	start := time.Now()

	tbl, res, err := sim.Simulate(*cfg, metrics.Default(*cfg)...)
	if err != nil {
		return err
	}

	ui.Success("Completed %d steps in %v, %d rows after decimation", res.Steps, time.Since(start), tbl.Len())
	if res.DivergedAt >= 0 {
		ui.Warning("State became non-finite at step %d", res.DivergedAt)
	}
	if err := printMetrics(res.Metrics); err != nil {
		return err
	}

	meta := storage.Metadata{
		Process: cfg.Process,
		Preset:  preset,
		Steps:   res.Steps,
		Rows:    tbl.Len(),
		Config:  *cfg,
		Metrics: res.Metrics,
	}

	if !noSave {
		st := storage.InDir(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(meta, tbl)
		if err != nil {
			return err
		}
		meta.ID = id
		ui.Info("Run id: %s", id)
	}

	if output != "" {
		write, err := export.ByExtension(output, tbl, &meta)
		if err != nil {
			return err
		}
		if err := export.ToFile(output, write); err != nil {
			return err
		}
		ui.Info("Exported table to %s", output)
	}

	if plotRun {
		return printPlots(tbl, res.Controlled, res.Setpoint, res.Flows)
	}
	return nil
}

// printPlots charts the controlled variable against the setpoint, the
// control output and the flows in time order, then the main flow against
// the control output.
func printPlots(tbl *table.Table, controlled string, setpoint float64, flows []string) error {
	// decimated rows are ordered by the primary channel, not by time
	byTime := sortedBy(tbl, "t")

	opts := viz.DefaultPlotOptions()
	opts.ShowSetpoint = true
	opts.Setpoint = setpoint
	opts.Caption = fmt.Sprintf("%s vs setpoint %s", controlled, formatFloat(setpoint))

	graph, err := viz.Plot(byTime, controlled, opts)
	if err != nil {
		return err
	}
	ui.Printfln("%s\n", graph)

	opts = viz.DefaultPlotOptions()
	opts.Caption = "control output u"
	graph, err = viz.Plot(byTime, "u", opts)
	if err != nil {
		return err
	}
	ui.Printfln("%s\n", graph)

	if len(flows) == 0 {
		return nil
	}

	opts = viz.DefaultPlotOptions()
	opts.Caption = "flows"
	graph, err = viz.PlotColumns(byTime, flows, opts)
	if err != nil {
		return err
	}
	ui.Printfln("%s\n", graph)

	opts = viz.DefaultPlotOptions()
	opts.Caption = fmt.Sprintf("%s by increasing u", flows[0])
	graph, err = viz.Plot(sortedBy(tbl, "u"), flows[0], opts)
	if err != nil {
		return err
	}
	ui.Printfln("%s\n", graph)
	return nil
}

// sortedBy returns a copy of tbl ordered by column.
func sortedBy(tbl *table.Table, column string) *table.Table {
	tbl = tbl.Clone()
	if ci := tbl.Index(column); ci >= 0 {
		sort.SliceStable(tbl.Rows, func(i, j int) bool { return tbl.Rows[i][ci] < tbl.Rows[j][ci] })
	}
	return tbl
}

func comparePresets(cmd *cobra.Command, args []string) error {
	process := args[0]
	names := args[1:]
	if len(names) == 0 {
		names = config.ListPresets(process)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: %q", config.ErrUnknownProcess, process)
	}

	cfgs := make([]config.Config, 0, len(names))
	for _, name := range names {
		cfg, err := resolveConfig(process, name)
		if err != nil {
			return fmt.Errorf("preset %s: %w", name, err)
		}
		cfgs = append(cfgs, *cfg)
	}

	ui.Info("Comparing %d configurations of %s...", len(cfgs), process)
	outputs, err := sim.Batch(context.Background(), cfgs, workers, metrics.Default)
	if err != nil {
		return err
	}

	metricNames := []string{"iae", "settling_time", "saturation", "control_effort"}
	headers := append([]string{"Preset", "Steps", "Rows", "Final"}, metricNames...)
	rows := make([][]string, 0, len(outputs))
	for i, out := range outputs {
		value, _ := out.Result.Value(out.Result.Final(), out.Result.Controlled)
		row := []string{names[i], fmt.Sprint(out.Result.Steps), fmt.Sprint(out.Table.Len()), formatFloat(value)}
		for _, m := range metricNames {
			row = append(row, formatFloat(out.Result.Metrics[m]))
		}
		rows = append(rows, row)
	}
	return printTable(headers, rows)
}
