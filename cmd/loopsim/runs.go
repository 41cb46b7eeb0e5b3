package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/export"
	"github.com/san-kum/loopsim/internal/process"
	"github.com/san-kum/loopsim/internal/storage"
	"github.com/san-kum/loopsim/internal/ui"
	"github.com/san-kum/loopsim/internal/viz"
)

func openStore() *storage.Store {
	return storage.InDir(dataDir)
}

func loadRun(id string) (*storage.Run, error) {
	run, err := openStore().Load(id)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return run, nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	processes := config.Processes()
	if len(args) > 0 {
		processes = args
	}

	rows := make([][]string, 0)
	for _, p := range processes {
		presets := config.ListPresets(p)
		if len(presets) == 0 {
			ui.Warning("no presets for process: %s", p)
			continue
		}
		for _, name := range presets {
			rows = append(rows, []string{p, name})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return printTable([]string{"Process", "Preset"}, rows)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		ui.Info("no runs found")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.Process,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprint(run.Steps),
			fmt.Sprint(run.Rows),
		})
	}
	return printTable([]string{"ID", "Process", "Preset", "Time", "Steps", "Rows"}, rows)
}

func showRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}

	ui.Printfln("Run: %s (%s)", run.ID, run.Timestamp.Format("2006-01-02 15:04:05"))
	for _, line := range run.Config.Summary() {
		ui.Printfln("  %s", line)
	}
	ui.Printfln("")

	if err := printMetrics(run.Metrics); err != nil {
		return err
	}

	n := run.Table.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]string, 0, n)
	for _, values := range run.Table.Rows[:n] {
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatFloat(v)
		}
		rows = append(rows, row)
	}
	if err := printTable(run.Table.Columns, rows); err != nil {
		return err
	}
	if n < run.Table.Len() {
		ui.Info("%d of %d rows shown, use --limit 0 for all", n, run.Table.Len())
	}
	return nil
}

// modelOf rebuilds the process model of a stored run for its channel names
// and setpoint.
func modelOf(run *storage.Run) (process.Model, error) {
	return process.New(run.Config, process.NewCoefficients(run.Config))
}

func plotStoredRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	model, err := modelOf(run)
	if err != nil {
		return err
	}

	ui.Printfln("Run: %s", run.ID)
	ui.Printfln("Process: %s, %d rows\n", run.Process, run.Table.Len())
	return printPlots(run.Table, model.Controlled(), model.Setpoint(), model.Flows())
}

func viewRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	model, err := modelOf(run)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s run %s", run.Process, run.ID)
	v := viz.NewViewer(title, run.Table, model.Primary(), run.Config.Summary())
	return viz.RunViewer(v.WithMetrics(run.Metrics))
}

func exportRun(cmd *cobra.Command, args []string) error {
	run, err := loadRun(args[0])
	if err != nil {
		return err
	}
	path := args[1]

	write, err := export.ByExtension(path, run.Table, &run.Metadata)
	if err != nil {
		return err
	}
	if err := export.ToFile(path, write); err != nil {
		return err
	}
	ui.Success("Exported run %s to %s", run.ID, path)
	return nil
}

func deleteRun(cmd *cobra.Command, args []string) error {
	if err := openStore().Delete(args[0]); err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	ui.Success("Deleted run %s", args[0])
	return nil
}
