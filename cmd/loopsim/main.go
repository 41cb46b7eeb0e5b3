package main

import (
	"bytes"
	"os"
	"sort"
	"strconv"

	"github.com/mgutz/ansi"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/ui"
)

var (
	dataDir    string
	configFile string
	verbose    bool
	noColor    bool

	preset     string
	sets       []string
	noSave     bool
	output     string
	plotRun    bool
	saveConfig string
	workers    int

	serveAddr string
	limit     int

	grid       []string
	metricName string
	top        int

	sweepParam string
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
)

// main registers the commands and flags of the loopsim CLI and executes the
// root command, exiting with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "loopsim",
		Short: "closed-loop PID process simulator",
		Long: `loopsim simulates a water tank or a hydro turbine under discrete PID
control and stores a decimated table of the run.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupUi()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir(), "data directory")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./loopsim.yaml or $HOME/loopsim.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "More verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable all terminal output coloration")

	runCmd := &cobra.Command{
		Use:   "run [process]",
		Short: "run a simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVarP(&output, "output", "o", "", "export the table to a .csv or .json file")
	runCmd.Flags().BoolVar(&plotRun, "plot", false, "plot the controlled variable")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved configuration to a yaml file")

	compareCmd := &cobra.Command{
		Use:   "compare [process] [preset...]",
		Short: "run several presets of a process side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  comparePresets,
	}
	compareCmd.Flags().StringArrayVar(&sets, "set", nil, "override a parameter of every preset (key=value)")
	compareCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets [process]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&limit, "limit", 50, "maximum number of rows to print (0 for all)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotStoredRun,
	}

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "browse a stored run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [file]",
		Short: "export a stored run to a .csv or .json file",
		Args:  cobra.ExactArgs(2),
		RunE:  exportRun,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  deleteRun,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [process]",
		Short: "grid search PID parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tune,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&grid, "grid", nil, "parameter values to search (key=v1,v2,...), may be repeated")
	tuneCmd.Flags().StringVar(&metricName, "metric", "iae", "metric to minimize")
	tuneCmd.Flags().IntVar(&top, "top", 5, "number of candidates to print")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")
	_ = tuneCmd.MarkFlagRequired("grid")

	sweepCmd := &cobra.Command{
		Use:   "sweep [process]",
		Short: "sweep one parameter over a range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "kp", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 1, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (default GOMAXPROCS)")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the simulations of a YAML scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve simulations over HTTP",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(runCmd, compareCmd, presetsCmd, listCmd, showCmd, plotCmd, viewCmd, exportCmd, deleteCmd, tuneCmd, sweepCmd, scenarioCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "start from a preset configuration")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a parameter (key=value), may be repeated")
}

func setupUi() {
	ui.SetDebugEnabled(verbose)

	if noColor {
		pterm.DisableColor()
	}
}

func tableConfig() *table.Config {
	return &table.Config{
		ShowIndex:       false,
		Color:           !noColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	}
}

func printTable(headers []string, rows [][]string) error {
	tab := table.Table{
		Headers: headers,
		Rows:    rows,
	}
	var buf bytes.Buffer
	if err := tab.WriteTable(&buf, tableConfig()); err != nil {
		return err
	}
	ui.Printfln("%s", buf.String())
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func printMetrics(values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, formatFloat(values[name])})
	}
	return printTable([]string{"Metric", "Value"}, rows)
}
