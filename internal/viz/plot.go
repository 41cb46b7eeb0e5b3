package viz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/loopsim/internal/table"
)

var ErrNoData = errors.New("viz: nothing to plot")

type PlotOptions struct {
	Height  int
	Width   int
	Caption string

	// ShowSetpoint draws Setpoint as a second series.
	ShowSetpoint bool
	Setpoint     float64
}

func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Height: 10, Width: 80}
}

// Plot charts one column of tbl in row order.
func Plot(tbl *table.Table, column string, opts PlotOptions) (string, error) {
	values := tbl.Column(column)
	if values == nil {
		return "", fmt.Errorf("viz: unknown column %q", column)
	}
	if len(values) == 0 {
		return "", ErrNoData
	}

	caption := opts.Caption
	if caption == "" {
		caption = column
	}

	options := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	}

	if !opts.ShowSetpoint {
		return asciigraph.Plot(values, options...), nil
	}

	target := make([]float64, len(values))
	for i := range target {
		target[i] = opts.Setpoint
	}
	options = append(options, asciigraph.SeriesColors(seriesColors[:2]...))
	return asciigraph.PlotMany([][]float64{values, target}, options...), nil
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Default,
	asciigraph.Red,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Yellow,
}

// PlotColumns charts several columns of tbl on shared axes, in row order.
// The caption lists the series with their colors.
func PlotColumns(tbl *table.Table, columns []string, opts PlotOptions) (string, error) {
	if len(columns) == 0 {
		return "", ErrNoData
	}
	if len(columns) > len(seriesColors) {
		return "", fmt.Errorf("viz: at most %d series, got %d", len(seriesColors), len(columns))
	}

	series := make([][]float64, len(columns))
	labels := make([]string, len(columns))
	for i, c := range columns {
		values := tbl.Column(c)
		if values == nil {
			return "", fmt.Errorf("viz: unknown column %q", c)
		}
		if len(values) == 0 {
			return "", ErrNoData
		}
		series[i] = values
		labels[i] = fmt.Sprintf("%s (%s)", c, colorNames[i])
	}

	caption := strings.Join(labels, ", ")
	if opts.Caption != "" {
		caption = opts.Caption + ": " + caption
	}

	return asciigraph.PlotMany(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(seriesColors[:len(columns)]...),
	), nil
}

var colorNames = []string{"default", "red", "green", "blue", "yellow"}
