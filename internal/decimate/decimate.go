// Package decimate compresses a simulated time series into a compact table.
//
// Rows are bucketed by round(value/tolerance) of a primary channel; each
// bucket is replaced by the element-wise maximum of its rows and buckets are
// emitted in ascending key order. Temporal order is therefore not preserved.
// The first input row (the initial condition) is prepended to the result and
// every value is rounded to round(log10(1/tolerance)) decimal places.
//
// Decimating an output again with the same tolerance returns it unchanged
// only when the tolerance is a power of ten. Otherwise the rounding can
// move values of neighbouring buckets onto the same key: at 0.5 values are
// rounded to integers, so 0.6 and 1.4 (keys 1 and 3) both become 1 and
// merge on the second pass.
package decimate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/loopsim/internal/table"
	"github.com/san-kum/loopsim/internal/util"
)

var (
	ErrEmptyTable       = errors.New("decimate: table has no rows")
	ErrInvalidTolerance = errors.New("decimate: tolerance must be a positive number")
	ErrUnknownColumn    = errors.New("decimate: unknown primary column")
)

type group struct {
	key float64
	row []float64
}

// Decimate reduces full. The input is not modified.
func Decimate(full *table.Table, primary string, tolerance float64) (*table.Table, error) {
	if !(tolerance > 0) || math.IsInf(tolerance, 0) || math.IsInf(1/tolerance, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTolerance, tolerance)
	}
	if full == nil || full.Len() == 0 {
		return nil, ErrEmptyTable
	}
	idx := full.Index(primary)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, primary)
	}

	scale := 1 / tolerance
	byKey := make(map[float64]*group)
	for _, row := range full.Rows {
		key := math.RoundToEven(row[idx] * scale)
		if math.IsNaN(key) {
			continue
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, row: make([]float64, len(row))}
			copy(g.row, row)
			byKey[key] = g
			continue
		}
		for j, v := range row {
			g.row[j] = maxSkipNaN(g.row[j], v)
		}
	}

	groups := make([]*group, 0, len(byKey))
	for _, g := range byKey {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].key < groups[j].key })

	places := util.Decimals(tolerance)
	out := table.New(full.Columns, len(groups)+1)
	out.Append(roundRow(full.Rows[0], places))
	for _, g := range groups {
		out.Append(roundRow(g.row, places))
	}
	return out, nil
}

func maxSkipNaN(a, b float64) float64 {
	if math.IsNaN(a) {
		return b
	}
	if math.IsNaN(b) {
		return a
	}
	return math.Max(a, b)
}

func roundRow(row []float64, places int) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = util.Round(v, places)
	}
	return out
}
