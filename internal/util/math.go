package util

import "math"

// Div divides a by b and returns 0 when b is zero.
// Zero denominators are legitimate for several model parameters (Ti, A, S,
// u_max-u_min), so the quotient term simply drops out.
func Div(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Clamp restricts value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// Decimals returns the number of decimal places implied by a tolerance,
// i.e. round(log10(1/tolerance)). Tolerances above 1 yield negative values.
func Decimals(tolerance float64) int {
	return int(math.RoundToEven(math.Log10(1 / tolerance)))
}

// Round rounds value half-to-even at the given number of decimal places.
// Negative places round to tens, hundreds, ... When the scaling overflows
// the value is returned unchanged.
func Round(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return value
	}
	var rounded float64
	if places >= 0 {
		scale := math.Pow(10, float64(places))
		scaled := value * scale
		if !IsFinite(scaled) {
			return value
		}
		rounded = math.RoundToEven(scaled) / scale
	} else {
		scale := math.Pow(10, -float64(places))
		if !IsFinite(scale) {
			return value
		}
		rounded = math.RoundToEven(value/scale) * scale
	}
	if rounded == 0 {
		// drop negative zero
		return 0
	}
	return rounded
}

// IsFinite reports whether value is neither NaN nor infinite.
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
