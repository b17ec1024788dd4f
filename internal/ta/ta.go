package ta

import "math"

// PivotLevels computes classic floor-trader pivot supports and resistances
// from a completed bar. Returns NaN levels when the bar is degenerate
// (missing values or zero range).
func PivotLevels(high, low, close float64) (s1, s2, s3, r1, r2, r3 float64) {
	if math.IsNaN(high) || math.IsNaN(low) || math.IsNaN(close) || high == low {
		nan := math.NaN()
		return nan, nan, nan, nan, nan, nan
	}
	p := (high + low + close) / 3
	r1 = 2*p - low
	s1 = 2*p - high
	r2 = p + (high - low)
	s2 = p - (high - low)
	r3 = high + 2*(p-low)
	s3 = low - 2*(high-p)
	return
}
