package render

import (
	"math"
	"strconv"
)

// ChartDimensions applies the width/height clamp rules used for canvas charts.
// Input: desired raw width (e.g., window width). Returns clamped width & height.
func ChartDimensions(rawW int) (int, int) {
	w := rawW
	if w < 800 {
		w = 800
	}
	h := int(float32(w) * 0.33)
	if h < 280 {
		h = 280
	}
	if h > 520 {
		h = 520
	}
	return w, h
}

// SurfaceHeight derives the on-screen height of a 3-D surface from the canvas
// chart height. Surfaces need more vertical room than flat charts.
// Rules: 1.5x the chart height, clamped between 360 and 640.
func SurfaceHeight(chartHeight int) int {
	h := chartHeight * 3 / 2
	if h < 360 {
		h = 360
	}
	if h > 640 {
		h = 640
	}
	return h
}

// round6 rounds to 6 decimal places to stabilize comparisons and labels.
func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// NumericTicks generates up to n tick marks spanning [min,max] using the
// 1,2,2.5,5 * 10^k step pattern. Label formatting is left to the caller.
func NumericTicks(min, max float64, n int) []float64 {
	if n < 2 || math.IsNaN(min) || math.IsNaN(max) {
		return nil
	}
	if max <= min {
		max = min + 1
	}
	span := max - min
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	candidates := []float64{1, 2, 2.5, 5, 10}
	bestStep := mag
	bestScore := math.MaxFloat64
	for _, c := range candidates {
		step := c * mag
		count := math.Ceil(span/step) + 1
		if count < 2 {
			count = 2
		}
		diff := math.Abs(count - float64(n))
		if diff < bestScore {
			bestScore = diff
			bestStep = step
		}
	}
	start := math.Floor(min/bestStep) * bestStep
	end := math.Ceil(max/bestStep) * bestStep
	var out []float64
	for v := start; v <= end+bestStep*0.5; v += bestStep {
		out = append(out, round6(v))
	}
	if len(out) < 2 {
		out = []float64{min, max}
	}
	return out
}

// FormatTick provides a compact axis label.
func FormatTick(v float64) string {
	av := math.Abs(v)
	switch {
	case av == 0:
		return "0"
	case av >= 100:
		return strconv.FormatInt(int64(math.Round(v)), 10)
	case av >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64)
	case av >= 1:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case av >= 0.01:
		return strconv.FormatFloat(v, 'f', 3, 64)
	default:
		return strconv.FormatFloat(v, 'f', 4, 64)
	}
}

// FormatCount labels integer-valued axes such as bar counts.
func FormatCount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	return FormatTick(v)
}
