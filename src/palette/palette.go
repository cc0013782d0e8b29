// Package palette maps measurements to the discrete colour buckets used by the
// scatter and bar charts, and provides the continuous scale of the 3-D surface.
package palette

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Bucket is a named palette entry.
type Bucket string

const (
	Gray   Bucket = "gray"
	Black  Bucket = "black"
	Red    Bucket = "red"
	Orange Bucket = "orange"
	Yellow Bucket = "yellow"
	Green  Bucket = "green"
	Blue   Bucket = "blue"
)

// Classifier maps a nullable measurement to a bucket.
type Classifier func(v *float64) Bucket

var bucketColors = map[Bucket]drawing.Color{
	// semi-transparent neutral used for "no data"
	Gray:   {R: 150, G: 150, B: 150, A: 102},
	Black:  {R: 0, G: 0, B: 0, A: 255},
	Red:    {R: 255, G: 0, B: 0, A: 255},
	Orange: {R: 255, G: 165, B: 0, A: 255},
	Yellow: {R: 255, G: 255, B: 0, A: 255},
	Green:  {R: 0, G: 128, B: 0, A: 255},
	Blue:   {R: 0, G: 0, B: 255, A: 255},
}

// Color returns the RGBA colour of the bucket. Unknown buckets render gray.
func (b Bucket) Color() drawing.Color {
	if c, ok := bucketColors[b]; ok {
		return c
	}
	return bucketColors[Gray]
}

// ByValue classifies absolute threshold values (dB).
func ByValue(v *float64) Bucket {
	if v == nil || math.IsNaN(*v) {
		return Gray
	}
	switch x := *v; {
	case x < 0:
		return Black
	case x < 13:
		return Red
	case x <= 23:
		return Orange
	default:
		return Green
	}
}

// ByRegression classifies point-wise regression slopes.
func ByRegression(v *float64) Bucket { return bySignedChange(v) }

// ByDelta classifies changes against the baseline.
func ByDelta(v *float64) Bucket { return bySignedChange(v) }

func bySignedChange(v *float64) Bucket {
	if v == nil || math.IsNaN(*v) {
		return Gray
	}
	switch x := *v; {
	case x >= 7:
		return Blue
	case x >= 2:
		return Green
	case x >= -2:
		return Yellow
	case x >= -7:
		return Orange
	default:
		return Red
	}
}

// BarSeries is the fixed palette of the four stacked bar categories, in
// declared order.
var BarSeries = [4]Bucket{Green, Orange, Red, Black}

// Stop is one entry of a continuous colour scale.
type Stop struct {
	At    float64
	Color drawing.Color
}

// SurfaceScale colours the 3-D threshold surface from low (dark red) to high
// (dark green).
var SurfaceScale = []Stop{
	{0.00, drawing.ColorFromHex("8B0000")},
	{0.25, drawing.ColorFromHex("FF7F00")},
	{0.50, drawing.ColorFromHex("FFFF00")},
	{0.75, drawing.ColorFromHex("00AA00")},
	{1.00, drawing.ColorFromHex("006400")},
}

// Interpolate returns the colour at t in [0,1] on the scale; t is clamped.
func Interpolate(scale []Stop, t float64) drawing.Color {
	if len(scale) == 0 {
		return bucketColors[Gray]
	}
	if math.IsNaN(t) || t <= scale[0].At {
		return scale[0].Color
	}
	last := scale[len(scale)-1]
	if t >= last.At {
		return last.Color
	}
	for i := 1; i < len(scale); i++ {
		hi := scale[i]
		if t > hi.At {
			continue
		}
		lo := scale[i-1]
		f := (t - lo.At) / (hi.At - lo.At)
		return drawing.Color{
			R: lerp8(lo.Color.R, hi.Color.R, f),
			G: lerp8(lo.Color.G, hi.Color.G, f),
			B: lerp8(lo.Color.B, hi.Color.B, f),
			A: lerp8(lo.Color.A, hi.Color.A, f),
		}
	}
	return last.Color
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
