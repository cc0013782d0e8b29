// Package chartspec turns backend payloads into renderer-agnostic chart
// specifications. Everything here is pure: no I/O, no rendering.
package chartspec

import (
	"fmt"

	"github.com/iafilius/MPEViewer/src/palette"
	"github.com/iafilius/MPEViewer/src/types"
)

// Kind selects the renderer family.
type Kind int

const (
	KindScatter Kind = iota
	KindBar
	KindSurface
)

func (k Kind) String() string {
	switch k {
	case KindScatter:
		return "scatter"
	case KindBar:
		return "bar"
	case KindSurface:
		return "surface"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Range is an inclusive axis range.
type Range struct {
	Min, Max float64
}

// Point is one plotted sample.
type Point struct {
	X, Y    float64
	Value   *float64
	Color   palette.Bucket
	Tooltip string
}

// Series is one legend entry. Scatter and surface series carry Points; bar
// series carry Values aligned with Spec.Categories.
type Series struct {
	Label       string
	Points      []Point
	Values      []float64
	Color       palette.Bucket
	PointRadius float64
}

// Spec describes what to draw.
type Spec struct {
	Kind   Kind
	Title  string
	Series []Series

	XLabel, YLabel, ZLabel string
	XRange, YRange         *Range

	// Categories are the x-axis labels of bar charts.
	Categories []string

	ShowLegend bool
	Stacked    bool
}

// PointCount returns the number of scatter/surface points over all series.
func (s Spec) PointCount() int {
	n := 0
	for _, sr := range s.Series {
		n += len(sr.Points)
	}
	return n
}

func toRange(r *types.Range) *Range {
	if r == nil {
		return nil
	}
	return &Range{Min: r[0], Max: r[1]}
}
