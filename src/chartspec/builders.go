package chartspec

import (
	"fmt"

	"github.com/iafilius/MPEViewer/src/palette"
	"github.com/iafilius/MPEViewer/src/types"
)

const (
	multiSeriesRadius  = 4
	singleSeriesRadius = 5

	coordinateX = "X (coordinate)"
	coordinateY = "Y (coordinate)"
	thresholdZ  = "Threshold (dB)"
)

// Tooltip formats the hover text of a point. Null measurements print as NA.
func Tooltip(x, y float64, v *float64) string {
	val := "NA"
	if v != nil {
		val = fmt.Sprintf("%.1f", *v)
	}
	return fmt.Sprintf("(%.1f, %.1f)  value: %s dB", x, y, val)
}

func buildPoints(pts []types.Point, key string, classify palette.Classifier) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		v := p.Measurement(key)
		out[i] = Point{
			X:       p.X,
			Y:       p.Y,
			Value:   v,
			Color:   classify(v),
			Tooltip: Tooltip(p.X, p.Y, v),
		}
	}
	return out
}

// ScatterFromDatasets builds one scatter series per backend dataset, coloured
// point by point.
func ScatterFromDatasets(p *types.DatasetsPayload, title, key string, classify palette.Classifier) (Spec, error) {
	if p == nil {
		return Spec{}, fmt.Errorf("scatter %q: empty payload", title)
	}
	series := make([]Series, 0, len(p.Datasets))
	for _, d := range p.Datasets {
		series = append(series, Series{
			Label:       d.Label,
			Points:      buildPoints(d.Points, key, classify),
			PointRadius: multiSeriesRadius,
		})
	}
	xl, yl := p.XLabel, p.YLabel
	if xl == "" {
		xl = "X"
	}
	if yl == "" {
		yl = "Y"
	}
	return Spec{
		Kind:       KindScatter,
		Title:      title,
		Series:     series,
		XLabel:     xl,
		YLabel:     yl,
		XRange:     toRange(p.XRange),
		YRange:     toRange(p.YRange),
		ShowLegend: true,
	}, nil
}

// ScatterFromPoints flattens a single point list into one series. The legend
// is suppressed since it would only repeat the title.
func ScatterFromPoints(p *types.PointsPayload, title, key string, classify palette.Classifier) (Spec, error) {
	if p == nil {
		return Spec{}, fmt.Errorf("scatter %q: empty payload", title)
	}
	return Spec{
		Kind:  KindScatter,
		Title: title,
		Series: []Series{{
			Label:       title,
			Points:      buildPoints(p.Points, key, classify),
			PointRadius: singleSeriesRadius,
		}},
		XLabel:     coordinateX,
		YLabel:     coordinateY,
		XRange:     toRange(p.XRange),
		YRange:     toRange(p.YRange),
		ShowLegend: false,
	}, nil
}

// StackedBar builds the four fixed category series of a count chart.
func StackedBar(p *types.BarsPayload, title string) (Spec, error) {
	if p == nil {
		return Spec{}, fmt.Errorf("bar %q: empty payload", title)
	}
	if err := p.Validate(len(palette.BarSeries)); err != nil {
		return Spec{}, err
	}
	series := make([]Series, len(palette.BarSeries))
	for i, col := range palette.BarSeries {
		row := make([]float64, len(p.Matrix[i]))
		copy(row, p.Matrix[i])
		series[i] = Series{Label: p.SeriesLabels[i], Values: row, Color: col}
	}
	cats := make([]string, len(p.XLabels))
	copy(cats, p.XLabels)
	return Spec{
		Kind:       KindBar,
		Title:      title,
		Series:     series,
		YLabel:     "Counts",
		Categories: cats,
		ShowLegend: true,
		Stacked:    true,
	}, nil
}

// SurfaceFromDataset builds a 3-D threshold surface of one dataset. Points
// without a measurement cannot be placed on the z axis and are left out.
func SurfaceFromDataset(d types.Dataset, title, key string) (Spec, error) {
	pts := make([]Point, 0, len(d.Points))
	for _, p := range d.Points {
		v := p.Measurement(key)
		if v == nil {
			continue
		}
		pts = append(pts, Point{X: p.X, Y: p.Y, Value: v, Tooltip: Tooltip(p.X, p.Y, v)})
	}
	if len(pts) < 3 {
		return Spec{}, fmt.Errorf("surface %q: need at least 3 measured points, got %d", title, len(pts))
	}
	return Spec{
		Kind:   KindSurface,
		Title:  title,
		Series: []Series{{Label: d.Label, Points: pts}},
		XLabel: coordinateX,
		YLabel: coordinateY,
		ZLabel: thresholdZ,
	}, nil
}
