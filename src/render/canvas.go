package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	png "image/png"
	"math"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/iafilius/MPEViewer/src/chartspec"
	"github.com/iafilius/MPEViewer/src/export"
	"github.com/iafilius/MPEViewer/src/logging"
	"github.com/iafilius/MPEViewer/src/palette"
)

// ErrUnsupportedKind is returned when a renderer is asked to mount a chart
// kind it does not draw.
var ErrUnsupportedKind = errors.New("render: unsupported chart kind")

// CanvasRenderer draws scatter and stacked bar charts with go-chart.
type CanvasRenderer struct {
	// Hints adds a point/category count note at the bottom of each chart.
	Hints bool
}

// CanvasHandle is a mounted canvas chart. Its pixels are painted once at
// mount time; snapshots encode them as they are.
type CanvasHandle struct {
	mu   sync.Mutex
	spec chartspec.Spec
	img  image.Image
}

// Mount paints spec at w×h and returns the handle bound to the result.
func (r CanvasRenderer) Mount(spec chartspec.Spec, w, h int) (*CanvasHandle, error) {
	if spec.Kind != chartspec.KindScatter && spec.Kind != chartspec.KindBar {
		return nil, fmt.Errorf("%w: %s on canvas", ErrUnsupportedKind, spec.Kind)
	}
	return &CanvasHandle{spec: spec, img: r.Render(spec, w, h)}, nil
}

// Render paints spec and returns the image. Render errors yield a blank
// placeholder so callers always get something to show.
func (r CanvasRenderer) Render(spec chartspec.Spec, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		w, h = ChartDimensions(w)
	}
	var ch chart.Chart
	var err error
	switch spec.Kind {
	case chartspec.KindScatter:
		ch, err = scatterChart(spec, w, h)
	case chartspec.KindBar:
		ch, err = barChart(spec, w, h)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedKind, spec.Kind)
	}
	if err != nil {
		logging.Warnf("[render] %q: %v; showing blank fallback", spec.Title, err)
		return Annotate(blank(w, h), spec.Title+": no data")
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		logging.Warnf("[render] %q render error: %v; showing blank fallback", spec.Title, err)
		return Annotate(blank(w, h), spec.Title+": render failed")
	}
	img, err := png.Decode(&buf)
	if err != nil {
		logging.Warnf("[render] %q decode error: %v; showing blank fallback", spec.Title, err)
		return blank(w, h)
	}
	if r.Hints {
		return Annotate(img, hintFor(spec))
	}
	return img
}

func hintFor(spec chartspec.Spec) string {
	if spec.Kind == chartspec.KindBar {
		return fmt.Sprintf("%d time point(s), %d categories", len(spec.Categories), len(spec.Series))
	}
	return fmt.Sprintf("%d point(s) in %d series", spec.PointCount(), len(spec.Series))
}

// Spec returns the definition the handle was mounted with.
func (h *CanvasHandle) Spec() chartspec.Spec { return h.spec }

// Image returns the painted pixels, or nil once released.
func (h *CanvasHandle) Image() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.img
}

// Mounted reports whether the handle still holds its canvas.
func (h *CanvasHandle) Mounted() bool { return h.Image() != nil }

// Release unmounts the canvas. Later snapshots yield nothing.
func (h *CanvasHandle) Release() {
	h.mu.Lock()
	h.img = nil
	h.mu.Unlock()
}

// SnapshotPNG encodes the painted canvas at its native resolution.
func (h *CanvasHandle) SnapshotPNG() ([]byte, bool) {
	img := h.Image()
	if img == nil {
		return nil, false
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logging.Warnf("[render] snapshot %q: %v", h.spec.Title, err)
		return nil, false
	}
	return buf.Bytes(), true
}

// ExportChart tags the handle for the PDF exporter.
func (h *CanvasHandle) ExportChart() export.Chart { return export.Canvas{Source: h} }

// dotStyle renders points only, coloured one by one.
func dotStyle(radius float64, colors []drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    radius,
		DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
			if index >= 0 && index < len(colors) {
				return colors[index]
			}
			return palette.Gray.Color()
		},
	}
}

func chartPadding(legend bool) chart.Style {
	top := 14
	if legend {
		top = 44
	}
	return chart.Style{Padding: chart.Box{Top: top, Left: 16, Right: 16, Bottom: 28}}
}

// axisTicks returns ticks over [r.Min, r.Max]. go-chart widens the axis to the
// first and last tick, so the range is exactly the tick extent.
func axisTicks(r chartspec.Range, n int) []chart.Tick {
	vals := NumericTicks(r.Min, r.Max, n)
	ticks := make([]chart.Tick, 0, len(vals))
	for _, v := range vals {
		ticks = append(ticks, chart.Tick{Value: v, Label: FormatTick(v)})
	}
	return ticks
}

// dataRange returns the payload range when given, otherwise the padded data
// extent along one axis.
func dataRange(given *chartspec.Range, spec chartspec.Spec, pick func(chartspec.Point) float64) chartspec.Range {
	if given != nil && given.Max > given.Min {
		return *given
	}
	lo, hi := math.MaxFloat64, -math.MaxFloat64
	for _, s := range spec.Series {
		for _, p := range s.Points {
			v := pick(p)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return chartspec.Range{Min: 0, Max: 1}
	}
	if hi == lo {
		return chartspec.Range{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return chartspec.Range{Min: lo - pad, Max: hi + pad}
}

func scatterChart(spec chartspec.Spec, w, h int) (chart.Chart, error) {
	xr := dataRange(spec.XRange, spec, func(p chartspec.Point) float64 { return p.X })
	yr := dataRange(spec.YRange, spec, func(p chartspec.Point) float64 { return p.Y })
	series := make([]chart.Series, 0, len(spec.Series))
	var legend []legendEntry
	for _, s := range spec.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		colors := make([]drawing.Color, len(s.Points))
		for i, p := range s.Points {
			xs[i], ys[i] = p.X, p.Y
			colors[i] = p.Color.Color()
		}
		radius := s.PointRadius
		if radius <= 0 {
			radius = 4
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Label,
			Style:   dotStyle(radius, colors),
			XValues: xs,
			YValues: ys,
		})
		// the swatch takes the colour of the first point, as the web legend did
		legend = append(legend, legendEntry{Label: s.Label, Color: colors[0], Dot: true})
	}
	if len(series) == 0 {
		return chart.Chart{}, errors.New("no points to plot")
	}
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      w,
		Height:     h,
		Background: chartPadding(spec.ShowLegend),
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: &chart.ContinuousRange{Min: xr.Min, Max: xr.Max}, Ticks: axisTicks(xr, 9)},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: &chart.ContinuousRange{Min: yr.Min, Max: yr.Max}, Ticks: axisTicks(yr, 7)},
		Series:     series,
	}
	if spec.ShowLegend {
		ch.Elements = []chart.Renderable{topLegend(legend)}
	}
	return ch, nil
}

func barChart(spec chartspec.Spec, w, h int) (chart.Chart, error) {
	n := len(spec.Categories)
	if n == 0 || len(spec.Series) == 0 {
		return chart.Chart{}, errors.New("no bars to plot")
	}
	totals := make([]float64, n)
	for _, s := range spec.Series {
		if len(s.Values) != n {
			return chart.Chart{}, fmt.Errorf("series %q has %d values for %d categories", s.Label, len(s.Values), n)
		}
		for i, v := range s.Values {
			if v > 0 {
				totals[i] += v
			}
		}
	}
	maxTotal := 0.0
	for _, t := range totals {
		maxTotal = math.Max(maxTotal, t)
	}
	if maxTotal <= 0 {
		maxTotal = 1
	}
	yVals := NumericTicks(0, maxTotal, 6)
	top := yVals[len(yVals)-1]
	yTicks := make([]chart.Tick, 0, len(yVals))
	for _, v := range yVals {
		yTicks = append(yTicks, chart.Tick{Value: v, Label: FormatCount(v)})
	}
	// Categories sit at bucket centres; the unlabeled outer ticks pin the
	// axis to [0, n].
	xTicks := make([]chart.Tick, 0, n+2)
	xTicks = append(xTicks, chart.Tick{Value: 0})
	for i, c := range spec.Categories {
		xTicks = append(xTicks, chart.Tick{Value: float64(i) + 0.5, Label: c})
	}
	xTicks = append(xTicks, chart.Tick{Value: float64(n)})

	legend := make([]legendEntry, 0, len(spec.Series))
	for _, s := range spec.Series {
		legend = append(legend, legendEntry{Label: s.Label, Color: s.Color.Color()})
	}
	ch := chart.Chart{
		Title:      spec.Title,
		Width:      w,
		Height:     h,
		Background: chartPadding(spec.ShowLegend),
		XAxis:      chart.XAxis{Name: spec.XLabel, Range: &chart.ContinuousRange{Min: 0, Max: float64(n)}, Ticks: xTicks},
		YAxis:      chart.YAxis{Name: spec.YLabel, Range: &chart.ContinuousRange{Min: 0, Max: top}, Ticks: yTicks},
		// go-chart needs a series to lay out axes; this one draws nothing.
		Series: []chart.Series{chart.ContinuousSeries{
			Style:   chart.Style{StrokeWidth: chart.Disabled},
			XValues: []float64{0, float64(n)},
			YValues: []float64{0, top},
		}},
	}
	ch.Elements = []chart.Renderable{stackedBars(spec, n, top)}
	if spec.ShowLegend {
		ch.Elements = append(ch.Elements, topLegend(legend))
	}
	return ch, nil
}

// stackedBars draws one column per category, series stacked bottom-up in
// declared order, mapped onto the axes set up by barChart.
func stackedBars(spec chartspec.Spec, n int, top float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, _ chart.Style) {
		slot := float64(box.Width()) / float64(n)
		barW := slot * 0.6
		toY := func(v float64) int {
			return box.Bottom - int(v/top*float64(box.Height()))
		}
		for i := 0; i < n; i++ {
			left := box.Left + int(float64(i)*slot+(slot-barW)/2)
			right := left + int(barW)
			base := 0.0
			for _, s := range spec.Series {
				v := s.Values[i]
				if v <= 0 {
					continue
				}
				col := s.Color.Color()
				chart.Draw.Box(r, chart.Box{Top: toY(base + v), Left: left, Right: right, Bottom: toY(base)}, chart.Style{
					FillColor:   col,
					StrokeColor: col,
					StrokeWidth: 1,
				})
				base += v
			}
		}
	}
}

type legendEntry struct {
	Label string
	Color drawing.Color
	Dot   bool
}

// topLegend lays entries out in one centred row above the plot area.
func topLegend(entries []legendEntry) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		if len(entries) == 0 {
			return
		}
		style := chart.Style{FontSize: 9, FontColor: chart.ColorBlack}.InheritFrom(defaults)
		style.WriteTextOptionsToRenderer(r)
		const swatch, gap, spacing = 10, 4, 16
		total := 0
		widths := make([]int, len(entries))
		for i, e := range entries {
			widths[i] = r.MeasureText(e.Label).Width()
			total += swatch + gap + widths[i]
		}
		total += spacing * (len(entries) - 1)
		x := box.Left + (box.Width()-total)/2
		if x < box.Left {
			x = box.Left
		}
		y := box.Top - 8
		for i, e := range entries {
			sw := chart.Style{FillColor: e.Color, StrokeColor: e.Color, StrokeWidth: 1}
			if e.Dot {
				r.SetFillColor(e.Color)
				r.SetStrokeColor(e.Color)
				r.SetStrokeWidth(1)
				r.Circle(swatch/2, x+swatch/2, y-swatch/2)
				r.FillStroke()
			} else {
				chart.Draw.Box(r, chart.Box{Top: y - swatch, Left: x, Right: x + swatch, Bottom: y}, sw)
			}
			style.WriteTextOptionsToRenderer(r)
			r.Text(e.Label, x+swatch+gap, y)
			x += swatch + gap + widths[i] + spacing
		}
	}
}
