package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	png "image/png"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/iafilius/MPEViewer/src/chartspec"
	"github.com/iafilius/MPEViewer/src/export"
	"github.com/iafilius/MPEViewer/src/logging"
	"github.com/iafilius/MPEViewer/src/palette"
)

// Off-screen export geometry of surfaces: logical size and pixel density.
const (
	SurfaceExportWidth  = 1400
	SurfaceExportHeight = 900
	SurfaceExportScale  = 2
)

// ErrReleased is reported by snapshots of handles unmounted mid-render.
var ErrReleased = errors.New("render: handle released")

// SurfaceRenderer draws 3-D threshold surfaces with gg.
type SurfaceRenderer struct {
	// Azimuth and Elevation of the camera in degrees. Zero means 45 and 30.
	Azimuth, Elevation float64
	// Resolution caps the mesh size along each axis when the samples do not
	// sit on a regular grid. Zero means 40.
	Resolution int
}

// SurfaceHandle is a mounted surface. The preview is painted at mount time;
// export snapshots are re-rendered off-screen at export geometry.
type SurfaceHandle struct {
	r        SurfaceRenderer
	spec     chartspec.Spec
	mu       sync.Mutex
	preview  image.Image
	released atomic.Bool
}

// Mount paints the preview of spec at w×h.
func (r SurfaceRenderer) Mount(spec chartspec.Spec, w, h int) (*SurfaceHandle, error) {
	if spec.Kind != chartspec.KindSurface {
		return nil, fmt.Errorf("%w: %s on surface", ErrUnsupportedKind, spec.Kind)
	}
	if w <= 0 || h <= 0 {
		var ch int
		w, ch = ChartDimensions(w)
		h = SurfaceHeight(ch)
	}
	img, err := r.Render(spec, w, h, 1)
	if err != nil {
		logging.Warnf("[render] surface %q: %v; showing blank fallback", spec.Title, err)
		img = Annotate(blank(w, h), spec.Title+": no surface")
	}
	return &SurfaceHandle{r: r, spec: spec, preview: img}, nil
}

// Spec returns the definition the handle was mounted with.
func (h *SurfaceHandle) Spec() chartspec.Spec { return h.spec }

// Image returns the on-screen preview, or nil once released.
func (h *SurfaceHandle) Image() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.preview
}

// Mounted reports whether the handle is still on screen.
func (h *SurfaceHandle) Mounted() bool { return !h.released.Load() }

// Release unmounts the surface. Snapshots started afterwards yield nothing.
func (h *SurfaceHandle) Release() {
	h.released.Store(true)
	h.mu.Lock()
	h.preview = nil
	h.mu.Unlock()
}

// SnapshotPNGAsync renders the export copy on its own goroutine. The channel
// receives exactly one Snapshot; it is nil when the handle is released.
func (h *SurfaceHandle) SnapshotPNGAsync() <-chan export.Snapshot {
	if h.released.Load() {
		return nil
	}
	ch := make(chan export.Snapshot, 1)
	go func() {
		defer logging.TimeTrack(time.Now(), "surface snapshot "+h.spec.Title)
		img, err := h.r.Render(h.spec, SurfaceExportWidth, SurfaceExportHeight, SurfaceExportScale)
		if err != nil {
			ch <- export.Snapshot{Err: err}
			return
		}
		if h.released.Load() {
			ch <- export.Snapshot{Err: ErrReleased}
			return
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			ch <- export.Snapshot{Err: err}
			return
		}
		ch <- export.Snapshot{PNG: buf.Bytes()}
	}()
	return ch
}

// ExportChart tags the handle for the PDF exporter.
func (h *SurfaceHandle) ExportChart() export.Chart { return export.Surface{Source: h} }

// Render draws spec on a w×h logical canvas at the given pixel density.
func (r SurfaceRenderer) Render(spec chartspec.Spec, w, h int, scale float64) (image.Image, error) {
	if scale <= 0 {
		scale = 1
	}
	res := r.Resolution
	if res <= 0 {
		res = 40
	}
	var pts []chartspec.Point
	for _, s := range spec.Series {
		for _, p := range s.Points {
			if p.Value != nil && !math.IsNaN(*p.Value) {
				pts = append(pts, p)
			}
		}
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("surface needs at least 3 measured points, got %d", len(pts))
	}
	g := buildGrid(pts, res)
	az, el := r.Azimuth, r.Elevation
	if az == 0 {
		az = 45
	}
	if el == 0 {
		el = 30
	}

	dc := gg.NewContext(int(float64(w)*scale), int(float64(h)*scale))
	dc.Scale(scale, scale)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	const top, bottom, left, barW = 48.0, 36.0, 24.0, 120.0
	plotW := float64(w) - left - barW
	plotH := float64(h) - top - bottom
	pr := projector{
		x0: g.xs[0], x1: g.xs[len(g.xs)-1],
		y0: g.ys[0], y1: g.ys[len(g.ys)-1],
		z0: g.zmin, z1: g.zmax,
		cx: left + plotW/2, cy: top + plotH*0.62,
		sx: plotW * 0.36, sy: plotH * 0.34, sz: plotH * 0.5,
	}
	pr.setAngles(az, el)

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(spec.Title, float64(w)/2, 24, 0.5, 0.5)
	drawFloor(dc, pr, spec)
	drawMesh(dc, pr, g)
	drawZAxis(dc, pr, spec.ZLabel)
	drawColorbar(dc, float64(w)-barW+30, top+10, 18, plotH-20, g.zmin, g.zmax)
	return dc.Image(), nil
}

type surfaceGrid struct {
	xs, ys     []float64
	z          [][]float64 // z[j][i] at (xs[i], ys[j]); NaN where unknown
	zmin, zmax float64
}

// buildGrid places samples on a mesh. Samples already on a regular grid keep
// their positions; cells without a sample are filled by inverse distance
// weighting unless they lie beyond the sampled field.
func buildGrid(pts []chartspec.Point, res int) surfaceGrid {
	xs := uniqueSorted(pts, func(p chartspec.Point) float64 { return p.X })
	ys := uniqueSorted(pts, func(p chartspec.Point) float64 { return p.Y })
	if len(xs) > 2*res || len(xs) < 2 {
		xs = linspace(xs[0], xs[len(xs)-1], res)
	}
	if len(ys) > 2*res || len(ys) < 2 {
		ys = linspace(ys[0], ys[len(ys)-1], res)
	}
	exact := make(map[[2]float64]float64, len(pts))
	for _, p := range pts {
		exact[[2]float64{round6(p.X), round6(p.Y)}] = *p.Value
	}
	stepX := (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1)
	stepY := (ys[len(ys)-1] - ys[0]) / float64(len(ys)-1)
	reach := 1.5 * math.Hypot(stepX, stepY)

	g := surfaceGrid{xs: xs, ys: ys, zmin: math.Inf(1), zmax: math.Inf(-1)}
	g.z = make([][]float64, len(ys))
	for j, y := range ys {
		g.z[j] = make([]float64, len(xs))
		for i, x := range xs {
			v, ok := exact[[2]float64{round6(x), round6(y)}]
			if !ok {
				v = idw(pts, x, y, reach)
			}
			g.z[j][i] = v
			if !math.IsNaN(v) {
				g.zmin = math.Min(g.zmin, v)
				g.zmax = math.Max(g.zmax, v)
			}
		}
	}
	for _, p := range pts {
		g.zmin = math.Min(g.zmin, *p.Value)
		g.zmax = math.Max(g.zmax, *p.Value)
	}
	return g
}

// idw interpolates at (x, y) from samples within reach; NaN when none is.
func idw(pts []chartspec.Point, x, y, reach float64) float64 {
	var num, den float64
	nearest := math.Inf(1)
	for _, p := range pts {
		d := math.Hypot(p.X-x, p.Y-y)
		nearest = math.Min(nearest, d)
		if d == 0 {
			return *p.Value
		}
		wt := 1 / (d * d)
		num += wt * *p.Value
		den += wt
	}
	if nearest > reach || den == 0 {
		return math.NaN()
	}
	return num / den
}

func uniqueSorted(pts []chartspec.Point, pick func(chartspec.Point) float64) []float64 {
	seen := make(map[float64]bool, len(pts))
	var out []float64
	for _, p := range pts {
		v := round6(pick(p))
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func linspace(lo, hi float64, n int) []float64 {
	if hi <= lo {
		hi = lo + 1
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// projector maps data space onto the canvas with a fixed camera.
type projector struct {
	x0, x1, y0, y1, z0, z1 float64
	cx, cy, sx, sy, sz     float64
	ca, sa, ce, se         float64
}

func (p *projector) setAngles(azimuth, elevation float64) {
	a := azimuth * math.Pi / 180
	e := elevation * math.Pi / 180
	p.ca, p.sa = math.Cos(a), math.Sin(a)
	p.ce, p.se = math.Cos(e), math.Sin(e)
}

func unit(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return (v - lo) / (hi - lo)
}

// project returns canvas coordinates and a depth; larger depth is nearer
// the viewer.
func (p projector) project(x, y, z float64) (px, py, depth float64) {
	u := unit(x, p.x0, p.x1)*2 - 1
	v := unit(y, p.y0, p.y1)*2 - 1
	w := unit(z, p.z0, p.z1)
	rx := u*p.ca - v*p.sa
	ry := u*p.sa + v*p.ca
	return p.cx + rx*p.sx, p.cy + ry*p.se*p.sy - w*p.ce*p.sz, ry
}

type quad struct {
	xs, ys [4]float64
	depth  float64
	t      float64
}

// drawMesh paints mesh cells back to front.
func drawMesh(dc *gg.Context, pr projector, g surfaceGrid) {
	var quads []quad
	for j := 0; j+1 < len(g.ys); j++ {
		for i := 0; i+1 < len(g.xs); i++ {
			corners := [4][2]int{{i, j}, {i + 1, j}, {i + 1, j + 1}, {i, j + 1}}
			var q quad
			ok := true
			sum := 0.0
			for k, c := range corners {
				z := g.z[c[1]][c[0]]
				if math.IsNaN(z) {
					ok = false
					break
				}
				var d float64
				q.xs[k], q.ys[k], d = pr.project(g.xs[c[0]], g.ys[c[1]], z)
				q.depth += d / 4
				sum += z
			}
			if !ok {
				continue
			}
			q.t = unit(sum/4, g.zmin, g.zmax)
			quads = append(quads, q)
		}
	}
	sort.SliceStable(quads, func(a, b int) bool { return quads[a].depth < quads[b].depth })
	dc.SetLineWidth(0.5)
	for _, q := range quads {
		dc.MoveTo(q.xs[0], q.ys[0])
		for k := 1; k < 4; k++ {
			dc.LineTo(q.xs[k], q.ys[k])
		}
		dc.ClosePath()
		dc.SetColor(palette.Interpolate(palette.SurfaceScale, q.t))
		dc.FillPreserve()
		dc.SetRGBA(0, 0, 0, 0.25)
		dc.Stroke()
	}
}

// drawFloor outlines the base plane with x/y grid lines and tick labels.
func drawFloor(dc *gg.Context, pr projector, spec chartspec.Spec) {
	z := pr.z0
	line := func(x1, y1, x2, y2 float64) {
		ax, ay, _ := pr.project(x1, y1, z)
		bx, by, _ := pr.project(x2, y2, z)
		dc.DrawLine(ax, ay, bx, by)
		dc.Stroke()
	}
	dc.SetLineWidth(0.6)
	dc.SetRGBA(0, 0, 0, 0.15)
	for _, v := range NumericTicks(pr.x0, pr.x1, 7) {
		if v < pr.x0 || v > pr.x1 {
			continue
		}
		line(v, pr.y0, v, pr.y1)
	}
	for _, v := range NumericTicks(pr.y0, pr.y1, 7) {
		if v < pr.y0 || v > pr.y1 {
			continue
		}
		line(pr.x0, v, pr.x1, v)
	}
	dc.SetLineWidth(1)
	dc.SetRGBA(0, 0, 0, 0.6)
	line(pr.x0, pr.y0, pr.x1, pr.y0)
	line(pr.x1, pr.y0, pr.x1, pr.y1)
	line(pr.x1, pr.y1, pr.x0, pr.y1)
	line(pr.x0, pr.y1, pr.x0, pr.y0)

	dc.SetRGB(0.2, 0.2, 0.2)
	for _, v := range NumericTicks(pr.x0, pr.x1, 7) {
		if v < pr.x0 || v > pr.x1 {
			continue
		}
		px, py, _ := pr.project(v, pr.y1, z)
		dc.DrawStringAnchored(FormatTick(v), px, py+12, 0.5, 0.5)
	}
	for _, v := range NumericTicks(pr.y0, pr.y1, 7) {
		if v < pr.y0 || v > pr.y1 {
			continue
		}
		px, py, _ := pr.project(pr.x1, v, z)
		dc.DrawStringAnchored(FormatTick(v), px+14, py+6, 0.5, 0.5)
	}
	dc.SetRGB(0, 0, 0)
	mx, my, _ := pr.project((pr.x0+pr.x1)/2, pr.y1, z)
	dc.DrawStringAnchored(spec.XLabel, mx-24, my+30, 0.5, 0.5)
	nx, ny, _ := pr.project(pr.x1, (pr.y0+pr.y1)/2, z)
	dc.DrawStringAnchored(spec.YLabel, nx+44, ny+24, 0.5, 0.5)
}

// drawZAxis draws the vertical axis at the far corner of the floor.
func drawZAxis(dc *gg.Context, pr projector, label string) {
	x, y := pr.x0, pr.y0
	bx, by, _ := pr.project(x, y, pr.z0)
	tx, ty, _ := pr.project(x, y, pr.z1)
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.SetLineWidth(1)
	dc.DrawLine(bx, by, tx, ty)
	dc.Stroke()
	dc.SetRGB(0.2, 0.2, 0.2)
	for _, v := range NumericTicks(pr.z0, pr.z1, 5) {
		if v < pr.z0 || v > pr.z1 {
			continue
		}
		px, py, _ := pr.project(x, y, v)
		dc.DrawLine(px-4, py, px, py)
		dc.Stroke()
		dc.DrawStringAnchored(FormatTick(v), px-8, py, 1, 0.5)
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(label, tx, ty-14, 0.5, 0.5)
}

// drawColorbar paints the continuous scale with its value extremes.
func drawColorbar(dc *gg.Context, x, y, w, h, lo, hi float64) {
	const steps = 64
	sh := h / steps
	for i := 0; i < steps; i++ {
		t := 1 - (float64(i)+0.5)/steps
		dc.SetColor(palette.Interpolate(palette.SurfaceScale, t))
		dc.DrawRectangle(x, y+float64(i)*sh, w, sh+0.5)
		dc.Fill()
	}
	dc.SetRGBA(0, 0, 0, 0.6)
	dc.SetLineWidth(1)
	dc.DrawRectangle(x, y, w, h)
	dc.Stroke()
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(FormatTick(hi), x+w+6, y, 0, 0.5)
	dc.DrawStringAnchored(FormatTick(lo), x+w+6, y+h, 0, 0.5)
}
