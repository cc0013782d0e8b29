package render

import (
	"bytes"
	"errors"
	"image/png"
	"io"
	"math"
	"testing"

	"github.com/iafilius/MPEViewer/src/chartspec"
	"github.com/iafilius/MPEViewer/src/export"
	"github.com/iafilius/MPEViewer/src/types"
)

// fieldSpec samples a 6-degree style grid clipped to a circle.
func fieldSpec(t *testing.T) chartspec.Spec {
	t.Helper()
	var pts []types.Point
	for y := -21.0; y <= 21; y += 6 {
		for x := -21.0; x <= 21; x += 6 {
			if x*x+y*y > 27*27 {
				continue
			}
			v := 30 - math.Hypot(x, y)
			pts = append(pts, types.Point{X: x, Y: y, Value: fp(v)})
		}
	}
	pts = append(pts, types.Point{X: 99, Y: 99})
	spec, err := chartspec.SurfaceFromDataset(types.Dataset{Label: "Month 0", Points: pts}, "Month 0 surface", types.KeyValue)
	if err != nil {
		t.Fatalf("build surface: %v", err)
	}
	return spec
}

func TestSurfaceRender_ExportGeometry(t *testing.T) {
	img, err := SurfaceRenderer{}.Render(fieldSpec(t), SurfaceExportWidth, SurfaceExportHeight, SurfaceExportScale)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2800 || b.Dy() != 1800 {
		t.Fatalf("export image %v want 2800x1800", b)
	}
}

func TestSurfaceRender_TooFewPoints(t *testing.T) {
	spec := chartspec.Spec{Kind: chartspec.KindSurface, Series: []chartspec.Series{{Points: []chartspec.Point{{X: 1, Y: 1, Value: fp(1)}}}}}
	if _, err := (SurfaceRenderer{}).Render(spec, 400, 300, 1); err == nil {
		t.Fatalf("expected error for a single point")
	}
	// mounting still succeeds with a placeholder
	h, err := SurfaceRenderer{}.Mount(spec, 400, 300)
	if err != nil || h.Image() == nil {
		t.Fatalf("mount should fall back to placeholder: %v", err)
	}
}

func TestSurfaceHandle_AsyncSnapshot(t *testing.T) {
	h, err := SurfaceRenderer{}.Mount(fieldSpec(t), 700, 450)
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	if b := h.Image().Bounds(); b.Dx() != 700 || b.Dy() != 450 {
		t.Fatalf("preview %v want 700x450", b)
	}
	snap := <-h.SnapshotPNGAsync()
	if snap.Err != nil {
		t.Fatalf("snapshot: %v", snap.Err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(snap.PNG))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 2800 || cfg.Height != 1800 {
		t.Fatalf("snapshot %dx%d want 2800x1800", cfg.Width, cfg.Height)
	}
	h.Release()
	if h.SnapshotPNGAsync() != nil {
		t.Fatalf("released surface must not start a snapshot")
	}
	if h.Image() != nil || h.Mounted() {
		t.Fatalf("released surface still mounted")
	}
}

func TestSurfaceMount_RejectsCanvasKinds(t *testing.T) {
	_, err := SurfaceRenderer{}.Mount(chartspec.Spec{Kind: chartspec.KindBar}, 800, 300)
	if !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("expected ErrUnsupportedKind, got %v", err)
	}
}

func TestBuildGrid_KeepsRegularSamples(t *testing.T) {
	var pts []chartspec.Point
	for _, x := range []float64{-3, 3, 9} {
		for _, y := range []float64{-3, 3} {
			pts = append(pts, chartspec.Point{X: x, Y: y, Value: fp(x + y)})
		}
	}
	g := buildGrid(pts, 40)
	if len(g.xs) != 3 || len(g.ys) != 2 {
		t.Fatalf("grid %dx%d want 3x2", len(g.xs), len(g.ys))
	}
	if g.z[1][2] != 12 || g.z[0][0] != -6 {
		t.Fatalf("samples moved: %v", g.z)
	}
	if g.zmin != -6 || g.zmax != 12 {
		t.Fatalf("z extent %v..%v", g.zmin, g.zmax)
	}
}

func TestIDW_OutOfReachIsNaN(t *testing.T) {
	pts := []chartspec.Point{{X: 0, Y: 0, Value: fp(10)}, {X: 2, Y: 0, Value: fp(20)}}
	if v := idw(pts, 1, 0, 5); math.Abs(v-15) > 1e-9 {
		t.Fatalf("midpoint %v want 15", v)
	}
	if v := idw(pts, 50, 50, 5); !math.IsNaN(v) {
		t.Fatalf("far cell should be NaN, got %v", v)
	}
}

func TestExportCharts_PreservesOrderThroughExporter(t *testing.T) {
	canvas, err := Mount(barSpec(t), 800, 300)
	if err != nil {
		t.Fatalf("mount bars: %v", err)
	}
	surface, err := Mount(fieldSpec(t), 700, 450)
	if err != nil {
		t.Fatalf("mount surface: %v", err)
	}
	released, err := Mount(scatterSpec(t), 800, 300)
	if err != nil {
		t.Fatalf("mount scatter: %v", err)
	}
	released.Release()
	handles := []Handle{canvas, released, surface}
	charts := ExportCharts(handles)
	if charts[0].Kind() != export.KindCanvas || charts[2].Kind() != export.KindSurface {
		t.Fatalf("tags out of order")
	}
	res, err := export.New(export.PageOptions{}).Write(io.Discard, charts)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Pages != 2 || res.Skipped != 1 {
		t.Fatalf("pages=%d skipped=%d want 2/1", res.Pages, res.Skipped)
	}
	ReleaseAll(handles)
	if canvas.Mounted() || surface.Mounted() {
		t.Fatalf("ReleaseAll left handles mounted")
	}
}
