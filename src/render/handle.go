// Package render rasterises chart specifications. Canvas charts (scatter and
// stacked bar) are painted with go-chart; 3-D surfaces are painted with gg.
// Every mounted chart is represented by a Handle that the PDF exporter can
// ask for a still image.
package render

import (
	"fmt"
	"image"

	"github.com/iafilius/MPEViewer/src/chartspec"
	"github.com/iafilius/MPEViewer/src/export"
)

// Handle is a mounted chart.
type Handle interface {
	Spec() chartspec.Spec
	// Image is what is on screen; nil once released.
	Image() image.Image
	Mounted() bool
	Release()
	ExportChart() export.Chart
}

var (
	_ Handle = (*CanvasHandle)(nil)
	_ Handle = (*SurfaceHandle)(nil)
)

// Renderers pairs the two renderer families.
type Renderers struct {
	Canvas  CanvasRenderer
	Surface SurfaceRenderer
}

// Mount dispatches on spec.Kind. Width and height are the on-screen size;
// zero values pick the default chart dimensions.
func (r Renderers) Mount(spec chartspec.Spec, w, h int) (Handle, error) {
	switch spec.Kind {
	case chartspec.KindScatter, chartspec.KindBar:
		c, err := r.Canvas.Mount(spec, w, h)
		if err != nil {
			return nil, err
		}
		return c, nil
	case chartspec.KindSurface:
		s, err := r.Surface.Mount(spec, w, h)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, spec.Kind)
	}
}

// Mount uses the default renderers.
func Mount(spec chartspec.Spec, w, h int) (Handle, error) {
	return Renderers{}.Mount(spec, w, h)
}

// ReleaseAll unmounts every handle.
func ReleaseAll(handles []Handle) {
	for _, h := range handles {
		if h != nil {
			h.Release()
		}
	}
}

// ExportCharts tags handles for the exporter, preserving order.
func ExportCharts(handles []Handle) []export.Chart {
	out := make([]export.Chart, 0, len(handles))
	for _, h := range handles {
		if h == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, h.ExportChart())
	}
	return out
}
