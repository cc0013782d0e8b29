package controller

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iafilius/MPEViewer/src/chartspec"
	"github.com/iafilius/MPEViewer/src/client"
	"github.com/iafilius/MPEViewer/src/logging"
	"github.com/iafilius/MPEViewer/src/palette"
	"github.com/iafilius/MPEViewer/src/types"
)

// Source is the backend as seen by the controller. *client.Client implements it.
type Source interface {
	Upload(ctx context.Context, fileName string, r io.Reader, degree string) (*types.UploadResponse, error)
	TimepointScatter(ctx context.Context) (*types.DatasetsPayload, error)
	ChangeScatter(ctx context.Context) (*types.DatasetsPayload, error)
	Regression(ctx context.Context) (*types.PointsPayload, error)
	TimepointBars(ctx context.Context) (*types.BarsPayload, error)
	ChangeBars(ctx context.Context) (*types.BarsPayload, error)
}

var _ Source = (*client.Client)(nil)

// ChartType is one of the chart buttons of the page.
type ChartType struct {
	Slug  string
	Label string
	Path  string
	build func(ctx context.Context, src Source, label string) ([]chartspec.Spec, error)
}

// Build fetches the payload and returns the chart definitions in display order.
func (ct ChartType) Build(ctx context.Context, src Source) ([]chartspec.Spec, error) {
	return ct.build(ctx, src, ct.Label)
}

// ChartTypes lists the chart buttons in page order.
var ChartTypes = []ChartType{
	{
		Slug:  "timepoint",
		Label: "Individual time-point plots",
		Path:  client.PathTimepointScatter,
		build: buildTimepoint,
	},
	{
		Slug:  "regression",
		Label: "Pointwise Regression Plot",
		Path:  client.PathRegression,
		build: func(ctx context.Context, src Source, label string) ([]chartspec.Spec, error) {
			p, err := src.Regression(ctx)
			if err != nil {
				return nil, err
			}
			s, err := chartspec.ScatterFromPoints(p, label, types.KeyRegression, palette.ByRegression)
			if err != nil {
				return nil, err
			}
			return []chartspec.Spec{s}, nil
		},
	},
	{
		Slug:  "change",
		Label: "Longitudinal point-wise changes against baseline",
		Path:  client.PathChangeScatter,
		build: func(ctx context.Context, src Source, label string) ([]chartspec.Spec, error) {
			p, err := src.ChangeScatter(ctx)
			if err != nil {
				return nil, err
			}
			s, err := chartspec.ScatterFromDatasets(p, label, types.KeyDelta, palette.ByDelta)
			if err != nil {
				return nil, err
			}
			return []chartspec.Spec{s}, nil
		},
	},
	{
		Slug:  "timepoint-bars",
		Label: "Longitudinal change in number of loci",
		Path:  client.PathTimepointBars,
		build: func(ctx context.Context, src Source, label string) ([]chartspec.Spec, error) {
			return barsOf(src.TimepointBars(ctx))(label)
		},
	},
	{
		Slug:  "change-bars",
		Label: "Longitudinal change of loci counts against baseline",
		Path:  client.PathChangeBars,
		build: func(ctx context.Context, src Source, label string) ([]chartspec.Spec, error) {
			return barsOf(src.ChangeBars(ctx))(label)
		},
	},
}

func barsOf(p *types.BarsPayload, err error) func(string) ([]chartspec.Spec, error) {
	return func(label string) ([]chartspec.Spec, error) {
		if err != nil {
			return nil, err
		}
		s, err := chartspec.StackedBar(p, label)
		if err != nil {
			return nil, err
		}
		return []chartspec.Spec{s}, nil
	}
}

// buildTimepoint returns the multi-series scatter followed by one 3-D surface
// per time point.
func buildTimepoint(ctx context.Context, src Source, label string) ([]chartspec.Spec, error) {
	p, err := src.TimepointScatter(ctx)
	if err != nil {
		return nil, err
	}
	scatter, err := chartspec.ScatterFromDatasets(p, label, types.KeyValue, palette.ByValue)
	if err != nil {
		return nil, err
	}
	specs := []chartspec.Spec{scatter}
	for _, d := range p.Datasets {
		s, err := chartspec.SurfaceFromDataset(d, d.Label+" threshold surface", types.KeyValue)
		if err != nil {
			logging.Debugf("[controller] no surface for %q: %v", d.Label, err)
			continue
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// LookupChartType finds a chart type by slug, label (case-insensitive) or
// 1-based position.
func LookupChartType(key string) (ChartType, error) {
	key = strings.TrimSpace(key)
	for _, ct := range ChartTypes {
		if ct.Slug == key || strings.EqualFold(ct.Label, key) {
			return ct, nil
		}
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(ChartTypes) {
		return ChartTypes[n-1], nil
	}
	return ChartType{}, fmt.Errorf("unknown chart type %q", key)
}
