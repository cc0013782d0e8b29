// Package types holds the JSON payloads exchanged with the MPE backend.
package types

import "fmt"

// Value keys selecting which nullable measurement of a Point drives colour.
const (
	KeyValue      = "value"
	KeyRegression = "regression"
	KeyDelta      = "delta"
)

// Degree sheets accepted by the backend.
const (
	Degree6   = "6-degree"
	Degree12  = "12-degree"
	Degree100 = "10^2"
)

// Degrees lists the selectable degree sheets in display order.
var Degrees = []string{Degree6, Degree12, Degree100}

// Range is a [min,max] pair as sent by the backend.
type Range [2]float64

// Point is one measured location. Exactly one of the nullable measurements is
// populated depending on the endpoint; nil means "no data".
type Point struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Value      *float64 `json:"value,omitempty"`
	Regression *float64 `json:"regression,omitempty"`
	Delta      *float64 `json:"delta,omitempty"`
}

// Measurement returns the nullable measurement stored under key.
func (p Point) Measurement(key string) *float64 {
	switch key {
	case KeyRegression:
		return p.Regression
	case KeyDelta:
		return p.Delta
	default:
		return p.Value
	}
}

// Dataset is one time point (or change column) of the scatter payloads.
type Dataset struct {
	Label  string  `json:"label"`
	Month  string  `json:"month,omitempty"`
	Points []Point `json:"points"`
}

// DatasetsPayload is served by the time-point and change scatter endpoints.
type DatasetsPayload struct {
	Datasets []Dataset `json:"datasets"`
	XRange   *Range    `json:"xRange,omitempty"`
	YRange   *Range    `json:"yRange,omitempty"`
	XLabel   string    `json:"xLabel,omitempty"`
	YLabel   string    `json:"yLabel,omitempty"`
}

// LegendEntry describes one regression band; nil bounds are open.
type LegendEntry struct {
	Label string      `json:"label"`
	Range [2]*float64 `json:"range"`
}

// PointsPayload is served by the regression endpoint.
type PointsPayload struct {
	Points []Point       `json:"points"`
	XRange *Range        `json:"xRange,omitempty"`
	YRange *Range        `json:"yRange,omitempty"`
	Legend []LegendEntry `json:"legend,omitempty"`
}

// BarsPayload is served by the category count endpoints: a 4×T matrix with
// one row per category and one column per x label.
type BarsPayload struct {
	XLabels      []string    `json:"xLabels"`
	SeriesLabels []string    `json:"seriesLabels"`
	Matrix       [][]float64 `json:"matrix"`
}

// Validate checks the matrix is rows×len(XLabels) with one label per row.
func (b *BarsPayload) Validate(rows int) error {
	if len(b.Matrix) != rows {
		return fmt.Errorf("bars payload: expected %d matrix rows, got %d", rows, len(b.Matrix))
	}
	if len(b.SeriesLabels) != rows {
		return fmt.Errorf("bars payload: expected %d series labels, got %d", rows, len(b.SeriesLabels))
	}
	for i, row := range b.Matrix {
		if len(row) != len(b.XLabels) {
			return fmt.Errorf("bars payload: row %d has %d values for %d x labels", i, len(row), len(b.XLabels))
		}
	}
	return nil
}

// UploadResponse is the success body of POST /upload.
type UploadResponse struct {
	Message    string   `json:"message"`
	TopCols    []string `json:"top_cols,omitempty"`
	BottomCols []string `json:"bottom_cols,omitempty"`
}

// ErrorResponse is the error body of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
