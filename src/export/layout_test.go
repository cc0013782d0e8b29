package export

import (
	"math"
	"testing"
)

func TestFit_ContainedAndCentred(t *testing.T) {
	const eps = 1e-9
	pages := [][2]float64{{210, 297}, {297, 210}, {100, 100}, {612, 792}}
	images := [][2]float64{{1400, 900}, {2800, 1800}, {900, 1400}, {1, 1}, {5000, 3}, {3, 5000}, {210, 297}}
	for _, pg := range pages {
		for _, im := range images {
			r := Fit(im[0], im[1], pg[0], pg[1])
			if r.W > pg[0]+eps || r.H > pg[1]+eps {
				t.Fatalf("image %v on page %v overflows: %+v", im, pg, r)
			}
			if math.Abs(r.X-(pg[0]-r.W)/2) > eps || math.Abs(r.Y-(pg[1]-r.H)/2) > eps {
				t.Fatalf("image %v on page %v not centred: %+v", im, pg, r)
			}
			if math.Abs(r.W/r.H-im[0]/im[1]) > 1e-6*im[0]/im[1] {
				t.Fatalf("aspect ratio changed for %v on %v: %+v", im, pg, r)
			}
			// one dimension always touches the page edge
			if math.Abs(r.W-pg[0]) > eps && math.Abs(r.H-pg[1]) > eps {
				t.Fatalf("image %v not scaled to fit page %v: %+v", im, pg, r)
			}
		}
	}
}

func TestFit_DegenerateImage(t *testing.T) {
	r := Fit(0, 10, 210, 297)
	if r.W != 0 || r.H != 0 {
		t.Fatalf("zero-size image should produce empty rect: %+v", r)
	}
}
