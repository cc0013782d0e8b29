package export

import "math"

// Rect is a placement on a page, in page units.
type Rect struct {
	X, Y, W, H float64
}

// Fit scales an image of w×h pixels to fit a pageW×pageH page without
// cropping or distortion and centres it.
func Fit(w, h, pageW, pageH float64) Rect {
	if w <= 0 || h <= 0 {
		return Rect{X: pageW / 2, Y: pageH / 2}
	}
	ratio := math.Min(pageW/w, pageH/h)
	dw, dh := w*ratio, h*ratio
	return Rect{
		X: (pageW - dw) / 2,
		Y: (pageH - dh) / 2,
		W: dw,
		H: dh,
	}
}
