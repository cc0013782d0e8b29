package palette

import (
	"math"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestByValue_Boundaries(t *testing.T) {
	cases := []struct {
		in   *float64
		want Bucket
	}{
		{nil, Gray},
		{f(-0.001), Black},
		{f(0), Red},
		{f(12.999), Red},
		{f(13), Orange},
		{f(23), Orange},
		{f(23.001), Green},
		{f(40), Green},
		{f(math.NaN()), Gray},
	}
	for _, c := range cases {
		if got := ByValue(c.in); got != c.want {
			t.Fatalf("ByValue(%v) = %s want %s", deref(c.in), got, c.want)
		}
	}
}

func TestBySignedChange_Boundaries(t *testing.T) {
	cases := []struct {
		in   *float64
		want Bucket
	}{
		{nil, Gray},
		{f(7), Blue},
		{f(6.999), Green},
		{f(2), Green},
		{f(1.999), Yellow},
		{f(-2), Yellow},
		{f(-2.001), Orange},
		{f(-6.999), Orange},
		{f(-7), Orange},
		{f(-7.001), Red},
	}
	for _, c := range cases {
		if got := ByRegression(c.in); got != c.want {
			t.Fatalf("ByRegression(%v) = %s want %s", deref(c.in), got, c.want)
		}
		if got := ByDelta(c.in); got != c.want {
			t.Fatalf("ByDelta(%v) = %s want %s", deref(c.in), got, c.want)
		}
	}
}

func TestClassifiers_Totality(t *testing.T) {
	valueSet := map[Bucket]bool{Gray: true, Black: true, Red: true, Orange: true, Green: true}
	changeSet := map[Bucket]bool{Gray: true, Blue: true, Green: true, Yellow: true, Orange: true, Red: true}
	for v := -50.0; v <= 50.0; v += 0.25 {
		if b := ByValue(f(v)); !valueSet[b] {
			t.Fatalf("ByValue(%v) returned foreign bucket %s", v, b)
		}
		if b := ByDelta(f(v)); !changeSet[b] {
			t.Fatalf("ByDelta(%v) returned foreign bucket %s", v, b)
		}
	}
}

func TestGrayIsSemiTransparent(t *testing.T) {
	c := Gray.Color()
	if c.R != 150 || c.G != 150 || c.B != 150 {
		t.Fatalf("unexpected gray rgb: %+v", c)
	}
	if c.A == 0 || c.A == 255 {
		t.Fatalf("gray must be semi-transparent, alpha=%d", c.A)
	}
	if Bucket("mauve").Color() != c {
		t.Fatalf("unknown bucket should fall back to gray")
	}
}

func TestInterpolate(t *testing.T) {
	if got := Interpolate(SurfaceScale, -1); got != SurfaceScale[0].Color {
		t.Fatalf("below range should clamp to first stop: %+v", got)
	}
	if got := Interpolate(SurfaceScale, 2); got != SurfaceScale[4].Color {
		t.Fatalf("above range should clamp to last stop: %+v", got)
	}
	if got := Interpolate(SurfaceScale, 0.5); got != SurfaceScale[2].Color {
		t.Fatalf("exact stop should return its colour: %+v", got)
	}
	mid := Interpolate(SurfaceScale, 0.125)
	if mid.R <= SurfaceScale[0].Color.R || mid.G <= SurfaceScale[0].Color.G {
		t.Fatalf("interpolated colour should move towards the next stop: %+v", mid)
	}
}

func deref(p *float64) interface{} {
	if p == nil {
		return "null"
	}
	return *p
}
