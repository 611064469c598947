package orbitronica

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestNormalizeDegrees(t *testing.T) {
	for _, tc := range []struct{ in, exp float64 }{
		{0, 0}, {360, 0}, {-90, 270}, {725, 5}, {-720, 0}, {359.5, 359.5}, {-1e-15, 0},
	} {
		got := normalizeDegrees(tc.in)
		if !scalar.EqualWithinAbs(got, tc.exp, 1e-9) {
			t.Fatalf("normalizeDegrees(%f)=%f, expected %f", tc.in, got, tc.exp)
		}
		if got < 0 || got >= 360 {
			t.Fatalf("normalizeDegrees(%f)=%f out of range", tc.in, got)
		}
	}
}

func TestAngleBetween(t *testing.T) {
	for _, tc := range []struct{ a, b, exp float64 }{
		{10, 350, 20}, {350, 10, -20}, {44, 44, 0}, {180, 0, -180}, {90, 45, 45},
	} {
		if got := angleBetween(tc.a, tc.b); !scalar.EqualWithinAbs(got, tc.exp, 1e-9) {
			t.Fatalf("angleBetween(%f, %f)=%f, expected %f", tc.a, tc.b, got, tc.exp)
		}
	}
}

func TestAngles(t *testing.T) {
	for i := 0.0; i <= 360; i += 0.5 {
		if !scalar.EqualWithinAbs(Rad2deg(Deg2rad(i)), i, 1e-10) {
			t.Fatalf("conversion of %f failed", i)
		}
	}
	if Deg2rad(180) != math.Pi {
		t.Fatal("180° != π")
	}
}

func TestVectors(t *testing.T) {
	if n := norm([]float64{3, 4, 12}); n != 13 {
		t.Fatalf("norm=%f", n)
	}
	u := unit([]float64{0, 0, 5})
	if u[2] != 1 || u[0] != 0 || u[1] != 0 {
		t.Fatalf("unit=%v", u)
	}
	if z := unit([]float64{0, 0, 0}); norm(z) != 0 {
		t.Fatal("unit of a null vector must be null")
	}
	if isFinite(math.NaN()) || isFinite(math.Inf(-1)) || !isFinite(1) {
		t.Fatal("isFinite failed")
	}
}
