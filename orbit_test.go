package orbitronica

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestCircularPosition(t *testing.T) {
	a := Earth.SemiMajorAxis
	for M := 0.0; M < 2*math.Pi; M += 0.1 {
		x, y, E, err := KeplerPosition(a, 0, M)
		if err != nil {
			t.Fatalf("M=%f: %s", M, err)
		}
		if !scalar.EqualWithinRel(math.Hypot(x, y), a, 1e-12) {
			t.Fatalf("M=%f: r=%f != a=%f", M, math.Hypot(x, y), a)
		}
		if !scalar.EqualWithinAbs(E, M, 1e-12) {
			t.Fatalf("E=%f != M=%f for a circular orbit", E, M)
		}
		// The perturbation is below the meter.
		state, err := OrbitalPosition(a, 0, M, M*Day)
		if err != nil {
			t.Fatalf("%s", err)
		}
		if !scalar.EqualWithinAbs(state.RNorm(), a, 1e-3) {
			t.Fatalf("M=%f: perturbed r=%f", M, state.RNorm())
		}
		if !scalar.EqualWithinRel(state.Speed, math.Sqrt(Sun.GM()/a), 1e-9) {
			t.Fatalf("circular speed=%f", state.Speed)
		}
	}
}

func TestKeplerRoundTrip(t *testing.T) {
	for _, e := range []float64{0, 0.01, 0.2075, 0.5, 0.9} {
		for E := 0.0; E < 2*math.Pi; E += 0.05 {
			M := MeanAnomalyFromEccentric(E, e)
			got, err := SolveKepler(M, e)
			if err != nil {
				t.Fatalf("e=%f E=%f: %s", e, E, err)
			}
			if !scalar.EqualWithinAbs(got, E, 1e-6) {
				t.Fatalf("e=%f: E=%f recovered as %f", e, E, got)
			}
		}
	}
}

func TestKeplerConvergenceError(t *testing.T) {
	for _, tc := range []struct{ M, e float64 }{
		{1, 1}, {1, 1.5}, {1, -0.1}, {math.NaN(), 0.1}, {1, math.Inf(1)},
	} {
		_, err := SolveKepler(tc.M, tc.e)
		var conv *ConvergenceError
		if !errors.As(err, &conv) {
			t.Fatalf("M=%f e=%f: expected ConvergenceError, got %v", tc.M, tc.e, err)
		}
		if _, err := OrbitalPosition(AU, tc.e, tc.M, 0); !errors.As(err, &conv) {
			t.Fatalf("OrbitalPosition M=%f e=%f: expected ConvergenceError, got %v", tc.M, tc.e, err)
		}
	}
}

func TestEllipticalPosition(t *testing.T) {
	plan, _ := HohmannTransfer("Earth", "Mars")
	a, e := plan.SemiMajorAxis, plan.Eccentricity
	// Perihelion and aphelion of the transfer are the departure and arrival radii.
	x, y, _, err := KeplerPosition(a, e, 0)
	if err != nil || !scalar.EqualWithinRel(x, Earth.SemiMajorAxis, 1e-9) || !scalar.EqualWithinAbs(y, 0, 1e-6) {
		t.Fatalf("perihelion at (%f, %f): %v", x, y, err)
	}
	x, _, _, err = KeplerPosition(a, e, math.Pi)
	if err != nil || !scalar.EqualWithinRel(x, -Mars.SemiMajorAxis, 1e-9) {
		t.Fatalf("aphelion at x=%f: %v", x, err)
	}
	state, _ := OrbitalPosition(a, e, math.Pi, 0)
	vArrival := math.Sqrt(Sun.GM() * (2/Mars.SemiMajorAxis - 1/a))
	if !scalar.EqualWithinRel(state.Speed, vArrival, 1e-6) {
		t.Fatalf("vis-viva speed at aphelion %f != %f", state.Speed, vArrival)
	}
}

func TestTrueToMeanAnomaly(t *testing.T) {
	if M := TrueToMeanAnomaly(0, 0.3); M != 0 {
		t.Fatalf("M=%f at periapsis", M)
	}
	if M := TrueToMeanAnomaly(math.Pi, 0.3); !scalar.EqualWithinAbs(M, math.Pi, 1e-12) {
		t.Fatalf("M=%f at apoapsis", M)
	}
	if M := TrueToMeanAnomaly(1.2, 0); !scalar.EqualWithinAbs(M, 1.2, 1e-12) {
		t.Fatalf("M=%f should equal ν for a circular orbit", M)
	}
	// Before periapsis the mean anomaly wraps to [π, 2π).
	if M := TrueToMeanAnomaly(-0.5, 0.1); M < math.Pi || M >= 2*math.Pi {
		t.Fatalf("M=%f not wrapped", M)
	}
}

func TestPerturbation(t *testing.T) {
	for _, simTime := range []float64{0, 1000, Day, 1e8} {
		p := perturbation(simTime)
		if math.Abs(p[0]) > solarPressureAmplitude || math.Abs(p[1]) > planetaryAmplitude {
			t.Fatalf("perturbation %v exceeds its amplitude", p)
		}
		if !scalar.EqualWithinAbs(p[2], 0.5*(p[0]+p[1]), 1e-15) {
			t.Fatalf("z=%f is not the half sum", p[2])
		}
	}
	if p := perturbation(0); p[0] != 0 || p[1] != planetaryAmplitude {
		t.Fatalf("perturbation at t=0: %v", p)
	}
}
