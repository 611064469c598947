package orbitronica

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestInclinationChange(t *testing.T) {
	a := Earth.SemiMajorAxis
	v := math.Sqrt(Sun.GM() / a)
	pc := InclinationChange(a, 0, 10, 0, 0)
	if !scalar.EqualWithinAbs(pc.DeltaV, 2*v*math.Sin(Deg2rad(10)/2), 1e-12) {
		t.Fatalf("Δv=%f", pc.DeltaV)
	}
	if pc.Angle != 10 || !scalar.EqualWithinAbs(pc.EnergyCost, 0.5*pc.DeltaV*pc.DeltaV, 1e-12) {
		t.Fatalf("unexpected plane change %+v", pc)
	}
	if rev := InclinationChange(a, 10, 0, 0, 0); rev.DeltaV != pc.DeltaV {
		t.Fatal("plane change must be symmetrical")
	}
	if none := InclinationChange(a, 3, 3, 1, 0.1); none.DeltaV != 0 {
		t.Fatalf("no plane change needs no Δv, got %f", none.DeltaV)
	}
	// A 60° change costs the orbital velocity.
	if big := InclinationChange(a, 0, 60, 0, 0); !scalar.EqualWithinRel(big.DeltaV, v, 1e-12) {
		t.Fatalf("60° plane change Δv=%f, expected %f", big.DeltaV, v)
	}
	node := InclinationChange(a, 0, 5, math.Pi/2, 0.2)
	if node.MeanAnomaly < 0 || node.MeanAnomaly >= 2*math.Pi {
		t.Fatalf("mean anomaly %f out of range", node.MeanAnomaly)
	}
}

func TestCombinedTransferWithInclination(t *testing.T) {
	it, err := CombinedTransferWithInclination("Earth", "Mars")
	if err != nil {
		t.Fatalf("%s", err)
	}
	if len(it.Sequence) != 3 {
		t.Fatalf("expected 3 maneuvers, got %d", len(it.Sequence))
	}
	expKinds := []ManeuverKind{TransferInjection, PlaneChangeBurn, OrbitInsertion}
	expTimes := []float64{0, it.Transfer.Duration / 2, it.Transfer.Duration}
	var sumSq float64
	for i, m := range it.Sequence {
		if m.Kind != expKinds[i] || m.Time != expTimes[i] {
			t.Fatalf("maneuver %d: %s at %f", i, m.Kind, m.Time)
		}
		sumSq += m.DeltaV * m.DeltaV
	}
	if !scalar.EqualWithinAbs(it.CombinedDeltaV, math.Sqrt(sumSq), 1e-12) {
		t.Fatalf("combined Δv=%f", it.CombinedDeltaV)
	}
	if !scalar.EqualWithinAbs(it.PlaneChange.Angle, Mars.Inclination-Earth.Inclination, 1e-12) {
		t.Fatalf("Δi=%f", it.PlaneChange.Angle)
	}
	if it.CombinedDeltaV >= it.Transfer.TotalDeltaV+it.PlaneChange.DeltaV {
		t.Fatal("root sum square must be below the plain sum")
	}
	if it.TotalEnergyCost != it.Transfer.EnergyCost+it.PlaneChange.EnergyCost {
		t.Fatalf("energy=%f", it.TotalEnergyCost)
	}
	if TransferInjection.String() != "Transfer Injection" || OrbitInsertion.String() != "Orbit Insertion" || PlaneChangeBurn.String() != "Plane Change" {
		t.Fatal("maneuver names")
	}
	if _, err := CombinedTransferWithInclination("Earth", "Pluto"); err == nil {
		t.Fatal("expected an error")
	}
}
