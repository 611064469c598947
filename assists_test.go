package orbitronica

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestGATurnAngle(t *testing.T) {
	vInf := 5.6433
	rP := Jupiter.Radius * periapsisMargin
	δ := GATurnAngle(vInf, rP, Jupiter)
	exp := 2 * math.Asin(1/(1+rP*vInf*vInf/Jupiter.GM()))
	if !scalar.EqualWithinAbs(δ, exp, 1e-12) {
		t.Fatalf("δ=%f, expected %f", δ, exp)
	}
	// Faster flybys are bent less.
	if GATurnAngle(2*vInf, rP, Jupiter) >= δ {
		t.Fatal("turn angle must decrease with v_inf")
	}
}

func TestGravityAssist(t *testing.T) {
	vApproach := []float64{1, -5, 2}
	vInf := math.Sqrt(30)
	res, err := GravityAssist(DefaultSpacecraftMass, "jupiter", vApproach)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if res.Body != "Jupiter" || res.PeriapsisRadius != Jupiter.Radius*1.1 {
		t.Fatalf("unexpected result %s", res)
	}
	δ := Deg2rad(res.BendAngle)
	if !scalar.EqualWithinAbs(res.VelocityChange, 2*vInf*math.Sin(δ/2), 1e-12) {
		t.Fatalf("Δv=%f", res.VelocityChange)
	}
	if res.VelocityChange <= 0 || res.VelocityChange > 2*vInf {
		t.Fatalf("Δv=%f out of bounds", res.VelocityChange)
	}
	if !scalar.EqualWithinRel(res.FlybyDuration, 2*res.PeriapsisRadius/vInf, 1e-12) {
		t.Fatalf("flyby duration=%f", res.FlybyDuration)
	}
	expGain := 0.5 * DefaultSpacecraftMass * (math.Pow(vInf+res.VelocityChange, 2) - vInf*vInf)
	if !scalar.EqualWithinRel(res.EnergyGain, expGain, 1e-12) {
		t.Fatalf("energy gain=%f, expected %f", res.EnergyGain, expGain)
	}
	out := res.OutgoingVelocity
	if !scalar.EqualWithinRel(norm(out), vInf, 1e-12) {
		t.Fatalf("outgoing v∞=%f, expected %f", norm(out), vInf)
	}
	if chord := norm([]float64{out[0] - 1, out[1] + 5, out[2] - 2}); !scalar.EqualWithinRel(chord, res.VelocityChange, 1e-9) {
		t.Fatalf("velocity change %f from the vectors, %f expected", chord, res.VelocityChange)
	}
	// Heavier spacecraft gain proportionally more energy but are bent the same way.
	heavy, _ := GravityAssist(2*DefaultSpacecraftMass, "Jupiter", vApproach)
	if heavy.BendAngle != res.BendAngle || !scalar.EqualWithinRel(heavy.EnergyGain, 2*res.EnergyGain, 1e-12) {
		t.Fatalf("mass dependency is wrong: %+v vs %+v", heavy, res)
	}
}

func TestGravityAssistOutgoingVelocity(t *testing.T) {
	res, _ := GravityAssist(DefaultSpacecraftMass, "Venus", []float64{0, -3, 0})
	δ := Deg2rad(res.BendAngle)
	exp := []float64{3 * math.Sin(δ), -3 * math.Cos(δ), 0}
	for i := range exp {
		if !scalar.EqualWithinAbs(res.OutgoingVelocity[i], exp[i], 1e-12) {
			t.Fatalf("outgoing velocity %v, expected %v", res.OutgoingVelocity, exp)
		}
	}
	polar, _ := GravityAssist(DefaultSpacecraftMass, "Venus", []float64{0, 0, 2})
	if out := polar.OutgoingVelocity; !scalar.EqualWithinRel(norm(out), 2, 1e-12) || out[1] >= 0 || out[0] != 0 {
		t.Fatalf("polar approach turned to %v", out)
	}
}

func TestGravityAssistInvalid(t *testing.T) {
	for _, v := range [][]float64{{0, 0, 0}, {math.NaN(), 1, 1}, {math.Inf(1), 0, 0}, {1, 2}} {
		_, err := GravityAssist(DefaultSpacecraftMass, "Venus", v)
		var approach *InvalidApproachError
		if !errors.As(err, &approach) || approach.Body != "Venus" {
			t.Fatalf("%v: expected InvalidApproachError, got %v", v, err)
		}
	}
	var unknown *UnknownBodyError
	if _, err := GravityAssist(DefaultSpacecraftMass, "Vulcan", []float64{1, 0, 0}); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownBodyError, got %v", err)
	}
}

func TestPlanGravityAssistTrajectory(t *testing.T) {
	traj, err := PlanGravityAssistTrajectory("Earth", "Venus", "Jupiter", DefaultSpacecraftMass)
	if err != nil {
		t.Fatalf("%s", err)
	}
	if traj.FirstLeg.To != "Venus" || traj.SecondLeg.From != "Venus" || traj.SecondLeg.To != "Jupiter" {
		t.Fatalf("unexpected legs %s / %s", traj.FirstLeg, traj.SecondLeg)
	}
	exp := traj.FirstLeg.TotalDeltaV + traj.Assist.VelocityChange + traj.SecondLeg.ArrivalDeltaV
	if traj.TotalDeltaV != exp {
		t.Fatalf("total Δv=%f, expected %f", traj.TotalDeltaV, exp)
	}
	// Arriving at Venus from Earth is an inward transfer: the approach is along track.
	vApp := ApproachVelocity(traj.FirstLeg)
	if vApp[1] != traj.FirstLeg.ArrivalDeltaV {
		t.Fatalf("approach velocity %v", vApp)
	}
	if out := ApproachVelocity(traj.SecondLeg); out[1] != -traj.SecondLeg.ArrivalDeltaV {
		t.Fatalf("outward approach velocity %v", out)
	}
	// An assist about the departure body has no approach velocity.
	if _, err := PlanGravityAssistTrajectory("Earth", "Earth", "Mars", DefaultSpacecraftMass); err == nil {
		t.Fatal("expected an InvalidApproachError")
	}
	if _, err := PlanGravityAssistTrajectory("Earth", "Venus", "Pluto", DefaultSpacecraftMass); err == nil {
		t.Fatal("expected an UnknownBodyError")
	}
}

func TestAssistWithConfiguredMass(t *testing.T) {
	conf := DefaultConfig()
	base, err := PlanGravityAssistTrajectory("Earth", "Jupiter", "Saturn", conf.Spacecraft.Mass)
	if err != nil {
		t.Fatalf("%s", err)
	}
	conf.Spacecraft.Mass = 2500
	heavy, _ := PlanGravityAssistTrajectory("Earth", "Jupiter", "Saturn", conf.Spacecraft.Mass)
	if !scalar.EqualWithinRel(heavy.Assist.EnergyGain, 2.5*base.Assist.EnergyGain, 1e-12) {
		t.Fatalf("energy gain %f for 2500 kg, %f for 1000 kg", heavy.Assist.EnergyGain, base.Assist.EnergyGain)
	}
	if heavy.TotalDeltaV != base.TotalDeltaV {
		t.Fatal("Δv depends on the mass")
	}
}
