package orbitronica

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestResourceModel(t *testing.T) {
	r := FullResources()
	r = DefaultResourceModel.Apply(r, 1, 2, false)
	if !scalar.EqualWithinAbs(r.Fuel, 99.9, 1e-12) || !scalar.EqualWithinAbs(r.Power, 99.95, 1e-12) || r.Data != 0 {
		t.Fatalf("cruise tick: %s", r)
	}
	r = DefaultResourceModel.Apply(r, 4, 2, true)
	if !scalar.EqualWithinAbs(r.Fuel, 99.5, 1e-12) || !scalar.EqualWithinAbs(r.Power, 99.75, 1e-12) || r.Data != 4 {
		t.Fatalf("science tick at 4x: %s", r)
	}
	fuel, power, data := DefaultResourceModel.Rates(2, 3, true)
	if fuel != -0.2 || power != -0.1 || data != 3 {
		t.Fatalf("rates %f %f %f", fuel, power, data)
	}
}

func TestResourceClamping(t *testing.T) {
	r := Resources{Fuel: 0.05, Power: 0.01}
	r = DefaultResourceModel.Apply(r, 1, 1, false)
	if r.Fuel != 0 || r.Power != 0 {
		t.Fatalf("levels not floored: %s", r)
	}
	if !r.FuelDepleted || !r.PowerDepleted {
		t.Fatal("underflow must set the depletion flags")
	}
	// Flags are latched.
	r.set(50, 50, 0)
	if !r.FuelDepleted || !r.PowerDepleted {
		t.Fatal("depletion flags must stay set")
	}
	r = Resources{}
	r.set(150, math.NaN(), -3)
	if r.Fuel != 100 || r.Power != 0 || r.Data != 0 {
		t.Fatalf("levels not clamped: %s", r)
	}
	if r.FuelDepleted || r.PowerDepleted {
		t.Fatal("no underflow happened")
	}
}
