package orbitronica

import (
	"errors"
	"testing"
)

func TestRulesFor(t *testing.T) {
	for _, body := range Bodies() {
		rules, err := RulesFor(body.Name)
		if err != nil {
			t.Fatalf("%s: %s", body.Name, err)
		}
		if rules.MinFuel <= 0 || rules.MinPower <= 0 || rules.RequiredData <= 0 || rules.FuelRequirement > 100 {
			t.Fatalf("%s: invalid rules %+v", body.Name, rules)
		}
		if rules.PhaseTolerance != 5 {
			t.Fatalf("%s: phase tolerance %f", body.Name, rules.PhaseTolerance)
		}
		plan, _ := HohmannTransfer("Earth", body.Name)
		if rules.MaxElapsedDays <= plan.Duration {
			t.Fatalf("%s: %f days allowed for a %f days transfer", body.Name, rules.MaxElapsedDays, plan.Duration)
		}
	}
	mars, _ := RulesFor("MARS")
	if mars != (MissionRules{MaxElapsedDays: 500, MinFuel: 10, MinPower: 20, RequiredData: 100, FuelRequirement: 70, PhaseTolerance: 5, DistanceThreshold: 0.1}) {
		t.Fatalf("unexpected Mars rules %+v", mars)
	}
	var unknown *UnknownBodyError
	if _, err := RulesFor("Pluto"); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownBodyError, got %v", err)
	}
	if len(Destinations()) != 8 || Destinations()[0] != "earth" {
		t.Fatalf("unexpected destinations %v", Destinations())
	}
}

func TestParseRules(t *testing.T) {
	if _, err := parseRules([]byte("mars: [1, 2")); err == nil {
		t.Fatal("expected a YAML error")
	}
	if _, err := parseRules([]byte("vulcan:\n  max_elapsed_days: 10\n  phase_tolerance: 5\n")); err == nil {
		t.Fatal("expected an error for an unknown body")
	}
	if _, err := parseRules([]byte("mars:\n  min_fuel: 10\n")); err == nil {
		t.Fatal("expected an error for missing limits")
	}
	table, err := parseRules(rulesYAML)
	if err != nil || len(table) != len(rulesTable) {
		t.Fatalf("embedded rules: %v", err)
	}
	assertPanic(t, func() { mustParseRules([]byte("{")) })
}
