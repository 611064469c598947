package orbitronica

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// MissionRules are the per-destination thresholds of a mission.
type MissionRules struct {
	MaxElapsedDays    float64 `yaml:"max_elapsed_days"`
	MinFuel           float64 `yaml:"min_fuel"`         // percent
	MinPower          float64 `yaml:"min_power"`        // percent
	RequiredData      float64 `yaml:"required_data"`    // MB
	FuelRequirement   float64 `yaml:"fuel_requirement"` // percent needed at launch
	PhaseTolerance    float64 `yaml:"phase_tolerance"`  // degrees around the Hohmann phase angle
	DistanceThreshold float64 `yaml:"distance_threshold"`
}

var rulesTable = mustParseRules(rulesYAML)

func parseRules(data []byte) (map[string]MissionRules, error) {
	table := make(map[string]MissionRules)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("could not parse mission rules: %w", err)
	}
	for name, r := range table {
		if _, err := Body(name); err != nil {
			return nil, fmt.Errorf("mission rules for %s: %w", name, err)
		}
		if r.MaxElapsedDays <= 0 || r.PhaseTolerance <= 0 {
			return nil, fmt.Errorf("mission rules for %s: max_elapsed_days and phase_tolerance must be positive", name)
		}
	}
	return table, nil
}

func mustParseRules(data []byte) map[string]MissionRules {
	table, err := parseRules(data)
	if err != nil {
		panic(err)
	}
	return table
}

// RulesFor returns the mission rules of the provided destination.
func RulesFor(target string) (MissionRules, error) {
	r, ok := rulesTable[strings.ToLower(strings.TrimSpace(target))]
	if !ok {
		return MissionRules{}, &UnknownBodyError{Name: target}
	}
	return r, nil
}

// Destinations returns the names of all destinations which have mission rules, sorted.
func Destinations() []string {
	names := make([]string, 0, len(rulesTable))
	for name := range rulesTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
