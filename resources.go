package orbitronica

import (
	"fmt"
	"math"
)

const (
	maxLevel = 100.0 // percent
	minLevel = 0.0
)

// Resources are the consumables of the spacecraft.
type Resources struct {
	Fuel          float64 `msgpack:"fuel" json:"fuel"`   // percent
	Power         float64 `msgpack:"power" json:"power"` // percent
	Data          float64 `msgpack:"data" json:"data"`   // MB collected
	FuelDepleted  bool    `msgpack:"fuelDepleted" json:"fuelDepleted"`
	PowerDepleted bool    `msgpack:"powerDepleted" json:"powerDepleted"`
}

// FullResources returns full tanks and batteries with no data.
func FullResources() Resources {
	return Resources{Fuel: maxLevel, Power: maxLevel}
}

func (r Resources) String() string {
	return fmt.Sprintf("fuel=%.2f%% power=%.2f%% data=%.1fMB", r.Fuel, r.Power, r.Data)
}

// set updates the levels from unclamped values. Fuel and power are clamped to [0, 100] and an
// underflow latches the depletion flag. Data is only floored at zero.
func (r *Resources) set(fuel, power, data float64) {
	if fuel < minLevel {
		r.FuelDepleted = true
	}
	if power < minLevel {
		r.PowerDepleted = true
	}
	r.Fuel = clampLevel(fuel)
	r.Power = clampLevel(power)
	r.Data = math.Max(data, 0)
}

func clampLevel(v float64) float64 {
	if math.IsNaN(v) {
		return minLevel
	}
	return math.Max(minLevel, math.Min(maxLevel, v))
}

// ResourceModel holds the linear consumption and accumulation rates, per tick at unit speed.
type ResourceModel struct {
	FuelRate  float64 // percent per tick
	PowerRate float64 // percent per tick
	DataRate  float64 // MB per tick and per instrument, once the target is reached
}

// DefaultResourceModel is the nominal consumption of the spacecraft.
var DefaultResourceModel = ResourceModel{FuelRate: 0.1, PowerRate: 0.05, DataRate: 0.5}

// Rates returns the signed rates of change of fuel, power and data per tick at the provided speed.
func (m ResourceModel) Rates(speed float64, instruments int, targetReached bool) (fuel, power, data float64) {
	fuel = -m.FuelRate * speed
	power = -m.PowerRate * speed
	if targetReached {
		data = m.DataRate * float64(instruments) * speed
	}
	return
}

// Apply returns the resources after one tick.
func (m ResourceModel) Apply(r Resources, speed float64, instruments int, targetReached bool) Resources {
	dFuel, dPower, dData := m.Rates(speed, instruments, targetReached)
	r.set(r.Fuel+dFuel, r.Power+dPower, r.Data+dData)
	return r
}
