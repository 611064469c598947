package orbitronica

import "math"

const (
	solarPressureAmplitude = 1e-4 // km
	planetaryAmplitude     = 2e-4 // km
)

// perturbation returns a small periodic offset (in km) which emulates solar radiation pressure and
// third body effects on a daily cycle. It is purely cosmetic: the amplitude is many orders of
// magnitude below the orbital scale and nothing in it is physically derived.
func perturbation(simTime float64) []float64 {
	days := simTime / Day
	solar := solarPressureAmplitude * math.Sin(days)
	planetary := planetaryAmplitude * math.Cos(days)
	return []float64{solar, planetary, (solar + planetary) * 0.5}
}
