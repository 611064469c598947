package orbitronica

import (
	"fmt"
	"math"
)

const (
	keplerε       = 1e-6 // radians of eccentric anomaly
	keplerMaxIter = 100
)

// OrbitalState is the position of a vehicle on its orbit at a given simulation time.
// Positions are in km in the orbital plane (z only carries the perturbation), speed in km/s.
type OrbitalState struct {
	X, Y, Z          float64
	Speed            float64
	EccentricAnomaly float64 // radians
	SimTime          float64 // seconds
}

// R returns the position vector.
func (s OrbitalState) R() []float64 {
	return []float64{s.X, s.Y, s.Z}
}

// RNorm returns the distance to the focus.
func (s OrbitalState) RNorm() float64 {
	return norm(s.R())
}

func (s OrbitalState) String() string {
	return fmt.Sprintf("r=[%.1f %.1f %.4f] km v=%.4f km/s E=%.6f", s.X, s.Y, s.Z, s.Speed, s.EccentricAnomaly)
}

// SolveKepler solves Kepler's equation E - e*sin(E) = M for the eccentric anomaly E with
// Newton-Raphson seeded at M. Only elliptical orbits (0 <= e < 1) are supported.
func SolveKepler(M, e float64) (float64, error) {
	if !isFinite(M) || !isFinite(e) || e < 0 || e >= 1 {
		return math.NaN(), &ConvergenceError{MeanAnomaly: M, Eccentricity: e}
	}
	E := M
	for iter := 1; iter <= keplerMaxIter; iter++ {
		sinE, cosE := math.Sincos(E)
		ΔE := (E - e*sinE - M) / (1 - e*cosE)
		E -= ΔE
		if math.Abs(ΔE) <= keplerε {
			return E, nil
		}
	}
	return math.NaN(), &ConvergenceError{MeanAnomaly: M, Eccentricity: e, Iterations: keplerMaxIter}
}

// MeanAnomalyFromEccentric returns the mean anomaly from the eccentric anomaly (both in radians).
func MeanAnomalyFromEccentric(E, e float64) float64 {
	return E - e*math.Sin(E)
}

// TrueToMeanAnomaly converts a true anomaly into a mean anomaly in [0, 2π).
func TrueToMeanAnomaly(ν, e float64) float64 {
	sinν2, cosν2 := math.Sincos(ν / 2)
	E := 2 * math.Atan2(math.Sqrt(1-e)*sinν2, math.Sqrt(1+e)*cosν2)
	M := math.Mod(MeanAnomalyFromEccentric(E, e), 2*math.Pi)
	if M < 0 {
		M += 2 * math.Pi
	}
	return M
}

// KeplerPosition returns the position in the orbital plane, with the focus at the origin and the
// periapsis along +x, for the provided semi-major axis, eccentricity and mean anomaly.
func KeplerPosition(a, e, M float64) (x, y, E float64, err error) {
	E, err = SolveKepler(M, e)
	if err != nil {
		return math.NaN(), math.NaN(), E, err
	}
	sinE, cosE := math.Sincos(E)
	x = a * (cosE - e)
	y = a * math.Sqrt(1-e*e) * sinE
	return
}

// OrbitalPosition returns the heliocentric state of a vehicle on the orbit (a in km) at the provided
// mean anomaly. The simulated time (in seconds) only drives the perturbation term.
func OrbitalPosition(a, e, M, simTime float64) (OrbitalState, error) {
	x, y, E, err := KeplerPosition(a, e, M)
	if err != nil {
		return OrbitalState{}, err
	}
	pert := perturbation(simTime)
	r := a * (1 - e*math.Cos(E))
	return OrbitalState{
		X:                x + pert[0],
		Y:                y + pert[1],
		Z:                pert[2],
		Speed:            math.Sqrt(Sun.GM() * (2/r - 1/a)),
		EccentricAnomaly: E,
		SimTime:          simTime,
	}, nil
}
