package orbitronica

import (
	"math"
)

// PlaneChange is an inclination change maneuver.
type PlaneChange struct {
	DeltaV      float64 // km/s
	Angle       float64 // degrees
	TrueAnomaly float64 // radians, optimal point
	MeanAnomaly float64 // radians, optimal point
	EnergyCost  float64 // km^2/s^2
}

// InclinationChange computes a plane change on a circular-equivalent orbit of semi-major axis a (km)
// from one inclination to another (degrees). The longitude (radians) and eccentricity locate the
// optimal node crossing.
func InclinationChange(a, fromIncl, toIncl, longitude, e float64) PlaneChange {
	vOrbit := math.Sqrt(Sun.GM() / a)
	Δi := math.Abs(fromIncl - toIncl)
	Δv := 2 * vOrbit * math.Sin(Deg2rad(Δi)/2)
	sinλ, cosλ := math.Sincos(longitude)
	ν := math.Atan2(sinλ*math.Cos(Deg2rad(toIncl)), cosλ)
	return PlaneChange{
		DeltaV:      Δv,
		Angle:       Δi,
		TrueAnomaly: ν,
		MeanAnomaly: TrueToMeanAnomaly(ν, e),
		EnergyCost:  0.5 * Δv * Δv,
	}
}

// ManeuverKind identifies a burn in a maneuver sequence.
type ManeuverKind uint8

const (
	// TransferInjection leaves the departure orbit.
	TransferInjection ManeuverKind = iota + 1
	// PlaneChangeBurn changes the inclination at mid transfer.
	PlaneChangeBurn
	// OrbitInsertion circularizes at the target.
	OrbitInsertion
)

func (k ManeuverKind) String() string {
	switch k {
	case TransferInjection:
		return "Transfer Injection"
	case PlaneChangeBurn:
		return "Plane Change"
	case OrbitInsertion:
		return "Orbit Insertion"
	}
	panic("cannot stringify unknown maneuver kind")
}

// Maneuver is a single burn of a sequence.
type Maneuver struct {
	Kind   ManeuverKind
	DeltaV float64 // km/s
	Time   float64 // days after departure
}

// InclinedTransfer is a Hohmann transfer combined with a mid-course plane change.
type InclinedTransfer struct {
	Transfer    TransferPlan
	PlaneChange PlaneChange
	Sequence    []Maneuver
	// CombinedDeltaV is the root sum square of the burns, which assumes near-orthogonal burns.
	CombinedDeltaV  float64
	TotalEnergyCost float64
}

// CombinedTransferWithInclination plans a Hohmann transfer between the bodies which also matches
// the inclination of the target.
func CombinedTransferWithInclination(start, target string) (InclinedTransfer, error) {
	plan, err := HohmannTransfer(start, target)
	if err != nil {
		return InclinedTransfer{}, err
	}
	startBody, _ := Body(start)
	targetBody, _ := Body(target)
	pc := InclinationChange(plan.SemiMajorAxis, startBody.Inclination, targetBody.Inclination, 0, plan.Eccentricity)
	seq := []Maneuver{
		{TransferInjection, plan.DepartureDeltaV, 0},
		{PlaneChangeBurn, pc.DeltaV, plan.Duration * 0.5},
		{OrbitInsertion, plan.ArrivalDeltaV, plan.Duration},
	}
	var sumSq float64
	for _, m := range seq {
		sumSq += m.DeltaV * m.DeltaV
	}
	return InclinedTransfer{
		Transfer:        plan,
		PlaneChange:     pc,
		Sequence:        seq,
		CombinedDeltaV:  math.Sqrt(sumSq),
		TotalEnergyCost: plan.EnergyCost + pc.EnergyCost,
	}, nil
}
