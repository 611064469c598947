package orbitronica

import (
	"fmt"
	"math"
)

const (
	// periapsisMargin is applied to the body radius to get the flyby periapsis radius.
	periapsisMargin = 1.1
	// DefaultSpacecraftMass is the mass in kg used when planning assists without a vehicle.
	DefaultSpacecraftMass = 1000.0
)

// GravityAssistResult stores the outcome of a flyby about a body.
type GravityAssistResult struct {
	Body            string
	BendAngle       float64 // degrees
	VelocityChange  float64 // km/s
	PeriapsisRadius float64 // km
	FlybyDuration   float64 // seconds
	EnergyGain      float64 // kg*km^2/s^2 (MJ)
	// OutgoingVelocity is the hyperbolic excess velocity after the flyby (km/s): the approach
	// velocity turned by the bend angle, counterclockwise as seen from the ecliptic north pole.
	OutgoingVelocity []float64
}

func (r GravityAssistResult) String() string {
	return fmt.Sprintf("%s flyby: δ=%.3f° Δv=%.4f km/s rP=%.1f km", r.Body, r.BendAngle, r.VelocityChange, r.PeriapsisRadius)
}

// GATurnAngle computes the turn angle (in radians) about a given body based on the radius of periapsis.
func GATurnAngle(vInf, rP float64, body CelestialBody) float64 {
	ρ := math.Acos(1 / (1 + math.Pow(vInf, 2)*(rP/body.μ)))
	return math.Pi - 2*ρ
}

// GravityAssist computes a flyby of the named body for a spacecraft of the provided mass (kg)
// approaching with the hyperbolic excess velocity vector vApproach (km/s).
func GravityAssist(mass float64, body string, vApproach []float64) (GravityAssistResult, error) {
	assist, err := Body(body)
	if err != nil {
		return GravityAssistResult{}, err
	}
	if len(vApproach) != 3 {
		return GravityAssistResult{}, &InvalidApproachError{Body: assist.Name, VInf: math.NaN()}
	}
	vInf := norm(vApproach)
	if !isFinite(vInf) || vInf <= 0 {
		return GravityAssistResult{}, &InvalidApproachError{Body: assist.Name, VInf: vInf}
	}
	rP := assist.Radius * periapsisMargin
	δ := GATurnAngle(vInf, rP, assist)
	Δv := 2 * vInf * math.Sin(δ/2)
	return GravityAssistResult{
		Body:             assist.Name,
		BendAngle:        Rad2deg(δ),
		VelocityChange:   Δv,
		PeriapsisRadius:  rP,
		FlybyDuration:    2 * rP / vInf,
		EnergyGain:       0.5 * mass * (math.Pow(vInf+Δv, 2) - math.Pow(vInf, 2)),
		OutgoingVelocity: turn(vApproach, δ),
	}, nil
}

// turn rotates v by δ radians towards pole×v, i.e. counterclockwise as seen from the ecliptic north
// pole. A v along the pole is turned towards -y.
func turn(v []float64, δ float64) []float64 {
	u := unit(v)
	p := unit([]float64{-u[1], u[0], 0})
	if norm(p) == 0 {
		p = []float64{0, -u[2], 0}
	}
	vInf := norm(v)
	sinδ, cosδ := math.Sincos(δ)
	out := make([]float64, 3)
	for i := range out {
		out[i] = vInf * (cosδ*u[i] + sinδ*p[i])
	}
	return out
}

// ApproachVelocity returns the hyperbolic excess velocity vector when arriving at the end of the
// provided transfer, i.e. the mismatch with the circular velocity of the arrival body, along track.
func ApproachVelocity(leg TransferPlan) []float64 {
	vInf := leg.ArrivalDeltaV
	if leg.Inward() {
		// Arriving at perihelion faster than the body.
		return []float64{0, vInf, 0}
	}
	return []float64{0, -vInf, 0}
}

// AssistTrajectory is a two leg trajectory with a gravity assist in between.
type AssistTrajectory struct {
	FirstLeg    TransferPlan
	Assist      GravityAssistResult
	SecondLeg   TransferPlan
	TotalDeltaV float64
}

// PlanGravityAssistTrajectory chains a Hohmann transfer to the assist body, a flyby of that body and a
// Hohmann transfer to the target.
func PlanGravityAssistTrajectory(start, assist, target string, mass float64) (AssistTrajectory, error) {
	first, err := HohmannTransfer(start, assist)
	if err != nil {
		return AssistTrajectory{}, err
	}
	ga, err := GravityAssist(mass, assist, ApproachVelocity(first))
	if err != nil {
		return AssistTrajectory{}, err
	}
	second, err := HohmannTransfer(assist, target)
	if err != nil {
		return AssistTrajectory{}, err
	}
	return AssistTrajectory{
		FirstLeg:    first,
		Assist:      ga,
		SecondLeg:   second,
		TotalDeltaV: first.TotalDeltaV + ga.VelocityChange + second.ArrivalDeltaV,
	}, nil
}
