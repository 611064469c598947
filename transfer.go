package orbitronica

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// launchWindowDays is the width of an acceptable launch window around the optimal date.
const launchWindowDays = 3.0

// HohmannLeg is a Hohmann transfer between two circular coplanar orbits, in whatever
// consistent unit system the radii and μ were provided in.
type HohmannLeg struct {
	A, E                 float64 // transfer ellipse
	V1, V2               float64 // circular velocities at r1 and r2
	VDeparture, VArrival float64 // transfer ellipse velocities at r1 and r2
	DepartureΔv          float64
	ArrivalΔv            float64
	TOF                  float64 // half of the transfer ellipse period
}

// HohmannRadii computes a Hohmann transfer from a circular orbit of radius r1 to one of radius r2
// about a central body of gravitational parameter μ.
// Panics if either radius or μ is not strictly positive.
func HohmannRadii(r1, r2, μ float64) HohmannLeg {
	if r1 <= 0 || r2 <= 0 || μ <= 0 {
		panic(fmt.Errorf("invalid Hohmann inputs r1=%f r2=%f μ=%f", r1, r2, μ))
	}
	aTransfer := 0.5 * (r1 + r2)
	leg := HohmannLeg{A: aTransfer, E: math.Abs(r2-r1) / (r2 + r1)}
	leg.V1 = math.Sqrt(μ / r1)
	leg.V2 = math.Sqrt(μ / r2)
	leg.VDeparture = math.Sqrt(μ * (2/r1 - 1/aTransfer))
	leg.VArrival = math.Sqrt(μ * (2/r2 - 1/aTransfer))
	leg.DepartureΔv = math.Abs(leg.VDeparture - leg.V1)
	leg.ArrivalΔv = math.Abs(leg.V2 - leg.VArrival)
	leg.TOF = math.Pi * math.Sqrt(math.Pow(aTransfer, 3)/μ)
	return leg
}

// TransferPlan is a heliocentric Hohmann transfer between two registered bodies.
// Distances are in km, velocities in km/s, durations in days and angles in degrees.
type TransferPlan struct {
	From, To        string
	SemiMajorAxis   float64
	Eccentricity    float64
	Duration        float64
	DepartureDeltaV float64
	ArrivalDeltaV   float64
	TotalDeltaV     float64
	PhaseAngle      float64
	EnergyCost      float64 // specific energy of the burns, km^2/s^2 (MJ/kg)
	DepartureRadius float64
	ArrivalRadius   float64
}

// Inward returns whether the transfer goes towards the Sun, i.e. departs from the aphelion.
func (p TransferPlan) Inward() bool {
	return p.ArrivalRadius < p.DepartureRadius
}

func (p TransferPlan) String() string {
	return fmt.Sprintf("%s->%s a=%.0f km e=%.4f tof=%.1fd Δv=%.4f+%.4f=%.4f km/s φ=%.2f°", p.From, p.To, p.SemiMajorAxis, p.Eccentricity, p.Duration, p.DepartureDeltaV, p.ArrivalDeltaV, p.TotalDeltaV, p.PhaseAngle)
}

// HohmannTransfer computes the heliocentric Hohmann transfer from the start body to the target body.
func HohmannTransfer(start, target string) (TransferPlan, error) {
	startBody, err := Body(start)
	if err != nil {
		return TransferPlan{}, err
	}
	targetBody, err := Body(target)
	if err != nil {
		return TransferPlan{}, err
	}
	r1 := startBody.SemiMajorAxis
	r2 := targetBody.SemiMajorAxis
	leg := HohmannRadii(r1, r2, Sun.GM())
	days := leg.TOF / Day
	total := leg.DepartureΔv + leg.ArrivalΔv
	return TransferPlan{
		From:            startBody.Name,
		To:              targetBody.Name,
		SemiMajorAxis:   leg.A,
		Eccentricity:    leg.E,
		Duration:        days,
		DepartureDeltaV: leg.DepartureΔv,
		ArrivalDeltaV:   leg.ArrivalΔv,
		TotalDeltaV:     total,
		PhaseAngle:      phaseAngle(targetBody, days),
		EnergyCost:      0.5 * total * total,
		DepartureRadius: r1,
		ArrivalRadius:   r2,
	}, nil
}

// PhaseAngle returns the angle in degrees, in [0, 360), by which the target must lead the start body
// at departure for a rendezvous after transferDays.
func PhaseAngle(start, target string, transferDays float64) (float64, error) {
	if _, err := Body(start); err != nil {
		return 0, err
	}
	targetBody, err := Body(target)
	if err != nil {
		return 0, err
	}
	return phaseAngle(targetBody, transferDays), nil
}

func phaseAngle(target CelestialBody, transferDays float64) float64 {
	return normalizeDegrees(180 - target.MeanMotion()*transferDays)
}

// SynodicPeriod returns the time in days between two successive alignments of the bodies.
// Returns +Inf for bodies sharing the same period.
func SynodicPeriod(a, b string) (float64, error) {
	bodyA, err := Body(a)
	if err != nil {
		return 0, err
	}
	bodyB, err := Body(b)
	if err != nil {
		return 0, err
	}
	if bodyA.Period == bodyB.Period {
		return math.Inf(1), nil
	}
	return bodyA.Period * bodyB.Period / math.Abs(bodyA.Period-bodyB.Period), nil
}

// PhaseAngleAt returns the actual angle in degrees, in [0, 360), by which the target leads the start
// body at the provided date, from the bodies' mean longitudes.
func PhaseAngleAt(start, target string, dt time.Time) (float64, error) {
	return PhaseAngleWith(MeanLongitudes{}, start, target, dt)
}

// PhaseAngleWith is PhaseAngleAt with the longitudes of the bodies given by lon.
func PhaseAngleWith(lon Longitudes, start, target string, dt time.Time) (float64, error) {
	startBody, err := Body(start)
	if err != nil {
		return 0, err
	}
	targetBody, err := Body(target)
	if err != nil {
		return 0, err
	}
	jd := julian.TimeToJD(dt.UTC())
	return normalizeDegrees(lon.Longitude(targetBody, jd) - lon.Longitude(startBody, jd)), nil
}

const (
	windowIterations = 50
	windowTolerance  = 1e-6 // degrees
)

// NextLaunchWindow returns the first date at or after `from` when the actual phase angle matches
// the Hohmann phase angle for this transfer.
func NextLaunchWindow(start, target string, from time.Time) (time.Time, error) {
	return NextLaunchWindowWith(MeanLongitudes{}, start, target, from)
}

// NextLaunchWindowWith is NextLaunchWindow with the longitudes of the bodies given by lon.
// The date is first estimated from the mean motions, then corrected until the phase angle from lon
// matches.
func NextLaunchWindowWith(lon Longitudes, start, target string, from time.Time) (time.Time, error) {
	plan, err := HohmannTransfer(start, target)
	if err != nil {
		return time.Time{}, err
	}
	φ0, err := PhaseAngleWith(lon, start, target, from)
	if err != nil {
		return time.Time{}, err
	}
	startBody, _ := Body(start)
	targetBody, _ := Body(target)
	rate := targetBody.MeanMotion() - startBody.MeanMotion() // deg/day
	if math.Abs(rate) < 1e-12 {
		return from, nil
	}
	refine := func(days float64) float64 {
		for i := 0; i < windowIterations; i++ {
			φ, _ := PhaseAngleWith(lon, start, target, addDays(from, days))
			δ := angleBetween(plan.PhaseAngle, φ)
			if math.Abs(δ) < windowTolerance {
				break
			}
			days += δ / rate
		}
		return days
	}
	days := refine(normalizeDegrees((plan.PhaseAngle-φ0)*math.Copysign(1, rate)) / math.Abs(rate))
	if days < 0 {
		// The correction went back past `from`: the next window is a synodic period later.
		days = refine(days + 360/math.Abs(rate))
	}
	return addDays(from, days), nil
}

func addDays(dt time.Time, days float64) time.Time {
	return dt.Add(time.Duration(days * Day * float64(time.Second)))
}

// LaunchWindow summarizes the next launch opportunity between two bodies.
type LaunchWindow struct {
	Next             time.Time
	RequiredPhase    float64 // degrees
	TransferDuration float64 // days
	WindowDuration   float64 // days
	RepeatPeriod     float64 // days
	EnergyCost       float64
	DeltaV           float64
}

// NextLaunchOpportunity returns the next launch window from the provided date.
func NextLaunchOpportunity(start, target string, from time.Time) (LaunchWindow, error) {
	return NextLaunchOpportunityWith(MeanLongitudes{}, start, target, from)
}

// NextLaunchOpportunityWith is NextLaunchOpportunity with the longitudes of the bodies given by lon.
func NextLaunchOpportunityWith(lon Longitudes, start, target string, from time.Time) (LaunchWindow, error) {
	plan, err := HohmannTransfer(start, target)
	if err != nil {
		return LaunchWindow{}, err
	}
	next, err := NextLaunchWindowWith(lon, start, target, from)
	if err != nil {
		return LaunchWindow{}, err
	}
	synodic, err := SynodicPeriod(start, target)
	if err != nil {
		return LaunchWindow{}, err
	}
	return LaunchWindow{
		Next:             next,
		RequiredPhase:    plan.PhaseAngle,
		TransferDuration: plan.Duration,
		WindowDuration:   launchWindowDays,
		RepeatPeriod:     synodic,
		EnergyCost:       plan.EnergyCost,
		DeltaV:           plan.TotalDeltaV,
	}, nil
}
