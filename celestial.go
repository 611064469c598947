package orbitronica

import (
	"math"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// G is the gravitational constant in km^3/(kg*s^2).
	G = 6.67430e-20
	// Day is one day in seconds.
	Day = 86400.0
	// J2000 is the Julian day of the J2000 epoch.
	J2000 = 2451545.0
)

// CelestialBody defines a body of the solar system.
// All entries are immutable reference data: distances in km, angles in degrees and periods in days.
type CelestialBody struct {
	Name          string
	Mass          float64 // kg
	Radius        float64 // km
	SemiMajorAxis float64 // km, heliocentric
	Eccentricity  float64
	Inclination   float64 // degrees, ecliptic
	Period        float64 // days
	MeanLongitude float64 // degrees at J2000
	μ             float64
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (c CelestialBody) GM() float64 {
	return c.μ
}

// MeanMotion returns the mean angular rate in degrees per day.
func (c CelestialBody) MeanMotion() float64 {
	return 360 / c.Period
}

// LongitudeAt returns the mean heliocentric longitude in degrees at the provided Julian day.
func (c CelestialBody) LongitudeAt(jd float64) float64 {
	return normalizeDegrees(c.MeanLongitude + c.MeanMotion()*(jd-J2000))
}

// String implements the Stringer interface.
func (c CelestialBody) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial body is the same.
func (c CelestialBody) Equals(b CelestialBody) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.SemiMajorAxis == b.SemiMajorAxis && c.μ == b.μ
}

func newBody(name string, mass, radius, a, e, i, period, λ0 float64) CelestialBody {
	return CelestialBody{name, mass, radius, a, e, i, period, λ0, G * mass}
}

/* Definitions */

// Sun is our closest star. Its μ is the standard heliocentric value rather than G*M.
var Sun = CelestialBody{"Sun", 1.98847e30, 695700, 0, 0, 0, math.Inf(1), 0, 1.32712440018e11}

// Mercury is fast.
var Mercury = newBody("Mercury", 3.3011e23, 2439.7, 57909050, 0.205630, 7.005, 87.969, 252.25084)

// Venus is poisonous.
var Venus = newBody("Venus", 4.8675e24, 6051.8, 108208000, 0.006772, 3.39458, 224.701, 181.97973)

// Earth is home.
var Earth = newBody("Earth", 5.97237e24, 6378.1363, 149598023, 0.0167086, 0.00005, 365.256363, 100.46435)

// Mars is the vacation place.
var Mars = newBody("Mars", 6.4171e23, 3396.19, 227939200, 0.0934, 1.850, 686.980, 355.45332)

// Jupiter is big.
var Jupiter = newBody("Jupiter", 1.8982e27, 71492, 778570000, 0.0489, 1.303, 4332.59, 34.40438)

// Saturn floats and that's really cool.
var Saturn = newBody("Saturn", 5.6834e26, 60268, 1433530000, 0.0565, 2.485, 10759.22, 49.94432)

// Uranus is no joke.
var Uranus = newBody("Uranus", 8.6810e25, 25559, 2872460000, 0.046381, 0.773, 30688.5, 313.23218)

// Neptune is far.
var Neptune = newBody("Neptune", 1.02413e26, 24764, 4495060000, 0.008678, 1.770, 60195, 304.88003)

var registry = []CelestialBody{Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune}

// Bodies returns every body which can be the start or the target of a transfer, ordered by distance to the Sun.
func Bodies() []CelestialBody {
	bodies := make([]CelestialBody, len(registry))
	copy(bodies, registry)
	return bodies
}

// Body returns the registered body from its name (case insensitive).
func Body(name string) (CelestialBody, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, b := range registry {
		if strings.ToLower(b.Name) == key {
			return b, nil
		}
	}
	return CelestialBody{}, &UnknownBodyError{Name: name}
}
