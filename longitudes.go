package orbitronica

import (
	"fmt"
	"os"
	"sync"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/soniakeys/meeus/v3/planetposition"
)

// Longitudes gives the heliocentric ecliptic longitude (J2000) in degrees of a body at a Julian day.
type Longitudes interface {
	Longitude(body CelestialBody, jd float64) float64
}

// MeanLongitudes uses the mean longitudes of the body table, as if orbits were circular.
type MeanLongitudes struct{}

// Longitude implements Longitudes.
func (MeanLongitudes) Longitude(body CelestialBody, jd float64) float64 {
	return body.LongitudeAt(jd)
}

var vsop87Planets = map[string]int{
	Mercury.Name: planetposition.Mercury,
	Venus.Name:   planetposition.Venus,
	Earth.Name:   planetposition.Earth,
	Mars.Name:    planetposition.Mars,
	Jupiter.Name: planetposition.Jupiter,
	Saturn.Name:  planetposition.Saturn,
	Uranus.Name:  planetposition.Uranus,
	Neptune.Name: planetposition.Neptune,
}

// VSOP87 computes true heliocentric longitudes from the VSOP87B files (VSOP87B.ear etc.) of a
// directory. Planets are loaded on first use. A body whose file cannot be loaded falls back to its
// mean longitude.
type VSOP87 struct {
	dir     string
	logger  kitlog.Logger
	mu      sync.Mutex
	planets map[string]*planetposition.V87Planet // nil when unavailable
}

// NewVSOP87 returns the VSOP87 longitudes of the files in dir.
func NewVSOP87(dir string, logger kitlog.Logger) (*VSOP87, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &VSOP87{
		dir:     dir,
		logger:  kitlog.With(logger, "subsys", "vsop87"),
		planets: make(map[string]*planetposition.V87Planet),
	}, nil
}

// Longitude implements Longitudes.
func (v *VSOP87) Longitude(body CelestialBody, jd float64) float64 {
	planet := v.planet(body.Name)
	if planet == nil {
		return body.LongitudeAt(jd)
	}
	l, _, _ := planet.Position2000(jd)
	return normalizeDegrees(l.Deg())
}

func (v *VSOP87) planet(name string) *planetposition.V87Planet {
	v.mu.Lock()
	defer v.mu.Unlock()
	if p, ok := v.planets[name]; ok {
		return p
	}
	ibody, ok := vsop87Planets[name]
	if !ok {
		v.planets[name] = nil
		return nil
	}
	p, err := planetposition.LoadPlanetPath(ibody, v.dir)
	if err == nil {
		// Files without any series parse fine but put every planet on the Sun.
		if _, _, r := p.Position2000(J2000); !(r > 0) {
			err = fmt.Errorf("no VSOP87 series for %s", name)
		}
	}
	if err != nil {
		level.Warn(v.logger).Log("body", name, "status", "using mean longitude", "err", err)
		p = nil
	}
	v.planets[name] = p
	return p
}
