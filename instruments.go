package orbitronica

import (
	"fmt"
	"strings"
)

// Instrument is a science instrument which can be carried by the spacecraft.
type Instrument uint8

const (
	// Camera is a high resolution surface imager.
	Camera Instrument = iota + 1
	// Spectrometer is a mass spectrometer.
	Spectrometer
	// Radar is a surface mapping radar.
	Radar
	// Gravitometer measures gravitational anomalies.
	Gravitometer
	// MultiSpectral is a multi-band imager.
	MultiSpectral
)

// InstrumentSpec is the static description of an instrument kind.
type InstrumentSpec struct {
	Key         string
	Name        string
	PowerUsage  float64 // W
	DataRate    float64 // relative rate, shown to the operator
	Description string
}

var instrumentSpecs = map[Instrument]InstrumentSpec{
	Camera:        {"camera", "High Resolution Camera", 5, 10, "Captures detailed surface images"},
	Spectrometer:  {"spectrometer", "Mass Spectrometer", 8, 5, "Analyzes atmospheric composition"},
	Radar:         {"radar", "Surface Radar", 12, 15, "Maps surface topology"},
	Gravitometer:  {"gravitometer", "High-Precision Gravitometer", 15, 8, "Measures gravitational fields and anomalies"},
	MultiSpectral: {"multispectral", "Multi-Spectral Imager", 20, 25, "Captures data across multiple wavelength bands"},
}

// Spec returns the static specification of this instrument.
func (i Instrument) Spec() InstrumentSpec {
	s, ok := instrumentSpecs[i]
	if !ok {
		panic(fmt.Errorf("unknown instrument %d", i))
	}
	return s
}

// Valid returns whether this is a known instrument kind.
func (i Instrument) Valid() bool {
	_, ok := instrumentSpecs[i]
	return ok
}

func (i Instrument) String() string {
	if !i.Valid() {
		return fmt.Sprintf("instrument(%d)", uint8(i))
	}
	return instrumentSpecs[i].Key
}

// Instruments returns every known instrument kind.
func Instruments() []Instrument {
	return []Instrument{Camera, Spectrometer, Radar, Gravitometer, MultiSpectral}
}

// ParseInstrument returns the instrument of the provided key, e.g. "radar" (case insensitive).
func ParseInstrument(key string) (Instrument, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for inst, spec := range instrumentSpecs {
		if spec.Key == k {
			return inst, nil
		}
	}
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownInstrument, key)
}

// ParseInstruments parses a list of instrument keys. An empty list is rejected and duplicates are
// only kept once.
func ParseInstruments(keys []string) ([]Instrument, error) {
	if len(keys) == 0 {
		return nil, ErrNoInstruments
	}
	seen := make(map[Instrument]bool, len(keys))
	var set []Instrument
	for _, key := range keys {
		inst, err := ParseInstrument(key)
		if err != nil {
			return nil, err
		}
		if !seen[inst] {
			seen[inst] = true
			set = append(set, inst)
		}
	}
	return set, nil
}

// PowerUsage returns the total power draw in W of the instruments.
func PowerUsage(set []Instrument) (w float64) {
	for _, inst := range set {
		w += inst.Spec().PowerUsage
	}
	return
}
