package ephemeris

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ErrNoEphemeris is returned when a document has no $$SOE/$$EOE block.
var ErrNoEphemeris = errors.New("no ephemeris block in document")

// Vector is a heliocentric state at a given epoch.
type Vector struct {
	JD       float64
	Time     time.Time
	Position [3]float64 // km
	Velocity [3]float64 // km/s
}

var (
	epochLine = regexp.MustCompile(`^\s*([0-9]+\.[0-9]+)\s*=`)
	component = regexp.MustCompile(`(VX|VY|VZ|X|Y|Z)\s*=\s*([-+]?[0-9.]+(?:[Ee][-+]?[0-9]+)?)`)
)

// ParseVectors extracts the state vectors of a Horizons VECTORS document.
func ParseVectors(doc json.RawMessage) ([]Vector, error) {
	var envelope struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(doc, &envelope); err != nil {
		return nil, fmt.Errorf("invalid Horizons document: %w", err)
	}
	start := strings.Index(envelope.Result, "$$SOE")
	end := strings.Index(envelope.Result, "$$EOE")
	if start < 0 || end < start {
		return nil, ErrNoEphemeris
	}
	var (
		vectors []Vector
		cur     *Vector
	)
	scanner := bufio.NewScanner(strings.NewReader(envelope.Result[start+len("$$SOE") : end]))
	for scanner.Scan() {
		line := scanner.Text()
		if m := epochLine.FindStringSubmatch(line); m != nil {
			jd, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return nil, err
			}
			vectors = append(vectors, Vector{JD: jd, Time: julian.JDToTime(jd)})
			cur = &vectors[len(vectors)-1]
			continue
		}
		if cur == nil {
			continue
		}
		for _, m := range component.FindAllStringSubmatch(line, -1) {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, err
			}
			switch m[1] {
			case "X":
				cur.Position[0] = v
			case "Y":
				cur.Position[1] = v
			case "Z":
				cur.Position[2] = v
			case "VX":
				cur.Velocity[0] = v
			case "VY":
				cur.Velocity[1] = v
			case "VZ":
				cur.Velocity[2] = v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
