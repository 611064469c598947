package orbitronica

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// TrajectoryPoint is a sample of a transfer trajectory, heliocentric in the orbital plane.
type TrajectoryPoint struct {
	Day      float64    `json:"day"`      // days after departure
	Position [3]float64 `json:"position"` // km
	Velocity [3]float64 `json:"velocity"` // km/s
}

// TrajectoryPoints samples the transfer half ellipse of the plan at steps+1 evenly spaced times,
// from departure to arrival included.
func TrajectoryPoints(plan TransferPlan, steps int) ([]TrajectoryPoint, error) {
	if steps < 1 {
		return nil, fmt.Errorf("at least one step is needed, got %d", steps)
	}
	a, e := plan.SemiMajorAxis, plan.Eccentricity
	μ := Sun.GM()
	M0 := 0.0
	if plan.Inward() {
		M0 = math.Pi
	}
	points := make([]TrajectoryPoint, 0, steps+1)
	for i := 0; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		x, y, E, err := KeplerPosition(a, e, M0+math.Pi*frac)
		if err != nil {
			return nil, err
		}
		sinE, cosE := math.Sincos(E)
		r := a * (1 - e*cosE)
		k := math.Sqrt(μ*a) / r
		points = append(points, TrajectoryPoint{
			Day:      plan.Duration * frac,
			Position: [3]float64{x, y, 0},
			Velocity: [3]float64{-k * sinE, k * math.Sqrt(1-e*e) * cosE, 0},
		})
	}
	return points, nil
}

// ExportTrajectoryCSV writes the points as CSV with a header row.
func ExportTrajectoryCSV(w io.Writer, points []TrajectoryPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "x_km", "y_km", "z_km", "vx_kms", "vy_kms", "vz_kms"}); err != nil {
		return err
	}
	for _, p := range points {
		record := []string{ftoa(p.Day)}
		for _, v := range p.Position {
			record = append(record, ftoa(v))
		}
		for _, v := range p.Velocity {
			record = append(record, ftoa(v))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ExportXYZV writes the points as interpolated states (JD x y z vx vy vz, space separated) as read by
// Cosmographia, with the julian dates counted from the launch date.
func ExportXYZV(w io.Writer, points []TrajectoryPoint, launch time.Time) error {
	jd0 := julian.TimeToJD(launch.UTC())
	for _, p := range points {
		if _, err := fmt.Fprintf(w, "%f %f %f %f %f %f %f\n", jd0+p.Day, p.Position[0], p.Position[1], p.Position[2], p.Velocity[0], p.Velocity[1], p.Velocity[2]); err != nil {
			return err
		}
	}
	return nil
}

// ParseXYZV reads interpolated states written by ExportXYZV. Lines starting with # are ignored.
func ParseXYZV(s string, launch time.Time) ([]TrajectoryPoint, error) {
	jd0 := julian.TimeToJD(launch.UTC())
	r := csv.NewReader(strings.NewReader(s))
	r.Comma = ' '
	r.Comment = '#'
	r.FieldsPerRecord = 7
	var points []TrajectoryPoint
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		var vals [7]float64
		for i, field := range record {
			if vals[i], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("line %d: %w", len(points)+1, err)
			}
		}
		points = append(points, TrajectoryPoint{
			Day:      vals[0] - jd0,
			Position: [3]float64{vals[1], vals[2], vals[3]},
			Velocity: [3]float64{vals[4], vals[5], vals[6]},
		})
	}
	return points, nil
}
