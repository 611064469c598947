package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/orbitronica/orbitronica"
)

// Prints the Hohmann transfer and the next launch window from the departure body to every planet,
// or the detail of a single transfer with a gravity assist or a plane change.

const dateFormat = "2006-01-02"

var (
	confDir   string
	departure string
	from      string
	csvTarget string
	target    string
	assist    string
	inclined  bool
	mass      float64
)

func init() {
	flag.StringVar(&confDir, "conf", "", "directory of conf.toml (defaults to $"+orbitronica.ConfigEnv+")")
	flag.StringVar(&departure, "from", "", "departure body (defaults to spacecraft.departure)")
	flag.StringVar(&from, "date", "", "search launch windows from this date ("+dateFormat+", defaults to today)")
	flag.StringVar(&csvTarget, "csv", "", "print the transfer trajectory to this body as CSV instead")
	flag.StringVar(&target, "target", "", "destination of the -assist and -inclined plans")
	flag.StringVar(&assist, "assist", "", "plan the transfer to -target with a gravity assist at this body")
	flag.BoolVar(&inclined, "inclined", false, "plan the transfer to -target with a plane change")
	flag.Float64Var(&mass, "mass", 0, "spacecraft mass in kg (defaults to spacecraft.mass)")
}

func main() {
	flag.Parse()
	conf, err := orbitronica.LoadConfig(confDir)
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}
	logger := orbitronica.NewLogger(conf.Log.Level, conf.Log.File)
	if departure == "" {
		departure = conf.Spacecraft.Departure
	}
	if mass <= 0 {
		mass = conf.Spacecraft.Mass
	}
	start := time.Now().UTC()
	if from != "" {
		if start, err = time.Parse(dateFormat, from); err != nil {
			log.Fatalf("invalid date: %s", err)
		}
	}

	switch {
	case csvTarget != "":
		printTrajectory(csvTarget)
	case assist != "":
		printAssist()
	case inclined:
		printInclined()
	default:
		lon, err := conf.Longitudes(logger)
		if err != nil {
			log.Fatal(err)
		}
		printTable(lon, start)
	}
}

func requireTarget() {
	if target == "" {
		log.Fatal("-target is required")
	}
}

func printTrajectory(body string) {
	plan, err := orbitronica.HohmannTransfer(departure, body)
	if err != nil {
		log.Fatal(err)
	}
	points, err := orbitronica.TrajectoryPoints(plan, 360)
	if err != nil {
		log.Fatal(err)
	}
	if err := orbitronica.ExportTrajectoryCSV(os.Stdout, points); err != nil {
		log.Fatal(err)
	}
}

func printAssist() {
	requireTarget()
	traj, err := orbitronica.PlanGravityAssistTrajectory(departure, assist, target, mass)
	if err != nil {
		log.Fatal(err)
	}
	direct, err := orbitronica.HohmannTransfer(departure, target)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("leg 1: %s\n", traj.FirstLeg)
	fmt.Printf("%s energy gain=%.3e MJ (%.0f kg)\n", traj.Assist, traj.Assist.EnergyGain, mass)
	fmt.Printf("leg 2: %s\n", traj.SecondLeg)
	fmt.Printf("total Δv=%.4f km/s (direct %.4f km/s)\n", traj.TotalDeltaV, direct.TotalDeltaV)
}

func printInclined() {
	requireTarget()
	tr, err := orbitronica.CombinedTransferWithInclination(departure, target)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("transfer: %s\n", tr.Transfer)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "maneuver\tΔv (km/s)\tday\t")
	for _, m := range tr.Sequence {
		fmt.Fprintf(w, "%s\t%.4f\t%.1f\t\n", m.Kind, m.DeltaV, m.Time)
	}
	w.Flush()
	fmt.Printf("plane change of %.3f° at ν=%.2f°\n", tr.PlaneChange.Angle, orbitronica.Rad2deg(tr.PlaneChange.TrueAnomaly))
	fmt.Printf("combined Δv=%.4f km/s, energy=%.3f\n", tr.CombinedDeltaV, tr.TotalEnergyCost)
}

func printTable(lon orbitronica.Longitudes, start time.Time) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "target\ttof (d)\tΔv1 (km/s)\tΔv2 (km/s)\tphase (deg)\tsynodic (d)\tnext window\tfuel (%)\t")
	for _, body := range orbitronica.Bodies() {
		if strings.EqualFold(body.Name, departure) {
			continue
		}
		plan, err := orbitronica.HohmannTransfer(departure, body.Name)
		if err != nil {
			log.Fatal(err)
		}
		window, err := orbitronica.NextLaunchOpportunityWith(lon, departure, body.Name, start)
		if err != nil {
			log.Fatal(err)
		}
		rules, err := orbitronica.RulesFor(body.Name)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.3f\t%.3f\t%.2f\t%.1f\t%s\t%.0f\t\n", body.Name, plan.Duration, plan.DepartureDeltaV, plan.ArrivalDeltaV, plan.PhaseAngle, window.RepeatPeriod, window.Next.Format(dateFormat), rules.FuelRequirement)
	}
	w.Flush()
}
