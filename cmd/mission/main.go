package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/orbitronica/orbitronica"
	"github.com/orbitronica/orbitronica/kvstore"
	"github.com/orbitronica/orbitronica/telemetry"
)

// Plans a mission, or resumes the saved one, then runs it until it ends or is interrupted.

const dateFormat = "2006-01-02"

var (
	confDir     string
	target      string
	instruments string
	launch      string
	resume      bool
	fast        bool
	trajectory  string
)

func init() {
	flag.StringVar(&confDir, "conf", "", "directory of conf.toml (defaults to $"+orbitronica.ConfigEnv+")")
	flag.StringVar(&target, "target", "Mars", "destination body")
	flag.StringVar(&instruments, "instruments", "camera,spectrometer", "comma separated instruments")
	flag.StringVar(&launch, "launch", "", "launch date as "+dateFormat+" (defaults to the next launch window)")
	flag.BoolVar(&resume, "resume", false, "resume the saved mission instead of planning a new one")
	flag.BoolVar(&fast, "fast", false, "propagate without waiting between ticks")
	flag.StringVar(&trajectory, "trajectory", "", "write the transfer trajectory to this CSV file")
}

func main() {
	flag.Parse()
	conf, err := orbitronica.LoadConfig(confDir)
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}
	logger := orbitronica.NewLogger(conf.Log.Level, conf.Log.File)
	if err := run(conf, logger); err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

func run(conf orbitronica.Config, logger kitlog.Logger) error {
	store, err := kvstore.NewDirStore(conf.Session.Dir)
	if err != nil {
		return err
	}
	metrics := orbitronica.NewMetrics()
	session := orbitronica.NewSession(conf, store, logger, metrics)
	hub := telemetry.NewHub(logger)
	defer hub.Close()
	lon, err := conf.Longitudes(logger)
	if err != nil {
		return err
	}
	session.UseLongitudes(lon)

	if resume {
		if err := session.Load(); err != nil {
			return fmt.Errorf("could not resume: %w", err)
		}
	} else {
		req, err := planRequest(conf, lon)
		if err != nil {
			return err
		}
		if _, err := session.Plan(req); err != nil {
			return err
		}
	}
	state, err := session.State()
	if err != nil {
		return err
	}
	level.Info(logger).Log("mission", state)
	if trajectory != "" {
		if err := writeTrajectory(state.Plan, trajectory); err != nil {
			return err
		}
	}

	hub.OnConnect(func() []telemetry.Message {
		points, err := orbitronica.TrajectoryPoints(state.Plan, 180)
		if err != nil {
			return nil
		}
		return []telemetry.Message{{Type: "plan", Data: state.Plan}, {Type: "trajectory", Data: points}}
	})
	session.OnFrame(func(f orbitronica.Frame) {
		hub.Broadcast("frame", f)
	})
	session.OnNotify(func(msg string) {
		hub.Broadcast("notification", msg)
		fmt.Println(msg)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	serve(ctx, g, conf.Metrics.Addr, metrics.Handler(), logger)
	serve(ctx, g, conf.Telemetry.Addr, hub, logger)

	g.Go(func() error {
		// Stops the servers once the mission is over.
		defer stop()
		if fast {
			_, err := session.Propagate(^uint64(0))
			return err
		}
		if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	err = g.Wait()
	if saveErr := session.Save(); saveErr != nil {
		level.Error(logger).Log("status", "could not save", "err", saveErr)
	}
	return err
}

func planRequest(conf orbitronica.Config, lon orbitronica.Longitudes) (orbitronica.PlanRequest, error) {
	req := orbitronica.PlanRequest{Target: target}
	for _, inst := range strings.Split(instruments, ",") {
		if inst = strings.TrimSpace(inst); inst != "" {
			req.Instruments = append(req.Instruments, inst)
		}
	}
	if launch == "" {
		dt, err := orbitronica.NextLaunchWindowWith(lon, conf.Spacecraft.Departure, target, time.Now().UTC())
		if err != nil {
			return req, err
		}
		req.LaunchDate = dt
		return req, nil
	}
	dt, err := time.Parse(dateFormat, launch)
	if err != nil {
		return req, fmt.Errorf("launch date: %w", err)
	}
	req.LaunchDate = dt
	return req, nil
}

func writeTrajectory(plan orbitronica.TransferPlan, path string) error {
	points, err := orbitronica.TrajectoryPoints(plan, 360)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := orbitronica.ExportTrajectoryCSV(f, points); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// serve runs an HTTP server on addr, if set, until the context is done.
func serve(ctx context.Context, g *errgroup.Group, addr string, h http.Handler, logger kitlog.Logger) {
	if addr == "" {
		return
	}
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		level.Info(logger).Log("status", "listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
}
