package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbitronica/orbitronica"
	"github.com/orbitronica/orbitronica/ephemeris"
	"github.com/orbitronica/orbitronica/kvstore"
)

// Fetches heliocentric state vectors from JPL Horizons, cached on disk, and prints them.

const dateFormat = "2006-01-02"

var (
	confDir  string
	bodies   string
	startStr string
	days     int
	step     string
	parallel int
	cull     int64
)

func init() {
	flag.StringVar(&confDir, "conf", "", "directory of conf.toml")
	flag.StringVar(&bodies, "bodies", "earth,mars", "comma separated bodies")
	flag.StringVar(&startStr, "start", "", "first date ("+dateFormat+", defaults to today)")
	flag.IntVar(&days, "days", 30, "number of days")
	flag.StringVar(&step, "step", "1d", "Horizons step size")
	flag.IntVar(&parallel, "parallel", 2, "concurrent requests")
	flag.Int64Var(&cull, "cull", 64<<20, "trim the disk cache to this many bytes when done")
}

func main() {
	flag.Parse()
	conf, err := orbitronica.LoadConfig(confDir)
	if err != nil {
		log.Fatalf("configuration: %s", err)
	}
	logger := orbitronica.NewLogger(conf.Log.Level, conf.Log.File)

	start := time.Now().UTC().Truncate(24 * time.Hour)
	if startStr != "" {
		if start, err = time.Parse(dateFormat, startStr); err != nil {
			log.Fatalf("invalid start: %s", err)
		}
	}
	session, err := kvstore.NewDirStore(conf.Session.Dir)
	if err != nil {
		log.Fatal(err)
	}
	// Kept apart from the session snapshot, which culling must never remove.
	store, err := kvstore.NewDirStore(filepath.Join(session.Dir(), "ephemeris"))
	if err != nil {
		log.Fatal(err)
	}
	cache, err := ephemeris.NewCache(store, conf.Ephemeris.CacheSize, prometheus.NewRegistry(), logger)
	if err != nil {
		log.Fatal(err)
	}
	client := ephemeris.NewClient(conf.Ephemeris.URL, conf.Ephemeris.Rate, cache, logger)

	var reqs []ephemeris.Request
	for _, name := range strings.Split(bodies, ",") {
		reqs = append(reqs, ephemeris.Request{
			Body:  strings.TrimSpace(name),
			Start: start,
			Stop:  start.AddDate(0, 0, days),
			Step:  step,
		})
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	docs, err := client.Prefetch(ctx, reqs, parallel)
	if err != nil {
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
	for i, doc := range docs {
		vectors, err := ephemeris.ParseVectors(doc)
		if err != nil {
			level.Error(logger).Log("body", reqs[i].Body, "err", err)
			continue
		}
		fmt.Printf("# %s\n", reqs[i].Body)
		for _, v := range vectors {
			fmt.Printf("%s %f %f %f %f %f %f %f\n", v.Time.Format(dateFormat), v.JD, v.Position[0], v.Position[1], v.Position[2], v.Velocity[0], v.Velocity[1], v.Velocity[2])
		}
	}
	if err := store.Cull(cull); err != nil {
		level.Warn(logger).Log("status", "could not cull cache", "err", err)
	}
}
