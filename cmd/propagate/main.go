package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gpjt/explorer"
	"github.com/gpjt/explorer/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

// This code only reads the scenario and propagates it, without a window.

var (
	scenario    string
	duration    time.Duration
	timeStep    time.Duration
	outputDir   string
	asCSV       bool
	asXYZV      bool
	bodies      string
	metricsAddr string
	verbose     bool
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "scenario TOML file (default: $"+explorer.ConfigEnv+", or the low earth orbit scenario)")
	flag.DurationVar(&duration, "duration", 24*time.Hour, "simulated duration")
	flag.DurationVar(&timeStep, "step", explorer.StepSize, "time step")
	flag.StringVar(&outputDir, "output", ".", "directory of the exported files")
	flag.BoolVar(&asCSV, "csv", false, "export the states as CSV")
	flag.BoolVar(&asXYZV, "xyzv", false, "export the states as Cosmographia interpolated states")
	flag.StringVar(&bodies, "bodies", "", "comma separated bodies to export (default: all)")
	flag.StringVar(&metricsAddr, "metrics", "", "address to serve Prometheus metrics on, e.g. :9100")
	flag.BoolVar(&verbose, "verbose", false, "print the scenario")
}

func main() {
	flag.Parse()
	var (
		conf explorer.Scenario
		err  error
	)
	if scenario != "" {
		conf, err = explorer.LoadScenario(scenario)
	} else {
		conf, err = explorer.ScenarioFromEnv()
	}
	if err != nil {
		log.Fatalf("could not load scenario: %s", err)
	}
	if verbose {
		log.Printf("[conf] %s: %d bodies from %s, step %s for %s\n", conf.Name, len(conf.Bodies), conf.Epoch, timeStep, duration)
	}

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	u, err := explorer.NewUniverse(conf, logger)
	if err != nil {
		log.Fatalf("invalid scenario %s: %s", conf.Name, err)
	}

	export := explorer.ExportConfig{Dir: outputDir, Filename: strings.ReplaceAll(conf.Name, " ", "_"), XYZV: asXYZV, AsCSV: asCSV}
	if bodies != "" {
		export.Bodies = strings.Split(bodies, ",")
	}
	mission, err := explorer.NewMission(u, timeStep, u.Epoch().Add(duration), export)
	if err != nil {
		log.Fatal(err)
	}

	if metricsAddr != "" {
		metrics, err := telemetry.NewMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			log.Fatalf("could not register metrics: %s", err)
		}
		mission.Observer = metrics
		go func() {
			if err := telemetry.Serve(metricsAddr, prometheus.DefaultGatherer); err != nil {
				logger.Log("level", "critical", "subsys", "metrics", "err", err)
			}
		}()
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		mission.StopPropagation()
	}()

	err = mission.Propagate()
	fmt.Println(telemetry.FromUniverse(u, 1).Render())
	if err != nil {
		log.Fatal(err)
	}
}
