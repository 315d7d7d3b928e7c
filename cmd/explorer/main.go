package main

import (
	"flag"
	"log"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gpjt/explorer"
	"github.com/gpjt/explorer/telemetry"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Flies the craft of a scenario in a window.

var (
	scenario    string
	metricsAddr string
	warp        float64
)

func init() {
	flag.StringVar(&scenario, "scenario", "", "scenario TOML file (default: $"+explorer.ConfigEnv+", or the low earth orbit scenario)")
	flag.StringVar(&metricsAddr, "metrics", "", "address to serve Prometheus metrics on, e.g. :9100")
	flag.Float64Var(&warp, "warp", 1, "initial time warp")
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

	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	u, err := explorer.NewUniverse(conf, logger)
	if err != nil {
		log.Fatalf("invalid scenario %s: %s", conf.Name, err)
	}

	var metrics *telemetry.Metrics
	if metricsAddr != "" {
		if metrics, err = telemetry.NewMetrics(prometheus.DefaultRegisterer); err != nil {
			log.Fatalf("could not register metrics: %s", err)
		}
		go func() {
			if err := telemetry.Serve(metricsAddr, prometheus.DefaultGatherer); err != nil {
				logger.Log("level", "critical", "subsys", "metrics", "err", err)
			}
		}()
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Explorer - " + conf.Name)
	if err := ebiten.RunGame(NewGame(u, conf.TimeScale, warp, metrics, logger)); err != nil {
		log.Fatal(err)
	}
}
