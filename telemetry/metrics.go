package telemetry

import (
	"errors"
	"net/http"
	"time"

	"github.com/gpjt/explorer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "explorer"

// Metrics collects the physics and piloting metrics of a universe.
type Metrics struct {
	ticks        prometheus.Counter
	stepFailures prometheus.Counter
	stepDuration prometheus.Histogram
	simulated    prometheus.Gauge
	thrust       prometheus.Gauge
	jumps        prometheus.Counter
	distance     *prometheus.GaugeVec
	speed        *prometheus.GaugeVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of physics steps",
		}),
		stepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_failures_total",
			Help:      "Total number of aborted physics steps",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall clock time spent computing a physics step",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		simulated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_seconds",
			Help:      "Simulated time since the start",
		}),
		thrust: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "thrust_km_per_s2",
			Help:      "Current thrust of the craft",
		}),
		jumps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jumps_total",
			Help:      "Total number of jumps of the craft",
		}),
		distance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distance_km",
			Help:      "Distance of the craft to the reference body",
		}, []string{"reference"}),
		speed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "speed_km_per_s",
			Help:      "Speed of the craft relative to the reference body",
		}, []string{"reference"}),
	}
	for _, c := range []prometheus.Collector{m.ticks, m.stepFailures, m.stepDuration, m.simulated, m.thrust, m.jumps, m.distance, m.speed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveStep records a step of the universe.
func (m *Metrics) ObserveStep(u *explorer.Universe, took time.Duration, err error) {
	m.stepDuration.Observe(took.Seconds())
	if err != nil {
		m.stepFailures.Inc()
		return
	}
	m.ticks.Inc()
	m.simulated.Set(u.Elapsed())
	craft, ref := u.Craft(), u.Reference()
	if craft == nil {
		return
	}
	m.thrust.Set(craft.Orientation().Thrust())
	if ref != nil && ref != craft {
		m.distance.WithLabelValues(ref.Name()).Set(craft.DistanceTo(ref))
		m.speed.WithLabelValues(ref.Name()).Set(craft.SpeedRelativeTo(ref))
	}
}

// RecordJump records a jump of the craft.
func (m *Metrics) RecordJump() {
	m.jumps.Inc()
}

// Serve exposes the metrics gathered by g on addr under /metrics. It blocks until the server fails.
func Serve(addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
