package explorer

import (
	"fmt"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"golang.org/x/time/rate"
)

const (
	// StepSize is the default step size of propagation.
	StepSize = 1 * time.Second
	// maxPropagation is the hard limit of a propagation without end date.
	maxPropagation = 24 * 3652.5 * time.Hour
)

// StepObserver is notified after each step of a propagation.
type StepObserver interface {
	ObserveStep(u *Universe, took time.Duration, err error)
}

/* Handles the headless propagations. */

// Mission propagates a universe until a given date, and streams its states to the exporter.
type Mission struct {
	Universe        *Universe
	StartDT, StopDT time.Time
	Observer        StepObserver // optional
	step            time.Duration
	stopChan        chan bool
	histChan        chan State
	wg              sync.WaitGroup
	exportErr       error
	status          rate.Sometimes
	logger          kitlog.Logger
}

// NewMission returns a new Mission which will step the universe by `step` until `stop`.
// If the stop date is before the current epoch of the universe, the propagation is limited to ten years.
func NewMission(u *Universe, step time.Duration, stop time.Time, conf ExportConfig) (*Mission, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeStep, step)
	}
	m := &Mission{
		Universe: u,
		StartDT:  u.Epoch(),
		StopDT:   stop.UTC(),
		step:     step,
		stopChan: make(chan bool, 1),
		status:   rate.Sometimes{Interval: 10 * time.Second},
		logger:   u.logger,
	}
	if m.StopDT.Before(m.StartDT) {
		m.logger.Log("level", "warning", "subsys", "astro", "message", "no end date")
		m.StopDT = m.StartDT.Add(maxPropagation)
	}
	// If nothing is exported, then no output will be written.
	if !conf.IsUseless() {
		m.histChan = make(chan State, 1000) // a 1k entry buffer
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.exportErr = StreamStates(conf, m.histChan)
		}()
		// Write the first data point.
		m.histChan <- u.Snapshot()
	}
	return m, nil
}

// LogStatus logs the status of the propagation and of the craft.
func (m *Mission) LogStatus() {
	keyvals := []interface{}{"level", "info", "subsys", "astro", "date", m.Universe.Epoch(), "tick", m.Universe.Tick()}
	if craft, ref := m.Universe.Craft(), m.Universe.Reference(); craft != nil && ref != nil && craft != ref {
		keyvals = append(keyvals, "ref", ref.Name(), "r(km)", craft.DistanceTo(ref), "v(km/s)", craft.SpeedRelativeTo(ref))
	}
	m.logger.Log(keyvals...)
}

// Propagate steps the universe until the stop date, or until StopPropagation is called.
// It does not return before all the states are exported.
func (m *Mission) Propagate() error {
	m.LogStatus()
	err := m.propagate()
	if m.histChan != nil {
		close(m.histChan)
	}
	m.wg.Wait() // Don't return until we're done writing all the files.
	duration := m.Universe.Epoch().Sub(m.StartDT)
	durStr := duration.String()
	if duration.Hours() > 24 {
		durStr += fmt.Sprintf(" (~%.3fd)", duration.Hours()/24)
	}
	if err != nil {
		m.logger.Log("level", "critical", "subsys", "astro", "status", "failed", "duration", durStr, "err", err)
		return err
	}
	m.logger.Log("level", "notice", "subsys", "astro", "status", "finished", "duration", durStr)
	m.LogStatus()
	if m.exportErr != nil {
		return fmt.Errorf("export: %w", m.exportErr)
	}
	return nil
}

func (m *Mission) propagate() error {
	for {
		select {
		case <-m.stopChan:
			m.logger.Log("level", "notice", "subsys", "astro", "status", "stopped")
			return nil
		default:
		}
		remaining := m.StopDT.Sub(m.Universe.Epoch())
		if remaining <= 0 {
			return nil
		}
		step := m.step
		if remaining < step {
			step = remaining
		}
		start := time.Now()
		err := m.Universe.Step(step.Seconds())
		if m.Observer != nil {
			m.Observer.ObserveStep(m.Universe, time.Since(start), err)
		}
		if err != nil {
			return err
		}
		if m.histChan != nil {
			m.histChan <- m.Universe.Snapshot()
		}
		m.status.Do(m.LogStatus)
	}
}

// StopPropagation is used to stop the propagation before it is completed.
func (m *Mission) StopPropagation() {
	select {
	case m.stopChan <- true:
	default:
		// Already requested.
	}
}
