package explorer

import "fmt"

// Throttle holds the thrust magnitude of the craft's engine, in km/s^2.
// The magnitude is never negative, and never above max unless max is zero (uncapped).
type Throttle struct {
	thrust float64
	step   float64
	max    float64
}

// NewThrottle returns a throttle at zero thrust. Step is used by Increase and Decrease.
func NewThrottle(step, max float64) (*Throttle, error) {
	if !isFinite(step, max) {
		return nil, fmt.Errorf("%w: throttle step=%f max=%f", ErrNonFinite, step, max)
	}
	if step < 0 || max < 0 {
		return nil, fmt.Errorf("%w: throttle step and max must not be negative", ErrInvalidConfig)
	}
	return &Throttle{0, step, max}, nil
}

// Thrust returns the current magnitude.
func (t *Throttle) Thrust() float64 {
	return t.thrust
}

// Max returns the cap of this throttle, zero meaning there is none.
func (t *Throttle) Max() float64 {
	return t.max
}

// Set sets the thrust magnitude. Out of range values are clamped, non finite ones are rejected.
func (t *Throttle) Set(thrust float64) error {
	if !isFinite(thrust) {
		return fmt.Errorf("%w: thrust %f", ErrNonFinite, thrust)
	}
	t.thrust = t.clamp(thrust)
	return nil
}

func (t *Throttle) clamp(thrust float64) float64 {
	if thrust < 0 {
		return 0
	}
	if t.max > 0 && thrust > t.max {
		return t.max
	}
	return thrust
}

// Adjust changes the thrust by the provided delta, clamped like Set.
func (t *Throttle) Adjust(delta float64) error {
	if !isFinite(delta) {
		return fmt.Errorf("%w: thrust delta %f", ErrNonFinite, delta)
	}
	return t.Set(t.thrust + delta)
}

// Increase adds one step of thrust. The step is finite by construction.
func (t *Throttle) Increase() {
	t.thrust = t.clamp(t.thrust + t.step)
}

// Decrease removes one step of thrust.
func (t *Throttle) Decrease() {
	t.thrust = t.clamp(t.thrust - t.step)
}

// Reset cuts the engine.
func (t *Throttle) Reset() {
	t.thrust = 0
}
