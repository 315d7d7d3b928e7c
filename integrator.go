package explorer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Integrate advances the body by dt seconds under the provided acceleration (km/s^2),
// sampled at the start of the interval:
//
//	r += v·dt + ½·a·dt²
//	v += a·dt
//
// The same sample is used for both updates. A zero time step leaves the body untouched.
func Integrate(body *Body, acc r3.Vec, dt float64) error {
	if !isFinite(dt) || dt < 0 {
		return fmt.Errorf("%w: %f s", ErrInvalidTimeStep, dt)
	}
	if !vecIsFinite(acc) {
		return fmt.Errorf("%w: acceleration of %s is %+v", ErrNonFinite, body.name, acc)
	}
	if dt == 0 {
		return nil
	}
	dt2 := dt * dt
	r, v := body.location, body.velocity
	body.location = r3.Vec{
		X: r.X + v.X*dt + 0.5*acc.X*dt2,
		Y: r.Y + v.Y*dt + 0.5*acc.Y*dt2,
		Z: r.Z + v.Z*dt + 0.5*acc.Z*dt2,
	}
	body.velocity = r3.Vec{
		X: v.X + acc.X*dt,
		Y: v.Y + acc.Y*dt,
		Z: v.Z + acc.Z*dt,
	}
	return nil
}
