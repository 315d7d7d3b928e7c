package explorer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// DefaultRenormalizeEvery is the number of compositions after which the attitude is renormalized.
	DefaultRenormalizeEvery = 32
	// normDriftε is the norm drift which forces a renormalization regardless of the count.
	normDriftε = 1e-9
)

// Orientation is the attitude and engine state of a piloted craft.
// Only explicit control inputs mutate it: the physics only reads ThrustVector.
type Orientation struct {
	attitude         Attitude
	throttle         *Throttle
	compositions     int
	renormalizeEvery int
}

// NewOrientation returns an orientation starting at the provided attitude.
func NewOrientation(initial Attitude, throttle *Throttle, renormalizeEvery int) *Orientation {
	if renormalizeEvery <= 0 {
		renormalizeEvery = DefaultRenormalizeEvery
	}
	if throttle == nil {
		throttle = &Throttle{}
	}
	return &Orientation{initial.Normalized(), throttle, 0, renormalizeEvery}
}

// InitialAttitude is the attitude of a new craft: yawed half a turn so that it looks down
// the world -Z axis.
func InitialAttitude() Attitude {
	a, _ := NewAttitude(LocalUp, 180)
	return a
}

// Attitude returns the current attitude.
func (o *Orientation) Attitude() Attitude {
	return o.attitude
}

// RotateBy composes a rotation of the provided degrees about the axis, expressed in the
// provided frame, into the current attitude. Invalid input leaves the attitude untouched.
func (o *Orientation) RotateBy(axis r3.Vec, degrees float64, frame Frame) error {
	degrees, err := NormalizeAngle(degrees)
	if err != nil {
		return err
	}
	Δ, err := NewAttitude(axis, degrees)
	if err != nil {
		return err
	}
	switch frame {
	case Local:
		o.attitude = o.attitude.Then(Δ)
	case World:
		o.attitude = o.attitude.After(Δ)
	default:
		return fmt.Errorf("%w: unknown frame %d", ErrInvalidRotation, frame)
	}
	o.compositions++
	if o.compositions >= o.renormalizeEvery || !scalar.EqualWithinAbs(o.attitude.Norm(), 1, normDriftε) {
		o.attitude = o.attitude.Normalized()
		o.compositions = 0
	}
	return nil
}

// Yaw turns the nose towards the left for positive degrees.
func (o *Orientation) Yaw(degrees float64) error {
	return o.RotateBy(LocalUp, degrees, Local)
}

// Pitch raises the nose for positive degrees.
func (o *Orientation) Pitch(degrees float64) error {
	return o.RotateBy(LocalRight, degrees, Local)
}

// Roll banks to the right for positive degrees.
func (o *Orientation) Roll(degrees float64) error {
	return o.RotateBy(LocalForward, degrees, Local)
}

// Forward returns the unit heading in the world frame.
func (o *Orientation) Forward() r3.Vec {
	return unit(o.attitude.Rotate(LocalForward))
}

// Up returns the unit "up" of the craft in the world frame.
func (o *Orientation) Up() r3.Vec {
	return unit(o.attitude.Rotate(LocalUp))
}

// Heading returns the yaw, pitch and roll in degrees, each in (-180, 180].
// A zero heading looks down the world -Z axis with world +Y up; the forward vector is
// (-cos(pitch)·sin(yaw), sin(pitch), -cos(pitch)·cos(yaw)).
func (o *Orientation) Heading() (yaw, pitch, roll float64) {
	f := o.Forward()
	p := math.Asin(math.Max(-1, math.Min(1, f.Y)))
	y := math.Atan2(-f.X, -f.Z)
	// Up vector of the same yaw and pitch without any roll.
	sp, cp := math.Sincos(p)
	sy, cy := math.Sincos(y)
	level := r3.Vec{X: sp * sy, Y: cp, Z: sp * cy}
	up := o.Up()
	r := math.Atan2(r3.Dot(r3.Cross(level, up), f), r3.Dot(level, up))
	return mustNormalizeAngle(Rad2deg(y)), mustNormalizeAngle(Rad2deg(p)), mustNormalizeAngle(Rad2deg(r))
}

// Thrust returns the engine thrust magnitude in km/s^2.
func (o *Orientation) Thrust() float64 {
	return o.throttle.Thrust()
}

// SetThrust sets the thrust magnitude, clamping negative values to zero.
func (o *Orientation) SetThrust(thrust float64) error {
	return o.throttle.Set(thrust)
}

// AdjustThrust changes the thrust magnitude by the provided delta.
func (o *Orientation) AdjustThrust(delta float64) error {
	return o.throttle.Adjust(delta)
}

// IncreaseThrust adds one throttle step.
func (o *Orientation) IncreaseThrust() {
	o.throttle.Increase()
}

// DecreaseThrust removes one throttle step.
func (o *Orientation) DecreaseThrust() {
	o.throttle.Decrease()
}

// ResetThrust cuts the engine.
func (o *Orientation) ResetThrust() {
	o.throttle.Reset()
}

// ThrustVector returns the world frame acceleration from the engine, in km/s^2.
func (o *Orientation) ThrustVector() r3.Vec {
	return r3.Scale(o.throttle.Thrust(), o.Forward())
}
