package explorer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a point mass, in the absolute heliocentric frame.
// Locations are in km and velocities in km/s.
type Body struct {
	name        string
	mass        float64 // kg
	Radius      float64 // km, only used for display and collision warnings
	location    r3.Vec
	velocity    r3.Vec
	spinPeriod  float64 // seconds per revolution, zero if not spinning
	spin        float64 // degrees
	Color       string  // hex color, e.g. "#ffcc00"
	orientation *Orientation
}

// NewBody returns a new body, or an error if its definition is invalid.
func NewBody(name string, mass, radius float64, location, velocity r3.Vec) (*Body, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: body without a name", ErrInvalidConfig)
	}
	if !isFinite(mass) || mass <= 0 {
		return nil, fmt.Errorf("%w: %s has mass %g kg", ErrInvalidMass, name, mass)
	}
	if !isFinite(radius) || radius < 0 {
		return nil, fmt.Errorf("%w: %s has radius %g km", ErrInvalidConfig, name, radius)
	}
	if !vecIsFinite(location) || !vecIsFinite(velocity) {
		return nil, fmt.Errorf("%w: initial state of %s", ErrNonFinite, name)
	}
	return &Body{name: name, mass: mass, Radius: radius, location: location, velocity: velocity}, nil
}

// NewCraft returns a new piloted body.
func NewCraft(name string, mass, radius float64, location, velocity r3.Vec, orientation *Orientation) (*Body, error) {
	b, err := NewBody(name, mass, radius, location, velocity)
	if err != nil {
		return nil, err
	}
	if orientation == nil {
		orientation = NewOrientation(InitialAttitude(), nil, DefaultRenormalizeEvery)
	}
	b.orientation = orientation
	return b, nil
}

// Name returns the display name.
func (b *Body) Name() string {
	return b.name
}

// Mass returns the mass in kg.
func (b *Body) Mass() float64 {
	return b.mass
}

// Location returns the absolute location in km.
func (b *Body) Location() r3.Vec {
	return b.location
}

// Velocity returns the absolute velocity in km/s.
func (b *Body) Velocity() r3.Vec {
	return b.velocity
}

// Spin returns the rotation of the body about its own axis, in degrees.
func (b *Body) Spin() float64 {
	return b.spin
}

// SetSpinPeriod sets the period of rotation about its own axis, in seconds.
func (b *Body) SetSpinPeriod(period float64) error {
	if !isFinite(period) || period < 0 {
		return fmt.Errorf("%w: spin period %f", ErrInvalidConfig, period)
	}
	b.spinPeriod = period
	return nil
}

// Orientation returns the orientation of a piloted body, or nil.
func (b *Body) Orientation() *Orientation {
	return b.orientation
}

// Piloted returns whether this body is controlled by the user.
func (b *Body) Piloted() bool {
	return b.orientation != nil
}

// Offset returns a location relative to this body, as used to define initial conditions.
func (b *Body) Offset(d r3.Vec) r3.Vec {
	return r3.Add(b.location, d)
}

// RelativeVelocity returns a velocity relative to this body.
func (b *Body) RelativeVelocity(dv r3.Vec) r3.Vec {
	return r3.Add(b.velocity, dv)
}

// DistanceTo returns the distance to the other body, in km.
func (b *Body) DistanceTo(other *Body) float64 {
	return norm(r3.Sub(other.location, b.location))
}

// SpeedRelativeTo returns the norm of the velocity difference with the other body, in km/s.
func (b *Body) SpeedRelativeTo(other *Body) float64 {
	return norm(r3.Sub(other.velocity, b.velocity))
}

// Jump instantaneously moves a piloted body along its heading by the provided distance in km.
// The velocity is unchanged: this is not a maneuver.
func (b *Body) Jump(distance float64) error {
	if b.orientation == nil {
		return fmt.Errorf("%w: %s cannot jump", ErrNotPiloted, b.name)
	}
	if !isFinite(distance) {
		return fmt.Errorf("%w: jump of %f km", ErrNonFinite, distance)
	}
	b.location = r3.Add(b.location, r3.Scale(distance, b.orientation.Forward()))
	return nil
}

// advanceSpin rotates the body about its own axis for dt seconds.
func (b *Body) advanceSpin(dt float64) {
	if b.spinPeriod == 0 || dt == 0 {
		return
	}
	b.spin = mustNormalizeAngle(b.spin + 360*dt/b.spinPeriod)
}

// String implements the Stringer interface.
func (b *Body) String() string {
	return fmt.Sprintf("%s (%g kg) r=%+v v=%+v", b.name, b.mass, b.location, b.velocity)
}

/* Definitions */

const (
	// SunMass in kg.
	SunMass = 1.9891e30
	// EarthMass in kg.
	EarthMass = 5.9736e24
	// CraftMass in kg.
	CraftMass = 1e6
	// StationMass in kg.
	StationMass = 1e9
	// SunRadius in km.
	SunRadius = 695700.
	// EarthRadius in km.
	EarthRadius = 6371.
	// EarthSpinPeriod in seconds.
	EarthSpinPeriod = 24 * 3600.
	// StationSpinPeriod in seconds.
	StationSpinPeriod = 5 * 60.
)
