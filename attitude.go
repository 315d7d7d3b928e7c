package explorer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Body frame axes. The craft looks down its local +Z axis with +Y up, hence its
// right hand side is local -X.
var (
	LocalForward = r3.Vec{X: 0, Y: 0, Z: 1}
	LocalUp      = r3.Vec{X: 0, Y: 1, Z: 0}
	LocalRight   = r3.Vec{X: -1, Y: 0, Z: 0}
)

// Frame defines in which frame a rotation axis is expressed.
type Frame uint8

const (
	// Local axes are attached to the body and rotate with it.
	Local Frame = iota + 1
	// World axes are the fixed heliocentric axes.
	World
)

func (f Frame) String() string {
	switch f {
	case Local:
		return "local"
	case World:
		return "world"
	}
	panic("cannot stringify unknown frame")
}

// Attitude is a rotation from the body frame into the world frame, stored as a unit quaternion.
// It is a value type: all operations return a new Attitude.
type Attitude struct {
	q quat.Number
}

// IdentityAttitude returns the attitude aligning the body axes with the world axes.
func IdentityAttitude() Attitude {
	return Attitude{quat.Number{Real: 1}}
}

// NewAttitude returns the rotation of the provided angle (in degrees) about the provided axis.
func NewAttitude(axis r3.Vec, degrees float64) (Attitude, error) {
	if !isFinite(degrees) {
		return Attitude{}, fmt.Errorf("%w: rotation of %f degrees", ErrNonFinite, degrees)
	}
	if !vecIsFinite(axis) {
		return Attitude{}, fmt.Errorf("%w: rotation axis %v", ErrNonFinite, axis)
	}
	n := norm(axis)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return Attitude{}, fmt.Errorf("%w: rotation axis has no direction", ErrInvalidRotation)
	}
	s, c := math.Sincos(Deg2rad(degrees) / 2)
	u := r3.Scale(s/n, axis)
	return Attitude{quat.Number{Real: c, Imag: u.X, Jmag: u.Y, Kmag: u.Z}}, nil
}

// Then returns the attitude obtained by applying b after a, with b expressed in the body
// frame of a (i.e. a⊗b). This is how glRotate composes onto the current matrix.
func (a Attitude) Then(b Attitude) Attitude {
	return Attitude{quat.Mul(a.q, b.q)}
}

// After returns the attitude obtained by applying b, expressed in the world frame, after a
// (i.e. b⊗a).
func (a Attitude) After(b Attitude) Attitude {
	return Attitude{quat.Mul(b.q, a.q)}
}

// Inverse returns the opposite rotation.
func (a Attitude) Inverse() Attitude {
	return Attitude{quat.Conj(a.q)}
}

// Rotate maps the provided body frame vector into the world frame.
func (a Attitude) Rotate(v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(a.q, p), quat.Conj(a.q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Norm returns the norm of the underlying quaternion, which must remain 1.
func (a Attitude) Norm() float64 {
	return quat.Abs(a.q)
}

// Normalized returns this attitude scaled back onto the unit sphere.
// The quaternion is also kept in the hemisphere with a non negative real part.
func (a Attitude) Normalized() Attitude {
	n := quat.Abs(a.q)
	if n == 0 || !isFinite(n) {
		return IdentityAttitude()
	}
	if a.q.Real < 0 {
		n = -n
	}
	return Attitude{quat.Scale(1/n, a.q)}
}

// Quaternion returns the underlying quaternion.
func (a Attitude) Quaternion() quat.Number {
	return a.q
}

// Equals returns whether both attitudes denote the same rotation (q and -q are the same).
func (a Attitude) Equals(b Attitude, tol float64) bool {
	d := math.Abs(a.q.Real*b.q.Real + a.q.Imag*b.q.Imag + a.q.Jmag*b.q.Jmag + a.q.Kmag*b.q.Kmag)
	return scalar.EqualWithinAbs(d, 1, tol)
}

func (a Attitude) String() string {
	return fmt.Sprintf("q=(%.6f, %.6f, %.6f, %.6f)", a.q.Real, a.q.Imag, a.q.Jmag, a.q.Kmag)
}
