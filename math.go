package explorer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	// kmToM converts kilometers to meters, as G is in SI units.
	kmToM = 1000.
)

// norm returns the norm of a given vector.
func norm(v r3.Vec) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// unit returns the unit vector of a given vector.
// The nil vector is returned as is instead of NaNs.
func unit(a r3.Vec) r3.Vec {
	n := norm(a)
	if scalar.EqualWithinAbs(n, 0, 1e-12) {
		return r3.Vec{}
	}
	return r3.Scale(1/n, a)
}

// isFinite returns whether all the provided values are neither NaN nor infinite.
func isFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// vecIsFinite returns whether all components of the vector are finite.
func vecIsFinite(v r3.Vec) bool {
	return isFinite(v.X, v.Y, v.Z)
}

// vecFromSlice converts a [x, y, z] slice, as read from configuration, into a vector.
func vecFromSlice(s []float64) (r3.Vec, error) {
	if len(s) == 0 {
		return r3.Vec{}, nil
	}
	if len(s) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidConfig, len(s))
	}
	return r3.Vec{X: s[0], Y: s[1], Z: s[2]}, nil
}

// Deg2rad converts degrees to radians. Unlike angles read from orbital elements,
// signs are preserved since rotation deltas are signed.
func Deg2rad(a float64) float64 {
	return a * deg2rad
}

// Rad2deg converts radians to degrees, preserving the sign.
func Rad2deg(a float64) float64 {
	return a / deg2rad
}

// NormalizeAngle maps any finite angle in degrees into (-180, 180].
// It is idempotent: NormalizeAngle(NormalizeAngle(x)) == NormalizeAngle(x).
func NormalizeAngle(degrees float64) (float64, error) {
	if !isFinite(degrees) {
		return 0, fmt.Errorf("%w: angle %f", ErrNonFinite, degrees)
	}
	a := math.Mod(degrees, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a, nil
}

// mustNormalizeAngle is NormalizeAngle for values which are finite by construction.
func mustNormalizeAngle(degrees float64) float64 {
	a, err := NormalizeAngle(degrees)
	if err != nil {
		panic(err)
	}
	return a
}
