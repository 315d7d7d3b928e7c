package explorer

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

// vectorsEqual returns whether both vectors are equal within the absolute tolerance.
func vectorsEqual(a, b r3.Vec, tol float64) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) && scalar.EqualWithinAbs(a.Y, b.Y, tol) && scalar.EqualWithinAbs(a.Z, b.Z, tol)
}

// anglesEqual returns whether two angles in degrees are equal, modulo a full turn.
func anglesEqual(a, b float64) (bool, error) {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff < 1e-6 || 360-diff < 1e-6 {
		return true, nil
	}
	return false, fmt.Errorf("difference of %3.10f degrees", diff)
}
