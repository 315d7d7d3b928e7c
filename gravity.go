package explorer

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// G is the gravitational constant in SI units (m^3 kg^-1 s^-2).
const G = 6.67428e-11

// Gravity computes Newtonian gravitational accelerations.
type Gravity struct {
	G float64
}

// Acceleration returns the acceleration in km/s^2 of the body due to all the other bodies.
// The body itself may be in the list and is skipped. Two distinct bodies at the same location
// are an error, since the acceleration is then undefined.
func (g Gravity) Acceleration(body *Body, bodies []*Body) (r3.Vec, error) {
	var acc r3.Vec
	for _, attractor := range bodies {
		if attractor == body {
			continue
		}
		// Displacement in meters for compatibility with G.
		d := r3.Scale(kmToM, r3.Sub(body.location, attractor.location))
		dist2 := r3.Norm2(d)
		if dist2 == 0 {
			return r3.Vec{}, fmt.Errorf("%w: %s and %s", ErrCoincidentBodies, body.name, attractor.name)
		}
		// a = F/m = -GM/r^2 along the unit displacement.
		μ := g.G * attractor.mass
		acc = r3.Add(acc, r3.Scale(-μ/dist2, r3.Scale(1/norm(d), d)))
	}
	// Back from m/s^2 to km/s^2.
	return r3.Scale(1/kmToM, acc), nil
}
