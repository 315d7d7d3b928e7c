package explorer

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// R1 rotation about the 1st axis.
// Note that these are frame rotations: R1(x) rotates a vector by -x.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m mat.Matrix, v r3.Vec) r3.Vec {
	var rVec mat.VecDense
	rVec.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: rVec.AtVec(0), Y: rVec.AtVec(1), Z: rVec.AtVec(2)}
}

// DCM returns the direction cosine matrix which maps body coordinates into world
// coordinates, i.e. DCM()·v == a.Rotate(v). Its transpose maps world into body, which
// is what a camera attached to the craft needs.
func (a Attitude) DCM() *mat.Dense {
	w, x, y, z := a.q.Real, a.q.Imag, a.q.Jmag, a.q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)})
}
