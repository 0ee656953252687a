package FEM2D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofem2d/utils"
)

// TriGeometry is the affine map of one linear triangle
type TriGeometry struct {
	PhiGrad *mat.Dense // 3x2, row i is (dphi_i/dx, dphi_i/dy)
	DetA    float64    // Twice the signed area
	DetBk   float64    // Determinant of the edge difference matrix
}

// Area is the unsigned area of the triangle
func (tg TriGeometry) Area() float64 { return math.Abs(tg.DetA) / 2 }

// NewTriGeometry inverts A = [1 1 1; x0 x1 x2; y0 y1 y2] and selects the
// gradient columns, PhiGrad = A^-1 * [0 0; 1 0; 0 1]. Triangles whose
// determinant is negligible against the longest edge squared are rejected
// before the inversion.
func NewTriGeometry(x [3][2]float64) (tg TriGeometry, err error) {
	A := mat.NewDense(3, 3, []float64{
		1, 1, 1,
		x[0][0], x[1][0], x[2][0],
		x[0][1], x[1][1], x[2][1],
	})
	var (
		Bk = [2][2]float64{
			{x[1][0] - x[0][0], x[2][0] - x[0][0]},
			{x[1][1] - x[0][1], x[2][1] - x[0][1]},
		}
		maxEdge2 float64
	)
	tg.DetBk = Bk[0][0]*Bk[1][1] - Bk[0][1]*Bk[1][0]
	// det A and det Bk are the same quantity, expanded along the first row
	tg.DetA = tg.DetBk
	for i := 0; i < 3; i++ {
		dx, dy := x[(i+1)%3][0]-x[i][0], x[(i+1)%3][1]-x[i][1]
		maxEdge2 = math.Max(maxEdge2, dx*dx+dy*dy)
	}
	if math.Abs(tg.DetA) <= utils.NODETOL*maxEdge2 || utils.IsNan(tg.DetA) {
		err = fmt.Errorf("%w: det = %g, longest edge squared = %g", ErrDegenerateElement, tg.DetA, maxEdge2)
		return
	}
	var Ainv mat.Dense
	if err = Ainv.Inverse(A); err != nil {
		err = fmt.Errorf("%w: %v", ErrDegenerateElement, err)
		return
	}
	B := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
	})
	tg.PhiGrad = mat.NewDense(3, 2, nil)
	tg.PhiGrad.Mul(&Ainv, B)
	return
}
