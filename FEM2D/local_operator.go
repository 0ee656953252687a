package FEM2D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofem2d/utils"
)

// LocalSystem is the contribution of one triangle, ordered
// (v0.x, v0.y, v1.x, v1.y, v2.x, v2.y)
type LocalSystem struct {
	W   *mat.Dense // 6x6 stiffness
	Rhs [6]float64 // Lumped load
}

// StrainDisplacement builds the 3x6 matrix taking the nodal displacements
// to (eps_xx, eps_yy, gamma_xy)
func StrainDisplacement(PhiGrad mat.Matrix) (R *mat.Dense) {
	R = mat.NewDense(3, 6, nil)
	for i := 0; i < 3; i++ {
		gx, gy := PhiGrad.At(i, 0), PhiGrad.At(i, 1)
		R.Set(0, 2*i, gx)
		R.Set(1, 2*i+1, gy)
		R.Set(2, 2*i, gy)
		R.Set(2, 2*i+1, gx)
	}
	return
}

// BuildLocalSystem computes W = area * R^T C R and the load vector, where
// every slot of the load is the sum of the three nodal loads of its
// component scaled by |det Bk|/18.
func BuildLocalSystem(C mat.Matrix, geom TriGeometry, loads [3][2]float64) (ls LocalSystem, err error) {
	if r, c := C.Dims(); r != 3 || c != 3 {
		err = fmt.Errorf("%w: material tensor is %dx%d", ErrFieldShape, r, c)
		return
	}
	var (
		R   = StrainDisplacement(geom.PhiGrad)
		CR  mat.Dense
		tmp mat.Dense
	)
	CR.Mul(C, R)
	tmp.Mul(R.T(), &CR)
	ls.W = mat.NewDense(6, 6, nil)
	ls.W.Scale(geom.Area(), &tmp)
	if err = CheckSymmetric(ls.W, utils.SYMTOL); err != nil {
		return
	}

	var (
		scale = math.Abs(geom.DetBk) / 18
		sum   [2]float64
	)
	for _, l := range loads {
		sum[0] += l[0]
		sum[1] += l[1]
	}
	for i := 0; i < 3; i++ {
		ls.Rhs[2*i] = sum[0] * scale
		ls.Rhs[2*i+1] = sum[1] * scale
	}
	return
}

// CheckSymmetric tests ||W - W^T||_F <= tol * ||W||_F
func CheckSymmetric(W mat.Matrix, tol float64) error {
	r, c := W.Dims()
	if r != c {
		return fmt.Errorf("%w: operator is %dx%d", ErrAsymmetricOperator, r, c)
	}
	var diff mat.Dense
	diff.Sub(W, W.T())
	var (
		dNorm = mat.Norm(&diff, 2)
		wNorm = mat.Norm(W, 2)
	)
	if dNorm > tol*wNorm || math.IsNaN(dNorm) {
		return fmt.Errorf("%w: |W - W^T| = %g, |W| = %g", ErrAsymmetricOperator, dNorm, wNorm)
	}
	return nil
}
