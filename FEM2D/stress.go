package FEM2D

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RecoverStress writes sigma = C R u_e, constant over each owned cell, into
// a 3 wide cell field as (sigma_xx, sigma_yy, sigma_xy). The displacement of
// fixed nodes must already hold their prescribed values.
func (as *Assembler) RecoverStress(stress FieldView) (err error) {
	for k := 0; k < as.Grid.NumCells(); k++ {
		if as.Grid.IsGhostCell(k) {
			continue
		}
		verts := as.Grid.CellNodes(k)
		if len(verts) != 3 {
			return fmt.Errorf("%w: cell %d has %d nodes", ErrNonTriangular, k, len(verts))
		}
		var x [3][2]float64
		ue := mat.NewVecDense(6, nil)
		for i, v := range verts {
			x[i] = as.Grid.Coord(v)
			u := as.Displacement.At(v)
			ue.SetVec(2*i, u[0])
			ue.SetVec(2*i+1, u[1])
		}
		geom, err := NewTriGeometry(x)
		if err != nil {
			return fmt.Errorf("cell %d: %w", k, err)
		}
		C, err := TensorFromEntries(as.Tensor.At(k))
		if err != nil {
			return fmt.Errorf("cell %d: %w", k, err)
		}
		var eps, sigma mat.VecDense
		eps.MulVec(StrainDisplacement(geom.PhiGrad), ue)
		sigma.MulVec(C, &eps)
		s := stress.At(k)
		if len(s) != 3 {
			return fmt.Errorf("%w: stress field needs 3 entries per cell, have %d", ErrFieldShape, len(s))
		}
		for i := range s {
			s[i] = sigma.AtVec(i)
		}
	}
	return
}
