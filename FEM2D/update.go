package FEM2D

import (
	"fmt"
	"math"
)

// ApplyCorrection subtracts the solved correction from the displacement of
// every free node and returns the largest componentwise difference to the
// reference over the free nodes, the C-norm of the error.
func ApplyCorrection(dof *DOFMap, correction []float64, displacement, reference FieldView) (cNorm float64, err error) {
	if len(correction) != dof.NumEquations() {
		err = fmt.Errorf("%w: correction has %d entries for %d equations",
			ErrFieldShape, len(correction), dof.NumEquations())
		return
	}
	for i := 0; i < dof.NumNodes(); i++ {
		if dof.IsFixed(i) {
			continue
		}
		var (
			u    = displacement.At(i)
			uRef = reference.At(i)
		)
		for c := 0; c < 2; c++ {
			u[c] -= correction[dof.Local(i, c)]
			cNorm = math.Max(cNorm, math.Abs(u[c]-uRef[c]))
		}
	}
	return
}

// ErrorNorm is the C-norm of displacement against reference over the free
// nodes, without modifying anything
func ErrorNorm(dof *DOFMap, displacement, reference FieldView) (cNorm float64) {
	for i := 0; i < dof.NumNodes(); i++ {
		if dof.IsFixed(i) {
			continue
		}
		u, uRef := displacement.At(i), reference.At(i)
		for c := 0; c < 2; c++ {
			cNorm = math.Max(cNorm, math.Abs(u[c]-uRef[c]))
		}
	}
	return
}
