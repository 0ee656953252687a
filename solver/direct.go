package solver

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofem2d/utils"
)

// Direct factors a dense copy of the matrix, Cholesky first and LU when the
// matrix is not positive definite. Only suitable for small systems.
type Direct struct{}

func (ds *Direct) Name() string { return "Direct" }

func (ds *Direct) Solve(A utils.CSR, b []float64) (res *Result, err error) {
	var n int
	if n, err = checkSystem(A, b); err != nil {
		return
	}
	if n == 0 {
		return emptyResult(), nil
	}
	var (
		D    = A.ToDense()
		bVec = mat.NewVecDense(n, append([]float64(nil), b...))
		xVec = mat.NewVecDense(n, nil)
		chol mat.Cholesky
	)
	res = &Result{Iterations: 1}
	if err = CheckSymmetric(D); err == nil && chol.Factorize(mat.NewSymDense(n, D.RawMatrix().Data)) {
		err = chol.SolveVecTo(xVec, bVec)
		res.Reason = "Cholesky"
	} else {
		var lu mat.LU
		lu.Factorize(D)
		err = lu.SolveVecTo(xVec, false, bVec)
		res.Reason = "LU"
	}
	res.Solution = xVec.RawVector().Data
	r := make([]float64, n)
	A.MulVec(r, res.Solution)
	floats.Sub(r, b)
	res.ResidualNorm = floats.Norm(r, 2)
	res.History = []float64{floats.Norm(b, 2), res.ResidualNorm}
	if err != nil {
		res.Reason += ": " + err.Error()
		return res, fmt.Errorf("%w: %s", ErrSolverFailed, res.Reason)
	}
	res.Converged = true
	return
}

// CheckSymmetric reports an error if D differs from its transpose
func CheckSymmetric(D *mat.Dense) error {
	if !mat.EqualApprox(D, D.T(), utils.SYMTOL*mat.Norm(D, 2)) {
		return fmt.Errorf("matrix is not symmetric")
	}
	return nil
}
