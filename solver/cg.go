package solver

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofem2d/utils"
)

// CG is conjugate gradients with a Jacobi preconditioner, for symmetric
// positive definite systems. It starts from zero and stops when the
// residual is below max(RelativeTolerance*|b|, AbsoluteTolerance).
type CG struct {
	Parameters
}

func (cg *CG) Name() string { return "CG" }

func (cg *CG) Solve(A utils.CSR, b []float64) (res *Result, err error) {
	var n int
	if n, err = checkSystem(A, b); err != nil {
		return
	}
	if n == 0 {
		return emptyResult(), nil
	}
	maxIt := cg.MaxIterations
	if maxIt < 1 {
		maxIt = 10 * n
	}
	var (
		x      = make([]float64, n)
		r      = append([]float64(nil), b...)
		z      = make([]float64, n)
		p      = make([]float64, n)
		Ap     = make([]float64, n)
		dinv   = A.Diagonal()
		target = math.Max(cg.RelativeTolerance*floats.Norm(b, 2), cg.AbsoluteTolerance)
	)
	for i, d := range dinv {
		if d == 0 {
			dinv[i] = 1
		} else {
			dinv[i] = 1 / d
		}
	}
	res = &Result{Solution: x}
	floats.MulTo(z, dinv, r)
	copy(p, z)
	rz := floats.Dot(r, z)
	res.ResidualNorm = floats.Norm(r, 2)
	res.History = append(res.History, res.ResidualNorm)

	for res.Iterations < maxIt {
		if res.ResidualNorm <= target {
			res.Converged = true
			res.Reason = "converged"
			return
		}
		A.MulVec(Ap, p)
		pAp := floats.Dot(p, Ap)
		if !(pAp > 0) {
			res.Reason = fmt.Sprintf("matrix is not positive definite, p.Ap = %g", pAp)
			return res, fmt.Errorf("%w: %s", ErrSolverFailed, res.Reason)
		}
		alpha := rz / pAp
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, Ap)
		res.Iterations++
		res.ResidualNorm = floats.Norm(r, 2)
		res.History = append(res.History, res.ResidualNorm)
		if utils.IsNan(res.ResidualNorm) {
			res.Reason = "residual is not finite"
			return res, fmt.Errorf("%w: %s", ErrSolverFailed, res.Reason)
		}

		floats.MulTo(z, dinv, r)
		rzNew := floats.Dot(r, z)
		beta := rzNew / rz
		rz = rzNew
		// p = z + beta*p
		floats.AddScaledTo(p, z, beta, p)
	}
	if res.ResidualNorm <= target {
		res.Converged = true
		res.Reason = "converged"
		return
	}
	res.Reason = fmt.Sprintf("no convergence in %d iterations", maxIt)
	return res, fmt.Errorf("%w: %s, residual %g > %g", ErrSolverFailed, res.Reason, res.ResidualNorm, target)
}
