package solver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notargets/gofem2d/utils"
)

var ErrSolverFailed = errors.New("linear solver failed")

type Parameters struct {
	Method            string  `yaml:"Method"` // "CG" or "Direct"
	RelativeTolerance float64 `yaml:"RelativeTolerance"`
	AbsoluteTolerance float64 `yaml:"AbsoluteTolerance"`
	MaxIterations     int     `yaml:"MaxIterations"` // Zero picks 10 times the system size
}

func DefaultParameters() Parameters {
	return Parameters{
		Method:            "CG",
		RelativeTolerance: 1e-12,
		AbsoluteTolerance: 1e-15,
	}
}

// Result carries the solution and the solver diagnostics. A failed solve
// returns a Result as well as an error wrapping ErrSolverFailed, so callers
// can inspect the residual and retry with other Parameters.
type Result struct {
	Solution     []float64
	Converged    bool
	Iterations   int
	ResidualNorm float64
	Reason       string
	History      []float64 // Residual norm per iteration
}

type LinearSolver interface {
	Solve(A utils.CSR, b []float64) (*Result, error)
	Name() string
}

func New(p Parameters) (ls LinearSolver, err error) {
	switch strings.ToLower(p.Method) {
	case "", "cg":
		ls = &CG{Parameters: p}
	case "direct":
		ls = &Direct{}
	default:
		err = fmt.Errorf("unknown linear solver %q, have CG or Direct", p.Method)
	}
	return
}

func checkSystem(A utils.CSR, b []float64) (n int, err error) {
	nr, nc := A.Dims()
	if nr != nc || nr != len(b) {
		err = fmt.Errorf("%w: matrix is %dx%d, right hand side has %d entries",
			ErrSolverFailed, nr, nc, len(b))
	}
	n = nr
	return
}

// emptyResult is the solution of a system with no unknowns
func emptyResult() *Result {
	return &Result{
		Solution:  []float64{},
		Converged: true,
		Reason:    "no unknowns",
	}
}
