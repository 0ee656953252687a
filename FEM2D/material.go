package FEM2D

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Formulation selects the 3x3 Hooke tensor relating (eps_xx, eps_yy,
// gamma_xy) to (sigma_xx, sigma_yy, sigma_xy).
type Formulation uint8

const (
	PlaneStrain Formulation = iota
	PlaneStress
	// LameTensor is diag block [2mu+lam lam; lam 2mu+lam] with 2mu in the
	// shear slot
	LameTensor
)

var formulationNames = map[string]Formulation{
	"planestrain": PlaneStrain,
	"planestress": PlaneStress,
	"lame":        LameTensor,
	"original":    LameTensor,
}

func (f Formulation) String() string {
	names := [...]string{"PlaneStrain", "PlaneStress", "Lame"}
	if int(f) >= len(names) {
		return "Unknown"
	}
	return names[f]
}

// NewFormulation parses a formulation label, case insensitive
func NewFormulation(label string) (f Formulation, err error) {
	var ok bool
	if label == "" {
		return PlaneStrain, nil
	}
	if f, ok = formulationNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown formulation %q, have PlaneStrain, PlaneStress or Lame", label)
	}
	return
}

type Material struct {
	YoungsModulus float64
	PoissonRatio  float64
	Formulation   Formulation
}

func NewMaterial(E, nu float64, form Formulation) (mt Material, err error) {
	switch {
	case !(E > 0) || math.IsInf(E, 0):
		err = fmt.Errorf("%w: Young's modulus must be positive, have %g", ErrBadMaterial, E)
	case !(nu > -1 && nu < 0.5):
		err = fmt.Errorf("%w: Poisson ratio must be in (-1, 0.5), have %g", ErrBadMaterial, nu)
	}
	mt = Material{YoungsModulus: E, PoissonRatio: nu, Formulation: form}
	return
}

// Lame returns the Lamé parameters lambda and mu
func (mt Material) Lame() (lambda, mu float64) {
	E, nu := mt.YoungsModulus, mt.PoissonRatio
	lambda = E * nu / ((1 + nu) * (1 - 2*nu))
	mu = E / (2 * (1 + nu))
	return
}

// TensorEntries is the Hooke tensor in row major order, the layout of the
// per-cell tensor field.
func (mt Material) TensorEntries() (C [9]float64) {
	var (
		E, nu      = mt.YoungsModulus, mt.PoissonRatio
		lambda, mu = mt.Lame()
	)
	switch mt.Formulation {
	case PlaneStress:
		s := E / (1 - nu*nu)
		C = [9]float64{
			s, s * nu, 0,
			s * nu, s, 0,
			0, 0, s * (1 - nu) / 2,
		}
	case LameTensor:
		C = [9]float64{
			2*mu + lambda, lambda, 0,
			lambda, 2*mu + lambda, 0,
			0, 0, 2 * mu,
		}
	default:
		C = [9]float64{
			2*mu + lambda, lambda, 0,
			lambda, 2*mu + lambda, 0,
			0, 0, mu,
		}
	}
	return
}

func (mt Material) Tensor() *mat.Dense {
	C := mt.TensorEntries()
	return mat.NewDense(3, 3, C[:])
}

// TensorFromEntries builds a 3x3 tensor from 9 row major reals
func TensorFromEntries(vals []float64) (C *mat.Dense, err error) {
	if len(vals) != 9 {
		err = fmt.Errorf("%w: material tensor needs 9 entries, have %d", ErrFieldShape, len(vals))
		return
	}
	C = mat.NewDense(3, 3, append([]float64(nil), vals...))
	return
}
