package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/james-bowman/sparse/blas"
	"gonum.org/v1/gonum/mat"
)

// DOK is the assembly-time form of a global matrix. Entries are accumulated
// with Add and the result is frozen into a CSR for the solve.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims and At minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }
func (m DOK) NNZ() int            { return m.M.NNZ() }

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

// Add accumulates val into (i,j), the only write an assembler needs.
func (m DOK) Add(i, j int, val float64) {
	m.checkWritable()
	m.checkBounds(i, j)
	if val == 0 {
		return
	}
	m.M.Set(i, j, m.M.At(i, j)+val)
}

// Merge adds every stored entry of A into the receiver.
func (m DOK) Merge(A DOK) {
	m.checkWritable()
	nr, nc := m.Dims()
	ar, ac := A.Dims()
	if nr != ar || nc != ac {
		panic(fmt.Errorf("dimension mismatch merging %dx%d into %dx%d", ar, ac, nr, nc))
	}
	A.M.DoNonZero(func(i, j int, v float64) {
		m.M.Set(i, j, m.M.At(i, j)+v)
	})
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

func (m DOK) checkBounds(i, j int) {
	nr, nc := m.Dims()
	if i < 0 || i >= nr || j < 0 || j >= nc {
		panic(fmt.Errorf("index (%d,%d) out of bounds for %dx%d matrix \"%v\"", i, j, nr, nc, m.name))
	}
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: true,
		name:     m.name,
	}
}

// CSR is the solve-time form of a global matrix, read only.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

func (m CSR) Dims() (r, c int)              { return m.M.Dims() }
func (m CSR) At(i, j int) float64           { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix                 { return m.M.T() }
func (m CSR) RawMatrix() *blas.SparseMatrix { return m.M.RawMatrix() }
func (m CSR) NNZ() int                      { return m.M.NNZ() }
func (m CSR) Name() string                  { return m.name }
func (m CSR) Data() []float64 {
	return m.RawMatrix().Data
}

// MulVec computes dst = M * x.
func (m CSR) MulVec(dst, x []float64) {
	var (
		raw    = m.RawMatrix()
		nr, nc = m.Dims()
	)
	if len(dst) != nr || len(x) != nc {
		panic(fmt.Errorf("length mismatch in MulVec: matrix %dx%d, len(dst) = %d, len(x) = %d",
			nr, nc, len(dst), len(x)))
	}
	for i := 0; i < nr; i++ {
		var sum float64
		for ii := raw.Indptr[i]; ii < raw.Indptr[i+1]; ii++ {
			sum += raw.Data[ii] * x[raw.Ind[ii]]
		}
		dst[i] = sum
	}
}

// Diagonal returns the main diagonal, zeros where nothing is stored.
func (m CSR) Diagonal() (d []float64) {
	var (
		raw   = m.RawMatrix()
		nr, _ = m.Dims()
	)
	d = make([]float64, nr)
	for i := 0; i < nr; i++ {
		for ii := raw.Indptr[i]; ii < raw.Indptr[i+1]; ii++ {
			if raw.Ind[ii] == i {
				d[i] += raw.Data[ii]
			}
		}
	}
	return
}

// ToDense expands the matrix, only sensible for small systems.
func (m CSR) ToDense() (D *mat.Dense) {
	nr, nc := m.Dims()
	D = mat.NewDense(nr, nc, nil)
	m.M.DoNonZero(func(i, j int, v float64) {
		D.Set(i, j, D.At(i, j)+v)
	})
	return
}
