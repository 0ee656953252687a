package Elasticity2D

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofem2d/FEM2D"
	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/solver"
)

func newQuietProblem(t *testing.T, n int, ip *InputParameters.InputParameters2D) (p *Problem, out *bytes.Buffer) {
	m, err := mesh.NewUnitSquareMesh(n)
	require.NoError(t, err)
	p, err = NewProblemFromMesh(m, ip)
	require.NoError(t, err)
	out = new(bytes.Buffer)
	p.Out = out
	p.WriteSnapshots = false
	return
}

func TestTwoTriangleProblem(t *testing.T) {
	p, out := newQuietProblem(t, 1, nil)
	require.NoError(t, p.Run())
	assert.Equal(t, 0, p.DOF.NumEquations())
	assert.Equal(t, 4, p.DOF.NumFixed())
	assert.Equal(t, 0, p.System.N)
	require.NotNil(t, p.Result)
	assert.True(t, p.Result.Converged)
	assert.Equal(t, 0., p.CNorm)

	log := out.String()
	assert.Contains(t, log, "Number of cells: 2\n")
	assert.Contains(t, log, "Number of nodes: 4\n")
	assert.Contains(t, log, "Number of Dirichlet nodes: 4\n")
	assert.Contains(t, log, "Linear solver iterations: 0\n")
	assert.Contains(t, log, "|err|_C = 0\n")
	assert.Contains(t, log, "| T_assemble")
	assert.Contains(t, log, "| T_total")
	for i := 0; i < 4; i++ {
		assert.Equal(t, [2]float64{}, p.Displacement(i))
	}
}

func TestClampedPlate(t *testing.T) {
	// Default parameters, interior unknowns only
	for _, method := range []string{"CG", "Direct"} {
		ip := InputParameters.NewInputParameters2D()
		ip.Solver.Method = method
		p, out := newQuietProblem(t, 4, ip)
		require.NoError(t, p.Run())
		assert.Equal(t, 18, p.DOF.NumEquations())
		assert.Contains(t, out.String(), "Number of Dirichlet nodes: 16\n")
		assert.Greater(t, p.CNorm, 0.)
		// The load pushes every interior node in -x
		onBoundary := p.Mesh.BoundaryNodes()
		for i := 0; i < p.Mesh.NumNodes(); i++ {
			u := p.Displacement(i)
			if onBoundary[i] {
				assert.Equal(t, [2]float64{}, u)
				continue
			}
			assert.Less(t, u[0], 0.)
		}
	}
}

func TestConstantDisplacement(t *testing.T) {
	ip := InputParameters.NewInputParameters2D()
	ip.Load = [2]float64{}
	ip.BoundaryDisplacement = [2]float64{0.1, -0.2}
	ip.ReferenceSolution = ip.BoundaryDisplacement
	p, _ := newQuietProblem(t, 4, ip)
	require.NoError(t, p.Run())
	assert.InDelta(t, 0, p.CNorm, 1e-8)
	for i := 0; i < p.Mesh.NumNodes(); i++ {
		assert.InDeltaSlice(t, []float64{0.1, -0.2}, p.sol.At(i), 1e-8)
	}
	// Rigid translation is stress free
	for k := 0; k < p.Mesh.NumCells(); k++ {
		s := p.Stress(k)
		assert.InDeltaSlice(t, []float64{0, 0, 0}, s[:], 1e-2)
	}
}

func TestLinearDisplacement(t *testing.T) {
	var (
		a, b, c, d = 1e-3, -2e-3, 5e-4, 3e-3
		exact      = func(x [2]float64) [2]float64 {
			return [2]float64{a*x[0] + b*x[1], c*x[0] + d*x[1]}
		}
	)
	for _, form := range []string{"PlaneStrain", "PlaneStress", "Original"} {
		ip := InputParameters.NewInputParameters2D()
		ip.Load = [2]float64{}
		ip.Formulation = form
		ip.Threads = 3
		p, _ := newQuietProblem(t, 5, ip)
		p.BoundaryValue, p.Reference = exact, exact
		require.NoError(t, p.InitProblem())
		require.NoError(t, p.AssembleGlobalSystem())
		require.NoError(t, p.SolveSystem())
		assert.InDelta(t, 0, p.CNorm, 1e-10, form)
		require.NoError(t, p.RecoverStress())

		var (
			C   = p.Material.Tensor()
			eps = [3]float64{a, d, b + c}
		)
		for k := 0; k < p.Mesh.NumCells(); k++ {
			s := p.Stress(k)
			for i := 0; i < 3; i++ {
				want := C.At(i, 0)*eps[0] + C.At(i, 1)*eps[1] + C.At(i, 2)*eps[2]
				assert.InDelta(t, want, s[i], 1e-6*p.Material.YoungsModulus, form)
			}
		}
	}
}

func TestPartitionedProblem(t *testing.T) {
	serial, _ := newQuietProblem(t, 6, nil)
	require.NoError(t, serial.InitProblem())
	require.NoError(t, serial.AssembleGlobalSystem())

	for _, np := range []int{2, 3, 5} {
		ip := InputParameters.NewInputParameters2D()
		ip.Partitions = np
		ip.Threads = 2
		p, _ := newQuietProblem(t, 6, ip)
		p.PartitionMethod = "strip"
		require.NoError(t, p.InitProblem())
		require.NoError(t, p.AssembleGlobalSystem())
		assert.Equal(t, np, p.Mesh.NumPartitions())
		// Ownership is restored after assembly
		for k := 0; k < p.Mesh.NumCells(); k++ {
			assert.False(t, p.Mesh.IsGhostCell(k))
		}

		require.Equal(t, serial.System.N, p.System.N)
		assert.InDeltaSlice(t, serial.System.Residual, p.System.Residual, 1e-6)
		N := serial.System.N
		for i := 0; i < N; i++ {
			for j := 0; j < N; j++ {
				assert.InDelta(t, serial.System.Jacobian.At(i, j), p.System.Jacobian.At(i, j),
					1e-9*serial.Material.YoungsModulus)
			}
		}
		require.NoError(t, p.SolveSystem())
	}
}

func TestSnapshots(t *testing.T) {
	dir := t.TempDir()
	m, err := mesh.NewUnitSquareMesh(3)
	require.NoError(t, err)
	meshFile := filepath.Join(dir, "square.msh")
	require.NoError(t, m.WriteMeshFile(meshFile))

	ip := InputParameters.NewInputParameters2D()
	ip.OutputDir = dir
	ip.DeformationScale = 1e-3
	p, err := NewProblem(meshFile, ip)
	require.NoError(t, err)
	p.Out = io.Discard
	require.NoError(t, p.Run())
	assert.Greater(t, p.Timers.Elapsed(T_IO), time.Duration(0))

	for _, name := range []string{InitialSnapshot, DefaultResultFile, DeformedSnapshot} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	res, err := mesh.ReadVTK(filepath.Join(dir, DefaultResultFile))
	require.NoError(t, err)
	for _, name := range []string{TensorField, ConditionField, SolutionField, ReferenceField, LoadField, StressField} {
		_, ok := res.Field(name)
		assert.True(t, ok, name)
	}
	u, _ := res.Field(SolutionField)
	for i := 0; i < res.NumNodes(); i++ {
		assert.InDeltaSlice(t, p.sol.At(i), u.At(i), 1e-12)
	}

	deformed, err := mesh.ReadVTK(filepath.Join(dir, DeformedSnapshot))
	require.NoError(t, err)
	require.Equal(t, m.NumNodes(), deformed.NumNodes())
	for i := 0; i < m.NumNodes(); i++ {
		x, xd, ui := m.Coord(i), deformed.Coord(i), p.Displacement(i)
		assert.InDelta(t, x[0]+1e-3*ui[0], xd[0], 1e-12)
		assert.InDelta(t, x[1]+1e-3*ui[1], xd[1], 1e-12)
	}

	_, err = NewProblem(filepath.Join(dir, "missing.msh"), ip)
	assert.Error(t, err)
}

func TestProblemErrors(t *testing.T) {
	{ // Quads are rejected
		m := mesh.NewMesh()
		for i, x := range [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
			m.AddNode(i, x[0], x[1])
		}
		require.NoError(t, m.AddElement(mesh.Quad, 0, []int{0, 1, 2, 3}))
		m.BuildConnectivity()
		p, err := NewProblemFromMesh(m, nil)
		require.NoError(t, err)
		p.Out, p.WriteSnapshots = io.Discard, false
		err = p.Run()
		assert.True(t, errors.Is(err, FEM2D.ErrNonTriangular))
	}
	{
		ip := InputParameters.NewInputParameters2D()
		ip.PoissonRatio = 0.5
		m, _ := mesh.NewUnitSquareMesh(2)
		_, err := NewProblemFromMesh(m, ip)
		assert.True(t, errors.Is(err, FEM2D.ErrBadMaterial))

		ip = InputParameters.NewInputParameters2D()
		ip.Formulation = "Axisymmetric"
		_, err = NewProblemFromMesh(m, ip)
		assert.Error(t, err)
	}
	{ // Out of order calls
		p, _ := newQuietProblem(t, 2, nil)
		assert.Error(t, p.AssembleGlobalSystem())
		assert.Error(t, p.SolveSystem())
		assert.Error(t, p.SaveSolution(DefaultResultFile))
	}
	{ // Solver failure is reported with the residual
		ip := InputParameters.NewInputParameters2D()
		ip.Solver.MaxIterations = 1
		p, out := newQuietProblem(t, 6, ip)
		err := p.Run()
		assert.True(t, errors.Is(err, solver.ErrSolverFailed))
		assert.Contains(t, out.String(), "Linear solver failed: ")
		assert.Contains(t, out.String(), "Residual: ")
		require.NotNil(t, p.Result)
		assert.False(t, p.Result.Converged)
	}
}
