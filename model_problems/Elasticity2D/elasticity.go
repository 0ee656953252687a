package Elasticity2D

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/notargets/gofem2d/FEM2D"
	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/solver"
	"github.com/notargets/gofem2d/utils"
)

// Names of the fields the problem attaches to the mesh
const (
	TensorField       = "ELASTIC_TENSOR"
	ConditionField    = "BOUNDARY_CONDITION"
	SolutionField     = "Displacement"
	ReferenceField    = "Displacement_Analytical"
	LoadField         = "RHS"
	StressField       = "Stress"
	InitialSnapshot   = "init.vtk"
	DeformedSnapshot  = "deformed.vtk"
	DefaultResultFile = "res.vtk"
)

type VectorFunction func(x [2]float64) [2]float64

// Constant returns the vector function equal to v everywhere
func Constant(v [2]float64) VectorFunction {
	return func([2]float64) [2]float64 { return v }
}

/*
	Problem is a static linear elasticity solve on a triangulated domain with
	the displacement prescribed on every boundary node:
		- InitProblem attaches the fields, classifies nodes and numbers unknowns
		- AssembleGlobalSystem builds Jacobian and residual at the current iterate
		- SolveSystem applies one Newton correction and measures the C-norm error
		- SaveSolution recovers stress and writes the result snapshots
*/
type Problem struct {
	Mesh     *mesh.Mesh
	IP       *InputParameters.InputParameters2D
	Material FEM2D.Material
	// Evaluated at node coordinates during InitProblem
	Load, Reference, BoundaryValue VectorFunction
	PartitionMethod                string // "metis" or "strip"
	WriteSnapshots                 bool
	Verbose                        bool
	Out                            io.Writer
	Timers                         *Timers

	Conditions []FEM2D.NodeCondition
	DOF        *FEM2D.DOFMap
	System     *FEM2D.System
	Result     *solver.Result
	CNorm      float64

	assembler                           *FEM2D.Assembler
	tensor, bc, sol, solEx, rhs, stress *mesh.Field
}

// NewProblem reads the mesh file and prepares a problem with the given
// parameters, nil parameters select the defaults
func NewProblem(meshFile string, ip *InputParameters.InputParameters2D) (p *Problem, err error) {
	var (
		tm = NewTimers()
		m  *mesh.Mesh
	)
	if err = tm.Time(T_IO, func() (err error) {
		m, err = mesh.ReadMeshFile(meshFile)
		return
	}); err != nil {
		return
	}
	if p, err = NewProblemFromMesh(m, ip); err != nil {
		return
	}
	p.Timers = tm
	return
}

func NewProblemFromMesh(m *mesh.Mesh, ip *InputParameters.InputParameters2D) (p *Problem, err error) {
	if ip == nil {
		ip = InputParameters.NewInputParameters2D()
	}
	form, err := FEM2D.NewFormulation(ip.Formulation)
	if err != nil {
		return
	}
	mt, err := FEM2D.NewMaterial(ip.YoungsModulus, ip.PoissonRatio, form)
	if err != nil {
		return
	}
	p = &Problem{
		Mesh:            m,
		IP:              ip,
		Material:        mt,
		Load:            Constant(ip.Load),
		Reference:       Constant(ip.ReferenceSolution),
		BoundaryValue:   Constant(ip.BoundaryDisplacement),
		PartitionMethod: "metis",
		WriteSnapshots:  true,
		Out:             os.Stdout,
		Timers:          NewTimers(),
	}
	return
}

func (p *Problem) logf(format string, args ...interface{}) {
	fmt.Fprintf(p.Out, format, args...)
}

// InitProblem attaches the problem fields to the mesh, fixes the boundary
// nodes and numbers the free unknowns
func (p *Problem) InitProblem() (err error) {
	m := p.Mesh
	p.logf("Number of cells: %d\n", m.NumCells())
	p.logf("Number of edges: %d\n", m.NumEdges())
	p.logf("Number of nodes: %d\n", m.NumNodes())
	if p.Verbose {
		m.PrintStatistics()
		p.IP.Print()
	}
	if err = p.Timers.Time(T_INIT, p.initFields); err != nil {
		return
	}
	p.logf("Number of Dirichlet nodes: %d\n", p.DOF.NumFixed())
	if p.WriteSnapshots {
		err = p.Timers.Time(T_IO, func() error {
			return m.WriteVTK(p.outputPath(InitialSnapshot))
		})
	}
	return
}

func (p *Problem) initFields() (err error) {
	m := p.Mesh
	for _, f := range []struct {
		dst   **mesh.Field
		name  string
		kind  mesh.EntityKind
		width int
	}{
		{&p.tensor, TensorField, mesh.CellEntity, 9},
		{&p.bc, ConditionField, mesh.NodeEntity, 2},
		{&p.sol, SolutionField, mesh.NodeEntity, 2},
		{&p.solEx, ReferenceField, mesh.NodeEntity, 2},
		{&p.rhs, LoadField, mesh.NodeEntity, 2},
		{&p.stress, StressField, mesh.CellEntity, 3},
	} {
		if *f.dst, err = m.CreateField(f.name, f.kind, f.width); err != nil {
			return
		}
	}

	C := p.Material.TensorEntries()
	for k := 0; k < m.NumCells(); k++ {
		if m.IsGhostCell(k) {
			continue
		}
		if n := len(m.CellNodes(k)); n != 3 {
			return fmt.Errorf("%w: cell %d has %d nodes", FEM2D.ErrNonTriangular, k, n)
		}
		p.tensor.Set(k, C[:]...)
	}

	onBoundary := m.BoundaryNodes()
	for i := 0; i < m.NumNodes(); i++ {
		x := m.Coord(i)
		f, uEx := p.Load(x), p.Reference(x)
		p.rhs.Set(i, f[:]...)
		p.solEx.Set(i, uEx[:]...)
		if !onBoundary[i] {
			continue
		}
		g := p.BoundaryValue(x)
		p.bc.Set(i, g[:]...)
		p.sol.Set(i, g[:]...)
	}
	p.Conditions = FEM2D.BoundaryConditions(onBoundary, func(i int) (g [2]float64) {
		copy(g[:], p.bc.At(i))
		return
	})
	p.DOF = FEM2D.NewDOFMap(p.Conditions, 0)

	if p.assembler, err = FEM2D.NewAssembler(m, p.DOF, p.tensor, p.sol, p.rhs); err != nil {
		return
	}
	p.assembler.ParallelDegree = p.IP.Threads
	return
}

// AssembleGlobalSystem builds the condensed system at the current
// displacement. With more than one partition each partition assembles its
// own cells, ghosts skipped, and the partition systems are summed.
func (p *Problem) AssembleGlobalSystem() (err error) {
	if p.assembler == nil {
		return fmt.Errorf("problem has not been initialized")
	}
	return p.Timers.Time(T_ASSEMBLE, func() (err error) {
		np := p.IP.Partitions
		if np <= 1 || np > p.Mesh.NumCells() {
			p.System, err = p.assembler.Assemble()
			return
		}
		cfg := mesh.DefaultPartitionConfig(int32(np))
		cfg.Method = p.PartitionMethod
		if err = mesh.NewMeshPartitioner(p.Mesh, cfg).Partition(); err != nil {
			return
		}
		defer p.Mesh.ClearOwnership()
		var sys *FEM2D.System
		for rank := 0; rank < np; rank++ {
			if err = p.Mesh.SetOwnership(rank); err != nil {
				return
			}
			if sys, err = p.assembler.Assemble(); err != nil {
				return
			}
			if rank == 0 {
				p.System = sys
				continue
			}
			p.System.Jacobian.Merge(sys.Jacobian)
			for i, r := range sys.Residual {
				p.System.Residual[i] += r
			}
		}
		return
	})
}

// SolveSystem solves J delta = R and subtracts delta from the displacement
// of the free nodes
func (p *Problem) SolveSystem() (err error) {
	if p.System == nil {
		return fmt.Errorf("global system has not been assembled")
	}
	ls, err := solver.New(p.IP.Solver)
	if err != nil {
		return
	}
	var A utils.CSR
	_ = p.Timers.Time(T_PRECOND, func() error {
		A = p.System.Jacobian.ToCSR()
		return nil
	})
	var res *solver.Result
	err = p.Timers.Time(T_SOLVE, func() (err error) {
		res, err = ls.Solve(A, p.System.Residual)
		return
	})
	p.Result = res
	if err != nil {
		p.logf("Linear solver failed: %v\n", err)
		if res != nil {
			p.logf("Residual: %g\n", res.ResidualNorm)
		}
		return
	}
	p.logf("Linear solver iterations: %d\n", res.Iterations)

	err = p.Timers.Time(T_UPDATE, func() (err error) {
		p.CNorm, err = FEM2D.ApplyCorrection(p.DOF, res.Solution, p.sol, p.solEx)
		return
	})
	if err != nil {
		return
	}
	if utils.IsNan(p.CNorm) {
		return fmt.Errorf("%w: displacement update produced NaN", solver.ErrSolverFailed)
	}
	p.logf("|err|_C = %g\n", p.CNorm)
	return
}

// SaveSolution recovers the cell stresses, writes the mesh with its fields
// to path and the mesh moved by the displacement to deformed.vtk
func (p *Problem) SaveSolution(path string) (err error) {
	if p.assembler == nil {
		return fmt.Errorf("problem has not been initialized")
	}
	if err = p.assembler.RecoverStress(p.stress); err != nil {
		return
	}
	return p.Timers.Time(T_IO, func() (err error) {
		if err = p.Mesh.WriteMeshFile(p.outputPath(path)); err != nil {
			return
		}
		deformed, err := p.Mesh.Displaced(SolutionField, p.IP.DeformationScale)
		if err != nil {
			return
		}
		return deformed.WriteVTK(p.outputPath(DeformedSnapshot))
	})
}

// Run performs the whole solve and prints the phase timings
func (p *Problem) Run() (err error) {
	defer p.Timers.Print(p.Out)
	for _, step := range []func() error{
		p.InitProblem,
		p.AssembleGlobalSystem,
		p.SolveSystem,
	} {
		if err = step(); err != nil {
			return
		}
	}
	if p.WriteSnapshots {
		err = p.SaveSolution(DefaultResultFile)
	}
	if p.Verbose {
		p.logf("%s\n", utils.GetMemUsage())
	}
	return
}

// Displacement returns the current displacement of node i
func (p *Problem) Displacement(i int) (u [2]float64) {
	copy(u[:], p.sol.At(i))
	return
}

// Stress returns (sigma_xx, sigma_yy, sigma_xy) of cell k as of the last
// SaveSolution or RecoverStress
func (p *Problem) Stress(k int) (s [3]float64) {
	copy(s[:], p.stress.At(k))
	return
}

// RecoverStress fills the stress field from the current displacement
func (p *Problem) RecoverStress() error {
	return p.assembler.RecoverStress(p.stress)
}

func (p *Problem) outputPath(name string) string {
	if filepath.IsAbs(name) || p.IP.OutputDir == "" {
		return name
	}
	return filepath.Join(p.IP.OutputDir, name)
}
