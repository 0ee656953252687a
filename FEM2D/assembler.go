package FEM2D

import (
	"fmt"

	"github.com/notargets/gofem2d/utils"
)

// Grid is the mesh as seen by the assembler
type Grid interface {
	NumCells() int
	NumNodes() int
	CellNodes(k int) []int
	Coord(i int) [2]float64
	IsGhostCell(k int) bool
}

// FieldView gives the values attached to one entity, writes go through
type FieldView interface {
	At(id int) []float64
}

// System is the condensed linear system over the free unknowns,
// Residual = K_ff u_f + K_fb g - f with Jacobian K_ff.
type System struct {
	N        int
	Base     int
	Jacobian utils.DOK
	Residual []float64
}

// Assembler builds the global System from per-cell local operators
type Assembler struct {
	Grid           Grid
	DOF            *DOFMap
	Tensor         FieldView // 9 per cell
	Displacement   FieldView // 2 per node, current iterate
	Load           FieldView // 2 per node
	ParallelDegree int       // Worker count, values < 1 use every CPU
}

func NewAssembler(grid Grid, dof *DOFMap, tensor, displacement, load FieldView) (as *Assembler, err error) {
	if dof.NumNodes() != grid.NumNodes() {
		err = fmt.Errorf("%w: %d node conditions for %d nodes", ErrFieldShape, dof.NumNodes(), grid.NumNodes())
		return
	}
	as = &Assembler{
		Grid:           grid,
		DOF:            dof,
		Tensor:         tensor,
		Displacement:   displacement,
		Load:           load,
		ParallelDegree: 1,
	}
	return
}

// Assemble visits every owned cell once. Each worker accumulates into its
// own partial system over a contiguous range of cells and the partials are
// summed in worker order.
func (as *Assembler) Assemble() (sys *System, err error) {
	var (
		N     = as.DOF.NumEquations()
		cells = make([]int, 0, as.Grid.NumCells())
	)
	for k := 0; k < as.Grid.NumCells(); k++ {
		if !as.Grid.IsGhostCell(k) {
			cells = append(cells, k)
		}
	}
	sys = &System{
		N:        N,
		Base:     as.DOF.Base,
		Jacobian: utils.NewDOK(N, N),
		Residual: make([]float64, N),
	}

	var (
		np      = utils.LimitParallelDegree(as.ParallelDegree, len(cells))
		pm      = utils.NewPartitionMap(np, len(cells))
		jacs    = make([]utils.DOK, np)
		resids  = make([][]float64, np)
		errList = make([]error, np)
	)
	if np == 1 {
		jacs[0], resids[0] = sys.Jacobian, sys.Residual
	} else {
		for bn := 0; bn < np; bn++ {
			jacs[bn], resids[bn] = utils.NewDOK(N, N), make([]float64, N)
		}
	}
	pm.ForEachBucket(func(bn, kMin, kMax int) {
		for _, k := range cells[kMin:kMax] {
			if errList[bn] = as.addCell(k, jacs[bn], resids[bn]); errList[bn] != nil {
				return
			}
		}
	})
	for bn := 0; bn < np; bn++ {
		if errList[bn] != nil {
			return nil, errList[bn]
		}
	}
	if np > 1 {
		for bn := 0; bn < np; bn++ {
			sys.Jacobian.Merge(jacs[bn])
			for i, r := range resids[bn] {
				sys.Residual[i] += r
			}
		}
	}
	return
}

// LocalSystem computes the local operator of cell k
func (as *Assembler) LocalSystem(k int) (ls LocalSystem, err error) {
	verts := as.Grid.CellNodes(k)
	if len(verts) != 3 {
		err = fmt.Errorf("%w: cell %d has %d nodes", ErrNonTriangular, k, len(verts))
		return
	}
	var (
		x     [3][2]float64
		loads [3][2]float64
	)
	for i, v := range verts {
		x[i] = as.Grid.Coord(v)
		copy(loads[i][:], as.Load.At(v))
	}
	geom, err := NewTriGeometry(x)
	if err != nil {
		err = fmt.Errorf("cell %d: %w", k, err)
		return
	}
	C, err := TensorFromEntries(as.Tensor.At(k))
	if err != nil {
		err = fmt.Errorf("cell %d: %w", k, err)
		return
	}
	if ls, err = BuildLocalSystem(C, geom, loads); err != nil {
		err = fmt.Errorf("cell %d: %w", k, err)
	}
	return
}

func (as *Assembler) addCell(k int, jac utils.DOK, res []float64) (err error) {
	ls, err := as.LocalSystem(k)
	if err != nil {
		return
	}
	var (
		verts = as.Grid.CellNodes(k)
		dof   = as.DOF
		W     = ls.W
	)
	for a, va := range verts {
		if g, fixed := dof.FixedValue(va); fixed {
			// Move the known displacement to the free neighbours' equations
			for b, vb := range verts {
				if b == a || dof.IsFixed(vb) {
					continue
				}
				for c := 0; c < 2; c++ {
					row := dof.Local(vb, c)
					res[row] += W.At(2*b+c, 2*a)*g[0] + W.At(2*b+c, 2*a+1)*g[1]
				}
			}
			continue
		}
		for c := 0; c < 2; c++ {
			row := dof.Local(va, c)
			for b, vb := range verts {
				if dof.IsFixed(vb) {
					continue
				}
				u := as.Displacement.At(vb)
				for d := 0; d < 2; d++ {
					w := W.At(2*a+c, 2*b+d)
					jac.Add(row, dof.Local(vb, d), w)
					res[row] += w * u[d]
				}
			}
			res[row] -= ls.Rhs[2*a+c]
		}
	}
	return
}
