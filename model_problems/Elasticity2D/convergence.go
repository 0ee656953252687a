package Elasticity2D

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/notargets/gofem2d/FEM2D"
	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/mesh"
)

// ManufacturedSolution returns u = (S, S) with S = sin(pi x) sin(pi y), zero
// on the unit square boundary, and the body load f = -div(C eps(u)) that
// produces it for the tensor of mt
func ManufacturedSolution(mt FEM2D.Material) (exact, load VectorFunction) {
	var (
		C       = mt.TensorEntries()
		a, b, c = C[0], C[1], C[8]
		pi2     = math.Pi * math.Pi
	)
	exact = func(x [2]float64) [2]float64 {
		S := math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1])
		return [2]float64{S, S}
	}
	load = func(x [2]float64) [2]float64 {
		var (
			S  = math.Sin(math.Pi*x[0]) * math.Sin(math.Pi*x[1])
			Cc = math.Cos(math.Pi*x[0]) * math.Cos(math.Pi*x[1])
			f  = pi2 * ((a+c)*S - (b+c)*Cc)
		)
		return [2]float64{f, f}
	}
	return
}

// ConvergenceStudy records the C-norm error of a sequence of refined meshes
type ConvergenceStudy struct {
	Title     string
	Divisions []int
	NumNodes  []int
	CNorm     []float64
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{Title: title}
}

func (cs *ConvergenceStudy) Add(divisions, numNodes int, cNorm float64) {
	cs.Divisions = append(cs.Divisions, divisions)
	cs.NumNodes = append(cs.NumNodes, numNodes)
	cs.CNorm = append(cs.CNorm, cNorm)
}

// Orders is the observed order of accuracy between consecutive meshes,
// Orders()[i] compares mesh i+1 with mesh i
func (cs *ConvergenceStudy) Orders() (orders []float64) {
	for i := 1; i < len(cs.CNorm); i++ {
		ratio := float64(cs.Divisions[i]) / float64(cs.Divisions[i-1])
		orders = append(orders, math.Log(cs.CNorm[i-1]/cs.CNorm[i])/math.Log(ratio))
	}
	return
}

func (cs *ConvergenceStudy) Print(w io.Writer) {
	orders := cs.Orders()
	fmt.Fprintf(w, "Title = %s\n", cs.Title)
	fmt.Fprintf(w, "%6s %8s %14s %8s\n", "N", "Nodes", "|err|_C", "Order")
	for i := range cs.CNorm {
		if i == 0 {
			fmt.Fprintf(w, "%6d %8d %14.6e %8s\n", cs.Divisions[i], cs.NumNodes[i], cs.CNorm[i], "-")
			continue
		}
		fmt.Fprintf(w, "%6d %8d %14.6e %8.3f\n", cs.Divisions[i], cs.NumNodes[i], cs.CNorm[i], orders[i-1])
	}
}

// WriteCSV writes one record per mesh: title, divisions, nodes, C-norm
func (cs *ConvergenceStudy) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Title", "Divisions", "Nodes", "CNorm"}); err != nil {
		return err
	}
	for i := range cs.CNorm {
		if err := cw.Write([]string{
			cs.Title,
			strconv.Itoa(cs.Divisions[i]),
			strconv.Itoa(cs.NumNodes[i]),
			strconv.FormatFloat(cs.CNorm[i], 'e', 17, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RunConvergenceStudy solves the manufactured problem on unit square meshes
// with the given numbers of divisions per side
func RunConvergenceStudy(ip *InputParameters.InputParameters2D, divisions []int, out io.Writer) (cs *ConvergenceStudy, err error) {
	if ip == nil {
		ip = InputParameters.NewInputParameters2D()
	}
	cs = NewConvergenceStudy(fmt.Sprintf("%s E=%g nu=%g", ip.Formulation, ip.YoungsModulus, ip.PoissonRatio))
	for _, n := range divisions {
		var (
			m *mesh.Mesh
			p *Problem
		)
		if m, err = mesh.NewUnitSquareMesh(n); err != nil {
			return
		}
		if p, err = NewProblemFromMesh(m, ip); err != nil {
			return
		}
		p.Out, p.WriteSnapshots = out, false
		exact, load := ManufacturedSolution(p.Material)
		p.Reference, p.BoundaryValue, p.Load = exact, exact, load
		for _, step := range []func() error{
			p.InitProblem,
			p.AssembleGlobalSystem,
			p.SolveSystem,
		} {
			if err = step(); err != nil {
				return nil, fmt.Errorf("%d divisions: %w", n, err)
			}
		}
		cs.Add(n, m.NumNodes(), p.CNorm)
	}
	return
}
