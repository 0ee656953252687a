package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/gofem2d/solver"
)

// Parameters obtained from the YAML input file
type InputParameters2D struct {
	Title                string            `yaml:"Title"`
	YoungsModulus        float64           `yaml:"YoungsModulus"`
	PoissonRatio         float64           `yaml:"PoissonRatio"`
	Formulation          string            `yaml:"Formulation"` // PlaneStrain, PlaneStress or Lame
	Load                 [2]float64        `yaml:"Load"`
	BoundaryDisplacement [2]float64        `yaml:"BoundaryDisplacement"`
	ReferenceSolution    [2]float64        `yaml:"ReferenceSolution"`
	Solver               solver.Parameters `yaml:"Solver"`
	Threads              int               `yaml:"Threads"`
	Partitions           int               `yaml:"Partitions"`
	OutputDir            string            `yaml:"OutputDir"`
	DeformationScale     float64           `yaml:"DeformationScale"`
}

// NewInputParameters2D returns the parameters of the clamped plate under a
// uniform horizontal body load
func NewInputParameters2D() *InputParameters2D {
	return &InputParameters2D{
		Title:            "Clamped plate under uniform load",
		YoungsModulus:    3.5e6,
		PoissonRatio:     0.3,
		Formulation:      "PlaneStrain",
		Load:             [2]float64{-3e7, 0},
		Solver:           solver.DefaultParameters(),
		Threads:          1,
		Partitions:       1,
		OutputDir:        ".",
		DeformationScale: 1,
	}
}

// Parse overlays the YAML document on the receiver, keys absent from data
// keep their current values
func (ip *InputParameters2D) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters2D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5g\t\t= Young's Modulus\n", ip.YoungsModulus)
	fmt.Printf("%8.5f\t\t= Poisson Ratio\n", ip.PoissonRatio)
	fmt.Printf("[%s]\t\t= Formulation\n", ip.Formulation)
	fmt.Printf("[%g, %g]\t\t= Load\n", ip.Load[0], ip.Load[1])
	fmt.Printf("[%g, %g]\t\t\t= Boundary Displacement\n", ip.BoundaryDisplacement[0], ip.BoundaryDisplacement[1])
	fmt.Printf("[%g, %g]\t\t\t= Reference Solution\n", ip.ReferenceSolution[0], ip.ReferenceSolution[1])
	fmt.Printf("[%s]\t\t\t= Linear Solver\n", ip.Solver.Method)
	fmt.Printf("%8.2g\t\t= Relative Tolerance\n", ip.Solver.RelativeTolerance)
	fmt.Printf("%8.2g\t\t= Absolute Tolerance\n", ip.Solver.AbsoluteTolerance)
	fmt.Printf("[%d]\t\t\t\t= Threads\n", ip.Threads)
	fmt.Printf("[%d]\t\t\t\t= Partitions\n", ip.Partitions)
}
