/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofem2d/InputParameters"
	"github.com/notargets/gofem2d/model_problems/Elasticity2D"
	"github.com/notargets/gofem2d/plotting"
)

type ModelElasticity struct {
	MeshFile    string
	ICFile      string
	OutputDir   string
	Threads     int
	Partitions  int
	PartMethod  string
	Graph       bool
	HistoryPlot bool
	Verbose     bool
	Profile     string
	Delay       time.Duration
}

const exampleInputFile = `
########################################
Title: "Clamped plate"
YoungsModulus: 3.5e6
PoissonRatio: 0.3
Formulation: PlaneStrain # Can be PlaneStress or Lame
Load: [-3.e7, 0.]
BoundaryDisplacement: [0., 0.]
ReferenceSolution: [0., 0.]
Solver:
  Method: CG # Can be Direct
  RelativeTolerance: 1.e-12
  AbsoluteTolerance: 1.e-15
########################################
`

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve <mesh_file>",
	Short: "Solve the elasticity problem on a mesh file",
	Long: `
Reads a triangular mesh (.vtk, .msh, .neu or .su2), fixes the boundary nodes,
assembles and solves the linear system, then writes init.vtk, res.vtk and
deformed.vtk into the output directory.

gofem2d solve mesh.vtk -I input.yaml -o results`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		me := &ModelElasticity{
			MeshFile:   args[0],
			OutputDir:  viper.GetString("output"),
			Threads:    viper.GetInt("threads"),
			Partitions: viper.GetInt("partitions"),
		}
		me.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		me.Graph, _ = cmd.Flags().GetBool("graph")
		me.HistoryPlot, _ = cmd.Flags().GetBool("historyPlot")
		me.Verbose, _ = cmd.Flags().GetBool("verbose")
		me.Profile, _ = cmd.Flags().GetString("profile")
		me.PartMethod, _ = cmd.Flags().GetString("partitionMethod")
		dr, _ := cmd.Flags().GetInt("delay")
		me.Delay = time.Duration(dr) * time.Millisecond
		ip, err := processInput(me, viper.IsSet("output"),
			viper.IsSet("threads"), viper.IsSet("partitions"))
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			fmt.Printf("Example File:%s\n", exampleInputFile)
			os.Exit(1)
		}
		if err = RunElasticity(me, ip); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

// processInput reads the input parameters file when given and lets the
// command line override the parameters it sets
func processInput(me *ModelElasticity, setOutput, setThreads, setPartitions bool) (ip *InputParameters.InputParameters2D, err error) {
	ip = InputParameters.NewInputParameters2D()
	if len(me.ICFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(me.ICFile); err != nil {
			return
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", me.ICFile, err)
		}
	}
	if setOutput {
		ip.OutputDir = me.OutputDir
	}
	if setThreads {
		ip.Threads = me.Threads
	}
	if setPartitions {
		ip.Partitions = me.Partitions
	}
	if ip.OutputDir != "" {
		err = os.MkdirAll(ip.OutputDir, 0755)
	}
	return
}

func RunElasticity(me *ModelElasticity, ip *InputParameters.InputParameters2D) (err error) {
	switch me.Profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(ip.OutputDir)).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(ip.OutputDir)).Stop()
	default:
		return fmt.Errorf("unknown profile type %q, have cpu or mem", me.Profile)
	}
	p, err := Elasticity2D.NewProblem(me.MeshFile, ip)
	if err != nil {
		return
	}
	p.Verbose = me.Verbose
	if me.PartMethod != "" {
		p.PartitionMethod = me.PartMethod
	}
	if me.Verbose {
		fmt.Printf("Using %d go routines in parallel\n", ip.Threads)
	}
	if err = p.Run(); err != nil {
		return
	}
	if me.HistoryPlot && p.Result != nil && len(p.Result.History) != 0 {
		fileName := filepath.Join(ip.OutputDir, "history.png")
		if err = plotting.PlotHistory(p.Result.History, "Linear solver residual", fileName); err != nil {
			return
		}
		fmt.Printf("Residual history written to %s\n", fileName)
	}
	if me.Graph {
		deformed, err := p.Mesh.Displaced(Elasticity2D.SolutionField, ip.DeformationScale)
		if err != nil {
			return err
		}
		return plotting.PlotMesh(deformed, Elasticity2D.SolutionField, me.Delay)
	}
	return
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- YoungsModulus\n\t- PoissonRatio\n\t- Load")
	SolveCmd.Flags().StringP("output", "o", ".", "directory for the result files")
	SolveCmd.Flags().IntP("threads", "t", 1, "number of go routines assembling in parallel, 0 uses every CPU")
	SolveCmd.Flags().IntP("partitions", "p", 1, "number of mesh partitions assembled separately")
	SolveCmd.Flags().String("partitionMethod", "metis", "partitioning method, metis or strip")
	SolveCmd.Flags().BoolP("graph", "g", false, "display the deformed mesh after solving")
	SolveCmd.Flags().IntP("delay", "d", 30000, "milliseconds to keep the graph up")
	SolveCmd.Flags().Bool("historyPlot", false, "write the linear solver residual history to history.png")
	SolveCmd.Flags().BoolP("verbose", "v", false, "print mesh statistics and input parameters")
	SolveCmd.Flags().String("profile", "", "write a cpu or mem profile into the output directory")
	for _, key := range []string{"output", "threads", "partitions"} {
		_ = viper.BindPFlag(key, SolveCmd.Flags().Lookup(key))
	}
}
