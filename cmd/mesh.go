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

	"github.com/spf13/cobra"

	"github.com/notargets/gofem2d/mesh"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh <out_file>",
	Short: "Generate a structured triangulation of a rectangle",
	Long: `
Splits [0,xmax] x [0,ymax] into n x n squares, two triangles each, and writes
the mesh in the format given by the file extension (.vtk or .msh)

gofem2d mesh square.vtk -n 16`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		n, _ := cmd.Flags().GetInt("divisions")
		xMax, _ := cmd.Flags().GetFloat64("xmax")
		yMax, _ := cmd.Flags().GetFloat64("ymax")
		m, err := GenerateMesh(args[0], n, xMax, yMax)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		m.PrintStatistics()
	},
}

func GenerateMesh(fileName string, n int, xMax, yMax float64) (m *mesh.Mesh, err error) {
	if m, err = mesh.NewRectangleMesh(n, n, 0, xMax, 0, yMax); err != nil {
		return
	}
	err = m.WriteMeshFile(fileName)
	return
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().IntP("divisions", "n", 8, "number of squares along each side")
	MeshCmd.Flags().Float64("xmax", 1, "width of the rectangle")
	MeshCmd.Flags().Float64("ymax", 1, "height of the rectangle")
}
