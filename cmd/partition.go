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

const PartitionField = "Partition"

// PartitionCmd represents the partition command
var PartitionCmd = &cobra.Command{
	Use:   "partition <mesh_file>",
	Short: "Partition a mesh and report the balance of the partitions",
	Long: `
Splits the cells of a mesh into partitions with METIS (or vertical strips) and
reports cells, owned nodes and ghost nodes per partition. With -o the mesh is
written with the partition number as a cell field.

gofem2d partition mesh.vtk -n 4 -o parts.vtk`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		n, _ := cmd.Flags().GetInt("parts")
		method, _ := cmd.Flags().GetString("method")
		outFile, _ := cmd.Flags().GetString("output")
		if _, err := PartitionMesh(args[0], n, method, outFile); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

type PartitionReport struct {
	Cells, OwnedNodes, GhostNodes int
}

// PartitionMesh partitions the mesh file and returns one report per
// partition, writing the partitioned mesh when outFile is not empty
func PartitionMesh(meshFile string, nparts int, method, outFile string) (reports []PartitionReport, err error) {
	m, err := mesh.ReadMeshFile(meshFile)
	if err != nil {
		return
	}
	cfg := mesh.DefaultPartitionConfig(int32(nparts))
	cfg.Method = method
	mp := mesh.NewMeshPartitioner(m, cfg)
	if err = mp.Partition(); err != nil {
		return
	}
	reports = make([]PartitionReport, nparts)
	for rank := range reports {
		if err = m.SetOwnership(rank); err != nil {
			return
		}
		reports[rank].Cells = len(mp.GetPartitionElements(rank))
		for i := 0; i < m.NumNodes(); i++ {
			if m.IsGhostNode(i) {
				reports[rank].GhostNodes++
			} else {
				reports[rank].OwnedNodes++
			}
		}
		fmt.Printf("Partition %d: %d cells, %d owned nodes, %d ghost nodes\n",
			rank, reports[rank].Cells, reports[rank].OwnedNodes, reports[rank].GhostNodes)
	}
	m.ClearOwnership()
	if outFile == "" {
		return
	}
	f, err := m.CreateField(PartitionField, mesh.CellEntity, 1)
	if err != nil {
		return
	}
	for k, p := range m.EToP {
		f.Set(k, float64(p))
	}
	err = m.WriteMeshFile(outFile)
	return
}

func init() {
	rootCmd.AddCommand(PartitionCmd)
	PartitionCmd.Flags().IntP("parts", "n", 2, "number of partitions")
	PartitionCmd.Flags().StringP("method", "m", "metis", "partitioning method, metis or strip")
	PartitionCmd.Flags().StringP("output", "o", "", "write the mesh with a Partition cell field")
}
