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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gofem2d/model_problems/Elasticity2D"
)

// ConvergenceCmd represents the convergence command
var ConvergenceCmd = &cobra.Command{
	Use:   "convergence",
	Short: "Mesh refinement study against a manufactured solution",
	Long: `
Solves for u = (sin(pi x) sin(pi y), sin(pi x) sin(pi y)) on a sequence of
unit square meshes and prints the C-norm error with the observed order

gofem2d convergence -N 4,8,16,32 --csvFile study.csv`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		me := &ModelElasticity{}
		me.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		divisions, _ := cmd.Flags().GetIntSlice("divisions")
		csvFile, _ := cmd.Flags().GetString("csvFile")
		if err := RunConvergence(me, divisions, csvFile, os.Stdout); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func RunConvergence(me *ModelElasticity, divisions []int, csvFile string, w io.Writer) (err error) {
	ip, err := processInput(me, false, false, false)
	if err != nil {
		return
	}
	cs, err := Elasticity2D.RunConvergenceStudy(ip, divisions, io.Discard)
	if err != nil {
		return
	}
	cs.Print(w)
	if csvFile == "" {
		return
	}
	f, err := os.Create(csvFile)
	if err != nil {
		return
	}
	defer f.Close()
	return cs.WriteCSV(f)
}

func init() {
	rootCmd.AddCommand(ConvergenceCmd)
	ConvergenceCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for the material and solver parameters")
	ConvergenceCmd.Flags().IntSliceP("divisions", "N", []int{4, 8, 16, 32}, "divisions per side of each mesh")
	ConvergenceCmd.Flags().String("csvFile", "", "also write the study as CSV")
}
