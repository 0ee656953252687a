package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofem2d/mesh"
	"github.com/notargets/gofem2d/model_problems/Elasticity2D"
)

func TestProcessInput(t *testing.T) {
	dir := t.TempDir()
	icFile := filepath.Join(dir, "input.yaml")
	require.NoError(t, os.WriteFile(icFile, []byte(exampleInputFile+"Threads: 3\nOutputDir: "+dir+"\n"), 0644))

	me := &ModelElasticity{ICFile: icFile, Threads: 8, Partitions: 2, OutputDir: "ignored"}
	ip, err := processInput(me, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, "Clamped plate", ip.Title)
	assert.Equal(t, "CG", ip.Solver.Method)
	assert.Equal(t, [2]float64{-3e7, 0}, ip.Load)
	assert.Equal(t, 3, ip.Threads)
	assert.Equal(t, 2, ip.Partitions)
	assert.Equal(t, dir, ip.OutputDir)

	me.OutputDir = filepath.Join(dir, "results")
	ip, err = processInput(me, true, true, false)
	require.NoError(t, err)
	assert.Equal(t, 8, ip.Threads)
	assert.Equal(t, 1, ip.Partitions)
	fi, err := os.Stat(me.OutputDir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	_, err = processInput(&ModelElasticity{ICFile: filepath.Join(dir, "missing.yaml")}, false, false, false)
	assert.Error(t, err)
	require.NoError(t, os.WriteFile(icFile, []byte("Load: [1, 2"), 0644))
	_, err = processInput(&ModelElasticity{ICFile: icFile}, false, false, false)
	assert.Error(t, err)
}

func TestGenerateAndPartitionMesh(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "square.vtk")
	m, err := GenerateMesh(meshFile, 4, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 25, m.NumNodes())
	assert.Equal(t, 32, m.NumCells())

	rm, err := mesh.ReadMeshFile(meshFile)
	require.NoError(t, err)
	assert.Equal(t, m.NumCells(), rm.NumCells())
	assert.Equal(t, [2]float64{2, 1}, rm.Coord(24))

	partFile := filepath.Join(dir, "parts.vtk")
	reports, err := PartitionMesh(meshFile, 2, "strip", partFile)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	var cells, owned int
	for _, r := range reports {
		cells += r.Cells
		owned += r.OwnedNodes
		assert.Equal(t, 16, r.Cells)
		assert.Greater(t, r.GhostNodes, 0)
	}
	assert.Equal(t, 32, cells)
	assert.Equal(t, 25, owned)

	pm, err := mesh.ReadMeshFile(partFile)
	require.NoError(t, err)
	f, ok := pm.Field(PartitionField)
	require.True(t, ok)
	var counts [2]int
	for k := 0; k < pm.NumCells(); k++ {
		counts[int(f.At(k)[0])]++
	}
	assert.Equal(t, [2]int{16, 16}, counts)

	_, err = PartitionMesh(meshFile, 0, "strip", "")
	assert.Error(t, err)
	_, err = GenerateMesh(filepath.Join(dir, "square.obj"), 4, 1, 1)
	assert.Error(t, err)
}

func TestRunElasticity(t *testing.T) {
	dir := t.TempDir()
	meshFile := filepath.Join(dir, "square.msh")
	_, err := GenerateMesh(meshFile, 4, 1, 1)
	require.NoError(t, err)

	me := &ModelElasticity{MeshFile: meshFile, OutputDir: dir, HistoryPlot: true,
		Partitions: 2, PartMethod: "strip"}
	ip, err := processInput(me, true, false, true)
	require.NoError(t, err)
	require.NoError(t, RunElasticity(me, ip))
	for _, name := range []string{Elasticity2D.InitialSnapshot, Elasticity2D.DefaultResultFile,
		Elasticity2D.DeformedSnapshot, "history.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	me.Profile = "gpu"
	assert.Error(t, RunElasticity(me, ip))
	me.Profile = ""
	me.MeshFile = filepath.Join(dir, "missing.vtk")
	assert.Error(t, RunElasticity(me, ip))
}

func TestMeshCommand(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "cmd.msh")
	rootCmd.SetArgs([]string{"mesh", outFile, "-n", "3"})
	require.NoError(t, rootCmd.Execute())
	m, err := mesh.ReadMeshFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, 16, m.NumNodes())
	assert.Equal(t, 18, m.NumCells())

	rootCmd.SetArgs([]string{"solve"})
	assert.Error(t, rootCmd.Execute())
}

func TestRunConvergence(t *testing.T) {
	var (
		csvFile = filepath.Join(t.TempDir(), "study.csv")
		buf     bytes.Buffer
	)
	require.NoError(t, RunConvergence(&ModelElasticity{}, []int{2, 4}, csvFile, &buf))
	assert.Contains(t, buf.String(), "PlaneStrain")
	data, err := os.ReadFile(csvFile)
	require.NoError(t, err)
	assert.Equal(t, 3, bytes.Count(data, []byte("\n")))
}
