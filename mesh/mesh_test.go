package mesh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestUnitSquareMesh(t *testing.T) {
	{ // Two triangle square
		m, err := NewUnitSquareMesh(1)
		require.NoError(t, err)
		assert.Equal(t, 4, m.NumNodes())
		assert.Equal(t, 2, m.NumCells())
		assert.Equal(t, 5, m.NumEdges())
		assert.Equal(t, []int{0, 1, 2}, m.CellNodes(0))
		assert.Equal(t, []int{0, 2, 3}, m.CellNodes(1))
		assert.Equal(t, [2]float64{1, 1}, m.Coord(2))
		for _, onB := range m.BoundaryNodes() {
			assert.True(t, onB)
		}
	}
	{ // Interior vertices are not on the boundary
		m, err := NewUnitSquareMesh(4)
		require.NoError(t, err)
		assert.Equal(t, 25, m.NumNodes())
		assert.Equal(t, 32, m.NumCells())
		// Euler: V - E + F = 1 for a disk
		assert.Equal(t, 1, m.NumNodes()-m.NumEdges()+m.NumCells())
		var nb int
		for _, onB := range m.BoundaryNodes() {
			if onB {
				nb++
			}
		}
		assert.Equal(t, 16, nb)
		// All cells are counter clockwise
		for k := 0; k < m.NumCells(); k++ {
			v := m.CellNodes(k)
			a, b, c := m.Coord(v[0]), m.Coord(v[1]), m.Coord(v[2])
			area2 := (b[0]-a[0])*(c[1]-a[1]) - (c[0]-a[0])*(b[1]-a[1])
			assert.Greater(t, area2, 0.)
		}
	}
	{
		_, err := NewRectangleMesh(0, 3, 0, 1, 0, 1)
		assert.Error(t, err)
		_, err = NewRectangleMesh(2, 2, 1, 0, 0, 1)
		assert.Error(t, err)
	}
}

func TestFields(t *testing.T) {
	m, err := NewUnitSquareMesh(1)
	require.NoError(t, err)

	u, err := m.CreateField("Displacement", NodeEntity, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, u.Len())
	u.Set(2, 0.5, -0.25)
	assert.Equal(t, []float64{0.5, -0.25}, u.At(2))
	u.At(3)[1] = 7
	assert.Equal(t, 7., u.Data[7])
	assert.Panics(t, func() { u.Set(0, 1) })

	// Same shape returns the same arena, a different shape is an error
	u2, err := m.CreateField("Displacement", NodeEntity, 2)
	require.NoError(t, err)
	assert.Same(t, u, u2)
	_, err = m.CreateField("Displacement", CellEntity, 2)
	assert.Error(t, err)
	_, err = m.CreateField("bad", NodeEntity, 0)
	assert.Error(t, err)

	s, err := m.CreateField("Stress", CellEntity, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"Displacement", "Stress"}, m.FieldNames())
	m.DeleteField("Stress")
	_, ok := m.Field("Stress")
	assert.False(t, ok)

	d, err := m.Displaced("Displacement", 2)
	require.NoError(t, err)
	assert.Equal(t, [2]float64{2, 0.5}, d.Coord(2))
	assert.Equal(t, [2]float64{0, 15}, d.Coord(3))
	du, ok := d.Field("Displacement")
	require.True(t, ok)
	assert.Equal(t, u.Data, du.Data)
	_, err = m.Displaced("nothing", 1)
	assert.Error(t, err)
}

func TestVTKRoundTrip(t *testing.T) {
	m, err := NewRectangleMesh(3, 2, -1, 2, 0, 1)
	require.NoError(t, err)
	u, err := m.CreateField("Displacement", NodeEntity, 2)
	require.NoError(t, err)
	for i := 0; i < m.NumNodes(); i++ {
		x := m.Coord(i)
		u.Set(i, x[0]*x[1], 0.1*x[0])
	}
	s, err := m.CreateField("Stress", CellEntity, 3)
	require.NoError(t, err)
	for k := 0; k < m.NumCells(); k++ {
		s.Set(k, float64(k), -float64(k), 1./3.)
	}

	path := filepath.Join(t.TempDir(), "res.vtk")
	require.NoError(t, m.WriteMeshFile(path))
	r, err := ReadMeshFile(path)
	require.NoError(t, err)

	assert.Equal(t, m.Vertices, r.Vertices)
	assert.Equal(t, m.Elements, r.Elements)
	assert.Equal(t, m.ElementTypes, r.ElementTypes)
	assert.Equal(t, m.FieldNames(), r.FieldNames())
	ru, _ := r.Field("Displacement")
	assert.Equal(t, u.Data, ru.Data)
	rs, _ := r.Field("Stress")
	assert.Equal(t, s.Data, rs.Data)
}

func TestReadVTKScalars(t *testing.T) {
	path := writeTestFile(t, "scalars.vtk", `# vtk DataFile Version 2.0
two triangles
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 float
0 0 0
1 0 0
1 1 0
0 1 0
CELLS 3 11
3 0 1 2
3 0 2 3
2 0 1
CELL_TYPES 3
5
5
3
POINT_DATA 4
SCALARS temperature double
LOOKUP_TABLE default
1 2 3 4
VECTORS velocity double
1 0 0
0 1 0
0 0 1
1 1 1
`)
	m, err := ReadVTK(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumCells())
	assert.Equal(t, 4, m.NumNodes())
	temp, ok := m.Field("temperature")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 4}, temp.Data)
	vel, ok := m.Field("velocity")
	require.True(t, ok)
	assert.Equal(t, 3, vel.Width)
	assert.Equal(t, []float64{1, 1, 1}, vel.At(3))

	_, err = ReadVTK(writeTestFile(t, "bad.vtk", "not a vtk file\n"))
	assert.Error(t, err)
}

func TestGmshRoundTrip(t *testing.T) {
	m, err := NewUnitSquareMesh(3)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "square.msh")
	require.NoError(t, m.WriteMeshFile(path))
	r, err := ReadMeshFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.Vertices, r.Vertices)
	assert.Equal(t, m.Elements, r.Elements)
	assert.Equal(t, m.NumEdges(), r.NumEdges())
}

func TestReadGmsh22(t *testing.T) {
	path := writeTestFile(t, "tagged.msh", `$MeshFormat
2.2 0 8
$EndMeshFormat
$PhysicalNames
2
1 10 "wall"
2 20 "plate"
$EndPhysicalNames
$Nodes
4
11 0 0 0
12 2 0 0
13 2 1 0
14 0 1 0
$EndNodes
$Elements
4
1 15 2 10 1 11
2 1 2 10 1 11 12
3 2 2 20 1 11 12 13
4 2 2 20 1 11 13 14
$EndElements
`)
	m, err := ReadGmsh22(path)
	require.NoError(t, err)
	assert.Equal(t, "2.2", m.FormatVersion)
	assert.Equal(t, 2, m.NumCells())
	assert.Equal(t, []int{20, 20}, m.ElementTags)
	assert.Equal(t, []int{0, 2, 3}, m.CellNodes(1))
	assert.Equal(t, "plate", m.BoundaryTags[20])

	_, err = ReadGmsh22(writeTestFile(t, "v4.msh", "$MeshFormat\n4.1 0 8\n$EndMeshFormat\n"))
	assert.Error(t, err)
}

func TestReadSU2(t *testing.T) {
	path := writeTestFile(t, "square.su2", `% two triangles
NDIME= 2
NELEM= 2
5 0 1 2 0
5 0 2 3 1
NPOIN= 4
0 0 0
1 0 1
1 1 2
0 1 3
NMARK= 1
MARKER_TAG= outer
MARKER_ELEMS= 4
3 0 1
3 1 2
3 2 3
3 3 0
`)
	m, err := ReadMeshFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumCells())
	assert.Equal(t, 4, m.NumNodes())
	assert.Equal(t, "outer", m.BoundaryTags[0])
	assert.Equal(t, 5, m.NumEdges())

	_, err = ReadSU2(writeTestFile(t, "3d.su2", "NDIME= 3\n"))
	assert.Error(t, err)
}

func TestReadGambitNeutral(t *testing.T) {
	path := writeTestFile(t, "square.neu", `        CONTROL INFO 2.4.6
** GAMBIT NEUTRAL FILE
square
PROGRAM:                Gambit     VERSION:  2.4.6
     NUMNP     NELEM     NGRPS    NBSETS     NDFCD     NDFVL
         4         2         1         0         2         2
ENDOFSECTION
   NODAL COORDINATES 2.4.6
         1   0.0000000000e+00   0.0000000000e+00
         2   1.0000000000e+00   0.0000000000e+00
         3   1.0000000000e+00   1.0000000000e+00
         4   0.0000000000e+00   1.0000000000e+00
ENDOFSECTION
      ELEMENTS/CELLS 2.4.6
         1  3  3        1        2        3
         2  3  3        1        3        4
ENDOFSECTION
       ELEMENT GROUP 2.4.6
GROUP:          1 ELEMENTS:          2 MATERIAL:          2 NFLAGS:          1
                           fluid
       0
       1       2
ENDOFSECTION
`)
	m, err := ReadMeshFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumCells())
	assert.Equal(t, []int{0, 2, 3}, m.CellNodes(1))
	assert.Equal(t, []int{1, 1}, m.ElementTags)
	assert.Equal(t, "fluid", m.BoundaryTags[1])
}

func TestReadMeshFileUnsupported(t *testing.T) {
	_, err := ReadMeshFile("mesh.xyz")
	assert.Error(t, err)
	m, err := NewUnitSquareMesh(1)
	require.NoError(t, err)
	assert.Error(t, m.WriteMeshFile(filepath.Join(t.TempDir(), "mesh.su2")))
}

func TestWriteMeshFileErrors(t *testing.T) {
	m, err := NewUnitSquareMesh(2)
	require.NoError(t, err)
	missing := filepath.Join(t.TempDir(), "missing")
	assert.Error(t, m.WriteVTK(filepath.Join(missing, "mesh.vtk")))
	assert.Error(t, m.WriteGmsh22(filepath.Join(missing, "mesh.msh")))
	// Writes to /dev/full fail when the buffered output reaches the device
	if _, err = os.Stat("/dev/full"); err == nil {
		assert.Error(t, m.WriteVTK("/dev/full"))
		assert.Error(t, m.WriteGmsh22("/dev/full"))
	}
}

func TestElementTypeNames(t *testing.T) {
	assert.Equal(t, "Triangle", Triangle.String())
	assert.Equal(t, 3, Triangle.GetNumNodes())
	assert.Equal(t, 4, Quad.GetNumNodes())
	assert.Equal(t, "Unknown", ElementType(9).String())
	assert.Equal(t, "Unknown", ElementType(-1).String())
	assert.Equal(t, 0, ElementType(9).GetNumNodes())
}
