package plotting

import (
	"fmt"
	"math"
	"time"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	avsUtils "github.com/notargets/avs/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/notargets/gofem2d/mesh"
)

// MakeTriMesh converts the triangles of m into an avs plot mesh, cells with
// any other shape are left out
func MakeTriMesh(m *mesh.Mesh) (tMesh geometry.TriMesh, err error) {
	tMesh = geometry.TriMesh{
		XY:       make([]float32, 2*m.NumNodes()),
		TriVerts: make([][3]int64, 0, m.NumCells()),
	}
	for i := 0; i < m.NumNodes(); i++ {
		x := m.Coord(i)
		tMesh.XY[2*i] = float32(x[0])
		tMesh.XY[2*i+1] = float32(x[1])
	}
	for k := 0; k < m.NumCells(); k++ {
		verts := m.CellNodes(k)
		if len(verts) != 3 {
			continue
		}
		tMesh.TriVerts = append(tMesh.TriVerts,
			[3]int64{int64(verts[0]), int64(verts[1]), int64(verts[2])})
	}
	if len(tMesh.TriVerts) == 0 {
		err = fmt.Errorf("mesh has no triangles to plot")
	}
	return
}

// VertexMagnitude returns the Euclidean norm of the node field at every
// vertex, the scalar shaded by PlotMesh
func VertexMagnitude(m *mesh.Mesh, fieldName string) (mag []float32, err error) {
	f, ok := m.Field(fieldName)
	if !ok {
		return nil, fmt.Errorf("no field named %q on mesh", fieldName)
	}
	if f.Kind != mesh.NodeEntity {
		return nil, fmt.Errorf("field %q is a %s field, need a Node field", fieldName, f.Kind)
	}
	mag = make([]float32, m.NumNodes())
	for i := range mag {
		var sum float64
		for _, v := range f.At(i) {
			sum += v * v
		}
		mag[i] = float32(math.Sqrt(sum))
	}
	return
}

func getMinMax(XY []float32) (xMin, xMax, yMin, yMax float32) {
	xMin, xMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	yMin, yMax = float32(math.MaxFloat32), -float32(math.MaxFloat32)
	for i := 0; i < len(XY)/2; i++ {
		x, y := XY[2*i], XY[2*i+1]
		xMin, xMax = min(xMin, x), max(xMax, x)
		yMin, yMax = min(yMin, y), max(yMax, y)
	}
	return
}

// getSquareBoundingBox pads the short side so the mesh keeps its aspect ratio
func getSquareBoundingBox(xMin, xMax, yMin, yMax float32) (xBMin,
	xBMax, yBMin, yBMax float32) {
	xRange := xMax - xMin
	yRange := yMax - yMin
	if yRange > xRange {
		yBMin, yBMax = yMin, yMax
		xCent := xRange/2. + xMin
		xBMin, xBMax = xCent-yRange/2., xCent+yRange/2.
	} else {
		xBMin, xBMax = xMin, xMax
		yCent := yRange/2. + yMin
		yBMin, yBMax = yCent-xRange/2., yCent+xRange/2.
	}
	return
}

// PlotMesh draws the mesh in a window, shaded by the magnitude of the named
// node field when fieldName is not empty, and keeps it up for waitTime
func PlotMesh(m *mesh.Mesh, fieldName string, waitTime time.Duration) (err error) {
	tMesh, err := MakeTriMesh(m)
	if err != nil {
		return
	}
	var mag []float32
	if fieldName != "" {
		if mag, err = VertexMagnitude(m, fieldName); err != nil {
			return
		}
	}
	xMin, xMax, yMin, yMax := getSquareBoundingBox(getMinMax(tMesh.XY))
	ch := chart2d.NewChart2D(xMin, xMax, yMin, yMax,
		1024, 1024, avsUtils.WHITE, avsUtils.BLACK)
	if mag != nil {
		fMin, fMax := float32(math.MaxFloat32), -float32(math.MaxFloat32)
		for _, f := range mag {
			fMin, fMax = min(fMin, f), max(fMax, f)
		}
		if fMax == fMin {
			fMax = fMin + 1
		}
		vs := geometry.VertexScalar{
			TMesh:       &tMesh,
			FieldValues: mag,
		}
		ch.AddShadedVertexScalar(&vs, fMin, fMax)
	}
	ch.AddTriMesh(tMesh)
	time.Sleep(waitTime)
	return
}

// PlotHistory saves the residual norm per iteration on a log scale as an
// image, the format follows the extension of fileName
func PlotHistory(history []float64, title, fileName string) (err error) {
	pts := make(plotter.XYs, 0, len(history))
	for i, r := range history {
		if r > 0 && !math.IsInf(r, 0) {
			pts = append(pts, plotter.XY{X: float64(i), Y: r})
		}
	}
	if len(pts) == 0 {
		return fmt.Errorf("no positive residuals to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Residual norm"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return
	}
	p.Add(line)
	return p.Save(6*vg.Inch, 4*vg.Inch, fileName)
}
