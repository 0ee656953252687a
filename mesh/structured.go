package mesh

import "fmt"

// NewRectangleMesh builds an nx by ny grid of squares on [x0,x1]x[y0,y1],
// each split along its rising diagonal into two counter clockwise triangles.
// Vertex (i,j) of the grid is vertex i + j*(nx+1) of the mesh.
func NewRectangleMesh(nx, ny int, x0, x1, y0, y1 float64) (*Mesh, error) {
	if nx < 1 || ny < 1 {
		return nil, fmt.Errorf("grid dimensions must be positive, have %dx%d", nx, ny)
	}
	if !(x1 > x0) || !(y1 > y0) {
		return nil, fmt.Errorf("empty domain [%g,%g]x[%g,%g]", x0, x1, y0, y1)
	}
	m := NewMesh()
	var (
		dx = (x1 - x0) / float64(nx)
		dy = (y1 - y0) / float64(ny)
	)
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			x, y := x0+float64(i)*dx, y0+float64(j)*dy
			// Land exactly on the far walls
			if i == nx {
				x = x1
			}
			if j == ny {
				y = y1
			}
			m.AddNode(-1, x, y)
		}
	}
	vid := func(i, j int) int { return i + j*(nx+1) }
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := vid(i, j), vid(i+1, j), vid(i+1, j+1), vid(i, j+1)
			m.appendElement(Triangle, 0, []int{a, b, c})
			m.appendElement(Triangle, 0, []int{a, c, d})
		}
	}
	m.BuildConnectivity()
	return m, nil
}

// NewUnitSquareMesh is an n by n triangulated grid of the unit square
func NewUnitSquareMesh(n int) (*Mesh, error) {
	return NewRectangleMesh(n, n, 0, 1, 0, 1)
}
