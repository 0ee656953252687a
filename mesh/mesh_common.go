package mesh

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/notargets/gofem2d/types"
)

// ElementType represents different element types
type ElementType int

const (
	Point ElementType = iota
	Line
	Triangle
	Quad
)

func (e ElementType) String() string {
	names := [...]string{"Point", "Line", "Triangle", "Quad"}
	if e < 0 || int(e) >= len(names) {
		return "Unknown"
	}
	return names[e]
}

// GetNumNodes returns the number of corner nodes of the element type, 0 for
// an unknown type
func (e ElementType) GetNumNodes() int {
	nodes := [...]int{1, 2, 3, 4}
	if e < 0 || int(e) >= len(nodes) {
		return 0
	}
	return nodes[e]
}

// Edge is a mesh edge and the cells that share it
type Edge struct {
	Verts [2]int // Sorted vertex indices
	Cells []int  // Cells incident on this edge, one for a boundary edge
}

// Mesh is an unstructured 2D mesh of surface elements plus the per-entity
// field arenas attached to it.
type Mesh struct {
	// Geometry
	Vertices [][2]float64 // Vertex coordinates [nvertices][2]

	// Element data
	Elements     [][]int       // Element to vertex connectivity [nelems][nverts_per_elem]
	ElementTypes []ElementType // Element type for each element
	ElementTags  []int         // Physical group/tag for each element

	// Connectivity (built during initialization)
	Edges    map[types.EdgeKey]*Edge
	EdgeKeys types.EdgeKeySlice // Sorted, gives a stable edge enumeration
	EToP     []int              // Element to partition mapping (set after partitioning)

	// Ownership, all Owned unless SetOwnership has been called
	CellStatus []Status
	NodeStatus []Status

	BoundaryTags map[int]string // Physical names by tag

	fields map[string]*Field

	// Mesh statistics
	NumElements int
	NumVertices int

	// Bookkeeping from file readers
	FormatVersion string
	nodeIDMap     map[int]int // file node id -> vertex index
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		Edges:        make(map[types.EdgeKey]*Edge),
		BoundaryTags: make(map[int]string),
		fields:       make(map[string]*Field),
		nodeIDMap:    make(map[int]int),
	}
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Mesh, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".vtk":
		return ReadVTK(filename)
	case ".neu":
		return ReadGambitNeutral(filename)
	case ".msh":
		return ReadGmsh22(filename)
	case ".su2":
		return ReadSU2(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// WriteMeshFile writes the mesh, with fields where the format carries them
func (m *Mesh) WriteMeshFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".vtk":
		return m.WriteVTK(filename)
	case ".msh":
		return m.WriteGmsh22(filename)
	default:
		return fmt.Errorf("unsupported output mesh format: %s", ext)
	}
}

// AddNode appends a vertex. A non-negative file id is remembered so that
// element records written against file ids can be resolved.
func (m *Mesh) AddNode(fileID int, x, y float64) (index int) {
	index = len(m.Vertices)
	m.Vertices = append(m.Vertices, [2]float64{x, y})
	if fileID >= 0 {
		m.nodeIDMap[fileID] = index
	}
	m.NumVertices = len(m.Vertices)
	return
}

// AddElement appends a surface element given file node ids
func (m *Mesh) AddElement(etype ElementType, tag int, fileNodeIDs []int) error {
	verts := make([]int, len(fileNodeIDs))
	for i, id := range fileNodeIDs {
		v, ok := m.nodeIDMap[id]
		if !ok {
			return fmt.Errorf("element references unknown node id %d", id)
		}
		verts[i] = v
	}
	m.appendElement(etype, tag, verts)
	return nil
}

func (m *Mesh) appendElement(etype ElementType, tag int, verts []int) {
	m.Elements = append(m.Elements, verts)
	m.ElementTypes = append(m.ElementTypes, etype)
	m.ElementTags = append(m.ElementTags, tag)
	m.NumElements = len(m.Elements)
}

// BuildConnectivity builds the edge table, resets ownership to serial and
// sizes the existing field arenas to the entity counts.
func (m *Mesh) BuildConnectivity() {
	m.NumElements = len(m.Elements)
	m.NumVertices = len(m.Vertices)
	m.Edges = make(map[types.EdgeKey]*Edge)
	for k, verts := range m.Elements {
		nv := len(verts)
		if nv < 2 {
			continue
		}
		for i := 0; i < nv; i++ {
			ek := types.NewEdgeKey([2]int{verts[i], verts[(i+1)%nv]})
			e, ok := m.Edges[ek]
			if !ok {
				e = &Edge{Verts: ek.GetVertices(false)}
				m.Edges[ek] = e
			}
			e.Cells = append(e.Cells, k)
		}
	}
	m.EdgeKeys = make(types.EdgeKeySlice, 0, len(m.Edges))
	for ek := range m.Edges {
		m.EdgeKeys = append(m.EdgeKeys, ek)
	}
	sort.Sort(m.EdgeKeys)
	m.ClearOwnership()
	for _, f := range m.fields {
		f.resize(m.entityCount(f.Kind))
	}
}

func (m *Mesh) NumCells() int { return m.NumElements }
func (m *Mesh) NumNodes() int { return m.NumVertices }
func (m *Mesh) NumEdges() int { return len(m.Edges) }

// CellNodes returns the ordered vertex list of cell k
func (m *Mesh) CellNodes(k int) []int { return m.Elements[k] }

// Coord returns the coordinates of vertex i
func (m *Mesh) Coord(i int) [2]float64 { return m.Vertices[i] }

// BoundaryNodes flags every vertex that lies on an edge with a single
// incident cell.
func (m *Mesh) BoundaryNodes() (onBoundary []bool) {
	onBoundary = make([]bool, m.NumVertices)
	for _, e := range m.Edges {
		if len(e.Cells) == 1 {
			onBoundary[e.Verts[0]] = true
			onBoundary[e.Verts[1]] = true
		}
	}
	return
}

// NodeCells returns, for each vertex, the cells that reference it
func (m *Mesh) NodeCells() (nc [][]int) {
	nc = make([][]int, m.NumVertices)
	for k, verts := range m.Elements {
		for _, v := range verts {
			nc[v] = append(nc[v], k)
		}
	}
	return
}

// CellNeighbors returns the edge adjacency of cells, suitable for graph
// partitioning.
func (m *Mesh) CellNeighbors() (nbrs [][]int) {
	nbrs = make([][]int, m.NumElements)
	for _, ek := range m.EdgeKeys {
		e := m.Edges[ek]
		if len(e.Cells) != 2 {
			continue
		}
		k1, k2 := e.Cells[0], e.Cells[1]
		if k1 == k2 {
			continue
		}
		nbrs[k1] = append(nbrs[k1], k2)
		nbrs[k2] = append(nbrs[k2], k1)
	}
	return
}

// Displaced returns a copy of the mesh geometry and connectivity with every
// vertex moved by scale times the 2-wide node field named fieldName.
func (m *Mesh) Displaced(fieldName string, scale float64) (*Mesh, error) {
	f, ok := m.fields[fieldName]
	if !ok {
		return nil, fmt.Errorf("no field named %q on mesh", fieldName)
	}
	if f.Kind != NodeEntity || f.Width < 2 {
		return nil, fmt.Errorf("field %q is not a 2-wide node field", fieldName)
	}
	d := NewMesh()
	d.Vertices = make([][2]float64, m.NumVertices)
	for i, x := range m.Vertices {
		u := f.At(i)
		d.Vertices[i] = [2]float64{x[0] + scale*u[0], x[1] + scale*u[1]}
	}
	d.Elements = make([][]int, m.NumElements)
	for k, verts := range m.Elements {
		d.Elements[k] = append([]int(nil), verts...)
	}
	d.ElementTypes = append([]ElementType(nil), m.ElementTypes...)
	d.ElementTags = append([]int(nil), m.ElementTags...)
	for tag, name := range m.BoundaryTags {
		d.BoundaryTags[tag] = name
	}
	d.BuildConnectivity()
	for _, name := range m.FieldNames() {
		src := m.fields[name]
		dst, err := d.CreateField(src.Name, src.Kind, src.Width)
		if err != nil {
			return nil, err
		}
		copy(dst.Data, src.Data)
	}
	return d, nil
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Number of cells: %d\n", m.NumElements)
	fmt.Printf("Number of edges: %d\n", len(m.Edges))
	fmt.Printf("Number of nodes: %d\n", m.NumVertices)

	typeCounts := make(map[ElementType]int)
	for _, t := range m.ElementTypes {
		typeCounts[t]++
	}
	for t, count := range typeCounts {
		fmt.Printf("  %s: %d\n", t, count)
	}

	boundaryEdges := 0
	for _, e := range m.Edges {
		if len(e.Cells) == 1 {
			boundaryEdges++
		}
	}
	fmt.Printf("  Boundary edges: %d\n", boundaryEdges)
}
