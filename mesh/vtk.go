package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Legacy VTK cell types
const (
	vtkVertex   = 1
	vtkLine     = 3
	vtkTriangle = 5
	vtkQuad     = 9
)

var vtkCellTypes = map[int]ElementType{
	vtkVertex:   Point,
	vtkLine:     Line,
	vtkTriangle: Triangle,
	vtkQuad:     Quad,
}

var elementTypeToVTK = map[ElementType]int{
	Point:    vtkVertex,
	Line:     vtkLine,
	Triangle: vtkTriangle,
	Quad:     vtkQuad,
}

// vtkTokens walks a legacy ASCII VTK file one whitespace separated token at
// a time.
type vtkTokens struct {
	scanner *bufio.Scanner
	last    string
}

func (vt *vtkTokens) next() (tok string, ok bool) {
	if !vt.scanner.Scan() {
		return "", false
	}
	vt.last = vt.scanner.Text()
	return vt.last, true
}

func (vt *vtkTokens) nextInt() (int, error) {
	tok, ok := vt.next()
	if !ok {
		return 0, fmt.Errorf("unexpected EOF, expected an integer")
	}
	return strconv.Atoi(tok)
}

func (vt *vtkTokens) nextFloat() (float64, error) {
	tok, ok := vt.next()
	if !ok {
		return 0, fmt.Errorf("unexpected EOF, expected a real")
	}
	return strconv.ParseFloat(tok, 64)
}

func (vt *vtkTokens) nextFloats(n int) (vals []float64, err error) {
	vals = make([]float64, n)
	for i := range vals {
		if vals[i], err = vt.nextFloat(); err != nil {
			return nil, err
		}
	}
	return
}

// ReadVTK reads a legacy ASCII VTK unstructured grid. FIELD arrays and
// SCALARS/VECTORS sections found in POINT_DATA and CELL_DATA are attached
// to the mesh as fields.
func ReadVTK(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// The header and title are line oriented
	lines := bufio.NewReader(file)
	header, err := lines.ReadString('\n')
	if err != nil || !strings.HasPrefix(header, "# vtk DataFile") {
		return nil, fmt.Errorf("%s is not a legacy VTK file", filename)
	}
	if _, err = lines.ReadString('\n'); err != nil {
		return nil, fmt.Errorf("missing title line in %s", filename)
	}
	format, err := lines.ReadString('\n')
	if err != nil || strings.TrimSpace(strings.ToUpper(format)) != "ASCII" {
		return nil, fmt.Errorf("only ASCII VTK files are supported")
	}

	mesh := NewMesh()
	mesh.FormatVersion = strings.TrimSpace(strings.TrimPrefix(header, "# vtk DataFile Version"))

	scanner := bufio.NewScanner(lines)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)
	vt := &vtkTokens{scanner: scanner}

	var (
		cells     [][]int
		cellTypes []int
		// Fields are attached after BuildConnectivity sizes the mesh
		pending  []*Field
		dataKind = NodeEntity
	)

	for {
		tok, ok := vt.next()
		if !ok {
			break
		}
		switch strings.ToUpper(tok) {
		case "DATASET":
			kind, _ := vt.next()
			if strings.ToUpper(kind) != "UNSTRUCTURED_GRID" {
				return nil, fmt.Errorf("unsupported VTK dataset %s", kind)
			}

		case "POINTS":
			n, err := vt.nextInt()
			if err != nil {
				return nil, fmt.Errorf("bad POINTS count: %v", err)
			}
			vt.next() // data type
			for i := 0; i < n; i++ {
				xyz, err := vt.nextFloats(3)
				if err != nil {
					return nil, fmt.Errorf("point %d: %v", i, err)
				}
				mesh.AddNode(i, xyz[0], xyz[1])
			}

		case "CELLS":
			n, err := vt.nextInt()
			if err != nil {
				return nil, fmt.Errorf("bad CELLS count: %v", err)
			}
			if _, err = vt.nextInt(); err != nil {
				return nil, fmt.Errorf("bad CELLS size: %v", err)
			}
			cells = make([][]int, n)
			for k := range cells {
				nv, err := vt.nextInt()
				if err != nil {
					return nil, fmt.Errorf("cell %d: %v", k, err)
				}
				cells[k] = make([]int, nv)
				for j := range cells[k] {
					if cells[k][j], err = vt.nextInt(); err != nil {
						return nil, fmt.Errorf("cell %d: %v", k, err)
					}
				}
			}

		case "CELL_TYPES":
			n, err := vt.nextInt()
			if err != nil {
				return nil, fmt.Errorf("bad CELL_TYPES count: %v", err)
			}
			cellTypes = make([]int, n)
			for k := range cellTypes {
				if cellTypes[k], err = vt.nextInt(); err != nil {
					return nil, fmt.Errorf("cell type %d: %v", k, err)
				}
			}

		case "POINT_DATA":
			vt.nextInt()
			dataKind = NodeEntity

		case "CELL_DATA":
			vt.nextInt()
			dataKind = CellEntity

		case "FIELD":
			vt.next() // field data name
			nArrays, err := vt.nextInt()
			if err != nil {
				return nil, fmt.Errorf("bad FIELD count: %v", err)
			}
			for a := 0; a < nArrays; a++ {
				name, _ := vt.next()
				width, err := vt.nextInt()
				if err != nil {
					return nil, fmt.Errorf("array %s: %v", name, err)
				}
				count, err := vt.nextInt()
				if err != nil {
					return nil, fmt.Errorf("array %s: %v", name, err)
				}
				vt.next() // data type
				data, err := vt.nextFloats(width * count)
				if err != nil {
					return nil, fmt.Errorf("array %s: %v", name, err)
				}
				pending = append(pending, &Field{Name: name, Kind: dataKind, Width: width, Data: data})
			}

		case "SCALARS", "VECTORS":
			name, _ := vt.next()
			vt.next() // data type
			width := 3
			if strings.ToUpper(tok) == "SCALARS" {
				width = 1
				// Optional component count, then the lookup table
				next, _ := vt.next()
				if strings.ToUpper(next) != "LOOKUP_TABLE" {
					width, _ = strconv.Atoi(next)
					vt.next()
				}
				vt.next() // table name
			}
			count := len(mesh.Vertices)
			if dataKind == CellEntity {
				count = len(cells)
			}
			data, err := vt.nextFloats(width * count)
			if err != nil {
				return nil, fmt.Errorf("array %s: %v", name, err)
			}
			pending = append(pending, &Field{Name: name, Kind: dataKind, Width: width, Data: data})
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if len(cellTypes) != len(cells) {
		return nil, fmt.Errorf("have %d cells and %d cell types", len(cells), len(cellTypes))
	}

	for k, verts := range cells {
		etype, ok := vtkCellTypes[cellTypes[k]]
		if !ok {
			return nil, fmt.Errorf("unsupported VTK cell type %d in cell %d", cellTypes[k], k)
		}
		if etype == Point || etype == Line {
			continue
		}
		if len(verts) != etype.GetNumNodes() {
			return nil, fmt.Errorf("cell %d: %s needs %d nodes, has %d",
				k, etype, etype.GetNumNodes(), len(verts))
		}
		if err = mesh.AddElement(etype, 0, verts); err != nil {
			return nil, fmt.Errorf("cell %d: %v", k, err)
		}
	}

	mesh.BuildConnectivity()
	for _, pf := range pending {
		if pf.Kind == CellEntity && len(cells) != mesh.NumElements {
			// Cell data includes skipped lower dimensional cells
			continue
		}
		f, err := mesh.CreateField(pf.Name, pf.Kind, pf.Width)
		if err != nil {
			return nil, err
		}
		if len(pf.Data) != len(f.Data) {
			return nil, fmt.Errorf("array %s has %d values, expected %d",
				pf.Name, len(pf.Data), len(f.Data))
		}
		copy(f.Data, pf.Data)
	}
	return mesh, nil
}

// WriteVTK writes the mesh and every attached field as a legacy ASCII VTK
// unstructured grid.
func (m *Mesh) WriteVTK(filename string) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# vtk DataFile Version 3.0\n")
	fmt.Fprintf(w, "gofem2d\n")
	fmt.Fprintf(w, "ASCII\n")
	fmt.Fprintf(w, "DATASET UNSTRUCTURED_GRID\n")

	fmt.Fprintf(w, "POINTS %d double\n", m.NumVertices)
	for _, x := range m.Vertices {
		fmt.Fprintf(w, "%.17g %.17g 0\n", x[0], x[1])
	}

	size := 0
	for _, verts := range m.Elements {
		size += len(verts) + 1
	}
	fmt.Fprintf(w, "CELLS %d %d\n", m.NumElements, size)
	for _, verts := range m.Elements {
		fmt.Fprintf(w, "%d", len(verts))
		for _, v := range verts {
			fmt.Fprintf(w, " %d", v)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "CELL_TYPES %d\n", m.NumElements)
	for _, et := range m.ElementTypes {
		fmt.Fprintf(w, "%d\n", elementTypeToVTK[et])
	}

	writeFields := func(kind EntityKind, header string, count int) {
		var names []string
		for _, name := range m.FieldNames() {
			if m.fields[name].Kind == kind {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			return
		}
		fmt.Fprintf(w, "%s %d\n", header, count)
		fmt.Fprintf(w, "FIELD FieldData %d\n", len(names))
		for _, name := range names {
			f := m.fields[name]
			fmt.Fprintf(w, "%s %d %d double\n", name, f.Width, count)
			for id := 0; id < count; id++ {
				for j, v := range f.At(id) {
					if j > 0 {
						fmt.Fprintf(w, " ")
					}
					fmt.Fprintf(w, "%.17g", v)
				}
				fmt.Fprintf(w, "\n")
			}
		}
	}
	writeFields(CellEntity, "CELL_DATA", m.NumElements)
	writeFields(NodeEntity, "POINT_DATA", m.NumVertices)

	return w.Flush()
}
