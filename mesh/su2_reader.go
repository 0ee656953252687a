package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
const (
	su2Line          = 3
	su2Triangle      = 5
	su2Quadrilateral = 9
)

// ReadSU2 reads a two dimensional SU2 native format file. SU2 vertex
// indices are zero based and are used directly.
func ReadSU2(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mesh := NewMesh()
	scanner := bufio.NewScanner(file)

	var ndime int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments
		if strings.HasPrefix(line, "%") || line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "NDIME="):
			if _, err = fmt.Sscanf(line, "NDIME=%d", &ndime); err != nil {
				return nil, fmt.Errorf("bad NDIME line [%s]: %v", line, err)
			}
			if ndime != 2 {
				return nil, fmt.Errorf("only 2D meshes are supported, got NDIME=%d", ndime)
			}

		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			if _, err = fmt.Sscanf(line, "NELEM=%d", &nelem); err != nil {
				return nil, fmt.Errorf("bad NELEM line [%s]: %v", line, err)
			}
			for i := 0; i < nelem; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF in element %d", i)
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 2 {
					return nil, fmt.Errorf("invalid element entry %d", i)
				}
				su2Type, _ := strconv.Atoi(fields[0])
				var etype ElementType
				switch su2Type {
				case su2Triangle:
					etype = Triangle
				case su2Quadrilateral:
					etype = Quad
				default:
					return nil, fmt.Errorf("unsupported SU2 element type %d in element %d", su2Type, i)
				}
				numNodes := etype.GetNumNodes()
				if len(fields) < numNodes+1 {
					return nil, fmt.Errorf("element %d expects %d nodes", i, numNodes)
				}
				verts := make([]int, numNodes)
				for j := 0; j < numNodes; j++ {
					verts[j], _ = strconv.Atoi(fields[1+j])
				}
				mesh.appendElement(etype, 0, verts)
			}

		case strings.HasPrefix(line, "NPOIN="):
			var npoin int
			// NPOIN may carry a second count of domain points, ignored here
			if _, err = fmt.Sscanf(line, "NPOIN=%d", &npoin); err != nil {
				return nil, fmt.Errorf("bad NPOIN line [%s]: %v", line, err)
			}
			for i := 0; i < npoin; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF in point %d", i)
				}
				fields := strings.Fields(scanner.Text())
				if len(fields) < 2 {
					return nil, fmt.Errorf("invalid point entry %d", i)
				}
				x, errX := strconv.ParseFloat(fields[0], 64)
				y, errY := strconv.ParseFloat(fields[1], 64)
				if errX != nil || errY != nil {
					return nil, fmt.Errorf("invalid coordinates for point %d", i)
				}
				mesh.AddNode(i, x, y)
			}

		case strings.HasPrefix(line, "NMARK="):
			var nmark int
			if _, err = fmt.Sscanf(line, "NMARK=%d", &nmark); err != nil {
				return nil, fmt.Errorf("bad NMARK line [%s]: %v", line, err)
			}
			for i := 0; i < nmark; i++ {
				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF in marker %d", i)
				}
				markerLine := strings.TrimSpace(scanner.Text())
				if !strings.HasPrefix(markerLine, "MARKER_TAG=") {
					return nil, fmt.Errorf("expected MARKER_TAG, have [%s]", markerLine)
				}
				mesh.BoundaryTags[i] = strings.TrimSpace(strings.TrimPrefix(markerLine, "MARKER_TAG="))

				if !scanner.Scan() {
					return nil, fmt.Errorf("unexpected EOF in marker %d", i)
				}
				var nMarkerElems int
				if _, err = fmt.Sscanf(strings.TrimSpace(scanner.Text()), "MARKER_ELEMS=%d", &nMarkerElems); err != nil {
					return nil, fmt.Errorf("bad MARKER_ELEMS line: %v", err)
				}
				// Boundary lines are implied by the cell connectivity
				for j := 0; j < nMarkerElems; j++ {
					scanner.Scan()
				}
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}

	for k, verts := range mesh.Elements {
		for _, v := range verts {
			if v < 0 || v >= len(mesh.Vertices) {
				return nil, fmt.Errorf("element %d references vertex %d, have %d vertices",
					k, v, len(mesh.Vertices))
			}
		}
	}

	mesh.BuildConnectivity()
	return mesh, nil
}
