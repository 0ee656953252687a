package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadGambitNeutral reads a two dimensional Gambit neutral file
func ReadGambitNeutral(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mesh := NewMesh()
	scanner := bufio.NewScanner(file)

	var numnp, nelem, ndfcd int
	// Gambit ids are 1-based and may be sparse
	elemIndex := make(map[int]int)

	// Read until we find the problem size parameters
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Look for the problem size header line
		if strings.Contains(line, "NUMNP") && strings.Contains(line, "NELEM") {
			// Next line contains the actual values
			if scanner.Scan() {
				values := strings.Fields(scanner.Text())
				if len(values) >= 6 {
					numnp, _ = strconv.Atoi(values[0])
					nelem, _ = strconv.Atoi(values[1])
					ndfcd, _ = strconv.Atoi(values[4])
				}
			}
			break
		}
	}
	if ndfcd != 0 && ndfcd != 2 {
		return nil, fmt.Errorf("only 2D neutral files are supported, NDFCD=%d", ndfcd)
	}

	// Continue reading sections
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "ENDOFSECTION" {
			continue
		}

		switch {
		case strings.Contains(line, "NODAL COORDINATES"):
			for scanner.Scan() {
				line = strings.TrimSpace(scanner.Text())
				if line == "ENDOFSECTION" {
					break
				}
				fields := strings.Fields(line)
				if len(fields) < 3 {
					continue
				}
				id, _ := strconv.Atoi(fields[0])
				x, errX := strconv.ParseFloat(fields[1], 64)
				y, errY := strconv.ParseFloat(fields[2], 64)
				if errX != nil || errY != nil {
					return nil, fmt.Errorf("invalid coordinates for node %d", id)
				}
				mesh.AddNode(id, x, y)
			}

		case strings.Contains(line, "ELEMENTS/CELLS"):
			mesh.Elements = make([][]int, 0, nelem)
			mesh.ElementTypes = make([]ElementType, 0, nelem)
			mesh.ElementTags = make([]int, 0, nelem)

			for scanner.Scan() {
				line = strings.TrimSpace(scanner.Text())
				if line == "ENDOFSECTION" {
					break
				}
				// Format: NE NTYPE NDP NODE1 NODE2 ...
				fields := strings.Fields(line)
				if len(fields) < 3 {
					continue
				}
				id, _ := strconv.Atoi(fields[0])
				ntype, _ := strconv.Atoi(fields[1])
				numNodes, _ := strconv.Atoi(fields[2])

				var etype ElementType
				switch ntype {
				case 1: // Edge - skip
					continue
				case 2:
					etype = Quad
				case 3:
					etype = Triangle
				default:
					return nil, fmt.Errorf("element %d: unsupported 2D NTYPE %d", id, ntype)
				}
				if numNodes < etype.GetNumNodes() || len(fields) < 3+numNodes {
					return nil, fmt.Errorf("element %d: too few nodes", id)
				}
				// Higher order elements keep their corners, which lead the list
				nodeIDs := make([]int, etype.GetNumNodes())
				stride := 1
				if numNodes == 2*etype.GetNumNodes() {
					// Corners and midsides alternate
					stride = 2
				}
				for j := range nodeIDs {
					nodeIDs[j], _ = strconv.Atoi(fields[3+j*stride])
				}
				elemIndex[id] = len(mesh.Elements)
				if err = mesh.AddElement(etype, 0, nodeIDs); err != nil {
					return nil, fmt.Errorf("element %d: %v", id, err)
				}
			}

		case strings.HasPrefix(line, "GROUP:"):
			// Format: GROUP: NGP ELEMENTS: NELGP MATERIAL: MTYP NFLAGS: NFLAGS
			parts := strings.Fields(line)
			var groupID, numElems int
			for i := 0; i < len(parts)-1; i++ {
				switch parts[i] {
				case "GROUP:":
					groupID, _ = strconv.Atoi(parts[i+1])
				case "ELEMENTS:":
					numElems, _ = strconv.Atoi(parts[i+1])
				}
			}

			// Entity name
			if scanner.Scan() {
				mesh.BoundaryTags[groupID] = strings.TrimSpace(scanner.Text())
			}
			// Skip flags
			scanner.Scan()

			elementsRead := 0
			for elementsRead < numElems && scanner.Scan() {
				line = strings.TrimSpace(scanner.Text())
				if line == "ENDOFSECTION" {
					break
				}
				for _, field := range strings.Fields(line) {
					elemID, _ := strconv.Atoi(field)
					if k, ok := elemIndex[elemID]; ok {
						mesh.ElementTags[k] = groupID
					}
					elementsRead++
				}
			}

		case strings.Contains(line, "BOUNDARY CONDITIONS"):
			// The BC name is kept, boundary nodes come from connectivity
			if scanner.Scan() {
				parts := strings.Fields(scanner.Text())
				if len(parts) >= 1 {
					mesh.BoundaryTags[-1-len(mesh.BoundaryTags)] = parts[0]
				}
			}
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if numnp != 0 && len(mesh.Vertices) != numnp {
		return nil, fmt.Errorf("expected %d nodes, read %d", numnp, len(mesh.Vertices))
	}

	mesh.BuildConnectivity()
	return mesh, nil
}
