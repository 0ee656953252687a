package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// gmshElementType2_2 maps the Gmsh 2.2 element types we keep. Higher order
// surface elements keep only their corner nodes.
var gmshElementType2_2 = map[int]ElementType{
	1:  Line,
	2:  Triangle,
	3:  Quad,
	9:  Triangle, // 6-node triangle
	10: Quad,     // 9-node quad
	15: Point,
	16: Quad, // 8-node quad
}

var elementTypeToGmsh22 = map[ElementType]int{
	Point:    15,
	Line:     1,
	Triangle: 2,
	Quad:     3,
}

// ReadGmsh22 reads an ASCII Gmsh 2.2 file. Only surface elements become
// cells, points and lines are boundary decoration and are skipped.
func ReadGmsh22(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mesh := NewMesh()
	scanner := bufio.NewScanner(file)

	// Increase scanner buffer for large files
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat(scanner, mesh); err != nil {
				return nil, err
			}

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, mesh); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes(scanner, mesh); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements(scanner, mesh); err != nil {
				return nil, err
			}

		case "$NodeData", "$ElementData", "$ElementNodeData", "$Periodic":
			if err := skipSection(scanner, "$End"+line[1:]); err != nil {
				return nil, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("no $Nodes section found in %s", filename)
	}

	mesh.BuildConnectivity()
	return mesh, nil
}

// readMeshFormat reads the MeshFormat section
func readMeshFormat(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}

	mesh.FormatVersion = parts[0]
	if !strings.HasPrefix(mesh.FormatVersion, "2") {
		return fmt.Errorf("unsupported Gmsh version: %s", mesh.FormatVersion)
	}
	if fileType, _ := strconv.Atoi(parts[1]); fileType != 0 {
		return fmt.Errorf("binary Gmsh files are not supported")
	}

	return skipSection(scanner, "$EndMeshFormat")
}

// readPhysicalNames reads physical entity names
func readPhysicalNames(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}

	numPhysical, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of physical names: %v", err)
	}

	for i := 0; i < numPhysical; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in PhysicalNames")
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid physical name entry")
		}

		tag, _ := strconv.Atoi(fields[1])
		mesh.BoundaryTags[tag] = strings.Trim(strings.Join(fields[2:], " "), "\"")
	}

	return skipSection(scanner, "$EndPhysicalNames")
}

// readNodes reads the Nodes section, z is discarded
func readNodes(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of nodes: %v", err)
	}

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Nodes at node %d", i)
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node entry at line %d", i+1)
		}

		nodeID, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node ID: %v", err)
		}

		var coords [2]float64
		for j := 0; j < 2; j++ {
			coords[j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return fmt.Errorf("invalid coordinate: %v", err)
			}
		}

		mesh.AddNode(nodeID, coords[0], coords[1])
	}

	return skipSection(scanner, "$EndNodes")
}

// readElements reads the Elements section
func readElements(scanner *bufio.Scanner, mesh *Mesh) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}

	numElems, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid number of elements: %v", err)
	}

	for i := 0; i < numElems; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Elements at element %d", i)
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid element entry at line %d", i+1)
		}

		gmshType, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("invalid element type: %v", err)
		}

		numTags, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("invalid number of tags: %v", err)
		}
		if len(fields) < 3+numTags {
			return fmt.Errorf("insufficient fields for tags")
		}
		physTag := 0
		if numTags > 0 {
			physTag, _ = strconv.Atoi(fields[3])
		}

		elemType, ok := gmshElementType2_2[gmshType]
		if !ok {
			return fmt.Errorf("unsupported Gmsh element type %d", gmshType)
		}
		if elemType == Point || elemType == Line {
			continue
		}

		startIdx := 3 + numTags
		numNodes := elemType.GetNumNodes()
		if len(fields)-startIdx < numNodes {
			return fmt.Errorf("element type %v expects %d nodes, got %d",
				elemType, numNodes, len(fields)-startIdx)
		}

		nodeIDs := make([]int, numNodes)
		for j := 0; j < numNodes; j++ {
			nodeIDs[j], err = strconv.Atoi(fields[startIdx+j])
			if err != nil {
				return fmt.Errorf("invalid node ID: %v", err)
			}
		}

		if err := mesh.AddElement(elemType, physTag, nodeIDs); err != nil {
			return err
		}
	}

	return skipSection(scanner, "$EndElements")
}

// skipSection skips an unhandled section
func skipSection(scanner *bufio.Scanner, endTag string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endTag {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF while looking for %s", endTag)
}

// WriteGmsh22 writes nodes and surface elements as an ASCII Gmsh 2.2 file
func (m *Mesh) WriteGmsh22(filename string) (err error) {
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
	fmt.Fprintf(w, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	fmt.Fprintf(w, "$Nodes\n%d\n", m.NumVertices)
	for i, x := range m.Vertices {
		fmt.Fprintf(w, "%d %.17g %.17g 0\n", i+1, x[0], x[1])
	}
	fmt.Fprintf(w, "$EndNodes\n")
	fmt.Fprintf(w, "$Elements\n%d\n", m.NumElements)
	for k, verts := range m.Elements {
		fmt.Fprintf(w, "%d %d 2 %d %d", k+1, elementTypeToGmsh22[m.ElementTypes[k]],
			m.ElementTags[k], m.ElementTags[k])
		for _, v := range verts {
			fmt.Fprintf(w, " %d", v+1)
		}
		fmt.Fprintf(w, "\n")
	}
	fmt.Fprintf(w, "$EndElements\n")
	return w.Flush()
}
