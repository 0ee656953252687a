package mesh

import "fmt"

// Status is the ownership of an entity in a partitioned mesh
type Status uint8

const (
	Owned  Status = iota // Owned by this partition and by no other
	Shared               // Owned by this partition, copies exist on others
	Ghost                // Copy of an entity owned by another partition
)

func (s Status) String() string {
	names := [...]string{"Owned", "Shared", "Ghost"}
	if int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

// IsGhostCell reports whether cell k belongs to another partition
func (m *Mesh) IsGhostCell(k int) bool { return m.CellStatus[k] == Ghost }

// IsGhostNode reports whether vertex i is owned by another partition
func (m *Mesh) IsGhostNode(i int) bool { return m.NodeStatus[i] == Ghost }

// ClearOwnership makes every entity owned, the serial configuration
func (m *Mesh) ClearOwnership() {
	m.CellStatus = make([]Status, m.NumElements)
	m.NodeStatus = make([]Status, m.NumVertices)
}

// SetOwnership views the mesh from partition rank: cells of other
// partitions become ghosts, a vertex is owned by the lowest partition among
// its incident cells and is Shared when other partitions also touch it.
func (m *Mesh) SetOwnership(rank int) error {
	if len(m.EToP) != m.NumElements {
		return fmt.Errorf("mesh has not been partitioned")
	}
	m.CellStatus = make([]Status, m.NumElements)
	for k, p := range m.EToP {
		if p != rank {
			m.CellStatus[k] = Ghost
		}
	}
	m.NodeStatus = make([]Status, m.NumVertices)
	for i, cells := range m.NodeCells() {
		if len(cells) == 0 {
			// Orphan vertices go to partition zero
			if rank != 0 {
				m.NodeStatus[i] = Ghost
			}
			continue
		}
		var (
			owner = m.EToP[cells[0]]
			multi bool
		)
		for _, k := range cells[1:] {
			p := m.EToP[k]
			if p != owner {
				multi = true
			}
			if p < owner {
				owner = p
			}
		}
		switch {
		case owner != rank:
			m.NodeStatus[i] = Ghost
		case multi:
			m.NodeStatus[i] = Shared
		}
	}
	return nil
}

// NumPartitions is one more than the largest partition id, 1 if unpartitioned
func (m *Mesh) NumPartitions() (np int) {
	np = 1
	for _, p := range m.EToP {
		if p+1 > np {
			np = p + 1
		}
	}
	return
}
