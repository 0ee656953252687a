package mesh

import (
	"fmt"
	"log"
	"math"
	"sort"

	metis "github.com/notargets/go-metis"

	"github.com/notargets/gofem2d/utils"
)

// PartitionConfig holds configuration for mesh partitioning
type PartitionConfig struct {
	NumPartitions   int32
	ImbalanceFactor float32 // e.g., 1.05 for 5% imbalance
	UseEdgeWeights  bool
	Objective       string // "cut" or "vol"
	Method          string // "metis" or "strip"
}

// DefaultPartitionConfig returns default partitioning configuration
func DefaultPartitionConfig(nparts int32) *PartitionConfig {
	return &PartitionConfig{
		NumPartitions:   nparts,
		ImbalanceFactor: 1.05,
		UseEdgeWeights:  true,
		Objective:       "vol", // minimize communication volume
		Method:          "metis",
	}
}

// MeshPartitioner assigns every cell of a mesh to a partition
type MeshPartitioner struct {
	mesh   *Mesh
	config *PartitionConfig

	computeCostModel func(elemType ElementType) int32
}

// NewMeshPartitioner creates a partitioner for the given mesh
func NewMeshPartitioner(mesh *Mesh, config *PartitionConfig) *MeshPartitioner {
	return &MeshPartitioner{
		mesh:   mesh,
		config: config,
		computeCostModel: func(elemType ElementType) int32 {
			// Local operators are (2*nverts)^2
			return map[ElementType]int32{
				Triangle: 9,
				Quad:     16,
			}[elemType]
		},
	}
}

// Partition fills mesh.EToP
func (mp *MeshPartitioner) Partition() (err error) {
	var (
		m      = mp.mesh
		nparts = int(mp.config.NumPartitions)
		part   []int
		objval int32
	)
	if nparts < 1 {
		return fmt.Errorf("number of partitions must be positive, have %d", nparts)
	}
	if nparts > m.NumElements {
		return fmt.Errorf("cannot split %d cells into %d partitions", m.NumElements, nparts)
	}
	log.Printf("Partitioning mesh with %d elements into %d parts using %s",
		m.NumElements, nparts, mp.config.Method)

	switch {
	case nparts == 1:
		part = make([]int, m.NumElements)
	case mp.config.Method == "strip":
		part = mp.partitionStrips()
	case mp.config.Method == "metis":
		if part, objval, err = mp.partitionMetis(); err != nil {
			return
		}
	default:
		return fmt.Errorf("unknown partitioning method %q", mp.config.Method)
	}
	m.EToP = part
	mp.analyzePartition(objval)
	return
}

// partitionStrips cuts the domain into vertical strips holding equal numbers
// of cells, ordered by centroid x.
func (mp *MeshPartitioner) partitionStrips() (part []int) {
	var (
		m     = mp.mesh
		order = make([]int, m.NumElements)
		cx    = make([]float64, m.NumElements)
		cy    = make([]float64, m.NumElements)
	)
	for k, verts := range m.Elements {
		order[k] = k
		for _, v := range verts {
			cx[k] += m.Vertices[v][0]
			cy[k] += m.Vertices[v][1]
		}
		cx[k] /= float64(len(verts))
		cy[k] /= float64(len(verts))
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if cx[ka] != cx[kb] {
			return cx[ka] < cx[kb]
		}
		return cy[ka] < cy[kb]
	})
	pm := utils.NewPartitionMap(int(mp.config.NumPartitions), m.NumElements)
	part = make([]int, m.NumElements)
	for i, k := range order {
		part[k], _, _ = pm.GetBucket(i)
	}
	return
}

func (mp *MeshPartitioner) partitionMetis() (part []int, objval int32, err error) {
	// Build METIS graph
	xadj, adjncy, vwgt, adjwgt := mp.buildMetisGraph()

	// Set METIS options
	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, 0, fmt.Errorf("failed to set METIS options: %w", err)
	}

	// Set objective function
	if mp.config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}

	// Set allowed imbalance
	ubvec := []float32{mp.config.ImbalanceFactor}

	var adjwgtPtr []int32
	if mp.config.UseEdgeWeights {
		adjwgtPtr = adjwgt
	}

	p32, objval, err := metis.PartGraphKwayWeighted(
		xadj, adjncy, vwgt, adjwgtPtr,
		mp.config.NumPartitions, nil, ubvec, opts,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("METIS partitioning failed: %w", err)
	}
	part = make([]int, len(p32))
	for k, p := range p32 {
		part[k] = int(p)
	}
	return
}

// buildMetisGraph converts cell adjacency across edges to METIS CSR form
func (mp *MeshPartitioner) buildMetisGraph() (xadj, adjncy, vwgt, adjwgt []int32) {
	m := mp.mesh
	nbrs := m.CellNeighbors()

	xadj = make([]int32, m.NumElements+1)
	vwgt = make([]int32, m.NumElements)
	for k := 0; k < m.NumElements; k++ {
		vwgt[k] = mp.computeCostModel(m.ElementTypes[k])
		xadj[k+1] = xadj[k] + int32(len(nbrs[k]))
		for _, nb := range nbrs[k] {
			adjncy = append(adjncy, int32(nb))
			// A shared edge couples two vertices, four unknowns
			adjwgt = append(adjwgt, 4)
		}
	}
	return
}

func (mp *MeshPartitioner) analyzePartition(objval int32) {
	var (
		m        = mp.mesh
		nparts   = int(mp.config.NumPartitions)
		loads    = make([]int, nparts)
		cutEdges int
		iface    = make(map[[2]int]int)
	)
	for p := range loads {
		loads[p] = len(mp.GetPartitionElements(p))
	}
	for _, ek := range m.EdgeKeys {
		e := m.Edges[ek]
		if len(e.Cells) != 2 {
			continue
		}
		p1, p2 := m.EToP[e.Cells[0]], m.EToP[e.Cells[1]]
		if p1 == p2 {
			continue
		}
		cutEdges++
		if p1 > p2 {
			p1, p2 = p2, p1
		}
		iface[[2]int{p1, p2}]++
	}
	minLoad, maxLoad := math.MaxInt, 0
	for _, l := range loads {
		minLoad = min(minLoad, l)
		maxLoad = max(maxLoad, l)
	}
	avgLoad := float64(m.NumElements) / float64(nparts)

	log.Printf("Partition Analysis:")
	log.Printf("  Objective value: %d", objval)
	log.Printf("  Cut edges: %d", cutEdges)
	log.Printf("  Load imbalance: %.2f%%", (float64(maxLoad)/avgLoad-1)*100)
	log.Printf("  Load range: [%d, %d], avg: %.1f", minLoad, maxLoad, avgLoad)
	keys := make([][2]int, 0, len(iface))
	for key := range iface {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a][0] != keys[b][0] {
			return keys[a][0] < keys[b][0]
		}
		return keys[a][1] < keys[b][1]
	})
	for _, key := range keys {
		log.Printf("  Partition %d <-> %d: %d edges", key[0], key[1], iface[key])
	}
}

// GetPartitionElements returns the cells assigned to partID
func (mp *MeshPartitioner) GetPartitionElements(partID int) (elems []int) {
	for k, p := range mp.mesh.EToP {
		if p == partID {
			elems = append(elems, k)
		}
	}
	return
}
