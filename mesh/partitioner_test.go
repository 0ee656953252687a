package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripPartition(t *testing.T) {
	m, err := NewUnitSquareMesh(4)
	require.NoError(t, err)

	config := DefaultPartitionConfig(2)
	config.Method = "strip"
	mp := NewMeshPartitioner(m, config)
	require.NoError(t, mp.Partition())

	assert.Equal(t, 2, m.NumPartitions())
	left, right := mp.GetPartitionElements(0), mp.GetPartitionElements(1)
	assert.Len(t, left, 16)
	assert.Len(t, right, 16)
	// The strips are ordered in x
	for _, k := range left {
		for _, v := range m.CellNodes(k) {
			assert.LessOrEqual(t, m.Coord(v)[0], 0.5+1e-12)
		}
	}

	{ // Too many partitions
		mp = NewMeshPartitioner(m, DefaultPartitionConfig(33))
		assert.Error(t, mp.Partition())
	}
	{ // Unknown method
		config = DefaultPartitionConfig(2)
		config.Method = "random"
		assert.Error(t, NewMeshPartitioner(m, config).Partition())
	}
	{ // A single partition needs no graph
		require.NoError(t, NewMeshPartitioner(m, DefaultPartitionConfig(1)).Partition())
		assert.Equal(t, 1, m.NumPartitions())
	}
}

func TestOwnership(t *testing.T) {
	m, err := NewUnitSquareMesh(1)
	require.NoError(t, err)
	assert.Error(t, func() error { m.EToP = nil; return m.SetOwnership(0) }())

	// Cell 0 is {0,1,3}, cell 1 is {0,3,2}
	require.Equal(t, []int{0, 1, 3}, m.CellNodes(0))
	require.Equal(t, []int{0, 3, 2}, m.CellNodes(1))
	m.EToP = []int{0, 1}
	require.NoError(t, m.SetOwnership(0))
	assert.False(t, m.IsGhostCell(0))
	assert.True(t, m.IsGhostCell(1))
	assert.Equal(t, []Status{Shared, Owned, Ghost, Shared}, m.NodeStatus)

	// Vertices 0 and 3 touch both cells and belong to the lower partition
	require.NoError(t, m.SetOwnership(1))
	assert.True(t, m.IsGhostCell(0))
	assert.False(t, m.IsGhostCell(1))
	assert.Equal(t, []Status{Ghost, Ghost, Owned, Ghost}, m.NodeStatus)
	assert.True(t, m.IsGhostNode(3))
	assert.False(t, m.IsGhostNode(2))

	m.ClearOwnership()
	for k := 0; k < m.NumCells(); k++ {
		assert.False(t, m.IsGhostCell(k))
	}
	assert.Equal(t, "Ghost", Ghost.String())
	assert.Equal(t, "Unknown", Status(7).String())
}

func TestMetisGraph(t *testing.T) {
	m, err := NewUnitSquareMesh(2)
	require.NoError(t, err)
	mp := NewMeshPartitioner(m, DefaultPartitionConfig(2))
	xadj, adjncy, vwgt, adjwgt := mp.buildMetisGraph()
	require.Len(t, xadj, m.NumCells()+1)
	assert.Equal(t, int32(len(adjncy)), xadj[m.NumCells()])
	assert.Len(t, adjwgt, len(adjncy))
	for _, w := range vwgt {
		assert.Equal(t, int32(9), w)
	}
	// 8 cells, 16 edges, 8 boundary edges, 8 interior edges each seen twice
	assert.Len(t, adjncy, 16)
	// The graph is symmetric
	for k := 0; k < m.NumCells(); k++ {
		for _, nb := range adjncy[xadj[k]:xadj[k+1]] {
			assert.Contains(t, adjncy[xadj[nb]:xadj[nb+1]], int32(k))
		}
	}
}
