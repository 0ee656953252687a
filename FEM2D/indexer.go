package FEM2D

import "fmt"

// DOFMap numbers the displacement components of the free nodes, x and y of
// a node adjacent, in node order. Fixed nodes get no equation.
type DOFMap struct {
	Base  int // Offset added by Index, for solvers with a non-zero first index
	conds []NodeCondition
	first []int // Local index of the x component, -1 for a fixed node
	numEq int
}

// NewDOFMap builds the numbering, it must be rebuilt if conditions change
func NewDOFMap(conds []NodeCondition, base int) (dm *DOFMap) {
	dm = &DOFMap{
		Base:  base,
		conds: append([]NodeCondition(nil), conds...),
		first: make([]int, len(conds)),
	}
	for i, nc := range conds {
		if nc == nil {
			panic(fmt.Errorf("node %d has no condition", i))
		}
		if _, fixed := FixedValue(nc); fixed {
			dm.first[i] = -1
			continue
		}
		dm.first[i] = dm.numEq
		dm.numEq += 2
	}
	return
}

// NumEquations is twice the number of free nodes
func (dm *DOFMap) NumEquations() int { return dm.numEq }

func (dm *DOFMap) NumNodes() int { return len(dm.first) }

func (dm *DOFMap) Condition(node int) NodeCondition { return dm.conds[node] }

func (dm *DOFMap) IsFixed(node int) bool { return dm.first[node] < 0 }

// FixedValue is the prescribed displacement of node, ok is false for a free node
func (dm *DOFMap) FixedValue(node int) (value [2]float64, ok bool) {
	return FixedValue(dm.conds[node])
}

// NumFixed counts the Dirichlet nodes
func (dm *DOFMap) NumFixed() int { return len(dm.first) - dm.numEq/2 }

// Local is the zero based equation of component comp of node. Asking for a
// fixed node is a programming error and panics.
func (dm *DOFMap) Local(node, comp int) int {
	if comp < 0 || comp > 1 {
		panic(fmt.Errorf("component %d out of range for node %d", comp, node))
	}
	if dm.first[node] < 0 {
		panic(fmt.Errorf("%w: node %d", ErrFixedNodeIndex, node))
	}
	return dm.first[node] + comp
}

// Index is Local shifted by Base
func (dm *DOFMap) Index(node, comp int) int { return dm.Base + dm.Local(node, comp) }
