package FEM2D

import "fmt"

// NodeCondition classifies a node as either prescribed or unknown. The only
// implementations are Fixed and Free.
type NodeCondition interface {
	isNodeCondition()
	fmt.Stringer
}

// Fixed is a Dirichlet node with a prescribed displacement
type Fixed struct {
	Value [2]float64
}

// Free is a node whose displacement is solved for
type Free struct{}

func (Fixed) isNodeCondition() {}
func (Free) isNodeCondition()  {}

func (f Fixed) String() string { return fmt.Sprintf("Fixed(%g, %g)", f.Value[0], f.Value[1]) }
func (Free) String() string    { return "Free" }

// FixedValue reports the prescribed displacement of a Fixed condition
func FixedValue(nc NodeCondition) (value [2]float64, fixed bool) {
	if f, ok := nc.(Fixed); ok {
		return f.Value, true
	}
	return
}

// BoundaryConditions fixes every node flagged onBoundary at the value given
// by g, all other nodes are Free.
func BoundaryConditions(onBoundary []bool, g func(node int) [2]float64) (conds []NodeCondition) {
	conds = make([]NodeCondition, len(onBoundary))
	for i, onB := range onBoundary {
		if onB {
			conds[i] = Fixed{Value: g(i)}
		} else {
			conds[i] = Free{}
		}
	}
	return
}
