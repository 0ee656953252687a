package FEM2D

import "errors"

var (
	ErrNonTriangular      = errors.New("non-triangular cell")
	ErrDegenerateElement  = errors.New("degenerate element")
	ErrAsymmetricOperator = errors.New("local operator is not symmetric")
	ErrFixedNodeIndex     = errors.New("fixed node has no equation index")
	ErrBadMaterial        = errors.New("invalid material parameters")
	ErrFieldShape         = errors.New("field has the wrong shape")
)
