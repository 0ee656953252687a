package utils

const (
	NODETOL = 1.e-12
	// SYMTOL is the relative tolerance used when checking element operators for symmetry
	SYMTOL = 1.e-10
)
